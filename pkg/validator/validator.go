package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("chunktype", validateChunkType)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// validateChunkType accepts an empty value or a known chunk type
func validateChunkType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || entities.ChunkType(s).Valid()
}
