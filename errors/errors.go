package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the error type surfaced through the HTTP layer
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

func ErrInvalidPayload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

// RAG Query Errors
func ErrInvalidMode(mode string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_RAG_INVALID_MODE,
		Message:  "Mode must be 'global' or 'meeting'",
	}.WithDetail("mode", mode)
}

func ErrMissingMeetingID() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_RAG_MISSING_MEETING_ID,
		Message:  "meeting_id is required for 'meeting' mode",
	}
}

func ErrMeetingNotFound(meetingID int64) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_RAG_MEETING_NOT_FOUND,
		Message:  "Meeting not found",
	}.WithDetail("meeting_id", fmt.Sprintf("%d", meetingID))
}

func ErrAnswerFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_RAG_ANSWER_FAILED,
		Message:  "Failed to generate answer",
	}
}

func ErrRetrievalFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_RAG_RETRIEVAL_FAILED,
		Message:  "Failed to retrieve meeting context",
	}
}

// Insights Errors
func ErrInsightsNotAvailable(meetingID int64) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_INSIGHTS_NOT_AVAILABLE,
		Message:  "Insights not available",
	}.WithDetail("meeting_id", fmt.Sprintf("%d", meetingID))
}

func ErrMeetingBusy(meetingID int64) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_INSIGHTS_MEETING_BUSY,
		Message:  "Meeting is being processed, try again later",
	}.WithDetail("meeting_id", fmt.Sprintf("%d", meetingID))
}

func ErrExtractionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INSIGHTS_EXTRACTION_FAILED,
		Message:  "Insights extraction failed",
	}
}

func ErrEmbeddingFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INSIGHTS_EMBEDDING_FAILED,
		Message:  "Embedding generation failed",
	}
}

// AI Provider Errors
func ErrAIServiceUnavailable(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_AI_SERVICE_UNAVAILABLE,
		Message:  "AI service temporarily unavailable",
	}.WithDetail("service", service)
}

func ErrAIQuotaExceeded(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_AI_QUOTA_EXCEEDED,
		Message:  "AI service quota exceeded",
	}
}

// Integration Errors
func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:  fmt.Sprintf("Storage operation failed: %s", operation),
	}
}

// Database Errors
func ErrDBConnectionFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_DB_CONNECTION_FAILED,
		Message:  "Database connection failed",
	}
}

func ErrDBQueryFailed(sqlState string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DB_QUERY_FAILED,
		Message:  "Database query failed",
	}.WithDetail("sqlstate", sqlState)
}
