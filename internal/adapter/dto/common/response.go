package common

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthResponse reports process and dependency status
type HealthResponse struct {
	Status      string            `json:"status"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks,omitempty"`
}
