// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, storage errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries every violated rule of one request, so the client
// can show all problems at once instead of fixing them one by one.
type ValidationError struct {
	Detail string   `json:"detail"`
	Errors []string `json:"errors"`
}

func NewValidation(errs []string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Errors: errs}
}
