// Package apierror holds the error envelopes every closing endpoint answers
// with. Clients never see internal details (stack traces, DB errors); the
// detail strings are the Spanish messages the register UI shows verbatim.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validación", Fields: fields}
}
