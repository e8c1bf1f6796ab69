// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
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
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Codes used by user administration. Clients switch on Code, not on Detail.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodePermissionDenied = "permission-denied"
	CodeInvalidArgument  = "invalid-argument"
	CodeAlreadyExists    = "already-exists"
	CodeNotFound         = "not-found"
	CodeInternal         = "internal"
)

// CodedError is an APIError with a machine readable code.
type CodedError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func NewCoded(code, msg string) *CodedError {
	return &CodedError{Code: code, Detail: msg}
}

func (e *CodedError) Error() string { return e.Code + ": " + e.Detail }
