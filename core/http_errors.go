package core

import "net/http"

// HTTPError is an error with a status code and a stable machine-readable key.
// Message is the human-facing text; when empty the status text is used.
type HTTPError struct {
	Code    int    // HTTP status code
	Key     string // Stable error code, e.g. "TENANT_NOT_FOUND"
	Message string
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

// Text returns the message shown to clients.
func (e HTTPError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Code)
}

// WithMessage returns a copy of e with a different message.
func (e HTTPError) WithMessage(msg string) HTTPError {
	e.Message = msg
	return e
}

// 4xx Client Errors
var (
	ErrBadRequest            = HTTPError{Code: http.StatusBadRequest, Key: "BAD_REQUEST"}
	ErrUnauthorized          = HTTPError{Code: http.StatusUnauthorized, Key: "UNAUTHORIZED"}
	ErrForbidden             = HTTPError{Code: http.StatusForbidden, Key: "FORBIDDEN"}
	ErrNotFound              = HTTPError{Code: http.StatusNotFound, Key: "NOT_FOUND"}
	ErrMethodNotAllowed      = HTTPError{Code: http.StatusMethodNotAllowed, Key: "METHOD_NOT_ALLOWED"}
	ErrConflict              = HTTPError{Code: http.StatusConflict, Key: "CONFLICT"}
	ErrRequestEntityTooLarge = HTTPError{Code: http.StatusRequestEntityTooLarge, Key: "REQUEST_ENTITY_TOO_LARGE"}
	ErrUnsupportedMediaType  = HTTPError{Code: http.StatusUnsupportedMediaType, Key: "UNSUPPORTED_MEDIA_TYPE"}
	ErrUnprocessableEntity   = HTTPError{Code: http.StatusUnprocessableEntity, Key: "UNPROCESSABLE_ENTITY"}
	ErrLocked                = HTTPError{Code: http.StatusLocked, Key: "LOCKED"}
	ErrTooManyRequests       = HTTPError{Code: http.StatusTooManyRequests, Key: "TOO_MANY_REQUESTS"}
)

// 5xx Server Errors
var (
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "INTERNAL_ERROR"}
	ErrServiceUnavailable  = HTTPError{Code: http.StatusServiceUnavailable, Key: "SERVICE_UNAVAILABLE"}
)

// Tenancy errors
var (
	ErrTenantNotFound   = HTTPError{Code: http.StatusNotFound, Key: "TENANT_NOT_FOUND", Message: "Tenant not found"}
	ErrTenantResolution = HTTPError{Code: http.StatusInternalServerError, Key: "TENANT_RESOLUTION_ERROR", Message: "Failed to resolve tenant"}
	ErrTenantRequired   = HTTPError{Code: http.StatusNotFound, Key: "TENANT_REQUIRED", Message: "This endpoint is only available on a tenant subdomain"}
)

// NewHTTPError creates a custom HTTP error.
func NewHTTPError(code int, key, message string) HTTPError {
	return HTTPError{Code: code, Key: key, Message: message}
}
