package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no active tenant matches the identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrResolution wraps infrastructure failures while binding a request.
	ErrResolution = errors.New("tenant resolution failed")

	// ErrNoTenantInContext is returned when a route requires a tenant-bound request.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
