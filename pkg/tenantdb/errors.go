package tenantdb

import "errors"

var (
	// ErrConnection is returned when a database client cannot be opened.
	ErrConnection = errors.New("tenantdb: connection failed")

	// ErrNotInitialized is returned by Master before InitMaster has succeeded.
	ErrNotInitialized = errors.New("tenantdb: master connection not initialized")

	// ErrClosed is returned once the registry has been closed.
	ErrClosed = errors.New("tenantdb: registry closed")

	// ErrTenantClosed is returned to callers whose dial raced with CloseTenant.
	ErrTenantClosed = errors.New("tenantdb: tenant closed while connecting")

	// ErrInvalidIdentifier is returned for an empty tenant identifier.
	ErrInvalidIdentifier = errors.New("tenantdb: invalid tenant identifier")

	// ErrProvision is returned when a tenant database cannot be prepared.
	ErrProvision = errors.New("tenantdb: provisioning failed")
)
