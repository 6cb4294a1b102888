package platform

import "errors"

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrSubdomainTaken     = errors.New("subdomain already taken")
	ErrAdminNotFound      = errors.New("super admin not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrProvisioning       = errors.New("tenant provisioning failed")
)
