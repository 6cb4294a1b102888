package platform

import (
	"context"
	"time"

	"github.com/talentdesk/ats/pkg/tenant"
)

// Storage persists tenant records and platform operators in the master
// database.
type Storage interface {
	CreateTenant(ctx context.Context, t *tenant.Tenant) error
	DeleteTenant(ctx context.Context, id string) error
	GetTenant(ctx context.Context, subdomain string) (*tenant.Tenant, error)
	ListTenants(ctx context.Context, filter TenantFilter) ([]*tenant.Tenant, error)
	SetTenantActive(ctx context.Context, subdomain string, active bool, at time.Time) (*tenant.Tenant, error)
	UpdateBranding(ctx context.Context, subdomain string, b Branding, at time.Time) (*tenant.Tenant, error)

	CreateAdmin(ctx context.Context, a *SuperAdmin) error
	GetAdminByEmail(ctx context.Context, email string) (*SuperAdmin, error)
	// RecordFailedLogin atomically increments the failure count and returns
	// the new value.
	RecordFailedLogin(ctx context.Context, id string, at time.Time) (int, error)
	// LockAdmin sets locked_until unless a lock later than at is already in
	// place; an existing lock is never shortened or cleared.
	LockAdmin(ctx context.Context, id string, until, at time.Time) error
	// ClearExpiredLock resets the failure count and lock, but only when the
	// stored lock ended at or before at.
	ClearExpiredLock(ctx context.Context, id string, at time.Time) error
	RecordSuccessfulLogin(ctx context.Context, id string, at time.Time) error
}
