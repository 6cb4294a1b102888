package tenant

import (
	"context"
	"time"
)

// CollectionTenants is the master-database collection holding tenant records.
const CollectionTenants = "tenants"

// Tenant is the directory record of one customer company. It lives in the
// master database; Subdomain doubles as the name suffix of the tenant's own
// database and never changes after provisioning.
type Tenant struct {
	ID           string    `bson:"_id" json:"id"`
	Subdomain    string    `bson:"subdomain" json:"subdomain"`
	CompanyName  string    `bson:"company_name" json:"company_name"`
	LogoURL      string    `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	PrimaryColor string    `bson:"primary_color,omitempty" json:"primary_color,omitempty"`
	ContactEmail string    `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	PlanID       string    `bson:"plan_id,omitempty" json:"plan_id,omitempty"`
	Active       bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// Provider loads active tenants by subdomain.
type Provider interface {
	// GetByIdentifier returns ErrTenantNotFound both when no tenant has the
	// identifier and when the tenant is deactivated.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, identifier string) (*Tenant, error)

func (f ProviderFunc) GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	return f(ctx, identifier)
}
