package platform

import (
	"time"

	"github.com/talentdesk/ats/pkg/tenant"
)

// CollectionSuperAdmins holds platform operators in the master database.
const CollectionSuperAdmins = "super_admins"

// RoleSuperAdmin is the token role required by the administration API.
const RoleSuperAdmin = "super_admin"

// SuperAdmin is a platform operator. Operators are not tenant users and
// live only in the master database.
type SuperAdmin struct {
	ID             string     `bson:"_id" json:"id"`
	Email          string     `bson:"email" json:"email"`
	PasswordHash   []byte     `bson:"password_hash" json:"-"`
	FailedAttempts int        `bson:"failed_attempts" json:"-"`
	LockedUntil    *time.Time `bson:"locked_until,omitempty" json:"-"`
	LastLoginAt    *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// Locked reports whether logins are refused at now.
func (a *SuperAdmin) Locked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// TenantFilter narrows ListTenants. Nil fields match everything.
type TenantFilter struct {
	Active *bool
}

// Match reports whether t passes the filter.
func (f TenantFilter) Match(t *tenant.Tenant) bool {
	return f.Active == nil || *f.Active == t.Active
}

// Branding is a partial update of a tenant's presentation fields; nil
// fields are left untouched.
type Branding struct {
	CompanyName  *string `json:"company_name,omitempty"`
	LogoURL      *string `json:"logo_url,omitempty"`
	PrimaryColor *string `json:"primary_color,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
}

// Empty reports whether the update changes nothing.
func (b Branding) Empty() bool {
	return b.CompanyName == nil && b.LogoURL == nil && b.PrimaryColor == nil && b.ContactEmail == nil
}

// Apply copies the set fields onto t.
func (b Branding) Apply(t *tenant.Tenant) {
	if b.CompanyName != nil {
		t.CompanyName = *b.CompanyName
	}
	if b.LogoURL != nil {
		t.LogoURL = *b.LogoURL
	}
	if b.PrimaryColor != nil {
		t.PrimaryColor = *b.PrimaryColor
	}
	if b.ContactEmail != nil {
		t.ContactEmail = *b.ContactEmail
	}
}
