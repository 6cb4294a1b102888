package platform

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/talentdesk/ats/pkg/tenant"
)

// MemoryStore is an in-process Storage. It also serves tenant lookups, so
// a whole stack can run without MongoDB in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[string]*tenant.Tenant // by subdomain
	admins  map[string]*SuperAdmin    // by email
}

var (
	_ Storage         = (*MemoryStore)(nil)
	_ tenant.Provider = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants: make(map[string]*tenant.Tenant),
		admins:  make(map[string]*SuperAdmin),
	}
}

func cloneTenant(t *tenant.Tenant) *tenant.Tenant {
	cp := *t
	return &cp
}

func cloneAdmin(a *SuperAdmin) *SuperAdmin {
	cp := *a
	cp.PasswordHash = slices.Clone(a.PasswordHash)
	if a.LockedUntil != nil {
		v := *a.LockedUntil
		cp.LockedUntil = &v
	}
	if a.LastLoginAt != nil {
		v := *a.LastLoginAt
		cp.LastLoginAt = &v
	}
	return &cp
}

// GetByIdentifier implements tenant.Provider.
func (s *MemoryStore) GetByIdentifier(_ context.Context, identifier string) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[identifier]
	if !ok || !t.Active {
		return nil, tenant.ErrTenantNotFound
	}
	return cloneTenant(t), nil
}

func (s *MemoryStore) CreateTenant(_ context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.Subdomain]; ok {
		return ErrSubdomainTaken
	}
	s.tenants[t.Subdomain] = cloneTenant(t)
	return nil
}

func (s *MemoryStore) DeleteTenant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub, t := range s.tenants {
		if t.ID == id {
			delete(s.tenants, sub)
		}
	}
	return nil
}

func (s *MemoryStore) GetTenant(_ context.Context, subdomain string) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[subdomain]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return cloneTenant(t), nil
}

func (s *MemoryStore) ListTenants(_ context.Context, filter TenantFilter) ([]*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*tenant.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		if filter.Match(t) {
			out = append(out, cloneTenant(t))
		}
	}
	slices.SortFunc(out, func(a, b *tenant.Tenant) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Subdomain, b.Subdomain)
	})
	return out, nil
}

func (s *MemoryStore) SetTenantActive(_ context.Context, subdomain string, active bool, at time.Time) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[subdomain]
	if !ok {
		return nil, ErrTenantNotFound
	}
	t.Active = active
	t.UpdatedAt = at
	return cloneTenant(t), nil
}

func (s *MemoryStore) UpdateBranding(_ context.Context, subdomain string, b Branding, at time.Time) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[subdomain]
	if !ok {
		return nil, ErrTenantNotFound
	}
	b.Apply(t)
	t.UpdatedAt = at
	return cloneTenant(t), nil
}

func (s *MemoryStore) CreateAdmin(_ context.Context, a *SuperAdmin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.admins[a.Email]; ok {
		return ErrEmailTaken
	}
	s.admins[a.Email] = cloneAdmin(a)
	return nil
}

func (s *MemoryStore) GetAdminByEmail(_ context.Context, email string) (*SuperAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[email]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return cloneAdmin(a), nil
}

func (s *MemoryStore) RecordFailedLogin(_ context.Context, id string, at time.Time) (int, error) {
	var attempts int
	err := s.updateAdmin(id, func(a *SuperAdmin) {
		a.FailedAttempts++
		a.UpdatedAt = at
		attempts = a.FailedAttempts
	})
	return attempts, err
}

func (s *MemoryStore) LockAdmin(_ context.Context, id string, until, at time.Time) error {
	return s.updateAdmin(id, func(a *SuperAdmin) {
		if a.Locked(at) {
			return
		}
		a.LockedUntil = &until
		a.UpdatedAt = at
	})
}

func (s *MemoryStore) ClearExpiredLock(_ context.Context, id string, at time.Time) error {
	return s.updateAdmin(id, func(a *SuperAdmin) {
		if a.LockedUntil == nil || a.LockedUntil.After(at) {
			return
		}
		a.FailedAttempts = 0
		a.LockedUntil = nil
		a.UpdatedAt = at
	})
}

func (s *MemoryStore) RecordSuccessfulLogin(_ context.Context, id string, at time.Time) error {
	return s.updateAdmin(id, func(a *SuperAdmin) {
		a.FailedAttempts = 0
		a.LockedUntil = nil
		a.LastLoginAt = &at
		a.UpdatedAt = at
	})
}

func (s *MemoryStore) updateAdmin(id string, fn func(*SuperAdmin)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.ID == id {
			fn(a)
			return nil
		}
	}
	return ErrAdminNotFound
}
