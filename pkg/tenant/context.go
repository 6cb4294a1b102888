package tenant

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/talentdesk/ats/pkg/logger"
)

// Binding is what the middleware attaches to every request: either the
// master database alone, or a tenant with its own database.
type Binding struct {
	Tenant    *Tenant
	Database  *mongo.Database
	Subdomain string
}

// MasterBound reports whether the binding targets the master database.
func (b Binding) MasterBound() bool {
	return b.Tenant == nil
}

type contextKey struct{}

// WithBinding stores b in ctx.
func WithBinding(ctx context.Context, b Binding) context.Context {
	return context.WithValue(ctx, contextKey{}, b)
}

// BindingFromContext returns the request binding, if any.
func BindingFromContext(ctx context.Context) (Binding, bool) {
	b, ok := ctx.Value(contextKey{}).(Binding)
	return b, ok
}

// FromContext returns the bound tenant. It is false for master-bound requests.
func FromContext(ctx context.Context) (*Tenant, bool) {
	b, ok := BindingFromContext(ctx)
	if !ok || b.Tenant == nil {
		return nil, false
	}
	return b.Tenant, true
}

// MustFromContext panics if the request is not tenant-bound.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// DatabaseFromContext returns the database bound to the request, master or tenant.
func DatabaseFromContext(ctx context.Context) (*mongo.Database, bool) {
	b, ok := BindingFromContext(ctx)
	if !ok || b.Database == nil {
		return nil, false
	}
	return b.Database, true
}

// SubdomainFromContext returns the bound tenant's identifier.
func SubdomainFromContext(ctx context.Context) (string, bool) {
	b, ok := BindingFromContext(ctx)
	if !ok || b.Subdomain == "" {
		return "", false
	}
	return b.Subdomain, true
}

// IsMasterBound reports whether the request was bound to the master database.
func IsMasterBound(ctx context.Context) bool {
	b, ok := BindingFromContext(ctx)
	return ok && b.MasterBound()
}

// LoggerExtractor adds the bound subdomain to log records.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := SubdomainFromContext(ctx); ok {
			return logger.Subdomain(id), true
		}
		return slog.Attr{}, false
	}
}

// MustDatabase returns the bound database and panics if the request passed
// no binding middleware.
func MustDatabase(ctx context.Context) *mongo.Database {
	db, ok := DatabaseFromContext(ctx)
	if !ok {
		panic("tenant: no database in context")
	}
	return db
}
