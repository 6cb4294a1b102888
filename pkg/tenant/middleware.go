package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/talentdesk/ats/pkg/logger"
)

// Connector hands out database handles. *tenantdb.Registry satisfies it.
type Connector interface {
	EnsureMaster(ctx context.Context) (*mongo.Database, error)
	Tenant(ctx context.Context, id string) (*mongo.Database, error)
}

// Middleware binds every request to a database before it reaches the
// handler. Requests without a tenant subdomain, and requests to admin
// prefixes, are bound to the master database and never trigger a tenant
// lookup. Unknown and inactive tenants are rejected with TENANT_NOT_FOUND;
// any other failure becomes TENANT_RESOLUTION_ERROR.
func Middleware(resolve Resolver, provider Provider, conns Connector, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		adminPrefixes: []string{DefaultAdminPrefix},
		errorHandler:  DefaultErrorHandler,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, err := bind(r, resolve, provider, conns, cfg)
			if err != nil {
				if !errors.Is(err, ErrTenantNotFound) {
					cfg.logger.ErrorContext(r.Context(), "tenant binding failed",
						logger.Component("tenant"),
						slog.String("host", r.Host),
						slog.String("path", r.URL.Path),
						logger.Error(err),
					)
				}
				cfg.errorHandler(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithBinding(r.Context(), b)))
		})
	}
}

func bind(r *http.Request, resolve Resolver, provider Provider, conns Connector, cfg *config) (b Binding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", ErrResolution, rec)
		}
	}()

	ctx := r.Context()

	master, err := conns.EnsureMaster(ctx)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: master: %w", ErrResolution, err)
	}

	id, err := resolve(r)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: resolve: %w", ErrResolution, err)
	}

	if id == "" || cfg.isAdminPath(r.URL.Path) {
		return Binding{Database: master}, nil
	}

	t, err := provider.GetByIdentifier(ctx, id)
	switch {
	case errors.Is(err, ErrTenantNotFound):
		return Binding{}, ErrTenantNotFound
	case err != nil:
		return Binding{}, fmt.Errorf("%w: lookup %q: %w", ErrResolution, id, err)
	case t == nil || !t.Active:
		return Binding{}, ErrTenantNotFound
	}

	db, err := conns.Tenant(ctx, t.Subdomain)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: connect %q: %w", ErrResolution, t.Subdomain, err)
	}

	return Binding{Tenant: t, Database: db, Subdomain: t.Subdomain}, nil
}

// RequireTenant rejects requests that were bound to the master database.
func RequireTenant(opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{errorHandler: DefaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				cfg.errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
