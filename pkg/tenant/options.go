package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talentdesk/ats/core"
)

// DefaultAdminPrefix is the platform administration API; it is always
// served from the master database.
const DefaultAdminPrefix = "/api/super-admin"

// ErrorHandler writes the response for a request that could not be bound.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type config struct {
	adminPrefixes []string
	errorHandler  ErrorHandler
	logger        *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithAdminPrefixes replaces the path prefixes that bypass tenant lookup.
func WithAdminPrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.adminPrefixes = c.adminPrefixes[:0]
		for _, p := range prefixes {
			if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
				c.adminPrefixes = append(c.adminPrefixes, p)
			}
		}
	}
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func (c *config) isAdminPath(path string) bool {
	for _, p := range c.adminPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// DefaultErrorHandler renders the stable JSON error codes. Infrastructure
// details never reach the client.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	var resp core.Response
	switch {
	case errors.Is(err, ErrTenantNotFound):
		resp = core.JSONError(core.ErrTenantNotFound)
	case errors.Is(err, ErrNoTenantInContext):
		resp = core.JSONError(core.ErrTenantRequired)
	default:
		resp = core.JSONError(core.ErrTenantResolution)
	}
	_ = resp.Render(w, r)
}
