package jwt

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/talentdesk/ats/core"
)

// TokenExtractorFunc extracts a token from an HTTP request.
type TokenExtractorFunc func(r *http.Request) (string, error)

type middlewareConfig struct {
	extractor    TokenExtractorFunc
	roles        []string
	errorHandler core.ErrorHandler
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

func WithExtractor(e TokenExtractorFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithRoles restricts access to tokens carrying one of roles.
func WithRoles(roles ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.roles = append(c.roles, roles...)
	}
}

func WithErrorHandler(h core.ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// Middleware verifies the request token and stores its claims in the
// request context. Failures answer 401, or 403 for a disallowed role.
func Middleware(s *Service, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		extractor:    BearerTokenExtractor,
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := cfg.extractor(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			claims, err := s.Parse(token)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			if len(cfg.roles) > 0 && !slices.Contains(cfg.roles, claims.Role) {
				cfg.errorHandler(w, r, ErrForbiddenRole)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	httpErr := core.ErrUnauthorized
	switch {
	case errors.Is(err, ErrForbiddenRole):
		httpErr = core.ErrForbidden
	case errors.Is(err, ErrExpiredToken):
		httpErr = httpErr.WithMessage("Token expired")
	}
	_ = core.JSONError(httpErr).Render(w, r)
}

// BearerTokenExtractor reads "Authorization: Bearer <token>".
func BearerTokenExtractor(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
