package platform

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentdesk/ats/binder"
	"github.com/talentdesk/ats/core"
	"github.com/talentdesk/ats/pkg/jwt"
	"github.com/talentdesk/ats/pkg/logger"
	"github.com/talentdesk/ats/pkg/tenant"
)

// Handler exposes the Service over HTTP. It is mounted on the master
// database path, e.g. /api/super-admin.
type Handler struct {
	svc    *Service
	tokens *jwt.Service
	logger *slog.Logger
}

type HandlerOption func(*Handler)

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(svc *Service, tokens *jwt.Service, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, tokens: tokens, logger: logger.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the administration router. Everything except /login
// requires a super-admin token.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", core.Wrap(h.login,
		core.WithBinders[loginRequest](binder.JSON()),
	))

	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(h.tokens, jwt.WithRoles(RoleSuperAdmin)))

		r.Get("/tenants", core.Wrap(h.listTenants,
			core.WithBinders[listTenantsRequest](binder.Query()),
		))
		r.Post("/tenants", core.Wrap(h.createTenant,
			core.WithBinders[ProvisionInput](binder.JSON()),
		))
		r.Get("/tenants/{subdomain}", core.Wrap(h.getTenant,
			core.WithBinders[tenantPath](binder.Path(chi.URLParam)),
		))
		r.Patch("/tenants/{subdomain}/status", core.Wrap(h.setStatus,
			core.WithBinders[statusRequest](binder.Path(chi.URLParam), binder.JSON()),
		))
		r.Patch("/tenants/{subdomain}/branding", core.Wrap(h.updateBranding,
			core.WithBinders[brandingRequest](binder.Path(chi.URLParam), binder.JSON()),
		))
	})

	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(r *http.Request, req loginRequest) core.Response {
	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return h.errorResponse(r, err)
	}
	return core.JSON(res)
}

type listTenantsRequest struct {
	Active *bool `query:"active"`
}

func (h *Handler) listTenants(r *http.Request, req listTenantsRequest) core.Response {
	list, err := h.svc.ListTenants(r.Context(), TenantFilter{Active: req.Active})
	if err != nil {
		return h.errorResponse(r, err)
	}
	return core.JSONWithStatus(http.StatusOK, list, map[string]any{"total": len(list)})
}

func (h *Handler) createTenant(r *http.Request, req ProvisionInput) core.Response {
	t, err := h.svc.ProvisionTenant(r.Context(), req)
	if err != nil {
		return h.errorResponse(r, err)
	}
	return core.JSONWithStatus(http.StatusCreated, t, nil)
}

type tenantPath struct {
	Subdomain string `path:"subdomain"`
}

func (h *Handler) getTenant(r *http.Request, req tenantPath) core.Response {
	t, err := h.svc.GetTenant(r.Context(), req.Subdomain)
	if err != nil {
		return h.errorResponse(r, err)
	}
	return core.JSON(t)
}

type statusRequest struct {
	Subdomain string `path:"subdomain" json:"-"`
	Active    *bool  `json:"is_active"`
}

func (h *Handler) setStatus(r *http.Request, req statusRequest) core.Response {
	if req.Active == nil {
		verr := core.NewValidationError()
		verr.Add("is_active", "is required")
		return core.JSONError(verr)
	}
	t, err := h.svc.SetTenantActive(r.Context(), req.Subdomain, *req.Active)
	if err != nil {
		return h.errorResponse(r, err)
	}
	return core.JSON(t)
}

type brandingRequest struct {
	Subdomain string `path:"subdomain" json:"-"`
	Branding
}

func (h *Handler) updateBranding(r *http.Request, req brandingRequest) core.Response {
	t, err := h.svc.UpdateBranding(r.Context(), req.Subdomain, req.Branding)
	if err != nil {
		return h.errorResponse(r, err)
	}
	return core.JSON(t)
}

func (h *Handler) errorResponse(r *http.Request, err error) core.Response {
	var verr core.ValidationError
	switch {
	case errors.As(err, &verr):
		return core.JSONError(verr)
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, tenant.ErrTenantNotFound):
		return core.JSONError(core.ErrTenantNotFound)
	case errors.Is(err, ErrSubdomainTaken):
		return core.JSONError(core.ErrConflict.WithMessage("Subdomain is already taken"))
	case errors.Is(err, ErrInvalidCredentials):
		return core.JSONError(core.ErrUnauthorized.WithMessage("Invalid email or password"))
	case errors.Is(err, ErrAccountLocked):
		return core.JSONError(core.ErrLocked.WithMessage("Account is temporarily locked"))
	}

	h.logger.ErrorContext(r.Context(), "super admin request failed",
		logger.Component("platform"),
		slog.String("path", r.URL.Path),
		logger.Error(err),
	)
	return core.JSONError(err)
}
