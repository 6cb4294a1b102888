package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talentdesk/ats/core"
	"github.com/talentdesk/ats/pkg/httpserver"
	"github.com/talentdesk/ats/pkg/jwt"
	"github.com/talentdesk/ats/pkg/requestid"
	"github.com/talentdesk/ats/pkg/tenant"
	"github.com/talentdesk/ats/svc/platform"
	"github.com/talentdesk/ats/svc/workspace"
)

// routerDeps is everything newRouter needs; main fills it from the real
// registry, tests from in-memory fakes.
type routerDeps struct {
	logger        *slog.Logger
	resolver      tenant.Resolver
	provider      tenant.Provider
	connector     tenant.Connector
	platform      *platform.Service
	tokens        *jwt.Service
	adminPrefixes []string
	ready         func(context.Context) error
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware())
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Probes sit outside the tenant binder so they answer on any host.
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(d.logger, httpserver.Check{Name: "master", Fn: d.ready}))

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(d.resolver, d.provider, d.connector,
			tenant.WithAdminPrefixes(append([]string{tenant.DefaultAdminPrefix}, d.adminPrefixes...)...),
			tenant.WithLogger(d.logger),
		))

		r.Mount(tenant.DefaultAdminPrefix, platform.NewHandler(d.platform, d.tokens,
			platform.WithHandlerLogger(d.logger),
		).Routes())
		r.Mount("/api/tenant", workspace.NewHandler(
			workspace.WithLogger(d.logger),
		).Routes())
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = core.JSONError(core.ErrNotFound).Render(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = core.JSONError(core.ErrMethodNotAllowed).Render(w, r)
	})
	return r
}
