// Command server runs the multi-tenant ATS API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/talentdesk/ats/internal/config"
	"github.com/talentdesk/ats/pkg/httpserver"
	"github.com/talentdesk/ats/pkg/jwt"
	"github.com/talentdesk/ats/pkg/logger"
	"github.com/talentdesk/ats/pkg/mongo"
	"github.com/talentdesk/ats/pkg/requestid"
	"github.com/talentdesk/ats/pkg/tenant"
	"github.com/talentdesk/ats/pkg/tenantdb"
	"github.com/talentdesk/ats/svc/platform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.App)
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func newLogger(app config.App) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(tenant.LoggerExtractor(), requestid.LoggerExtractor()),
	}
	if app.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(app.LogLevel))
	}
	if app.LogFormat != "" {
		opts = append(opts, logger.WithFormat(logger.Format(app.LogFormat)))
	}
	return logger.New(opts...)
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) (err error) {
	registry := tenantdb.New(mongo.Dialer(cfg.Mongo),
		tenantdb.WithMasterDatabase(cfg.Tenancy.MasterDatabase),
		tenantdb.WithDatabasePrefix(cfg.Tenancy.DatabasePrefix),
		tenantdb.WithConnectTimeout(cfg.Tenancy.ConnectTimeout),
		tenantdb.WithLogger(log),
	)

	// The stop hook closes the registry on graceful shutdown; this covers
	// startup failures. Close is idempotent.
	defer func() {
		err = errors.Join(err, registry.Close(context.WithoutCancel(ctx)))
	}()

	if err := registry.InitMaster(ctx); err != nil {
		return fmt.Errorf("init master database: %w", err)
	}

	store := platform.NewMongoStore(registry)
	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}

	tokens, err := jwt.New([]byte(cfg.Auth.JWTSecret),
		jwt.WithIssuer(cfg.Auth.Issuer),
		jwt.WithTTL(cfg.Auth.TokenTTL),
	)
	if err != nil {
		return err
	}

	svc, err := platform.NewService(store, registry, tokens,
		platform.WithLogger(log),
		platform.WithLoginLockout(cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutDuration),
	)
	if err != nil {
		return err
	}

	if cfg.Auth.SuperAdminEmail != "" {
		if _, err := svc.EnsureSuperAdmin(ctx, cfg.Auth.SuperAdminEmail, cfg.Auth.SuperAdminPassword); err != nil {
			return fmt.Errorf("bootstrap super admin: %w", err)
		}
	}

	handler := newRouter(routerDeps{
		logger:        log,
		resolver:      tenant.NewHostResolver(cfg.Tenancy.PrimaryDomain, cfg.Tenancy.DevDomains...).Resolve,
		provider:      tenant.NewMongoProvider(registry),
		connector:     registry,
		platform:      svc,
		tokens:        tokens,
		adminPrefixes: cfg.Tenancy.AdminPrefixes,
		ready:         registry.Healthcheck,
	})

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(registry.Close),
	)
	return server.Run(ctx, handler)
}
