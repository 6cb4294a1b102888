package tenantdb

import (
	"log/slog"
	"time"
)

const (
	DefaultMasterDatabase = "ats_master"
	DefaultDatabasePrefix = "ats_tenant_"
	DefaultConnectTimeout = 10 * time.Second
)

type config struct {
	masterDatabase string
	databasePrefix string
	connectTimeout time.Duration
	logger         *slog.Logger
}

// Option configures the Registry.
type Option func(*config)

// WithMasterDatabase sets the name of the cross-tenant database.
func WithMasterDatabase(name string) Option {
	return func(c *config) {
		if name != "" {
			c.masterDatabase = name
		}
	}
}

// WithDatabasePrefix sets the prefix joined with the tenant identifier to
// name each tenant database.
func WithDatabasePrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" {
			c.databasePrefix = prefix
		}
	}
}

// WithConnectTimeout bounds how long a single connection may take to open.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.connectTimeout = d
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
