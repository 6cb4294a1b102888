package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Server. Empty or non-positive values are ignored and
// the default stays in place.
type Option func(*config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *config) {
		if addr != "" {
			c.addr = addr
		}
	}
}

func positive(d time.Duration, dst *time.Duration) {
	if d > 0 {
		*dst = d
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { positive(d, &c.readTimeout) }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { positive(d, &c.writeTimeout) }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { positive(d, &c.idleTimeout) }
}

// WithShutdownTimeout bounds Shutdown, stop hooks included.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { positive(d, &c.shutdownTimeout) }
}

// WithServer runs on srv instead of a fresh http.Server. Its Handler is
// replaced by Run; timeouts it already sets win over the configured ones.
func WithServer(srv *http.Server) Option {
	return func(c *config) {
		if srv != nil {
			c.server = srv
		}
	}
}

// WithLogger sets the server logger. Without one, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStartHook appends a hook run after the listener is bound.
func WithStartHook(h Hook) Option {
	return func(c *config) {
		if h != nil {
			c.startHooks = append(c.startHooks, h)
		}
	}
}

// WithStopHook appends a hook run after shutdown, e.g. closing the
// tenant connection registry.
func WithStopHook(h Hook) Option {
	return func(c *config) {
		if h != nil {
			c.stopHooks = append(c.stopHooks, h)
		}
	}
}
