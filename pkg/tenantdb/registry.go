package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/singleflight"

	"github.com/talentdesk/ats/pkg/logger"
)

// Dialer opens a new client. Each cached database owns the client it was
// opened with, so closing one tenant never affects another.
type Dialer func(ctx context.Context) (*mongo.Client, error)

type conn struct {
	client *mongo.Client
	db     *mongo.Database
}

// Registry owns the master database handle and one handle per tenant.
// It is the only component that opens or closes clients; callers borrow the
// returned *mongo.Database and must not disconnect it.
//
// Tenant handles are cached for the lifetime of the registry; there is no
// idle eviction.
type Registry struct {
	dial Dialer
	cfg  config

	mu      sync.RWMutex
	master  *conn
	tenants map[string]*conn
	epochs  map[string]uint64 // bumped by CloseTenant; stale dials are discarded
	closed  bool

	masterMu sync.Mutex
	inflight singleflight.Group
}

// New creates an empty registry. No connection is opened until InitMaster
// or Tenant is called.
func New(dial Dialer, opts ...Option) *Registry {
	cfg := config{
		masterDatabase: DefaultMasterDatabase,
		databasePrefix: DefaultDatabasePrefix,
		connectTimeout: DefaultConnectTimeout,
		logger:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Registry{
		dial:    dial,
		cfg:     cfg,
		tenants: make(map[string]*conn),
		epochs:  make(map[string]uint64),
	}
}

// DatabaseName returns the database that backs the given tenant.
func (r *Registry) DatabaseName(id string) string {
	return r.cfg.databasePrefix + id
}

// MasterDatabaseName returns the name of the cross-tenant database.
func (r *Registry) MasterDatabaseName() string {
	return r.cfg.masterDatabase
}

// InitMaster opens the master handle. Calling it again after success is a
// no-op. A failed attempt is not remembered; the next call dials again.
func (r *Registry) InitMaster(ctx context.Context) error {
	r.masterMu.Lock()
	defer r.masterMu.Unlock()

	r.mu.RLock()
	closed, ready := r.closed, r.master != nil
	r.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if ready {
		return nil
	}

	c, err := r.open(ctx, r.cfg.masterDatabase)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.disconnect(ctx, c)
		return ErrClosed
	}
	r.master = c
	r.mu.Unlock()

	r.cfg.logger.InfoContext(ctx, "master database connected",
		logger.Component("tenantdb"),
		logger.Database(r.cfg.masterDatabase),
	)
	return nil
}

// Master returns the master handle or ErrNotInitialized.
func (r *Registry) Master() (*mongo.Database, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.master == nil {
		return nil, ErrNotInitialized
	}
	return r.master.db, nil
}

// EnsureMaster returns the master handle, initializing it first if needed.
func (r *Registry) EnsureMaster(ctx context.Context) (*mongo.Database, error) {
	if db, err := r.Master(); err == nil {
		return db, nil
	}
	if err := r.InitMaster(ctx); err != nil {
		return nil, err
	}
	return r.Master()
}

// Tenant returns the cached handle for id, opening it on first use.
// Concurrent first calls for the same id share a single dial. The dial runs
// with the registry's connect timeout and is not cancelled when ctx is, so
// an abandoned request still warms the cache.
func (r *Registry) Tenant(ctx context.Context, id string) (*mongo.Database, error) {
	if id == "" {
		return nil, ErrInvalidIdentifier
	}

	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil, ErrClosed
	}
	if c, ok := r.tenants[id]; ok {
		r.mu.RUnlock()
		return c.db, nil
	}
	r.mu.RUnlock()

	v, err, _ := r.inflight.Do(id, func() (any, error) {
		r.mu.RLock()
		c, ok := r.tenants[id]
		epoch := r.epochs[id]
		r.mu.RUnlock()
		if ok {
			return c, nil
		}

		start := time.Now()
		c, err := r.open(ctx, r.DatabaseName(id))
		if err != nil {
			r.cfg.logger.ErrorContext(ctx, "tenant database connection failed",
				logger.Component("tenantdb"),
				logger.Subdomain(id),
				logger.Error(err),
			)
			return nil, err
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			r.disconnect(ctx, c)
			return nil, ErrClosed
		}
		if r.epochs[id] != epoch {
			r.mu.Unlock()
			r.disconnect(ctx, c)
			return nil, fmt.Errorf("%w: %q", ErrTenantClosed, id)
		}
		r.tenants[id] = c
		r.mu.Unlock()

		r.cfg.logger.InfoContext(ctx, "tenant database connected",
			logger.Component("tenantdb"),
			logger.Subdomain(id),
			logger.Database(c.db.Name()),
			logger.Duration(time.Since(start)),
		)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*conn).db, nil
}

// Has reports whether a handle for id is cached.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tenants[id]
	return ok
}

// Len returns the number of cached tenant handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tenants)
}

// CloseTenant disconnects and evicts the handle for id. Unknown ids are
// ignored. A dial for id still in flight is discarded when it completes
// and its callers get ErrTenantClosed; later calls to Tenant dial afresh.
func (r *Registry) CloseTenant(ctx context.Context, id string) error {
	r.mu.Lock()
	c, ok := r.tenants[id]
	delete(r.tenants, id)
	r.epochs[id]++
	r.mu.Unlock()
	r.inflight.Forget(id)

	if !ok {
		return nil
	}

	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("close tenant %q: %w", id, err)
	}

	r.cfg.logger.InfoContext(ctx, "tenant database closed",
		logger.Component("tenantdb"),
		logger.Subdomain(id),
	)
	return nil
}

// Close disconnects every tenant handle and then the master handle.
// A failure on one handle does not stop the others; all failures are
// returned joined. Subsequent calls return nil.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	tenants := r.tenants
	r.tenants = make(map[string]*conn)
	master := r.master
	r.master = nil
	r.mu.Unlock()

	var errs []error
	for id, c := range tenants {
		if err := c.client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close tenant %q: %w", id, err))
		}
	}
	if master != nil {
		if err := master.client.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close master: %w", err))
		}
	}

	if len(errs) > 0 {
		r.cfg.logger.ErrorContext(ctx, "registry closed with errors",
			logger.Component("tenantdb"),
			logger.Errors(errs...),
		)
		return errors.Join(errs...)
	}

	r.cfg.logger.InfoContext(ctx, "registry closed",
		logger.Component("tenantdb"),
		slog.Int("tenants", len(tenants)),
	)
	return nil
}

// Healthcheck pings the master database.
func (r *Registry) Healthcheck(ctx context.Context) error {
	db, err := r.Master()
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

func (r *Registry) open(ctx context.Context, name string) (*conn, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.connectTimeout)
	defer cancel()

	client, err := r.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: database %q: %w", ErrConnection, name, err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: database %q: dialer returned nil client", ErrConnection, name)
	}
	return &conn{client: client, db: client.Database(name)}, nil
}

func (r *Registry) disconnect(ctx context.Context, c *conn) {
	if err := c.client.Disconnect(context.WithoutCancel(ctx)); err != nil {
		r.cfg.logger.WarnContext(ctx, "failed to release connection",
			logger.Component("tenantdb"),
			logger.Database(c.db.Name()),
			logger.Error(err),
		)
	}
}
