// Package tenantdb owns every MongoDB connection used by the platform.
//
// A Registry holds one master handle, for cross-tenant records such as the
// tenant directory and platform administrators, plus one handle per tenant.
// Each tenant lives in its own database named DatabasePrefix + subdomain and
// is served by its own client, so a tenant can be disconnected without
// disturbing the others.
//
// # Lifecycle
//
//	registry := tenantdb.New(mongo.Dialer(cfg.Mongo),
//		tenantdb.WithMasterDatabase("ats_master"),
//		tenantdb.WithConnectTimeout(5*time.Second),
//	)
//	if err := registry.InitMaster(ctx); err != nil {
//		return err
//	}
//	defer registry.Close(context.Background())
//
//	db, err := registry.Tenant(ctx, "acme") // opened once, then cached
//
// Tenant handles are created lazily and kept until Close or CloseTenant.
// Concurrent first requests for the same tenant share one dial through
// golang.org/x/sync/singleflight.
//
// # Schema
//
// CreateTenantDatabase provisions the fixed collection set from Schema with
// named indexes. Bind returns typed accessors for those collections on any
// tenant handle.
//
// # Errors
//
// ErrConnection wraps dial failures and timeouts, ErrNotInitialized guards
// Master, ErrClosed is returned after Close and ErrProvision wraps schema
// failures. The registry never swallows errors; translating them into HTTP
// responses is the caller's job.
package tenantdb
