// Package tenant maps incoming requests to tenants and their databases.
//
// A request's Host header is resolved to a subdomain identifier
// (acme.example.com, acme.localhost and acme.lvh.me all resolve to "acme").
// Middleware looks the identifier up in the master database, fetches the
// tenant's database handle from a Connector and stores both in the request
// context:
//
//	resolver := tenant.NewHostResolver("example.com")
//	provider := tenant.NewMongoProvider(registry)
//	r.Use(tenant.Middleware(resolver.Resolve, provider, registry))
//
// Handlers read the binding back with FromContext and DatabaseFromContext.
// Requests without a subdomain and requests under /api/super-admin are bound
// to the master database instead.
package tenant
