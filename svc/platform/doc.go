// Package platform implements platform administration: the tenant
// directory kept in the master database and the super-admin accounts
// that manage it.
//
// Provisioning registers the tenant record inactive, creates and indexes
// the tenant database, then activates the record. A subdomain therefore
// never resolves before its database exists. Deactivating a tenant
// closes its cached connection.
//
// Handler mounts the operations under the admin prefix, which the tenant
// binder always binds to the master database:
//
//	admin := platform.NewHandler(svc, tokens)
//	r.Mount("/api/super-admin", admin.Routes())
package platform
