// Package workspace serves tenant-bound endpoints under /api/tenant.
// Requests must come through a tenant subdomain; the database handle is
// taken from the request context, never from the request itself.
package workspace
