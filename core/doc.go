// Package core holds the HTTP response types shared by every service:
// typed handlers, JSON responses and errors with stable machine codes.
//
// Error bodies always have the shape
//
//	{"error":{"code":"TENANT_NOT_FOUND","message":"Tenant not found"}}
//
// and never carry the text of an underlying infrastructure error.
package core
