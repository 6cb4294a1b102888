// Package binder decodes HTTP requests into typed structs for core.Wrap.
//
// JSON reads a strict application/json body, Query reads `query` tagged
// fields from the URL and Path reads `path` tagged fields through a router
// specific extractor such as chi.URLParam. Binders can be combined on one
// struct; fields filled from the path should carry `json:"-"`.
//
// Every error wraps one of the package sentinels and a core.HTTPError, so the
// default error handler answers with 400 or 415 instead of 500.
package binder
