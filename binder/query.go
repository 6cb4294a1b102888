package binder

import "net/http"

// Query creates a query string binder.
//
// Struct tags:
//   - `query:"name"` binds to parameter "name"
//   - `query:"-"` skips the field
//
// Slices accept repeated (?tag=a&tag=b) and comma-separated (?tag=a,b) values.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
