package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

// DefaultMaxJSONSize is the maximum size of a JSON request body (1MB).
const DefaultMaxJSONSize = 1 << 20

// JSON creates a strict JSON body binder: the content type must be
// application/json, unknown fields are rejected and the body must hold
// exactly one value.
//
//	r.Post("/tenants", core.Wrap(h.createTenant,
//		core.WithBinders[createTenantRequest](binder.JSON()),
//	))
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			return unsupported(ErrMissingContentType, "expected application/json")
		}
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			return unsupported(ErrUnsupportedMediaType, "got %s, expected application/json", contentType)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
		if err != nil {
			return badRequest(ErrFailedToParseJSON, "read body: %v", err)
		}
		if len(body) > DefaultMaxJSONSize {
			return badRequest(ErrFailedToParseJSON, "request body too large (max %d bytes)", DefaultMaxJSONSize)
		}

		decoder := json.NewDecoder(bytes.NewReader(body))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return badRequest(ErrFailedToParseJSON, "empty body")
			}
			return badRequest(ErrFailedToParseJSON, "%v", err)
		}

		var extra json.RawMessage
		if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
			return badRequest(ErrFailedToParseJSON, "unexpected data after JSON object")
		}
		return nil
	}
}
