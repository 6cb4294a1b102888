package binder

import (
	"net/http"
	"reflect"
)

// Path creates a path parameter binder using extractor to read each
// parameter, typically chi.URLParam.
//
//	type tenantPath struct {
//		Subdomain string `path:"subdomain"`
//	}
//
//	r.Get("/tenants/{subdomain}", core.Wrap(h.getTenant,
//		core.WithBinders[tenantPath](binder.Path(chi.URLParam)),
//	))
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return badRequest(ErrFailedToParsePath, "extractor function is nil")
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return badRequest(ErrFailedToParsePath, "target must be a non-nil pointer")
		}
		rv = rv.Elem()
		if rv.Kind() != reflect.Struct {
			return badRequest(ErrFailedToParsePath, "target must be a pointer to struct")
		}

		rt := rv.Type()
		for i := range rv.NumField() {
			field := rv.Field(i)
			fieldType := rt.Field(i)
			if !field.CanSet() {
				continue
			}

			tag := fieldType.Tag.Get("path")
			if tag == "" || tag == "-" {
				continue
			}

			value := extractor(r, tag)
			if value == "" {
				continue
			}
			if err := setFieldValue(field, fieldType.Type, []string{value}); err != nil {
				return badRequest(ErrFailedToParsePath, "field %s: %v", fieldType.Name, err)
			}
		}
		return nil
	}
}
