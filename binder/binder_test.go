package binder_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentdesk/ats/binder"
	"github.com/talentdesk/ats/core"
)

type createTenantRequest struct {
	CompanyName string `json:"company_name"`
	Subdomain   string `json:"subdomain"`
}

func jsonRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		var req createTenantRequest
		err := binder.JSON()(jsonRequest(`{"company_name":"Acme","subdomain":"acme"}`, "application/json; charset=utf-8"), &req)
		require.NoError(t, err)
		assert.Equal(t, createTenantRequest{CompanyName: "Acme", Subdomain: "acme"}, req)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		sentinel    error
		httpErr     core.HTTPError
	}{
		{name: "missing content type", body: `{}`, sentinel: binder.ErrMissingContentType, httpErr: core.ErrUnsupportedMediaType},
		{name: "wrong content type", body: `{}`, contentType: "text/plain", sentinel: binder.ErrUnsupportedMediaType, httpErr: core.ErrUnsupportedMediaType},
		{name: "empty body", contentType: "application/json", sentinel: binder.ErrFailedToParseJSON, httpErr: core.ErrBadRequest},
		{name: "malformed", body: `{"company_name":`, contentType: "application/json", sentinel: binder.ErrFailedToParseJSON, httpErr: core.ErrBadRequest},
		{name: "unknown field", body: `{"plan":"pro"}`, contentType: "application/json", sentinel: binder.ErrFailedToParseJSON, httpErr: core.ErrBadRequest},
		{name: "wrong type", body: `{"subdomain":42}`, contentType: "application/json", sentinel: binder.ErrFailedToParseJSON, httpErr: core.ErrBadRequest},
		{name: "trailing data", body: `{"subdomain":"acme"}{}`, contentType: "application/json", sentinel: binder.ErrFailedToParseJSON, httpErr: core.ErrBadRequest},
		{name: "too large", body: `{"company_name":"` + strings.Repeat("a", binder.DefaultMaxJSONSize) + `"}`, contentType: "application/json", sentinel: binder.ErrFailedToParseJSON, httpErr: core.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var req createTenantRequest
			err := binder.JSON()(jsonRequest(tt.body, tt.contentType), &req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var httpErr core.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.httpErr.Code, httpErr.Code)
		})
	}
}

type listTenantsQuery struct {
	Active *bool    `query:"active"`
	Plans  []string `query:"plan"`
	Limit  int      `query:"limit"`
	Skip   string   `query:"-"`
}

func TestQuery(t *testing.T) {
	t.Parallel()

	t.Run("binds values", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/?active=false&plan=pro,trial&plan=enterprise&limit=20&skip=x", nil)
		var q listTenantsQuery
		require.NoError(t, binder.Query()(r, &q))

		require.NotNil(t, q.Active)
		assert.False(t, *q.Active)
		assert.Equal(t, []string{"pro", "trial", "enterprise"}, q.Plans)
		assert.Equal(t, 20, q.Limit)
		assert.Empty(t, q.Skip)
	})

	t.Run("absent values stay zero", func(t *testing.T) {
		t.Parallel()
		var q listTenantsQuery
		require.NoError(t, binder.Query()(httptest.NewRequest(http.MethodGet, "/", nil), &q))
		assert.Nil(t, q.Active)
		assert.Nil(t, q.Plans)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()
		var q listTenantsQuery
		err := binder.Query()(httptest.NewRequest(http.MethodGet, "/?limit=ten", nil), &q)
		assert.ErrorIs(t, err, binder.ErrFailedToParseQuery)
		assert.ErrorIs(t, err, core.ErrBadRequest)
	})

	t.Run("non struct target", func(t *testing.T) {
		t.Parallel()
		var s string
		err := binder.Query()(httptest.NewRequest(http.MethodGet, "/", nil), &s)
		assert.ErrorIs(t, err, binder.ErrFailedToParseQuery)
	})
}

type updateStatusRequest struct {
	Subdomain string `path:"subdomain" json:"-"`
	Active    bool   `json:"active"`
}

func TestPath(t *testing.T) {
	t.Parallel()

	params := map[string]string{"subdomain": "acme"}
	extract := func(_ *http.Request, name string) string { return params[name] }

	t.Run("combined with JSON", func(t *testing.T) {
		t.Parallel()
		r := jsonRequest(`{"active":true}`, "application/json")

		var req updateStatusRequest
		require.NoError(t, binder.JSON()(r, &req))
		require.NoError(t, binder.Path(extract)(r, &req))
		assert.Equal(t, updateStatusRequest{Subdomain: "acme", Active: true}, req)
	})

	t.Run("nil extractor", func(t *testing.T) {
		t.Parallel()
		var req updateStatusRequest
		err := binder.Path(nil)(httptest.NewRequest(http.MethodGet, "/", nil), &req)
		assert.ErrorIs(t, err, binder.ErrFailedToParsePath)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Parallel()
		var req struct {
			Page int `path:"page"`
		}
		extract := func(*http.Request, string) string { return "first" }
		err := binder.Path(extract)(httptest.NewRequest(http.MethodGet, "/", nil), &req)
		assert.ErrorIs(t, err, binder.ErrFailedToParsePath)
	})
}
