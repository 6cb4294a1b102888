package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentdesk/ats/pkg/jwt"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newService(t *testing.T, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	s, err := jwt.New(testKey, opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New([]byte("short"))
	assert.ErrorIs(t, err, jwt.ErrInvalidSigningKey)

	s := newService(t, jwt.WithTTL(time.Hour))
	assert.Equal(t, time.Hour, s.TTL())
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	s := newService(t)
	token, expires, err := s.Issue("admin-1", "root@talentdesk.io", "super_admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(jwt.DefaultTTL), expires, 5*time.Second)

	claims, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "root@talentdesk.io", claims.Email)
	assert.Equal(t, "super_admin", claims.Role)
	assert.Equal(t, jwt.DefaultIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssue_RequiresSubjectAndRole(t *testing.T) {
	t.Parallel()

	s := newService(t)
	_, _, err := s.Issue("", "a@b.c", "super_admin")
	assert.ErrorIs(t, err, jwt.ErrInvalidClaims)
	_, _, err = s.Issue("admin-1", "a@b.c", "")
	assert.ErrorIs(t, err, jwt.ErrInvalidClaims)
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	past := newService(t, jwt.WithTTL(time.Minute), jwt.WithClock(func() time.Time { return issuedAt }))
	expired, _, err := past.Issue("admin-1", "", "super_admin")
	require.NoError(t, err)

	valid, _, err := newService(t).Issue("admin-1", "", "super_admin")
	require.NoError(t, err)

	otherKey, err := jwt.New([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)
	foreign, _, err := otherKey.Issue("admin-1", "", "super_admin")
	require.NoError(t, err)

	otherIssuer := newService(t, jwt.WithIssuer("someone-else"))
	wrongIssuer, _, err := otherIssuer.Issue("admin-1", "", "super_admin")
	require.NoError(t, err)

	s := newService(t)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "", want: jwt.ErrMissingToken},
		{name: "garbage", token: "not.a.token", want: jwt.ErrInvalidToken},
		{name: "expired", token: expired, want: jwt.ErrExpiredToken},
		{name: "wrong key", token: foreign, want: jwt.ErrInvalidToken},
		{name: "wrong issuer", token: wrongIssuer, want: jwt.ErrInvalidToken},
		{name: "tampered", token: valid[:len(valid)-2] + "xx", want: jwt.ErrInvalidToken},
		{name: "alg none", token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJhZG1pbi0xIiwicm9sZSI6InN1cGVyX2FkbWluIn0.", want: jwt.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := s.Parse(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	s := newService(t)
	admin, _, err := s.Issue("admin-1", "root@talentdesk.io", "super_admin")
	require.NoError(t, err)
	viewer, _, err := s.Issue("user-1", "viewer@talentdesk.io", "viewer")
	require.NoError(t, err)

	var gotSubject string
	handler := jwt.Middleware(s, jwt.WithRoles("super_admin"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := jwt.ClaimsFromContext(r.Context())
		require.True(t, ok)
		gotSubject = claims.Subject
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "valid", header: "Bearer " + admin, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + admin, status: http.StatusOK},
		{name: "missing header", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "invalid token", header: "Bearer nope", status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "wrong role", header: "Bearer " + viewer, status: http.StatusForbidden, code: "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/super-admin/tenants", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.True(t, strings.Contains(w.Body.String(), tt.code), w.Body.String())
			}
		})
	}
	assert.Equal(t, "admin-1", gotSubject)
}

func TestClaimsFromContext_Empty(t *testing.T) {
	t.Parallel()

	_, ok := jwt.ClaimsFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
