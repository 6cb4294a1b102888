package requestid_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentdesk/ats/pkg/logger"
	"github.com/talentdesk/ats/pkg/requestid"
)

func serve(t *testing.T, mw func(http.Handler) http.Handler, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates uuid v7", func(t *testing.T) {
		t.Parallel()
		id, rec := serve(t, requestid.Middleware(), "")
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
		assert.Equal(t, id, rec.Header().Get(requestid.Header))
	})

	t.Run("reuses valid incoming id", func(t *testing.T) {
		t.Parallel()
		id, rec := serve(t, requestid.Middleware(), "lb-1234.abcd")
		assert.Equal(t, "lb-1234.abcd", id)
		assert.Equal(t, id, rec.Header().Get(requestid.Header))
	})

	t.Run("replaces malformed incoming id", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"has space", "a/b", "<script>", strings.Repeat("x", 129)} {
			id, _ := serve(t, requestid.Middleware(), bad)
			assert.NotEqual(t, bad, id)
			assert.NotEmpty(t, id)
		}
	})

	t.Run("ignores incoming id when configured", func(t *testing.T) {
		t.Parallel()
		mw := requestid.Middleware(requestid.WithoutIncoming(), requestid.WithGenerator(func() string { return "fixed" }))
		id, _ := serve(t, mw, "client-chosen")
		assert.Equal(t, "fixed", id)
	})

	t.Run("custom header", func(t *testing.T) {
		t.Parallel()
		h := requestid.Middleware(requestid.WithHeader("X-Trace-ID"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Trace-ID", "trace-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "trace-1", rec.Header().Get("X-Trace-ID"))
		assert.Empty(t, rec.Header().Get(requestid.Header))
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)

	log.InfoContext(requestid.WithContext(context.Background(), "req-42"), "hello")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-42", rec["request_id"])

	buf.Reset()
	log.InfoContext(context.Background(), "no id")
	rec = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "request_id")
}
