package workspace_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/talentdesk/ats/pkg/tenant"
	"github.com/talentdesk/ats/pkg/tenantdb"
	"github.com/talentdesk/ats/svc/workspace"
)

func boundRequest(path string, b tenant.Binding) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return req.WithContext(tenant.WithBinding(req.Context(), b))
}

func acmeBinding() tenant.Binding {
	return tenant.Binding{
		Tenant: &tenant.Tenant{
			ID:           "t-acme",
			Subdomain:    "acme",
			CompanyName:  "Acme",
			PrimaryColor: "#ff0000",
			PlanID:       "pro",
			Active:       true,
		},
		Database:  new(mongo.Database),
		Subdomain: "acme",
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()
	h := workspace.NewHandler().Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, boundRequest("/", acmeBinding()))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "acme", body.Data["subdomain"])
	assert.Equal(t, "Acme", body.Data["company_name"])
	assert.Equal(t, "#ff0000", body.Data["primary_color"])
	assert.NotContains(t, body.Data, "plan_id")
	assert.NotContains(t, body.Data, "id")
}

func TestMasterBoundRejected(t *testing.T) {
	t.Parallel()
	h := workspace.NewHandler().Routes()

	for _, path := range []string{"/", "/stats"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, boundRequest(path, tenant.Binding{Database: new(mongo.Database)}))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "TENANT_REQUIRED")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	t.Run("counts bound database", func(t *testing.T) {
		t.Parallel()
		b := acmeBinding()
		var seen *mongo.Database
		h := workspace.NewHandler(workspace.WithCounter(func(_ context.Context, db *mongo.Database) (map[string]int64, error) {
			seen = db
			return map[string]int64{
				tenantdb.CollectionCandidates: 3,
				tenantdb.CollectionJobs:       2,
			}, nil
		})).Routes()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, boundRequest("/stats", b))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Same(t, b.Database, seen)

		var body struct {
			Data workspace.Stats `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.EqualValues(t, 5, body.Data.Total)
		assert.EqualValues(t, 3, body.Data.Collections[tenantdb.CollectionCandidates])
	})

	t.Run("counter failure hides cause", func(t *testing.T) {
		t.Parallel()
		h := workspace.NewHandler(workspace.WithCounter(func(context.Context, *mongo.Database) (map[string]int64, error) {
			return nil, errors.New("connection reset by peer")
		})).Routes()

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, boundRequest("/stats", acmeBinding()))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}
