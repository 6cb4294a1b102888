//go:build integration

package platform_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentdesk/ats/internal/testutil/mongotest"
	"github.com/talentdesk/ats/pkg/jwt"
	"github.com/talentdesk/ats/pkg/mongo"
	"github.com/talentdesk/ats/pkg/tenant"
	"github.com/talentdesk/ats/pkg/tenantdb"
	"github.com/talentdesk/ats/svc/platform"
)

func TestIntegration_MongoStore(t *testing.T) {
	prefix := mongotest.Prefix(t)
	reg := tenantdb.New(
		mongo.Dialer(mongotest.Config(mongotest.URI(t))),
		tenantdb.WithMasterDatabase(prefix+"master"),
		tenantdb.WithDatabasePrefix(prefix),
	)
	t.Cleanup(func() { _ = reg.Close(context.Background()) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	require.NoError(t, reg.InitMaster(ctx))
	master, err := reg.Master()
	require.NoError(t, err)
	t.Cleanup(func() { _ = master.Drop(context.Background()) })

	store := platform.NewMongoStore(reg)
	require.NoError(t, store.EnsureIndexes(ctx))
	require.NoError(t, store.EnsureIndexes(ctx))

	tokens, err := jwt.New(testKey)
	require.NoError(t, err)
	svc, err := platform.NewService(store, reg, tokens,
		platform.WithBcryptCost(bcrypt.MinCost),
		platform.WithLoginLockout(2, time.Minute),
	)
	require.NoError(t, err)

	t.Run("tenant lifecycle", func(t *testing.T) {
		created, err := svc.ProvisionTenant(ctx, platform.ProvisionInput{CompanyName: "Acme", Subdomain: "acme"})
		require.NoError(t, err)
		assert.True(t, created.Active)
		t.Cleanup(func() {
			db, err := reg.Tenant(context.Background(), "acme")
			if err == nil {
				_ = db.Drop(context.Background())
			}
		})

		db, err := reg.Tenant(ctx, "acme")
		require.NoError(t, err)
		names, err := db.ListCollectionNames(ctx, bson.D{})
		require.NoError(t, err)
		assert.Contains(t, names, tenantdb.CollectionCandidates)

		_, err = svc.ProvisionTenant(ctx, platform.ProvisionInput{CompanyName: "Acme 2", Subdomain: "acme"})
		require.ErrorIs(t, err, platform.ErrSubdomainTaken)

		provider := tenant.NewMongoProvider(reg)
		_, err = provider.GetByIdentifier(ctx, "acme")
		require.NoError(t, err)

		_, err = svc.SetTenantActive(ctx, "acme", false)
		require.NoError(t, err)
		assert.False(t, reg.Has("acme"))
		_, err = provider.GetByIdentifier(ctx, "acme")
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)

		color := "#abcdef"
		updated, err := svc.UpdateBranding(ctx, "acme", platform.Branding{PrimaryColor: &color})
		require.NoError(t, err)
		assert.Equal(t, color, updated.PrimaryColor)
		assert.Equal(t, "Acme", updated.CompanyName)

		inactive := false
		list, err := svc.ListTenants(ctx, platform.TenantFilter{Active: &inactive})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)

		_, err = svc.GetTenant(ctx, "missing")
		require.ErrorIs(t, err, platform.ErrTenantNotFound)
	})

	t.Run("super admin login", func(t *testing.T) {
		_, err := svc.EnsureSuperAdmin(ctx, "ops@example.com", "correct horse battery")
		require.NoError(t, err)
		_, err = svc.EnsureSuperAdmin(ctx, "ops@example.com", "correct horse battery")
		require.NoError(t, err)

		_, err = svc.Login(ctx, "ops@example.com", "wrong")
		require.ErrorIs(t, err, platform.ErrInvalidCredentials)
		_, err = svc.Login(ctx, "ops@example.com", "wrong")
		require.ErrorIs(t, err, platform.ErrAccountLocked)

		admin, err := store.GetAdminByEmail(ctx, "ops@example.com")
		require.NoError(t, err)
		require.NotNil(t, admin.LockedUntil)

		require.NoError(t, store.RecordSuccessfulLogin(ctx, admin.ID, time.Now().UTC()))
		res, err := svc.Login(ctx, "ops@example.com", "correct horse battery")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)

		admin, err = store.GetAdminByEmail(ctx, "ops@example.com")
		require.NoError(t, err)
		assert.Nil(t, admin.LockedUntil)
		assert.Zero(t, admin.FailedAttempts)
	})
}
