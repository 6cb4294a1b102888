package mongo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	driver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/talentdesk/ats/pkg/mongo"
)

func TestClientOptions(t *testing.T) {
	t.Parallel()

	cfg := mongo.Config{
		ConnectionURL:   "mongodb://db.internal:27017",
		ConnectTimeout:  3 * time.Second,
		MaxPoolSize:     7,
		MinPoolSize:     1,
		MaxConnIdleTime: time.Minute,
		RetryWrites:     true,
	}

	opts := mongo.ClientOptions(cfg)
	require.NotNil(t, opts)
	require.NotNil(t, opts.ConnectTimeout)
	assert.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(7), *opts.MaxPoolSize)
	require.NotNil(t, opts.RetryWrites)
	assert.True(t, *opts.RetryWrites)
}

func TestNew_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client, err := mongo.New(ctx, mongo.Config{
		ConnectionURL:  "mongodb://127.0.0.1:1",
		ConnectTimeout: 50 * time.Millisecond,
		RetryAttempts:  3,
		RetryInterval:  time.Hour,
	})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, mongo.ErrFailedToConnectToMongo)
}

func TestIsNamespaceExists(t *testing.T) {
	t.Parallel()

	assert.True(t, mongo.IsNamespaceExists(driver.CommandError{Code: 48, Name: "NamespaceExists"}))
	assert.True(t, mongo.IsNamespaceExists(fmt.Errorf("create: %w", driver.CommandError{Code: 48})))
	assert.False(t, mongo.IsNamespaceExists(driver.CommandError{Code: 11000}))
	assert.False(t, mongo.IsNamespaceExists(errors.New("boom")))
	assert.False(t, mongo.IsNamespaceExists(nil))
}

func TestHealthcheck_NilDatabase(t *testing.T) {
	t.Parallel()

	err := mongo.Healthcheck(nil)(context.Background())
	assert.ErrorIs(t, err, mongo.ErrHealthcheckFailed)
}
