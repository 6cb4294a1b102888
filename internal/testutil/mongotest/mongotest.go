// Package mongotest provides a MongoDB server for integration tests.
package mongotest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/talentdesk/ats/pkg/mongo"
)

// EnvURI points tests at an existing server instead of a container.
const EnvURI = "ATS_TEST_MONGO_URI"

// URI returns EnvURI or starts a throwaway mongo:7.0 container for the test.
// The test is skipped when neither is available.
func URI(t *testing.T) string {
	t.Helper()

	if uri := os.Getenv(EnvURI); uri != "" {
		return uri
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not found in PATH, skipping integration test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("mongo container not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

// Config returns a client config for uri tuned for tests.
func Config(uri string) mongo.Config {
	return mongo.Config{
		ConnectionURL:   uri,
		ConnectTimeout:  10 * time.Second,
		MaxPoolSize:     5,
		MaxConnIdleTime: time.Minute,
		RetryWrites:     true,
		RetryReads:      true,
		RetryAttempts:   3,
		RetryInterval:   time.Second,
	}
}

var seq struct {
	sync.Mutex
	n int
}

// Prefix returns a database prefix unique within the test binary, so
// parallel tests sharing a server never collide.
func Prefix(t *testing.T) string {
	t.Helper()
	seq.Lock()
	defer seq.Unlock()
	seq.n++
	return fmt.Sprintf("it%d_%d_", os.Getpid(), seq.n)
}
