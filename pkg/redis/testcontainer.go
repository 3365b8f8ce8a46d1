package redis

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/muhammadchandra19/economy/pkg/logger"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainer is a throwaway redis server for integration tests.
type TestContainer struct {
	Container testcontainers.Container
	Client    Client
	Addr      string
}

// NewTestContainer starts a redis container from image and connects a Client to it.
func NewTestContainer(ctx context.Context, image string) (*TestContainer, error) {
	if image == "" {
		image = "redis:7-alpine"
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	config := DefaultConfig()
	addr := net.JoinHostPort(host, port.Port())
	config.Addrs = []string{addr}

	client := NewClient(logger.NewNopLogger(), config)
	if err := client.Connect(ctx); err != nil {
		container.Terminate(ctx)
		return nil, err
	}

	return &TestContainer{Container: container, Client: client, Addr: addr}, nil
}

// Close disconnects the client and terminates the container.
func (tc *TestContainer) Close(ctx context.Context) error {
	if tc.Client != nil {
		tc.Client.Disconnect(ctx)
	}
	if err := tc.Container.Terminate(ctx); err != nil {
		return fmt.Errorf("failed to terminate container: %w", err)
	}
	return nil
}

// NewTestHelper starts a container for t and terminates it when t finishes.
// It skips t in short mode.
func NewTestHelper(t *testing.T) *TestContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := NewTestContainer(ctx, "")
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Close(ctx); err != nil {
			t.Logf("Failed to close test container: %v", err)
		}
	})
	return container
}
