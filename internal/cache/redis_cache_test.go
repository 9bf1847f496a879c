package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestCodeKey(t *testing.T) {
	assert.Equal(t, "code:Lc4KTFBE", CodeKey("Lc4KTFBE"))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	c, err := NewRedisCache("127.0.0.1:1", "", 0)

	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := NewRedisCache(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	key := CodeKey("Lc4KTFBE")

	miss, err := c.Get(ctx, key)
	require.NoError(t, err, "a miss is not an error")
	assert.Empty(t, miss)

	require.NoError(t, c.Set(ctx, key, "https://example.com/a", time.Minute))
	hit, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", hit)

	require.NoError(t, c.Delete(ctx, key))
	gone, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, gone)

	require.NoError(t, c.Set(ctx, key, "https://example.com/a", time.Second))
	assert.Eventually(t, func() bool {
		v, err := c.Get(ctx, key)
		return err == nil && v == ""
	}, 5*time.Second, 100*time.Millisecond)
}
