package bootstrap

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephir/path-explorer/config"
	"github.com/zephir/path-explorer/internal/testutil"
)

func TestNewDirectClient(t *testing.T) {
	client, desc, err := newDirectClient(config.RedisConfig{URI: "redis://:secret@cache.internal:6380/2"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.(*redis.Client).Options()
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "secret", opts.Password)
	assert.NotContains(t, redactAddr(desc), "secret")

	client2, desc, err := newDirectClient(config.RedisConfig{URI: "localhost:6379", DB: 3})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client2.Close() })
	assert.Equal(t, "localhost:6379", desc)
	assert.Equal(t, 3, client2.(*redis.Client).Options().DB)

	_, _, err = newDirectClient(config.RedisConfig{URI: "  "})
	require.Error(t, err)
}

func TestNewSentinelClientRequiresNodes(t *testing.T) {
	_, _, err := newSentinelClient(config.RedisConfig{UseSentinel: true, SentinelMasterName: "mymaster"})
	require.Error(t, err)
}

func TestRedactAddr(t *testing.T) {
	redacted := redactAddr("redis://user:pw@cache:6379")
	assert.NotContains(t, redacted, "pw")
	assert.NotContains(t, redacted, "user")
	assert.Contains(t, redacted, "cache:6379")
	assert.Equal(t, "cache:6379", redactAddr("pw@cache:6379"))
	assert.Equal(t, "sentinel:mymaster", redactAddr("sentinel:mymaster"))
}

func TestConnectRedis(t *testing.T) {
	addr, ok := testutil.GetTestRedisAddr(t)
	if !ok {
		t.Skip("Redis not available for testing")
	}

	client, err := ConnectRedis(context.Background(), config.RedisConfig{URI: addr}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
}
