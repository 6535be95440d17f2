package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
)

// These tests need a live server: PAYGATE_TEST_REDIS_ADDR=localhost:6379.
func testClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("PAYGATE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PAYGATE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLocker_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	locker := NewLocker(testClient(t), 5*time.Second)
	key := "order-" + uuid.NewString()

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, key)
	assert.ErrorIs(t, err, domainErrors.ErrDuplicateRequest)

	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, unlock(ctx), domainErrors.ErrLockNotHeld)

	unlock, err = locker.Lock(ctx, key)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_ExpiredLockIsNotReleasedByOldOwner(t *testing.T) {
	ctx := context.Background()
	locker := NewLocker(testClient(t), 100*time.Millisecond)
	key := "order-" + uuid.NewString()

	stale, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	fresh, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	assert.ErrorIs(t, stale(ctx), domainErrors.ErrLockNotHeld)
	require.NoError(t, fresh(ctx))
}

func TestWebhookDeduplicator(t *testing.T) {
	ctx := context.Background()
	dedup := NewWebhookDeduplicator(testClient(t), time.Minute)
	key := "garex:" + uuid.NewString() + ":paid"

	first, err := dedup.FirstSeen(ctx, key)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := dedup.FirstSeen(ctx, key)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestNewClient_GivesUpAfterRetries(t *testing.T) {
	cfg := &config.RedisConfig{Host: "127.0.0.1", Port: 1, ConnectRetries: 2, ConnectRetryDelay: time.Millisecond}

	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	assert.Nil(t, client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}
