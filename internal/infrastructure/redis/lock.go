package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
)

// Only the owner token may delete the key.
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker hands out short-lived exclusive locks keyed by name. The TTL bounds
// how long a crashed holder can block others.
type Locker struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewLocker(client redis.Cmdable, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl, prefix: "paygate:lock:"}
}

// Lock takes key with SET NX. It returns ErrDuplicateRequest when another
// holder has it; the returned func releases the lock if still owned.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	redisKey := l.prefix + key
	owner := uuid.New().String()

	ok, err := l.client.SetNX(ctx, redisKey, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domainErrors.ErrDuplicateRequest
	}

	return func(ctx context.Context) error {
		return l.release(ctx, redisKey, owner)
	}, nil
}

func (l *Locker) release(ctx context.Context, redisKey, owner string) error {
	result, err := releaseLockScript.Run(ctx, l.client, []string{redisKey}, owner).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if n, ok := result.(int64); !ok || n == 0 {
		return domainErrors.ErrLockNotHeld
	}
	return nil
}
