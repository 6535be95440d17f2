package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// WebhookDeduplicator remembers delivery keys for ttl.
type WebhookDeduplicator struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewWebhookDeduplicator(client redis.Cmdable, ttl time.Duration) *WebhookDeduplicator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &WebhookDeduplicator{client: client, ttl: ttl, prefix: "paygate:dedup:"}
}

func (d *WebhookDeduplicator) FirstSeen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+key, time.Now().Unix(), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record webhook %s: %w", key, err)
	}
	return ok, nil
}
