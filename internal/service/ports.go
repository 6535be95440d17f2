package service

import (
	"context"

	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
)

// Locker serializes work on a key across gateway instances.
type Locker interface {
	// Lock returns domainErrors.ErrDuplicateRequest when key is already held.
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

// Deduplicator remembers webhook deliveries for a bounded time.
type Deduplicator interface {
	// FirstSeen records key and reports whether it had not been seen before.
	FirstSeen(ctx context.Context, key string) (bool, error)
}

// Dispatcher forwards reconciled events to the merchant without blocking.
type Dispatcher interface {
	Dispatch(ctx context.Context, provider string, ev *transaction.ReconciledEvent)
}

// NopLocker never contends. Used when redis is disabled.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

// NopDeduplicator treats every delivery as new.
type NopDeduplicator struct{}

func (NopDeduplicator) FirstSeen(context.Context, string) (bool, error) { return true, nil }
