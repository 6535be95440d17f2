package testutil

import (
	"context"
	"errors"
	"sync"

	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
)

// ErrScriptExhausted is returned once a ScriptedTransport has no replies left.
var ErrScriptExhausted = errors.New("scripted transport: no replies left")

// --- Scripted Transport ---

type step struct {
	reply *providers.Reply
	err   error
}

// ScriptedTransport is a providers.Transport that answers calls from a
// fixed script, in order, and records every call it sees.
type ScriptedTransport struct {
	mu    sync.Mutex
	steps []step
	calls []*providers.Call

	SendFunc func(ctx context.Context, call *providers.Call) (*providers.Reply, error)
}

// ScriptOption appends one answer to a ScriptedTransport.
type ScriptOption func(*ScriptedTransport)

// WithReply answers the next call with a 2xx body.
func WithReply(status int, body string) ScriptOption {
	return func(t *ScriptedTransport) {
		t.steps = append(t.steps, step{reply: &providers.Reply{StatusCode: status, Body: []byte(body)}})
	}
}

// WithStatusError answers the next call with a non-2xx response.
func WithStatusError(status int, body string) ScriptOption {
	return func(t *ScriptedTransport) {
		t.steps = append(t.steps, step{err: &providers.HTTPStatusError{StatusCode: status, Body: []byte(body)}})
	}
}

// WithError answers the next call with a transport failure.
func WithError(err error) ScriptOption {
	return func(t *ScriptedTransport) {
		t.steps = append(t.steps, step{err: err})
	}
}

func NewScriptedTransport(opts ...ScriptOption) *ScriptedTransport {
	t := &ScriptedTransport{}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *ScriptedTransport) Send(ctx context.Context, call *providers.Call) (*providers.Reply, error) {
	t.mu.Lock()
	t.calls = append(t.calls, call)
	if t.SendFunc != nil {
		t.mu.Unlock()
		return t.SendFunc(ctx, call)
	}
	defer t.mu.Unlock()

	if len(t.steps) == 0 {
		return nil, ErrScriptExhausted
	}
	next := t.steps[0]
	t.steps = t.steps[1:]
	return next.reply, next.err
}

// Calls returns the calls sent so far.
func (t *ScriptedTransport) Calls() []*providers.Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*providers.Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// --- Recording Dispatcher ---

type DispatchedEvent struct {
	Provider string
	Event    *transaction.ReconciledEvent
}

// RecordingDispatcher captures events synchronously instead of sending them.
type RecordingDispatcher struct {
	mu     sync.Mutex
	events []DispatchedEvent
}

func (d *RecordingDispatcher) Dispatch(_ context.Context, provider string, ev *transaction.ReconciledEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, DispatchedEvent{Provider: provider, Event: ev})
}

func (d *RecordingDispatcher) Events() []DispatchedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DispatchedEvent, len(d.events))
	copy(out, d.events)
	return out
}

// --- Locker Mock ---

// MockLocker is an in-memory service.Locker.
type MockLocker struct {
	mu   sync.Mutex
	held map[string]bool

	LockFunc func(ctx context.Context, key string) (func(context.Context) error, error)
}

func NewMockLocker() *MockLocker {
	return &MockLocker{held: make(map[string]bool)}
}

func (l *MockLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	if l.LockFunc != nil {
		return l.LockFunc(ctx, key)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, domainErrors.ErrDuplicateRequest
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

// Held reports whether key is currently locked.
func (l *MockLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

// --- Deduplicator Mock ---

// MockDeduplicator is an in-memory service.Deduplicator without expiry.
type MockDeduplicator struct {
	mu   sync.Mutex
	seen map[string]bool

	FirstSeenFunc func(ctx context.Context, key string) (bool, error)
}

func NewMockDeduplicator() *MockDeduplicator {
	return &MockDeduplicator{seen: make(map[string]bool)}
}

func (d *MockDeduplicator) FirstSeen(ctx context.Context, key string) (bool, error) {
	if d.FirstSeenFunc != nil {
		return d.FirstSeenFunc(ctx, key)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}
