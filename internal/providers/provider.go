package providers

import (
	"context"

	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/reconcile"
)

// Call is one outbound provider request. Payload is JSON encoded when non-nil.
type Call struct {
	Method  string
	Path    string
	Payload any
}

// Reply is a successful (2xx) provider response.
type Reply struct {
	StatusCode int
	Body       []byte
}

// Transport sends calls to a single provider. Non-2xx responses are returned
// as *HTTPStatusError.
type Transport interface {
	Send(ctx context.Context, call *Call) (*Reply, error)
}

// Adapter translates between the merchant model and one provider's wire format.
type Adapter interface {
	// Name returns the provider name.
	Name() string
	// Resolve returns the ordered method candidates for a channel.
	Resolve(dir transaction.Direction, ch transaction.Channel, req *transaction.Request) ([]transaction.MethodCandidate, error)
	// Encode builds the provider call for one candidate.
	Encode(dir transaction.Direction, ch transaction.Channel, req *transaction.Request, c transaction.MethodCandidate) (*Call, error)
	// Decode parses a provider reply into the channel's response variant.
	Decode(dir transaction.Direction, ch transaction.Channel, body []byte) (transaction.Response, error)
}

// WebhookAdapter is implemented by providers that send status callbacks.
type WebhookAdapter interface {
	ParseWebhook(body []byte) (*transaction.WebhookEvent, error)
	Vocabulary() reconcile.Vocabulary
}

// Canceller is implemented by providers that can cancel a transaction.
type Canceller interface {
	Cancel(ctx context.Context, t Transport, id string) error
}

// Inspector is implemented by providers that can look up a transaction.
type Inspector interface {
	Info(ctx context.Context, t Transport, id string) (*transaction.Info, error)
}

// FailureMessages supplies text for upstream errors whose body carried none.
type FailureMessages interface {
	DefaultFailureMessage(status int) string
}
