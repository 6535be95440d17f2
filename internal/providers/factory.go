package providers

import (
	"errors"
	"fmt"
	"sort"

	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
)

// Factory holds one Client per registered provider and names the active one
// used for merchant-initiated calls.
type Factory struct {
	clients map[string]*Client
	active  string
}

func NewFactory(active string, clients ...*Client) *Factory {
	f := &Factory{
		clients: make(map[string]*Client),
		active:  active,
	}
	for _, c := range clients {
		f.Register(c)
	}
	return f
}

func (f *Factory) Register(c *Client) {
	f.clients[c.Name()] = c
}

func (f *Factory) Get(name string) (*Client, error) {
	c, ok := f.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q: %w", name, domainErrors.ErrProviderNotFound)
	}
	return c, nil
}

// Active returns the client merchant API calls are routed to.
func (f *Factory) Active() (*Client, error) {
	return f.Get(f.active)
}

// Names lists registered providers in sorted order.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.clients))
	for name := range f.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the active provider is registered and that every
// webhook status table maps onto merchant statuses.
func (f *Factory) Validate() error {
	var errs []error
	if _, err := f.Active(); err != nil {
		errs = append(errs, fmt.Errorf("active provider: %w", err))
	}
	for _, name := range f.Names() {
		wa, ok := f.clients[name].Adapter().(WebhookAdapter)
		if !ok {
			continue
		}
		if err := wa.Vocabulary().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s webhook statuses: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
