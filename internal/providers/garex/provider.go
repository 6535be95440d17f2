// Package garex adapts the Garex merchant API. Garex addresses payment rails
// by method code, so a single merchant channel may fan out into several
// candidates that are tried in order.
package garex

import (
	"time"

	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
)

const Name = config.ProviderGarex

// Garex does not report an expiry; requisites are held for this long.
const requisiteTTL = 10 * time.Minute

type Provider struct {
	merchantID  string
	callbackURL string
	now         func() time.Time
}

type Option func(*Provider)

// WithClock overrides the clock used to compute expires_at.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func New(cfg config.ProviderConfig, opts ...Option) *Provider {
	p := &Provider{
		merchantID:  cfg.MerchantID,
		callbackURL: cfg.CallbackURL,
		now:         time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Name() string { return Name }
