package providers_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/config"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers/garex"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers/paygate"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/reconcile"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/testutil"
)

// brokenStatuses forwards a provider status to a merchant status that does not exist.
type brokenStatuses struct {
	*paygate.Provider
}

func (brokenStatuses) Name() string { return "broken" }

func (brokenStatuses) Vocabulary() reconcile.Vocabulary {
	return reconcile.Vocabulary{"done": {Merchant: "finished", Forward: true}}
}

func TestFactory(t *testing.T) {
	transport := testutil.NewScriptedTransport()
	g := providers.NewClient(garex.New(config.ProviderConfig{}), transport, zerolog.Nop(), nil)
	p := providers.NewClient(paygate.New(config.ProviderConfig{}), transport, zerolog.Nop(), nil)

	f := providers.NewFactory(paygate.Name, g, p)

	active, err := f.Active()
	require.NoError(t, err)
	assert.Equal(t, "paygate", active.Name())

	got, err := f.Get("garex")
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = f.Get("stripe")
	assert.ErrorIs(t, err, domainErrors.ErrProviderNotFound)

	assert.Equal(t, []string{"garex", "paygate"}, f.Names())
}

func TestFactory_ActiveNotRegistered(t *testing.T) {
	_, err := providers.NewFactory("garex").Active()
	assert.ErrorIs(t, err, domainErrors.ErrProviderNotFound)
}

func TestFactory_Validate(t *testing.T) {
	transport := testutil.NewScriptedTransport()
	g := providers.NewClient(garex.New(config.ProviderConfig{}), transport, zerolog.Nop(), nil)
	p := providers.NewClient(paygate.New(config.ProviderConfig{}), transport, zerolog.Nop(), nil)

	require.NoError(t, providers.NewFactory(garex.Name, g, p).Validate())

	err := providers.NewFactory("stripe", g).Validate()
	assert.ErrorIs(t, err, domainErrors.ErrProviderNotFound)

	broken := providers.NewClient(brokenStatuses{paygate.New(config.ProviderConfig{})}, transport, zerolog.Nop(), nil)
	err = providers.NewFactory(garex.Name, g, broken).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken webhook statuses")
	assert.Contains(t, err.Error(), `"finished"`)
}
