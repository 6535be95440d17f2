package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/infrastructure/observability"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
)

// TransactionService handles merchant-initiated calls against the active provider.
type TransactionService struct {
	factory          *providers.Factory
	locker           Locker
	supportsCurrency func(code string) bool
	logger           zerolog.Logger
	metrics          *observability.Metrics
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	factory *providers.Factory,
	locker Locker,
	supportsCurrency func(code string) bool,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *TransactionService {
	if locker == nil {
		locker = NopLocker{}
	}
	return &TransactionService{
		factory:          factory,
		locker:           locker,
		supportsCurrency: supportsCurrency,
		logger:           logger,
		metrics:          metrics,
	}
}

// Create opens a pay-in or payout. Concurrent requests for the same
// merchant_transaction_id are rejected while one is in flight.
func (s *TransactionService) Create(ctx context.Context, dir transaction.Direction, ch transaction.Channel, req *transaction.Request) (transaction.Response, error) {
	if !s.supportsCurrency(req.Currency) {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrUnsupportedCurrency, req.Currency)
	}

	client, err := s.factory.Active()
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, "transaction:"+req.MerchantTransactionID)
	switch {
	case errors.Is(err, domainErrors.ErrDuplicateRequest):
		s.record(client.Name(), dir, ch, "duplicate")
		return nil, err
	case err != nil:
		// Losing the lock store must not stop payments.
		s.logger.Warn().Err(err).
			Str("merchant_transaction_id", req.MerchantTransactionID).
			Msg("could not acquire transaction lock, continuing without it")
		unlock = nil
	}
	if unlock != nil {
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn().Err(err).
					Str("merchant_transaction_id", req.MerchantTransactionID).
					Msg("failed to release transaction lock")
			}
		}()
	}

	resp, err := client.Create(ctx, dir, ch, req)
	if err != nil {
		s.record(client.Name(), dir, ch, "error")
		return nil, err
	}
	s.record(client.Name(), dir, ch, "created")
	return resp, nil
}

func (s *TransactionService) Cancel(ctx context.Context, id string) error {
	client, err := s.factory.Active()
	if err != nil {
		return err
	}
	return client.Cancel(ctx, id)
}

func (s *TransactionService) Info(ctx context.Context, id string) (*transaction.Info, error) {
	client, err := s.factory.Active()
	if err != nil {
		return nil, err
	}
	return client.Info(ctx, id)
}

func (s *TransactionService) record(provider string, dir transaction.Direction, ch transaction.Channel, result string) {
	if s.metrics != nil {
		s.metrics.TransactionsTotal.WithLabelValues(provider, string(dir), string(ch), result).Inc()
	}
}
