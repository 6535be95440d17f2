package paygate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/providers"
)

const notCancellableMessage = "transaction should be in progress"

// Cancel succeeds on any 2xx (the provider answers 204). A 400 means the
// transaction has left the cancellable state.
func (p *Provider) Cancel(ctx context.Context, t providers.Transport, id string) error {
	_, err := t.Send(ctx, &providers.Call{
		Method: http.MethodPost,
		Path:   transactionsPath + "/" + url.PathEscape(id) + "/cancel",
	})
	if err == nil {
		return nil
	}

	var statusErr *providers.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
		msg := notCancellableMessage
		if f, perr := providers.ParseFields(statusErr.Body); perr == nil && f.Has("message") {
			if m := f.String("message"); m != "" {
				msg = m
			}
		}
		return domainErrors.NewNotCancellableError(msg)
	}
	return err
}

func (p *Provider) Info(ctx context.Context, t providers.Transport, id string) (*transaction.Info, error) {
	reply, err := t.Send(ctx, &providers.Call{
		Method: http.MethodGet,
		Path:   transactionsPath + "/" + url.PathEscape(id),
	})
	if err != nil {
		var statusErr *providers.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, domainErrors.NewNotFoundError(fmt.Sprintf("transaction %s not found", id))
		}
		return nil, err
	}

	f, err := providers.ParseFields(reply.Body)
	if err != nil {
		return nil, err
	}
	info := &transaction.Info{
		ID:                    f.Int64("id"),
		CreatedAt:             f.Time("created_at"),
		UpdatedAt:             f.Time("updated_at"),
		ExpiresAt:             f.Time("expires_at"),
		MerchantTransactionID: f.String("merchant_transaction_id"),
		Type:                  transaction.Direction(f.String("type")),
		PaymentMethod:         f.String("payment_method"),
		Amount:                f.String("amount"),
		PaidAmount:            f.String("paid_amount"),
		Currency:              f.String("currency"),
		CurrencyRate:          f.String("currency_rate"),
		AmountInUSD:           f.String("amount_in_usd"),
		Rate:                  f.String("rate"),
		Commission:            f.String("commission"),
		Status:                transaction.Status(f.String("status")),
		PaidAt:                f.NullableTime("paid_at"),
		CardNumber:            f.NullableString("card_number"),
		PhoneNumber:           f.NullableString("phone_number"),
		OwnerName:             f.NullableString("owner_name"),
		BankName:              f.String("bank_name"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	return info, nil
}
