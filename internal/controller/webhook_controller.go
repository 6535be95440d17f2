package controller

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/service"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/signature"
)

// WebhookController receives provider status callbacks.
type WebhookController struct {
	service *service.WebhookService
}

func NewWebhookController(svc *service.WebhookService) *WebhookController {
	return &WebhookController{service: svc}
}

// Handle handles POST /webhooks/{provider}. Dropped and duplicate callbacks
// are still acknowledged so the provider does not redeliver them.
func (h *WebhookController) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", domainErrors.ErrInvalidPayload, err))
		return
	}

	_, err = h.service.Handle(r.Context(), service.InboundWebhook{
		Provider:  chi.URLParam(r, "provider"),
		Path:      r.URL.Path,
		RawQuery:  r.URL.RawQuery,
		Body:      body,
		Signature: r.Header.Get(signature.Header),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AckResponse{Code: "200", Message: "webhook processed"})
}
