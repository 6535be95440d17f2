package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/transaction"
	"github.com/zxcfrost1k/PaymentGatewayAPI/internal/service"
)

// transactionRoute binds one create endpoint to a direction and channel.
type transactionRoute struct {
	resource string
	dir      transaction.Direction
	channel  transaction.Channel
	// required lists optional request fields this route cannot do without.
	required []string
}

var transactionRoutes = []transactionRoute{
	{resource: "card", dir: transaction.DirectionIn, channel: transaction.ChannelCard},
	{resource: "internal-card", dir: transaction.DirectionIn, channel: transaction.ChannelCardIntrabank, required: []string{"bank_name"}},
	{resource: "transgran-card", dir: transaction.DirectionIn, channel: transaction.ChannelCardTransgran},
	{resource: "sbp", dir: transaction.DirectionIn, channel: transaction.ChannelSBP},
	{resource: "internal-sbp", dir: transaction.DirectionIn, channel: transaction.ChannelSBPIntrabank, required: []string{"bank_name"}},
	{resource: "transgran-sbp", dir: transaction.DirectionIn, channel: transaction.ChannelSBPTransgran},
	{resource: "qr", dir: transaction.DirectionIn, channel: transaction.ChannelQR},
	{resource: "sim", dir: transaction.DirectionIn, channel: transaction.ChannelSIM},
	{resource: "payout-card", dir: transaction.DirectionOut, channel: transaction.ChannelCard, required: []string{"card_number", "owner_name"}},
	{resource: "payout-sbp", dir: transaction.DirectionOut, channel: transaction.ChannelSBP, required: []string{"phone_number", "bank_name", "owner_name"}},
}

// TransactionController handles merchant transaction requests.
type TransactionController struct {
	service *service.TransactionService
}

func NewTransactionController(svc *service.TransactionService) *TransactionController {
	return &TransactionController{service: svc}
}

// Create returns the handler for POST /api/v1/transactions/{resource}.
func (h *TransactionController) Create(route transactionRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body TransactionRequest
		if err := decodeAndValidate(r, &body); err != nil {
			writeError(w, err)
			return
		}
		if err := checkRequired(&body, route.required); err != nil {
			writeError(w, err)
			return
		}

		req, err := body.ToDomain()
		if err != nil {
			writeError(w, err)
			return
		}

		resp, err := h.service.Create(r.Context(), route.dir, route.channel, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// Cancel handles POST /api/v1/transactions/{id}/cancel
func (h *TransactionController) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Info handles GET /api/v1/transactions/{id}
func (h *TransactionController) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func checkRequired(body *TransactionRequest, required []string) error {
	fields := map[string][]string{}
	for _, name := range required {
		if body.value(name) == "" {
			fields[name] = []string{tagMessage("required")}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return newValidationFailure(fields)
}
