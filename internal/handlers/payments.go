package handlers

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/dto"
	"AMUZZ_BACK-END/internal/middleware"
	"AMUZZ_BACK-END/internal/services"
	"AMUZZ_BACK-END/internal/utils"
)

const maxWebhookBody = 64 << 10

// PaymentsHandler serves checkout creation and the provider webhook
type PaymentsHandler struct {
	payments *services.PaymentService
	logger   *zap.Logger
}

// NewPaymentsHandler creates a new PaymentsHandler instance
func NewPaymentsHandler(payments *services.PaymentService, logger *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{payments: payments, logger: logger}
}

// CreateCheckoutSession starts a premium checkout
// @Summary Create checkout session
// @Description Authentication is optional; when present the account is upgraded after payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CheckoutSessionResponse
// @Failure 500 {object} dto.ErrorResponse "Payment provider error"
// @Router /api/create-checkout-session [post]
func (h *PaymentsHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var email string
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		email = claims.Email
	}

	url, err := h.payments.CreateCheckout(r.Context(), email)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.CheckoutSessionResponse{URL: url})
}

// Webhook receives payment provider events
// @Summary Payment webhook
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} dto.WebhookAckResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid payload"
// @Router /api/webhook [post]
func (h *PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warn("failed to read webhook body", zap.Error(err))
		utils.WriteJSONResponse(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}

	err = h.payments.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if apperrors.Is(err, apperrors.KindValidation) {
		utils.WriteJSONResponse(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid payload"})
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.WebhookAckResponse{Status: "success"})
}
