package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"AMUZZ_BACK-END/internal/apperrors"
	"AMUZZ_BACK-END/internal/payments"
	"AMUZZ_BACK-END/internal/repository"
)

// PaymentGateway is the checkout provider
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (string, error)
	ParseWebhook(payload []byte, signature string) (*payments.WebhookEvent, error)
}

// PaymentService runs the premium checkout flow
type PaymentService struct {
	gateway     PaymentGateway
	store       repository.Store
	frontendURL string
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService instance
func NewPaymentService(gateway PaymentGateway, store repository.Store, frontendURL string, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		gateway:     gateway,
		store:       store,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// CreateCheckout starts a hosted checkout and returns its URL. email is
// attached for the webhook and may be empty for anonymous checkout.
func (s *PaymentService) CreateCheckout(ctx context.Context, email string) (string, error) {
	url, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		CustomerEmail: NormalizeEmail(email),
		SuccessURL:    s.frontendURL + "/payment-success",
		CancelURL:     s.frontendURL + "/payment-cancelled",
	})
	if err != nil {
		s.logger.Error("failed to create checkout session", zap.Error(err))
		return "", apperrors.Upstream(err, "failed to create checkout session")
	}
	return url, nil
}

// HandleWebhook applies a provider callback. Events that cannot be acted on
// are logged and acknowledged; only verification and store failures return
// an error.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn("rejected webhook", zap.Error(err))
		return apperrors.Validation("invalid payload")
	}

	if event.Type != payments.EventCheckoutCompleted {
		s.logger.Debug("ignoring webhook event", zap.String("event_id", event.ID), zap.String("type", event.Type))
		return nil
	}
	if event.Email == "" {
		s.logger.Warn("checkout completed without customer email", zap.String("event_id", event.ID))
		return nil
	}

	err = s.store.Users().SetPremiumByEmail(ctx, event.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("checkout completed for unknown user", zap.String("event_id", event.ID))
		return nil
	}
	if err != nil {
		s.logger.Error("failed to grant premium", zap.String("event_id", event.ID), zap.Error(err))
		return apperrors.Internal(err, "failed to grant premium")
	}

	s.logger.Info("premium granted", zap.String("event_id", event.ID))
	return nil
}
