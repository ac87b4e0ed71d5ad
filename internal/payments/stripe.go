// Package payments adapts Stripe Checkout for the premium upgrade flow.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"AMUZZ_BACK-END/internal/config"
)

// EventCheckoutCompleted is the event type that grants premium access
const EventCheckoutCompleted = "checkout.session.completed"

var (
	// ErrNotConfigured is returned when the Stripe keys are missing
	ErrNotConfigured = errors.New("stripe not configured")
	// ErrInvalidSignature is returned for webhook payloads that fail verification
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// CheckoutRequest describes one hosted checkout session
type CheckoutRequest struct {
	// CustomerEmail correlates the session with an account. Empty for anonymous checkout.
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// WebhookEvent is the part of a verified webhook the application acts on
type WebhookEvent struct {
	ID    string
	Type  string
	Email string
}

// StripeGateway creates checkout sessions and verifies webhooks
type StripeGateway struct {
	api           *client.API
	configured    bool
	webhookSecret string
	productName   string
	unitAmount    int64
	currency      string
}

// NewStripeGateway builds a gateway from cfg. backends may be nil to use
// the default Stripe API backends.
func NewStripeGateway(cfg *config.StripeConfig, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, backends)

	return &StripeGateway{
		api:           api,
		configured:    cfg.SecretKey != "",
		webhookSecret: cfg.WebhookSecret,
		productName:   cfg.ProductName,
		unitAmount:    cfg.UnitAmount,
		currency:      cfg.Currency,
	}
}

// CreateCheckoutSession creates a one-off card payment for the premium
// product and returns the hosted checkout URL.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if !g.configured {
		return "", ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(g.productName),
					},
					UnitAmount: stripe.Int64(g.unitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	if req.CustomerEmail != "" {
		params.AddMetadata("email", req.CustomerEmail)
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	if session.URL == "" {
		return "", errors.New("create checkout session: response has no url")
	}
	return session.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header against payload and
// extracts the event. The correlated email is read from the session
// metadata, then from the customer fields.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != EventCheckoutCompleted || event.Data == nil {
		return out, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	email := session.Metadata["email"]
	if email == "" {
		email = session.CustomerEmail
	}
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}
	out.Email = strings.ToLower(strings.TrimSpace(email))

	return out, nil
}
