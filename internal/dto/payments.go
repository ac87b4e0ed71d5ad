package dto

// CheckoutSessionResponse carries the hosted checkout URL
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// WebhookAckResponse acknowledges a provider callback
type WebhookAckResponse struct {
	Status string `json:"status"`
}
