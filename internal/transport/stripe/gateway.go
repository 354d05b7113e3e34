package stripe

import (
	"context"
	"fmt"

	"github.com/jorgekof/hostreamly-admin/internal/usecase/billing"
)

// SecretSource resolves the secret key used for provider calls.
type SecretSource interface {
	Secret(ctx context.Context) (string, error)
}

// Gateway adapts Client to billing.PaymentGateway.
type Gateway struct {
	client     *Client
	secrets    SecretSource
	successURL string
	cancelURL  string
}

// NewGateway creates a payment gateway that reads the secret on every call.
func NewGateway(client *Client, secrets SecretSource, successURL, cancelURL string) *Gateway {
	return &Gateway{client: client, secrets: secrets, successURL: successURL, cancelURL: cancelURL}
}

// CreatePaymentSession implements billing.PaymentGateway.
func (g *Gateway) CreatePaymentSession(ctx context.Context, req billing.PaymentRequest) (billing.PaymentSession, error) {
	secret, err := g.secrets.Secret(ctx)
	if err != nil {
		return billing.PaymentSession{}, fmt.Errorf("resolve provider secret: %w", err)
	}
	s, err := g.client.CreateCheckoutSession(ctx, secret, CheckoutSessionRequest{
		AccountID:   req.AccountID,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Description: req.Description,
		SuccessURL:  g.successURL,
		CancelURL:   g.cancelURL,
	})
	if err != nil {
		return billing.PaymentSession{}, err
	}
	return billing.PaymentSession{ID: s.ID, URL: s.URL}, nil
}
