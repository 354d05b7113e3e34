// Package stripe is a minimal REST client for the payment provider.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	domcred "github.com/jorgekof/hostreamly-admin/internal/domain/credential"
	"github.com/jorgekof/hostreamly-admin/internal/metrics"
)

// Operation labels for metrics and logs.
const (
	opConnectivity = "connectivity"
	opCheckout     = "checkout_session"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// ClientConfig contains configuration for the provider client.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// Client talks to the provider API. Every call is a single attempt.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a provider client.
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.stripe.com"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		logger:     logger.Named("stripe"),
	}
}

// TestConnection lists at most one customer with secret as the bearer key.
// HTTP 200 is success; any other status or a network error is a failed result.
func (c *Client) TestConnection(ctx context.Context, secret string) domcred.ProbeResult {
	resp, err := c.do(ctx, opConnectivity, http.MethodGet, "/v1/customers?limit=1", secret, nil)
	if err != nil {
		c.logger.Warn("connectivity check failed to reach provider", zap.Error(err))
		return domcred.ProbeResult{Message: fmt.Sprintf("Could not reach Stripe: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domcred.ProbeResult{OK: true, StatusCode: resp.StatusCode, Message: "Successfully connected to Stripe"}
	}

	apiErr := readAPIError(resp)
	c.logger.Info("connectivity check rejected",
		zap.Int("status", apiErr.StatusCode),
		zap.String("error_type", apiErr.Type),
	)
	return domcred.ProbeResult{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
}

// CreateCheckoutSession creates a hosted payment page for a single line item.
func (c *Client) CreateCheckoutSession(ctx context.Context, secret string, req CheckoutSessionRequest) (*CheckoutSession, error) {
	if req.AmountMinor <= 0 {
		return nil, fmt.Errorf("checkout amount must be positive, got %d", req.AmountMinor)
	}

	c.logger.Info("creating checkout session",
		zap.String("account_id", req.AccountID),
		zap.Int64("amount", req.AmountMinor),
		zap.String("currency", req.Currency),
	)

	resp, err := c.do(ctx, opCheckout, http.MethodPost, "/v1/checkout/sessions", secret, checkoutForm(req))
	if err != nil {
		c.logger.Error("failed to create checkout session", zap.Error(err))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := readAPIError(resp)
		c.logger.Error("checkout session rejected", zap.Error(apiErr))
		return nil, apiErr
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		metrics.ProviderErrorsTotal.WithLabelValues(opCheckout, "decode").Inc()
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	if session.URL == "" {
		return nil, errors.New("checkout session has no url")
	}

	c.logger.Info("checkout session created", zap.String("session_id", session.ID))
	return &session, nil
}

// HealthCheck reports whether the API host answers at all. Any HTTP response counts.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/healthcheck", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("provider unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close() //nolint:wrapcheck // close error is informational
}

func (c *Client) do(ctx context.Context, op, method, endpoint, secret string, form url.Values) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secret)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	c.logger.Debug("provider request", zap.String("method", method), zap.String("endpoint", endpoint))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ProviderRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(op, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(op, "network").Inc()
		return nil, fmt.Errorf("request failed: %w", err)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= 300 {
		metrics.ProviderErrorsTotal.WithLabelValues(op, "api").Inc()
	}
	return resp, nil
}

func checkoutForm(req CheckoutSessionRequest) url.Values {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("client_reference_id", req.AccountID)
	form.Set("metadata[account_id]", req.AccountID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	return form
}

// readAPIError drains resp and extracts error.message, falling back to the status text.
func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil && eb.Error.Message != "" {
		apiErr.Type = eb.Error.Type
		apiErr.Message = eb.Error.Message
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("Stripe returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	return apiErr
}
