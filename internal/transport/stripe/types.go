package stripe

import "fmt"

// CheckoutSessionRequest describes a one-line hosted payment page.
type CheckoutSessionRequest struct {
	AccountID   string
	AmountMinor int64 // integer minor units, e.g. cents
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the part of the provider's session object the dashboard needs.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// errorBody is the provider's JSON error envelope.
type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe API error (status %d): %s", e.StatusCode, e.Message)
}
