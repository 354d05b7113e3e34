package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jorgekof/hostreamly-admin/internal/domain/limit"
)

// ErrorResponseCode is the machine-readable error code returned to clients.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest              ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized            ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed        ErrorResponseCode = "validation_failed"
	ErrorResponseCodeNoOverage               ErrorResponseCode = "no_overage"
	ErrorResponseCodeInvalidCredential       ErrorResponseCode = "invalid_credential"
	ErrorResponseCodeNotFound                ErrorResponseCode = "not_found"
	ErrorResponseCodeCredentialNotConfigured ErrorResponseCode = "credential_not_configured"
	ErrorResponseCodeOperationInProgress     ErrorResponseCode = "operation_in_progress"
	ErrorResponseCodeInvalidTransition       ErrorResponseCode = "invalid_transition"
	ErrorResponseCodeAlreadyExists           ErrorResponseCode = "already_exists"
	ErrorResponseCodeRateLimited             ErrorResponseCode = "rate_limited"
	ErrorResponseCodeProviderUnavailable     ErrorResponseCode = "provider_unavailable"
	ErrorResponseCodeInternalError           ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// LimitValue is a plan quota on the wire: a number, or "unlimited" / null.
type LimitValue struct {
	limit.Limit
	set bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *LimitValue) UnmarshalJSON(data []byte) error {
	v.set = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		v.Limit = limit.Unlimited()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		l, err := limit.Parse(s)
		if err != nil {
			return err
		}
		v.Limit = l
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("limit must be a number, \"unlimited\" or null")
	}
	l, err := limit.Bounded(n)
	if err != nil {
		return err
	}
	v.Limit = l
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v LimitValue) MarshalJSON() ([]byte, error) {
	if n, ok := v.Value(); ok {
		return json.Marshal(n)
	}
	return json.Marshal(limit.UnlimitedText)
}

// --- requests ---

// PreferencesRequest is the body of PUT /billing/preferences and POST /billing/preview.
type PreferencesRequest struct {
	AutoCharge            *bool    `json:"auto_charge" validate:"required"`
	StoragePricePerGB     *float64 `json:"storage_price_per_gb" validate:"required,gte=0"`
	BandwidthPricePerGB   *float64 `json:"bandwidth_price_per_gb" validate:"required,gte=0"`
	NotificationThreshold *float64 `json:"notification_threshold" validate:"required,gt=0,lte=1"`
}

// UsageRequest is the body of PUT /usage.
type UsageRequest struct {
	StorageUsed    *float64   `json:"storage_used" validate:"required,gte=0"`
	BandwidthUsed  *float64   `json:"bandwidth_used" validate:"required,gte=0"`
	StorageLimit   LimitValue `json:"storage_limit"`
	BandwidthLimit LimitValue `json:"bandwidth_limit"`
}

// ChargeRequest is the body of POST /billing/charges.
type ChargeRequest struct {
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required,gtfield=PeriodStart"`
}

// ChargeStatusRequest is the body of PATCH /billing/charges/{id}.
type ChargeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed"`
}

// CredentialRequest is the body of PUT /provider/credential.
// Format checks on the secret happen in the domain.
type CredentialRequest struct {
	SecretKey     string `json:"secret_key" validate:"max=512"`
	WebhookSecret string `json:"webhook_secret" validate:"max=512"`
}

// LogEntryRequest is the body of POST /logs.
type LogEntryRequest struct {
	ID        string     `json:"id" validate:"omitempty,key_id"`
	Timestamp *time.Time `json:"timestamp"`
	Level     string     `json:"level" validate:"required"`
	Category  string     `json:"category" validate:"required"`
	Message   string     `json:"message" validate:"required,max=1024"`
	Details   string     `json:"details" validate:"max=4096"`
	UserID    string     `json:"user_id" validate:"max=128"`
	Email     string     `json:"email" validate:"omitempty,email"`
	IP        string     `json:"ip" validate:"omitempty,ip"`
}

// --- responses ---

// UsageResponse is the metered snapshot.
type UsageResponse struct {
	StorageUsed      float64    `json:"storage_used"`
	BandwidthUsed    float64    `json:"bandwidth_used"`
	StorageLimit     LimitValue `json:"storage_limit"`
	BandwidthLimit   LimitValue `json:"bandwidth_limit"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	UpdatedAtDisplay string     `json:"updated_at_display,omitempty"`
}

// PreferencesResponse is the saved or default billing configuration.
type PreferencesResponse struct {
	AutoCharge            bool    `json:"auto_charge"`
	StoragePricePerGB     float64 `json:"storage_price_per_gb"`
	BandwidthPricePerGB   float64 `json:"bandwidth_price_per_gb"`
	NotificationThreshold float64 `json:"notification_threshold"`
}

// OverageResponse is the usage beyond the plan, in GB.
type OverageResponse struct {
	Storage   float64 `json:"storage"`
	Bandwidth float64 `json:"bandwidth"`
}

// ChargesResponse is the priced overage.
type ChargesResponse struct {
	Storage          float64 `json:"storage"`
	Bandwidth        float64 `json:"bandwidth"`
	Total            float64 `json:"total"`
	StorageDisplay   string  `json:"storage_display"`
	BandwidthDisplay string  `json:"bandwidth_display"`
	TotalDisplay     string  `json:"total_display"`
}

// ThresholdResponse is one resource's proximity to its quota.
// Fraction is null for unlimited quotas and for usage over a zero quota.
type ThresholdResponse struct {
	Resource    string   `json:"resource"`
	Fraction    *float64 `json:"fraction"`
	Approaching bool     `json:"approaching"`
	Exceeded    bool     `json:"exceeded"`
}

// SummaryResponse is the billing view of one account.
type SummaryResponse struct {
	AccountID   string              `json:"account_id"`
	Currency    string              `json:"currency"`
	HasOverage  bool                `json:"has_overage"`
	Usage       UsageResponse       `json:"usage"`
	Preferences PreferencesResponse `json:"preferences"`
	Overage     OverageResponse     `json:"overage"`
	Charges     ChargesResponse     `json:"charges"`
	Thresholds  []ThresholdResponse `json:"thresholds"`
}

// PaymentSessionResponse is a hosted checkout session.
type PaymentSessionResponse struct {
	SessionID     string  `json:"session_id"`
	URL           string  `json:"url"`
	Amount        float64 `json:"amount"`
	AmountDisplay string  `json:"amount_display"`
	Currency      string  `json:"currency"`
}

// ChargeResponse is one recorded overage charge.
type ChargeResponse struct {
	ID               string    `json:"id"`
	AccountID        string    `json:"account_id"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	StorageOverage   float64   `json:"storage_overage"`
	BandwidthOverage float64   `json:"bandwidth_overage"`
	TotalCharge      float64   `json:"total_charge"`
	TotalDisplay     string    `json:"total_display"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedAtDisplay string    `json:"created_at_display"`
}

// ChargeListResponse is the charge history.
type ChargeListResponse struct {
	Items []ChargeResponse `json:"items"`
	Count int              `json:"count"`
}

// CredentialStatusResponse is the masked credential state.
type CredentialStatusResponse struct {
	ConfigState         string     `json:"config_state"`
	TestState           string     `json:"test_state"`
	Message             string     `json:"message,omitempty"`
	TestedAt            *time.Time `json:"tested_at,omitempty"`
	TestedAtDisplay     string     `json:"tested_at_display,omitempty"`
	MaskedSecretKey     string     `json:"masked_secret_key,omitempty"`
	MaskedWebhookSecret string     `json:"masked_webhook_secret,omitempty"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// LogEntryResponse is one system log entry.
type LogEntryResponse struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	TimestampDisplay string    `json:"timestamp_display"`
	Level            string    `json:"level"`
	Category         string    `json:"category"`
	Message          string    `json:"message"`
	Details          string    `json:"details,omitempty"`
	UserID           string    `json:"user_id,omitempty"`
	Email            string    `json:"email,omitempty"`
	IP               string    `json:"ip,omitempty"`
}

// LogSummaryResponse counts the unfiltered collection by level.
type LogSummaryResponse struct {
	Total   int `json:"total"`
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
	Success int `json:"success"`
}

// LogListResponse is the filtered log view.
type LogListResponse struct {
	Items   []LogEntryResponse `json:"items"`
	Count   int                `json:"count"`
	Summary LogSummaryResponse `json:"summary"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func finiteOrNil(f float64, ok bool) *float64 {
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
