// Package credential models the payment provider secret and its lifecycle.
package credential

import (
	"fmt"
	"strings"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
)

// DefaultPrefix is the required prefix of a provider secret key.
const DefaultPrefix = "sk_"

// Credential is the provider secret key with an optional webhook signing secret.
type Credential struct {
	secretKey     string
	webhookSecret string
}

// New validates the secret against prefix. No I/O happens here.
func New(secretKey, webhookSecret, prefix string) (Credential, error) {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		return Credential{}, fmt.Errorf("secret key is required: %w", domain.ErrInvalidCredential)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasPrefix(secretKey, prefix) {
		return Credential{}, fmt.Errorf("secret key must start with %q: %w", prefix, domain.ErrInvalidCredential)
	}
	return Credential{
		secretKey:     secretKey,
		webhookSecret: strings.TrimSpace(webhookSecret),
	}, nil
}

// Reconstruct restores a Credential from storage without validation.
func Reconstruct(secretKey, webhookSecret string) Credential {
	return Credential{secretKey: secretKey, webhookSecret: webhookSecret}
}

// SecretKey returns the raw secret. Never log or render it.
func (c Credential) SecretKey() string { return c.secretKey }

// WebhookSecret returns the raw webhook signing secret, possibly empty.
func (c Credential) WebhookSecret() string { return c.webhookSecret }

// Mask hides at least half of a secret. Up to 8 leading and 4 trailing
// characters stay visible, the tail only once the head is complete.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	visible := len(s) / 2
	if len(s) <= 12 {
		return s[:min(3, visible)] + "****"
	}
	head := min(8, visible)
	tail := min(4, visible-head)
	return s[:head] + "********" + s[len(s)-tail:]
}
