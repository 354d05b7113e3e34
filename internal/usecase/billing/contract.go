package billing

import (
	"context"

	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
)

// UsageRepository stores the metered usage snapshot per account.
type UsageRepository interface {
	Get(ctx context.Context, accountID string) (dombilling.Snapshot, error)
	Save(ctx context.Context, accountID string, s dombilling.Snapshot) error
}

// PreferencesRepository stores saved overage preferences per account.
type PreferencesRepository interface {
	Get(ctx context.Context, accountID string) (dombilling.Preferences, error)
	Save(ctx context.Context, accountID string, p dombilling.Preferences) error
}

// ChargeRepository stores overage charge history.
type ChargeRepository interface {
	Save(ctx context.Context, c dombilling.Charge) error
	Get(ctx context.Context, accountID, id string) (dombilling.Charge, error)
	List(ctx context.Context, accountID string) ([]dombilling.Charge, error)
}

// PaymentRequest asks the gateway for a hosted payment page.
type PaymentRequest struct {
	AccountID   string
	AmountMinor int64
	Currency    string
	Description string
}

// PaymentSession is the hosted payment page the client opens.
type PaymentSession struct {
	ID  string
	URL string
}

// PaymentGateway creates hosted payment sessions.
type PaymentGateway interface {
	CreatePaymentSession(ctx context.Context, req PaymentRequest) (PaymentSession, error)
}
