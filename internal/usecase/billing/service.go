package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
	"github.com/jorgekof/hostreamly-admin/internal/metrics"
	"github.com/jorgekof/hostreamly-admin/internal/usecase/inflight"
)

const paymentDescription = "Storage and bandwidth overage"

// Service computes overage charges and manages billing preferences.
type Service struct {
	usage    UsageRepository
	prefs    PreferencesRepository
	charges  ChargeRepository
	gateway  PaymentGateway
	defaults dombilling.Preferences
	currency string
	guard    *inflight.Guard
	crossed  *thresholdState
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// New creates a billing service. defaults apply to accounts that never saved preferences.
func New(
	usage UsageRepository, prefs PreferencesRepository, charges ChargeRepository,
	gateway PaymentGateway, defaults dombilling.Preferences, currency string,
) *Service {
	return &Service{
		usage:    usage,
		prefs:    prefs,
		charges:  charges,
		gateway:  gateway,
		defaults: defaults,
		currency: currency,
		guard:    inflight.New(),
		crossed:  newThresholdState(),
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithClock overrides time and id generation.
func (s *Service) WithClock(now func() time.Time, newID func() string) *Service {
	if now != nil {
		s.now = now
	}
	if newID != nil {
		s.newID = newID
	}
	return s
}

// Summary prices the account's usage with its saved preferences.
func (s *Service) Summary(ctx context.Context, accountID string) (dombilling.Summary, error) {
	snap, err := s.Usage(ctx, accountID)
	if err != nil {
		return dombilling.Summary{}, err
	}
	prefs, err := s.Preferences(ctx, accountID)
	if err != nil {
		return dombilling.Summary{}, err
	}
	sum := dombilling.Summarize(snap, prefs)
	s.reportThresholds(accountID, sum.Thresholds)
	return sum, nil
}

// Preview prices the account's usage with an unsaved draft.
func (s *Service) Preview(ctx context.Context, accountID string, draft dombilling.Preferences) (dombilling.Summary, error) {
	snap, err := s.Usage(ctx, accountID)
	if err != nil {
		return dombilling.Summary{}, err
	}
	return dombilling.Summarize(snap, draft), nil
}

// Preferences returns the saved preferences, or the defaults.
func (s *Service) Preferences(ctx context.Context, accountID string) (dombilling.Preferences, error) {
	p, err := s.prefs.Get(ctx, accountID)
	if errors.Is(err, domain.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return dombilling.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

// SavePreferences persists draft. A concurrent save for the same account is rejected.
// On failure the previously saved preferences stay in place.
func (s *Service) SavePreferences(ctx context.Context, accountID string, draft dombilling.Preferences) (dombilling.Preferences, error) {
	release, err := s.guard.Acquire("preferences:" + accountID)
	if err != nil {
		return dombilling.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	defer release()

	if err := s.prefs.Save(ctx, accountID, draft); err != nil {
		s.logger.Error("Failed to save billing preferences", zap.String("account_id", accountID), zap.Error(err))
		return dombilling.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	s.logger.Info("Billing preferences saved",
		zap.String("account_id", accountID),
		zap.Bool("auto_charge", draft.AutoCharge()),
		zap.Float64("storage_price", draft.StoragePrice()),
		zap.Float64("bandwidth_price", draft.BandwidthPrice()),
		zap.Float64("notification_threshold", draft.NotificationThreshold()),
	)
	return draft, nil
}

// Usage returns the latest metered snapshot.
func (s *Service) Usage(ctx context.Context, accountID string) (dombilling.Snapshot, error) {
	snap, err := s.usage.Get(ctx, accountID)
	if err != nil {
		return dombilling.Snapshot{}, fmt.Errorf("get usage: %w", err)
	}
	return snap, nil
}

// RecordUsage replaces the metered snapshot.
func (s *Service) RecordUsage(ctx context.Context, accountID string, snap dombilling.Snapshot) error {
	if err := s.usage.Save(ctx, accountID, snap); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// InitiatePayment opens a hosted payment session for the current overage total.
// Zero overage fails with domain.ErrNoOverage before any network call.
func (s *Service) InitiatePayment(ctx context.Context, accountID string) (PaymentSession, dombilling.Charges, error) {
	release, err := s.guard.Acquire("payment:" + accountID)
	if err != nil {
		return PaymentSession{}, dombilling.Charges{}, fmt.Errorf("initiate payment: %w", err)
	}
	defer release()

	sum, err := s.Summary(ctx, accountID)
	if err != nil {
		return PaymentSession{}, dombilling.Charges{}, err
	}
	amount := dombilling.MinorUnits(sum.Charges.TotalCharge)
	if sum.Overage.IsZero() || amount <= 0 {
		metrics.PaymentSessionsTotal.WithLabelValues("no_overage").Inc()
		return PaymentSession{}, sum.Charges, fmt.Errorf("initiate payment: %w", domain.ErrNoOverage)
	}

	session, err := s.gateway.CreatePaymentSession(ctx, PaymentRequest{
		AccountID:   accountID,
		AmountMinor: amount,
		Currency:    s.currency,
		Description: paymentDescription,
	})
	if err != nil {
		metrics.PaymentSessionsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Failed to create payment session",
			zap.String("account_id", accountID),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		if errors.Is(err, domain.ErrCredentialNotConfigured) {
			return PaymentSession{}, sum.Charges, fmt.Errorf("initiate payment: %w", err)
		}
		return PaymentSession{}, sum.Charges, fmt.Errorf("initiate payment: %w: %w", domain.ErrProviderUnavailable, err)
	}

	metrics.PaymentSessionsTotal.WithLabelValues("created").Inc()
	s.logger.Info("Payment session created",
		zap.String("account_id", accountID),
		zap.String("session_id", session.ID),
		zap.Int64("amount", amount),
	)
	return session, sum.Charges, nil
}

// ListCharges returns the charge history, newest first.
func (s *Service) ListCharges(ctx context.Context, accountID string) ([]dombilling.Charge, error) {
	charges, err := s.charges.List(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	return charges, nil
}

// RecordCharge closes the period [start, end) as a pending charge priced from
// the current snapshot and saved preferences.
func (s *Service) RecordCharge(ctx context.Context, accountID string, start, end time.Time) (dombilling.Charge, error) {
	if !end.After(start) {
		return dombilling.Charge{}, domain.NewFieldError("period_end", "must be after period_start")
	}
	sum, err := s.Summary(ctx, accountID)
	if err != nil {
		return dombilling.Charge{}, err
	}
	if sum.Overage.IsZero() {
		return dombilling.Charge{}, fmt.Errorf("record charge: %w", domain.ErrNoOverage)
	}

	c, err := dombilling.NewCharge(s.newID(), accountID, start, end, sum.Overage, sum.Charges, s.now())
	if err != nil {
		return dombilling.Charge{}, err
	}
	if err := s.charges.Save(ctx, c); err != nil {
		return dombilling.Charge{}, fmt.Errorf("record charge: %w", err)
	}
	s.logger.Info("Overage charge recorded",
		zap.String("account_id", accountID),
		zap.String("charge_id", c.ID()),
		zap.Float64("total", c.TotalCharge()),
	)
	return c, nil
}

// UpdateChargeStatus settles a pending charge as paid or failed.
// A concurrent update of the same charge is rejected, so a settled status is never overwritten.
func (s *Service) UpdateChargeStatus(ctx context.Context, accountID, id string, status dombilling.Status) (dombilling.Charge, error) {
	release, err := s.guard.Acquire("charge:" + accountID + ":" + id)
	if err != nil {
		return dombilling.Charge{}, fmt.Errorf("update charge: %w", err)
	}
	defer release()

	c, err := s.charges.Get(ctx, accountID, id)
	if err != nil {
		return dombilling.Charge{}, fmt.Errorf("get charge: %w", err)
	}
	next, err := c.WithStatus(status)
	if err != nil {
		return dombilling.Charge{}, err
	}
	if err := s.charges.Save(ctx, next); err != nil {
		return dombilling.Charge{}, fmt.Errorf("update charge: %w", err)
	}
	s.logger.Info("Charge status updated",
		zap.String("account_id", accountID),
		zap.String("charge_id", id),
		zap.String("status", string(status)),
	)
	return next, nil
}

// reportThresholds logs and counts a threshold only when its state changes,
// so repeated summaries of the same usage stay quiet.
func (s *Service) reportThresholds(accountID string, thresholds []dombilling.Threshold) {
	for _, t := range thresholds {
		kind := thresholdKind(t)
		if !s.crossed.swap(accountID, t.Resource, kind) || kind == "" {
			continue
		}
		metrics.UsageThresholdTotal.WithLabelValues(string(t.Resource), kind).Inc()
		s.logger.Warn("Usage threshold reached",
			zap.String("account_id", accountID),
			zap.String("resource", string(t.Resource)),
			zap.String("kind", kind),
			zap.Float64("fraction", t.Fraction),
		)
	}
}

func thresholdKind(t dombilling.Threshold) string {
	switch {
	case t.Exceeded:
		return "exceeded"
	case t.Approaching:
		return "approaching"
	default:
		return ""
	}
}
