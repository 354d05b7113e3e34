package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
)

// GetBillingSummary handles GET /accounts/{account}/billing.
func (s *Server) GetBillingSummary(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	sum, err := s.billing.Summary(r.Context(), account)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.summaryToResponse(account, sum))
}

// PreviewBilling handles POST /accounts/{account}/billing/preview.
// The draft preferences are priced but not saved.
func (s *Server) PreviewBilling(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !s.decode(w, r, &req) {
		return
	}
	draft, err := preferencesFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	account := chi.URLParam(r, "account")
	sum, err := s.billing.Preview(r.Context(), account, draft)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.summaryToResponse(account, sum))
}

// GetPreferences handles GET /accounts/{account}/billing/preferences.
func (s *Server) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.billing.Preferences(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesToResponse(p))
}

// SavePreferences handles PUT /accounts/{account}/billing/preferences.
func (s *Server) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !s.decode(w, r, &req) {
		return
	}
	draft, err := preferencesFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	saved, err := s.billing.SavePreferences(r.Context(), chi.URLParam(r, "account"), draft)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesToResponse(saved))
}

// GetUsage handles GET /accounts/{account}/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	snap, err := s.billing.Usage(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(snap))
}

// PutUsage handles PUT /accounts/{account}/usage.
func (s *Server) PutUsage(w http.ResponseWriter, r *http.Request) {
	var req UsageRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !req.StorageLimit.set {
		s.handleDomainError(w, r, domain.NewFieldError("storage_limit", "is required"))
		return
	}
	if !req.BandwidthLimit.set {
		s.handleDomainError(w, r, domain.NewFieldError("bandwidth_limit", "is required"))
		return
	}

	snap, err := dombilling.NewSnapshot(
		*req.StorageUsed, *req.BandwidthUsed,
		req.StorageLimit.Limit, req.BandwidthLimit.Limit,
		s.now(),
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.billing.RecordUsage(r.Context(), chi.URLParam(r, "account"), snap); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(snap))
}

// CreatePaymentSession handles POST /accounts/{account}/billing/payment-session.
func (s *Server) CreatePaymentSession(w http.ResponseWriter, r *http.Request) {
	session, charges, err := s.billing.InitiatePayment(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, PaymentSessionResponse{
		SessionID:     session.ID,
		URL:           session.URL,
		Amount:        charges.TotalCharge,
		AmountDisplay: s.formatter.Format(charges.TotalCharge),
		Currency:      s.formatter.Code(),
	})
}

// ListCharges handles GET /accounts/{account}/billing/charges.
func (s *Server) ListCharges(w http.ResponseWriter, r *http.Request) {
	charges, err := s.billing.ListCharges(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	items := make([]ChargeResponse, 0, len(charges))
	for _, c := range charges {
		items = append(items, s.chargeToResponse(c))
	}
	writeJSON(w, http.StatusOK, ChargeListResponse{Items: items, Count: len(items)})
}

// RecordCharge handles POST /accounts/{account}/billing/charges.
func (s *Server) RecordCharge(w http.ResponseWriter, r *http.Request) {
	var req ChargeRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.billing.RecordCharge(r.Context(), chi.URLParam(r, "account"), req.PeriodStart.UTC(), req.PeriodEnd.UTC())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.chargeToResponse(c))
}

// UpdateChargeStatus handles PATCH /accounts/{account}/billing/charges/{id}.
func (s *Server) UpdateChargeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChargeStatusRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := s.billing.UpdateChargeStatus(r.Context(),
		chi.URLParam(r, "account"), chi.URLParam(r, "id"), dombilling.Status(req.Status))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.chargeToResponse(c))
}

func preferencesFromRequest(req PreferencesRequest) (dombilling.Preferences, error) {
	return dombilling.NewPreferences(
		*req.AutoCharge,
		*req.StoragePricePerGB,
		*req.BandwidthPricePerGB,
		*req.NotificationThreshold,
	)
}

func preferencesToResponse(p dombilling.Preferences) PreferencesResponse {
	return PreferencesResponse{
		AutoCharge:            p.AutoCharge(),
		StoragePricePerGB:     p.StoragePrice(),
		BandwidthPricePerGB:   p.BandwidthPrice(),
		NotificationThreshold: p.NotificationThreshold(),
	}
}

func usageToResponse(snap dombilling.Snapshot) UsageResponse {
	return UsageResponse{
		StorageUsed:      snap.StorageUsed(),
		BandwidthUsed:    snap.BandwidthUsed(),
		StorageLimit:     LimitValue{Limit: snap.StorageLimit()},
		BandwidthLimit:   LimitValue{Limit: snap.BandwidthLimit()},
		UpdatedAt:        timeOrNil(snap.UpdatedAt()),
		UpdatedAtDisplay: money.FormatTime(snap.UpdatedAt()),
	}
}

func (s *Server) summaryToResponse(account string, sum dombilling.Summary) SummaryResponse {
	thresholds := make([]ThresholdResponse, 0, len(sum.Thresholds))
	for _, t := range sum.Thresholds {
		thresholds = append(thresholds, ThresholdResponse{
			Resource:    string(t.Resource),
			Fraction:    finiteOrNil(t.Fraction, t.Bounded),
			Approaching: t.Approaching,
			Exceeded:    t.Exceeded,
		})
	}
	return SummaryResponse{
		AccountID:   account,
		Currency:    s.formatter.Code(),
		HasOverage:  !sum.Overage.IsZero(),
		Usage:       usageToResponse(sum.Snapshot),
		Preferences: preferencesToResponse(sum.Preferences),
		Overage: OverageResponse{
			Storage:   sum.Overage.Storage,
			Bandwidth: sum.Overage.Bandwidth,
		},
		Charges: ChargesResponse{
			Storage:          sum.Charges.StorageCharge,
			Bandwidth:        sum.Charges.BandwidthCharge,
			Total:            sum.Charges.TotalCharge,
			StorageDisplay:   s.formatter.Format(sum.Charges.StorageCharge),
			BandwidthDisplay: s.formatter.Format(sum.Charges.BandwidthCharge),
			TotalDisplay:     s.formatter.Format(sum.Charges.TotalCharge),
		},
		Thresholds: thresholds,
	}
}

func (s *Server) chargeToResponse(c dombilling.Charge) ChargeResponse {
	return ChargeResponse{
		ID:               c.ID(),
		AccountID:        c.AccountID(),
		PeriodStart:      c.PeriodStart(),
		PeriodEnd:        c.PeriodEnd(),
		StorageOverage:   c.StorageOverage(),
		BandwidthOverage: c.BandwidthOverage(),
		TotalCharge:      c.TotalCharge(),
		TotalDisplay:     s.formatter.Format(c.TotalCharge()),
		Status:           string(c.Status()),
		CreatedAt:        c.CreatedAt(),
		CreatedAtDisplay: money.FormatTime(c.CreatedAt()),
	}
}
