package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jorgekof/hostreamly-admin/internal/db/memory"
	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
	chargerepo "github.com/jorgekof/hostreamly-admin/internal/repository/charge"
	credentialrepo "github.com/jorgekof/hostreamly-admin/internal/repository/credential"
	logrepo "github.com/jorgekof/hostreamly-admin/internal/repository/logentry"
	prefsrepo "github.com/jorgekof/hostreamly-admin/internal/repository/preferences"
	usagerepo "github.com/jorgekof/hostreamly-admin/internal/repository/usage"
	"github.com/jorgekof/hostreamly-admin/internal/transport/stripe"
	billinguc "github.com/jorgekof/hostreamly-admin/internal/usecase/billing"
	credentialuc "github.com/jorgekof/hostreamly-admin/internal/usecase/credential"
	healthuc "github.com/jorgekof/hostreamly-admin/internal/usecase/health"
	logsuc "github.com/jorgekof/hostreamly-admin/internal/usecase/logs"
)

const (
	goodKey       = "sk_test_good"
	account       = "acct_1"
	testKeyPrefix = "hostreamly:"
)

// fakeProvider accepts goodKey and counts calls per endpoint.
type fakeProvider struct {
	srv          *httptest.Server
	connectivity atomic.Int32
	checkout     atomic.Int32
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/customers":
			p.connectivity.Add(1)
		case "/v1/checkout/sessions":
			p.checkout.Add(1)
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+goodKey {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/checkout/sessions" {
			_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.example/cs_test_1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	t.Cleanup(p.srv.Close)
	return p
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	provider *fakeProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	provider := newFakeProvider(t)

	client := stripe.NewClient(stripe.ClientConfig{BaseURL: provider.srv.URL, RequestTimeout: 5 * time.Second}, nil)
	credSvc := credentialuc.New(credentialrepo.New(store, testKeyPrefix), client, "sk_", "")
	gateway := stripe.NewGateway(client, credSvc, "https://app.example/success", "https://app.example/cancel")

	defaults, err := dombilling.NewPreferences(false, 0.10, 0.05, 0.8)
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	billSvc := billinguc.New(
		usagerepo.New(store, testKeyPrefix), prefsrepo.New(store, testKeyPrefix), chargerepo.New(store, testKeyPrefix),
		gateway, defaults, "usd",
	)

	logSvc := logsuc.New(logrepo.New(store, testKeyPrefix))
	if err := logSvc.SeedSample(ctx); err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	formatter, err := money.NewFormatter("usd", "en-US")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}

	s := NewServer(billSvc, credSvc, logSvc, healthuc.New(store, client), formatter, zap.NewNop())
	return &testEnv{server: s, handler: s.Handler(), provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorResponseCode) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("code: got %s, want %s (message %q)", resp.Code, code, resp.Message)
	}
}

func billingPath(suffix string) string {
	return APIPrefix + "/accounts/" + account + suffix
}

func putOverageUsage(t *testing.T, e *testEnv) {
	t.Helper()
	rr := e.do(t, http.MethodPut, billingPath("/usage"), `{
		"storage_used": 120, "bandwidth_used": 50,
		"storage_limit": 100, "bandwidth_limit": "unlimited"
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put usage: got %d (%s)", rr.Code, rr.Body.String())
	}
}

func saveGoodCredential(t *testing.T, e *testEnv) {
	t.Helper()
	rr := e.do(t, http.MethodPut, APIPrefix+"/provider/credential", CredentialRequest{SecretKey: goodKey})
	if rr.Code != http.StatusOK {
		t.Fatalf("save credential: got %d (%s)", rr.Code, rr.Body.String())
	}
}

// --- billing ---

func TestGetBillingSummary(t *testing.T) {
	e := newTestEnv(t)
	putOverageUsage(t, e)

	rr := e.do(t, http.MethodGet, billingPath("/billing"), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	sum := decodeBody[SummaryResponse](t, rr)

	if !sum.HasOverage {
		t.Error("expected has_overage")
	}
	if sum.Overage.Storage != 20 || sum.Overage.Bandwidth != 0 {
		t.Errorf("overage: got %+v", sum.Overage)
	}
	if sum.Charges.TotalDisplay != "$2.00" {
		t.Errorf("total display: got %q", sum.Charges.TotalDisplay)
	}
	if sum.Currency != "usd" {
		t.Errorf("currency: got %q", sum.Currency)
	}
	if len(sum.Thresholds) != 2 {
		t.Fatalf("thresholds: got %d", len(sum.Thresholds))
	}
	storage, bandwidth := sum.Thresholds[0], sum.Thresholds[1]
	if storage.Fraction == nil || *storage.Fraction != 1.2 || !storage.Exceeded {
		t.Errorf("storage threshold: got %+v", storage)
	}
	if bandwidth.Fraction != nil || bandwidth.Approaching || bandwidth.Exceeded {
		t.Errorf("unlimited bandwidth threshold: got %+v", bandwidth)
	}
}

func TestGetBillingSummary_NoUsage(t *testing.T) {
	e := newTestEnv(t)
	expectError(t, e.do(t, http.MethodGet, billingPath("/billing"), nil), http.StatusNotFound, ErrorResponseCodeNotFound)
}

func TestAccountParam_Invalid(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(t, http.MethodGet, APIPrefix+"/accounts/bad.id!/billing", nil)
	expectError(t, rr, http.StatusBadRequest, ErrorResponseCodeValidationFailed)
}

func TestPutUsage_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code ErrorResponseCode
	}{
		{"negative usage", `{"storage_used":-1,"bandwidth_used":0,"storage_limit":1,"bandwidth_limit":1}`,
			ErrorResponseCodeValidationFailed},
		{"missing usage", `{"bandwidth_used":0,"storage_limit":1,"bandwidth_limit":1}`,
			ErrorResponseCodeValidationFailed},
		{"missing limit", `{"storage_used":1,"bandwidth_used":0,"storage_limit":1}`,
			ErrorResponseCodeValidationFailed},
		{"negative limit", `{"storage_used":1,"bandwidth_used":0,"storage_limit":-5,"bandwidth_limit":1}`,
			ErrorResponseCodeBadRequest},
		{"malformed", `{"storage_used":`, ErrorResponseCodeBadRequest},
		{"unknown field", `{"storage_used":1,"bandwidth_used":0,"storage_limit":1,"bandwidth_limit":1,"x":1}`,
			ErrorResponseCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			expectError(t, e.do(t, http.MethodPut, billingPath("/usage"), tt.body), http.StatusBadRequest, tt.code)
		})
	}
}

func TestPutUsage_NullLimitIsUnlimited(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(t, http.MethodPut, billingPath("/usage"),
		`{"storage_used":500,"bandwidth_used":10,"storage_limit":null,"bandwidth_limit":100}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = e.do(t, http.MethodGet, billingPath("/usage"), nil)
	if !strings.Contains(rr.Body.String(), `"storage_limit":"unlimited"`) {
		t.Errorf("expected unlimited storage limit, got %s", rr.Body.String())
	}
}

func TestPreferences(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, billingPath("/billing/preferences"), nil)
	defaults := decodeBody[PreferencesResponse](t, rr)
	if defaults.StoragePricePerGB != 0.10 || defaults.NotificationThreshold != 0.8 || defaults.AutoCharge {
		t.Errorf("defaults: got %+v", defaults)
	}

	bad := `{"auto_charge":true,"storage_price_per_gb":0.2,"bandwidth_price_per_gb":0.1,"notification_threshold":1.5}`
	expectError(t, e.do(t, http.MethodPut, billingPath("/billing/preferences"), bad),
		http.StatusBadRequest, ErrorResponseCodeValidationFailed)

	good := `{"auto_charge":true,"storage_price_per_gb":0.2,"bandwidth_price_per_gb":0,"notification_threshold":0.9}`
	rr = e.do(t, http.MethodPut, billingPath("/billing/preferences"), good)
	if rr.Code != http.StatusOK {
		t.Fatalf("save: got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = e.do(t, http.MethodGet, billingPath("/billing/preferences"), nil)
	saved := decodeBody[PreferencesResponse](t, rr)
	want := PreferencesResponse{AutoCharge: true, StoragePricePerGB: 0.2, NotificationThreshold: 0.9}
	if saved != want {
		t.Errorf("saved: got %+v, want %+v", saved, want)
	}
}

func TestPreviewBilling_DoesNotPersist(t *testing.T) {
	e := newTestEnv(t)
	putOverageUsage(t, e)

	draft := `{"auto_charge":false,"storage_price_per_gb":1,"bandwidth_price_per_gb":0.05,"notification_threshold":0.8}`
	rr := e.do(t, http.MethodPost, billingPath("/billing/preview"), draft)
	if rr.Code != http.StatusOK {
		t.Fatalf("preview: got %d (%s)", rr.Code, rr.Body.String())
	}
	sum := decodeBody[SummaryResponse](t, rr)
	if sum.Charges.TotalDisplay != "$20.00" {
		t.Errorf("preview total: got %q", sum.Charges.TotalDisplay)
	}

	rr = e.do(t, http.MethodGet, billingPath("/billing/preferences"), nil)
	if p := decodeBody[PreferencesResponse](t, rr); p.StoragePricePerGB != 0.10 {
		t.Errorf("preview must not save, got storage price %v", p.StoragePricePerGB)
	}
}

func TestCreatePaymentSession(t *testing.T) {
	e := newTestEnv(t)
	putOverageUsage(t, e)
	saveGoodCredential(t, e)

	rr := e.do(t, http.MethodPost, billingPath("/billing/payment-session"), nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody[PaymentSessionResponse](t, rr)
	if resp.URL != "https://checkout.example/cs_test_1" || resp.SessionID != "cs_test_1" {
		t.Errorf("session: got %+v", resp)
	}
	if resp.AmountDisplay != "$2.00" {
		t.Errorf("amount display: got %q", resp.AmountDisplay)
	}
	if got := e.provider.checkout.Load(); got != 1 {
		t.Errorf("checkout calls: got %d, want 1", got)
	}
}

func TestCreatePaymentSession_NoOverage(t *testing.T) {
	e := newTestEnv(t)
	saveGoodCredential(t, e)
	rr := e.do(t, http.MethodPut, billingPath("/usage"),
		`{"storage_used":10,"bandwidth_used":10,"storage_limit":100,"bandwidth_limit":100}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put usage: got %d", rr.Code)
	}

	expectError(t, e.do(t, http.MethodPost, billingPath("/billing/payment-session"), nil),
		http.StatusBadRequest, ErrorResponseCodeNoOverage)
	if got := e.provider.checkout.Load(); got != 0 {
		t.Errorf("checkout calls: got %d, want 0", got)
	}
}

func TestCreatePaymentSession_CredentialNotConfigured(t *testing.T) {
	e := newTestEnv(t)
	putOverageUsage(t, e)

	expectError(t, e.do(t, http.MethodPost, billingPath("/billing/payment-session"), nil),
		http.StatusConflict, ErrorResponseCodeCredentialNotConfigured)
}

func TestCreatePaymentSession_ProviderRejects(t *testing.T) {
	e := newTestEnv(t)
	putOverageUsage(t, e)
	rr := e.do(t, http.MethodPut, APIPrefix+"/provider/credential", CredentialRequest{SecretKey: "sk_test_revoked"})
	if rr.Code != http.StatusOK {
		t.Fatalf("save credential: got %d", rr.Code)
	}

	expectError(t, e.do(t, http.MethodPost, billingPath("/billing/payment-session"), nil),
		http.StatusBadGateway, ErrorResponseCodeProviderUnavailable)
}

func TestCharges_Lifecycle(t *testing.T) {
	e := newTestEnv(t)
	putOverageUsage(t, e)

	period := ChargeRequest{
		PeriodStart: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
	rr := e.do(t, http.MethodPost, billingPath("/billing/charges"), period)
	if rr.Code != http.StatusCreated {
		t.Fatalf("record: got %d (%s)", rr.Code, rr.Body.String())
	}
	created := decodeBody[ChargeResponse](t, rr)
	if created.Status != "pending" || created.StorageOverage != 20 || created.TotalDisplay != "$2.00" {
		t.Errorf("created: got %+v", created)
	}

	rr = e.do(t, http.MethodGet, billingPath("/billing/charges"), nil)
	list := decodeBody[ChargeListResponse](t, rr)
	if list.Count != 1 || list.Items[0].ID != created.ID {
		t.Fatalf("list: got %+v", list)
	}

	rr = e.do(t, http.MethodPatch, billingPath("/billing/charges/"+created.ID), `{"status":"paid"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("settle: got %d (%s)", rr.Code, rr.Body.String())
	}
	if got := decodeBody[ChargeResponse](t, rr); got.Status != "paid" {
		t.Errorf("status after settle: got %q", got.Status)
	}

	expectError(t, e.do(t, http.MethodPatch, billingPath("/billing/charges/"+created.ID), `{"status":"failed"}`),
		http.StatusConflict, ErrorResponseCodeInvalidTransition)
	expectError(t, e.do(t, http.MethodPatch, billingPath("/billing/charges/missing"), `{"status":"paid"}`),
		http.StatusNotFound, ErrorResponseCodeNotFound)
	expectError(t, e.do(t, http.MethodPatch, billingPath("/billing/charges/"+created.ID), `{"status":"refunded"}`),
		http.StatusBadRequest, ErrorResponseCodeValidationFailed)
}

func TestRecordCharge_PeriodValidation(t *testing.T) {
	e := newTestEnv(t)
	putOverageUsage(t, e)

	body := ChargeRequest{
		PeriodStart: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	expectError(t, e.do(t, http.MethodPost, billingPath("/billing/charges"), body),
		http.StatusBadRequest, ErrorResponseCodeValidationFailed)
}

// --- provider credential ---

func TestSaveCredential_InvalidFormat(t *testing.T) {
	e := newTestEnv(t)

	expectError(t, e.do(t, http.MethodPut, APIPrefix+"/provider/credential", CredentialRequest{SecretKey: "abc123"}),
		http.StatusBadRequest, ErrorResponseCodeInvalidCredential)

	if got := e.provider.connectivity.Load(); got != 0 {
		t.Errorf("connectivity calls: got %d, want 0", got)
	}
	rr := e.do(t, http.MethodGet, APIPrefix+"/provider/credential", nil)
	if st := decodeBody[CredentialStatusResponse](t, rr); st.ConfigState != "unset" {
		t.Errorf("config state: got %q, want unset", st.ConfigState)
	}
}

func TestSaveCredential_RunsOneTest(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodPut, APIPrefix+"/provider/credential",
		CredentialRequest{SecretKey: goodKey, WebhookSecret: "whsec_abcdefghijklmnop"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	st := decodeBody[CredentialStatusResponse](t, rr)
	if st.ConfigState != "saved" || st.TestState != "success" {
		t.Errorf("status: got %+v", st)
	}
	if st.MaskedSecretKey != "sk_****" {
		t.Errorf("masked secret: got %q", st.MaskedSecretKey)
	}
	if st.MaskedWebhookSecret != "whsec_ab********nop" {
		t.Errorf("masked webhook: got %q", st.MaskedWebhookSecret)
	}
	if strings.Contains(rr.Body.String(), goodKey) {
		t.Error("response must not contain the raw secret")
	}
	if got := e.provider.connectivity.Load(); got != 1 {
		t.Errorf("connectivity calls: got %d, want 1", got)
	}
}

func TestSaveCredential_RejectedKeyIsStatusNotError(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodPut, APIPrefix+"/provider/credential", CredentialRequest{SecretKey: "sk_live_revoked"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	st := decodeBody[CredentialStatusResponse](t, rr)
	if st.ConfigState != "saved" || st.TestState != "failure" {
		t.Errorf("status: got %+v", st)
	}
	if st.Message != "Invalid API Key provided" {
		t.Errorf("message: got %q", st.Message)
	}
}

func TestTestCredential_NotConfigured(t *testing.T) {
	e := newTestEnv(t)
	expectError(t, e.do(t, http.MethodPost, APIPrefix+"/provider/credential/test", nil),
		http.StatusConflict, ErrorResponseCodeCredentialNotConfigured)
}

func TestTestCredential_RateLimited(t *testing.T) {
	e := newTestEnv(t)
	e.server.WithTestRateLimit(1)
	e.handler = e.server.Handler()
	saveGoodCredential(t, e)

	rr := e.do(t, http.MethodPost, APIPrefix+"/provider/credential/test", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("first test: got %d (%s)", rr.Code, rr.Body.String())
	}
	expectError(t, e.do(t, http.MethodPost, APIPrefix+"/provider/credential/test", nil),
		http.StatusTooManyRequests, ErrorResponseCodeRateLimited)

	if got := e.provider.connectivity.Load(); got != 2 {
		t.Errorf("connectivity calls: got %d, want 2 (save + one test)", got)
	}
}

func TestDeleteCredential(t *testing.T) {
	e := newTestEnv(t)
	saveGoodCredential(t, e)

	rr := e.do(t, http.MethodDelete, APIPrefix+"/provider/credential", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rr.Code)
	}
	rr = e.do(t, http.MethodGet, APIPrefix+"/provider/credential", nil)
	if st := decodeBody[CredentialStatusResponse](t, rr); st.ConfigState != "unset" || st.TestState != "untested" {
		t.Errorf("status after delete: got %+v", st)
	}
}

// --- logs ---

func TestListLogs_Search(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, APIPrefix+"/logs?q=login", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody[LogListResponse](t, rr)
	if resp.Count != 2 {
		t.Fatalf("count: got %d, want 2", resp.Count)
	}
	want := LogSummaryResponse{Total: 10, Error: 2, Warning: 3, Info: 3, Success: 2}
	if resp.Summary != want {
		t.Errorf("summary must ignore the filter: got %+v, want %+v", resp.Summary, want)
	}
	if resp.Items[0].TimestampDisplay == "" {
		t.Error("expected display timestamp")
	}
}

func TestListLogs_LevelAndCategory(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, APIPrefix+"/logs?level=error&category=all", nil)
	resp := decodeBody[LogListResponse](t, rr)
	if resp.Count != 2 {
		t.Errorf("error entries: got %d, want 2", resp.Count)
	}
	for _, it := range resp.Items {
		if it.Level != "error" {
			t.Errorf("unexpected level %q", it.Level)
		}
	}

	expectError(t, e.do(t, http.MethodGet, APIPrefix+"/logs?level=fatal", nil),
		http.StatusBadRequest, ErrorResponseCodeValidationFailed)
}

func TestAppendLog(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodPost, APIPrefix+"/logs", LogEntryRequest{
		Level: "warning", Category: "api", Message: "Card declined",
		Email: "ops@example.com", IP: "203.0.113.7",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	created := decodeBody[LogEntryResponse](t, rr)
	if created.ID == "" {
		t.Error("expected generated id")
	}

	rr = e.do(t, http.MethodGet, APIPrefix+"/logs?q=declined", nil)
	resp := decodeBody[LogListResponse](t, rr)
	if resp.Count != 1 || resp.Summary.Total != 11 {
		t.Errorf("after append: count %d, total %d", resp.Count, resp.Summary.Total)
	}

	expectError(t, e.do(t, http.MethodPost, APIPrefix+"/logs", LogEntryRequest{
		Level: "info", Category: "system", Message: "x", Email: "not-an-email",
	}), http.StatusBadRequest, ErrorResponseCodeValidationFailed)
	expectError(t, e.do(t, http.MethodPost, APIPrefix+"/logs", LogEntryRequest{
		Level: "info", Category: "billing-ish", Message: "x",
	}), http.StatusBadRequest, ErrorResponseCodeValidationFailed)
}

func TestListLogs_NoMatchKeepsSummary(t *testing.T) {
	e := newTestEnv(t)

	for _, q := range []string{"zzz-no-match", "%20%20"} {
		rr := e.do(t, http.MethodGet, APIPrefix+"/logs?q="+q+"&level=error", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("q=%q status: got %d (%s)", q, rr.Code, rr.Body.String())
		}
		resp := decodeBody[LogListResponse](t, rr)
		if resp.Count != 0 || len(resp.Items) != 0 {
			t.Errorf("q=%q: got %d items, want 0", q, resp.Count)
		}
		want := LogSummaryResponse{Total: 10, Error: 2, Warning: 3, Info: 3, Success: 2}
		if resp.Summary != want {
			t.Errorf("q=%q summary: got %+v, want %+v", q, resp.Summary, want)
		}
	}
}

func TestAppendLog_ExistingIDIsConflict(t *testing.T) {
	e := newTestEnv(t)

	expectError(t, e.do(t, http.MethodPost, APIPrefix+"/logs", LogEntryRequest{
		ID: "log-003", Level: "info", Category: "system", Message: "rewritten",
	}), http.StatusConflict, ErrorResponseCodeAlreadyExists)

	resp := decodeBody[LogListResponse](t, e.do(t, http.MethodGet, APIPrefix+"/logs?q=login", nil))
	if resp.Count != 2 {
		t.Errorf("login entries: got %d, want 2", resp.Count)
	}
	want := LogSummaryResponse{Total: 10, Error: 2, Warning: 3, Info: 3, Success: 2}
	if resp.Summary != want {
		t.Errorf("summary changed: got %+v, want %+v", resp.Summary, want)
	}
	for _, it := range resp.Items {
		if it.ID == "log-003" && (it.Level != "warning" || it.Message != "Failed login attempt") {
			t.Errorf("log-003 was rewritten: %+v", it)
		}
	}
}

func TestAppendLog_IDShape(t *testing.T) {
	e := newTestEnv(t)

	for _, id := range []string{"upload/42", "log:1", "a*b", strings.Repeat("x", 65)} {
		expectError(t, e.do(t, http.MethodPost, APIPrefix+"/logs", LogEntryRequest{
			ID: id, Level: "info", Category: "upload", Message: "slash entry",
		}), http.StatusBadRequest, ErrorResponseCodeValidationFailed)
	}

	rr := e.do(t, http.MethodPost, APIPrefix+"/logs", LogEntryRequest{
		ID: "upload_42", Level: "info", Category: "upload", Message: "slash entry",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody[LogListResponse](t, e.do(t, http.MethodGet, APIPrefix+"/logs?q=slash", nil))
	if resp.Count != 1 || resp.Items[0].ID != "upload_42" {
		t.Errorf("appended entry not listed: %+v", resp.Items)
	}
}

// --- ops ---

func TestHealthCheck(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rr.Code, rr.Body.String())
	}
	resp := decodeBody[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Checks["database"] != "ok" || resp.Checks["payment_provider"] != "ok" {
		t.Errorf("health: got %+v", resp)
	}
}

func TestHandleDomainError_Internal(t *testing.T) {
	e := newTestEnv(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	e.server.handleDomainError(rr, req, context.DeadlineExceeded)

	expectError(t, rr, http.StatusInternalServerError, ErrorResponseCodeInternalError)
}
