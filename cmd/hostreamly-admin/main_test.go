package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	dombilling "github.com/jorgekof/hostreamly-admin/internal/domain/billing"
	domcred "github.com/jorgekof/hostreamly-admin/internal/domain/credential"
	"github.com/jorgekof/hostreamly-admin/internal/domain/limit"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
	logpkg "github.com/jorgekof/hostreamly-admin/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := jsonRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/logs", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "internal_error" {
		t.Errorf("code: got %q", body["code"])
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Error("expected panic to be logged")
	}
}

func TestRouter_RequestIDAndCanonicalLine(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core), []string{"http://localhost:5173"}, nil)

	var sawLogger bool
	r.Get("/ping", func(w http.ResponseWriter, req *http.Request) {
		sawLogger = logpkg.FromContext(req.Context()).Core().Enabled(zapcore.InfoLevel)
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("status: got %d", rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("cors: got %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
	if !sawLogger {
		t.Error("expected request logger in context")
	}

	lines := logs.FilterMessage("http_request").All()
	if len(lines) != 1 {
		t.Fatalf("canonical lines: got %d, want 1", len(lines))
	}
	fields := lines[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field: got %v", fields["status"])
	}
	if fields["request_id"] == "" {
		t.Error("expected request_id field")
	}
}

func TestRouter_AuthEnabled(t *testing.T) {
	r := newRouter(zap.NewNop(), nil, []string{"admin-key"})
	r.Get("/api/v1/logs", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/logs", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without key: got %d, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs", http.NoBody)
	req.Header.Set("Authorization", "Bearer admin-key")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with key: got %d, want 200", rr.Code)
	}
}

func TestPrintSummary(t *testing.T) {
	storageLimit, _ := limit.Bounded(100)
	snap, err := dombilling.NewSnapshot(120, 30, storageLimit, limit.Unlimited(), time.Now())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	prefs, err := dombilling.NewPreferences(false, 0.10, 0.05, 0.8)
	if err != nil {
		t.Fatalf("prefs: %v", err)
	}
	f, err := money.NewFormatter("usd", "en-US")
	if err != nil {
		t.Fatalf("formatter: %v", err)
	}

	var buf bytes.Buffer
	printSummary(&buf, f, dombilling.Summarize(snap, prefs))
	out := buf.String()

	for _, want := range []string{
		"storage:   120 GB used of 100, overage 20 GB, $2.00",
		"bandwidth: 30 GB used of unlimited, overage 0 GB, $0.00",
		"total:     $2.00",
		"warning:   storage quota exceeded",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCredentialStatus(t *testing.T) {
	var buf bytes.Buffer
	printCredentialStatus(&buf, domcred.Status{
		Test:            domcred.TestFailure,
		Message:         "Invalid API Key provided",
		MaskedSecretKey: "sk_live_********abcd",
	})
	out := buf.String()
	if !strings.Contains(out, "sk_live_********abcd") || !strings.Contains(out, "failure") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "tested at") {
		t.Error("zero tested_at must be omitted")
	}
}
