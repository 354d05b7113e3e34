package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
	logpkg "github.com/jorgekof/hostreamly-admin/internal/logger"
	billinguc "github.com/jorgekof/hostreamly-admin/internal/usecase/billing"
	credentialuc "github.com/jorgekof/hostreamly-admin/internal/usecase/credential"
	healthuc "github.com/jorgekof/hostreamly-admin/internal/usecase/health"
	logsuc "github.com/jorgekof/hostreamly-admin/internal/usecase/logs"
)

// APIPrefix is the mount point of all business routes.
const APIPrefix = "/api/v1"

const maxBodyBytes = 1 << 20

var accountIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the admin dashboard API.
type Server struct {
	billing       *billinguc.Service
	credentials   *credentialuc.Service
	logs          *logsuc.Service
	health        *healthuc.Service
	formatter     *money.Formatter
	logger        *zap.Logger
	validate      *validator.Validate
	testLimiter   *limiter.Limiter
	errorHandlers []errorHandler
	now           func() time.Time
}

// NewServer creates an HTTP API server.
func NewServer(
	billing *billinguc.Service,
	credentials *credentialuc.Service,
	logs *logsuc.Service,
	health *healthuc.Service,
	formatter *money.Formatter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		billing:     billing,
		credentials: credentials,
		logs:        logs,
		health:      health,
		formatter:   formatter,
		logger:      logger,
		validate:    newValidator(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	s.errorHandlers = []errorHandler{
		fieldErrorHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrNoOverage, http.StatusBadRequest, ErrorResponseCodeNoOverage),
		sentinelHandler(domain.ErrInvalidCredential, http.StatusBadRequest, ErrorResponseCodeInvalidCredential),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrCredentialNotConfigured,
			http.StatusConflict, ErrorResponseCodeCredentialNotConfigured),
		sentinelHandler(domain.ErrOperationInProgress, http.StatusConflict, ErrorResponseCodeOperationInProgress),
		sentinelHandler(domain.ErrInvalidTransition, http.StatusConflict, ErrorResponseCodeInvalidTransition),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorResponseCodeAlreadyExists),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, ErrorResponseCodeProviderUnavailable),
	}
	return s.WithTestRateLimit(6)
}

// WithTestRateLimit caps connectivity tests per client IP. perMinute <= 0 disables the cap.
func (s *Server) WithTestRateLimit(perMinute float64) *Server {
	if perMinute <= 0 {
		s.testLimiter = nil
		return s
	}
	lmt := tollbooth.NewLimiter(perMinute/60, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
		ExpireJobInterval:    time.Minute,
	})
	lmt.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
	lmt.SetMessage("too many connectivity tests, try again later")
	s.testLimiter = lmt
	return s
}

// WithClock overrides the time stamped on ingested usage snapshots.
func (s *Server) WithClock(now func() time.Time) *Server {
	if now != nil {
		s.now = now
	}
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Route("/accounts/{account}", func(r chi.Router) {
			r.Use(s.accountParam)
			r.Get("/billing", s.GetBillingSummary)
			r.Post("/billing/preview", s.PreviewBilling)
			r.Get("/billing/preferences", s.GetPreferences)
			r.Put("/billing/preferences", s.SavePreferences)
			r.Post("/billing/payment-session", s.CreatePaymentSession)
			r.Get("/billing/charges", s.ListCharges)
			r.Post("/billing/charges", s.RecordCharge)
			r.Patch("/billing/charges/{id}", s.UpdateChargeStatus)
			r.Get("/usage", s.GetUsage)
			r.Put("/usage", s.PutUsage)
		})

		r.Get("/provider/credential", s.GetCredentialStatus)
		r.Put("/provider/credential", s.SaveCredential)
		r.Delete("/provider/credential", s.DeleteCredential)
		r.With(s.rateLimit(s.testLimiter)).Post("/provider/credential/test", s.TestCredential)

		r.Get("/logs", s.ListLogs)
		r.Post("/logs", s.AppendLog)
	})
}

// Handler returns a router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) accountParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account := chi.URLParam(r, "account")
		if !accountIDPattern.MatchString(account) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
				"account must be 1-64 letters, digits, '-' or '_'")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(lmt *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if lmt == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpErr := tollbooth.LimitByRequest(lmt, w, r); httpErr != nil {
				logpkg.FromContext(r.Context(), s.logger).Warn("rate limited",
					zap.String("path", r.URL.Path))
				writeError(w, httpErr.StatusCode, ErrorResponseCodeRateLimited, httpErr.Message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// decode reads a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

// newValidator registers key_id, the storage-safe identifier shape shared with account ids.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("key_id", func(fl validator.FieldLevel) bool {
		return accountIDPattern.MatchString(fl.Field().String())
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNoOverage,
		domain.ErrInvalidCredential,
		domain.ErrNotFound,
		domain.ErrCredentialNotConfigured,
		domain.ErrOperationInProgress,
		domain.ErrInvalidTransition,
		domain.ErrAlreadyExists,
		domain.ErrProviderUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// fieldErrorHandler reports which input field failed validation.
func fieldErrorHandler(w http.ResponseWriter, err error, _ string) bool {
	var fe *domain.FieldError
	if !errors.As(err, &fe) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, fe.Error())
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
