package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jorgekof/hostreamly-admin/internal/domain"
	domcred "github.com/jorgekof/hostreamly-admin/internal/domain/credential"
	"github.com/jorgekof/hostreamly-admin/internal/metrics"
	"github.com/jorgekof/hostreamly-admin/internal/usecase/inflight"
)

// guardKey serializes save, test and delete. There is one credential per deployment.
const guardKey = "provider-credential"

// Service manages the provider credential and its connectivity checks.
type Service struct {
	repo     Repository
	tester   ConnectivityTester
	prefix   string
	fallback string
	guard    *inflight.Guard
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	saving  bool
	probing bool
}

// New creates a credential service. fallback is the configured secret used
// when nothing is stored; it may be empty.
func New(repo Repository, tester ConnectivityTester, prefix, fallback string) *Service {
	if prefix == "" {
		prefix = domcred.DefaultPrefix
	}
	return &Service{
		repo:     repo,
		tester:   tester,
		prefix:   prefix,
		fallback: fallback,
		guard:    inflight.New(),
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Save validates and persists the credential, then runs exactly one connectivity test.
// A malformed secret fails with domain.ErrInvalidCredential before any I/O.
func (s *Service) Save(ctx context.Context, secretKey, webhookSecret string) (domcred.Status, error) {
	cred, err := domcred.New(secretKey, webhookSecret, s.prefix)
	if err != nil {
		return domcred.Status{}, err
	}

	release, err := s.guard.Acquire(guardKey)
	if err != nil {
		return domcred.Status{}, fmt.Errorf("save credential: %w", err)
	}
	defer release()

	s.setSaving(true)
	stored := domcred.Stored{
		Credential: cred,
		LastTest:   domcred.TestResult{State: domcred.TestUntested},
		UpdatedAt:  s.now(),
	}
	err = s.repo.Save(ctx, stored)
	s.setSaving(false)
	if err != nil {
		s.logger.Error("Failed to save provider credential", zap.Error(err))
		return domcred.Status{}, fmt.Errorf("save credential: %w", err)
	}
	s.logger.Info("Provider credential saved",
		zap.String("secret_key", domcred.Mask(cred.SecretKey())),
		zap.Bool("webhook_secret", cred.WebhookSecret() != ""),
	)

	res, err := s.runTest(ctx, cred.SecretKey())
	if err != nil {
		return domcred.Status{}, err
	}
	stored.LastTest = res
	return domcred.StatusOf(stored), nil
}

// TestConnection checks the stored credential against the provider.
// A rejected key is reported in the returned status, not as an error.
func (s *Service) TestConnection(ctx context.Context) (domcred.Status, error) {
	release, err := s.guard.Acquire(guardKey)
	if err != nil {
		return domcred.Status{}, fmt.Errorf("test connection: %w", err)
	}
	defer release()

	stored, err := s.repo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domcred.Status{}, fmt.Errorf("test connection: %w", domain.ErrCredentialNotConfigured)
	}
	if err != nil {
		return domcred.Status{}, fmt.Errorf("get credential: %w", err)
	}

	res, err := s.runTest(ctx, stored.Credential.SecretKey())
	if err != nil {
		return domcred.Status{}, err
	}
	stored.LastTest = res
	return domcred.StatusOf(stored), nil
}

// Status returns the masked credential status, including in-flight phases.
func (s *Service) Status(ctx context.Context) (domcred.Status, error) {
	stored, err := s.repo.Get(ctx)
	var st domcred.Status
	switch {
	case errors.Is(err, domain.ErrNotFound):
		st = domcred.UnsetStatus()
	case err != nil:
		return domcred.Status{}, fmt.Errorf("get credential: %w", err)
	default:
		st = domcred.StatusOf(stored)
	}

	s.mu.Lock()
	if s.saving {
		st.Config = domcred.ConfigSaving
	}
	if s.probing {
		st.Test = domcred.TestTesting
	}
	s.mu.Unlock()
	return st, nil
}

// Delete removes the stored credential.
func (s *Service) Delete(ctx context.Context) error {
	release, err := s.guard.Acquire(guardKey)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	defer release()

	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	s.logger.Info("Provider credential deleted")
	return nil
}

// Secret returns the stored secret, or the configured fallback.
func (s *Service) Secret(ctx context.Context) (string, error) {
	stored, err := s.repo.Get(ctx)
	switch {
	case err == nil:
		return stored.Credential.SecretKey(), nil
	case !errors.Is(err, domain.ErrNotFound):
		return "", fmt.Errorf("get credential: %w", err)
	case s.fallback != "":
		return s.fallback, nil
	default:
		return "", domain.ErrCredentialNotConfigured
	}
}

func (s *Service) runTest(ctx context.Context, secret string) (domcred.TestResult, error) {
	s.setTesting(true)
	probe := s.tester.TestConnection(ctx, secret)
	s.setTesting(false)

	res := probe.Result(s.now())
	metrics.CredentialTestsTotal.WithLabelValues(string(res.State)).Inc()
	if probe.OK {
		s.logger.Info("Provider connectivity test succeeded")
	} else {
		s.logger.Warn("Provider connectivity test failed",
			zap.Int("status", probe.StatusCode),
			zap.String("message", probe.Message),
		)
	}

	if err := s.repo.SaveTestResult(ctx, res); err != nil {
		return domcred.TestResult{}, fmt.Errorf("save test result: %w", err)
	}
	return res, nil
}

func (s *Service) setSaving(v bool) {
	s.mu.Lock()
	s.saving = v
	s.mu.Unlock()
}

func (s *Service) setTesting(v bool) {
	s.mu.Lock()
	s.probing = v
	s.mu.Unlock()
}
