package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domlog "github.com/jorgekof/hostreamly-admin/internal/domain/logentry"
)

// Result is a filtered view plus counts over the unfiltered collection.
type Result struct {
	Entries []domlog.Entry
	Summary domlog.Summary
}

// NewEntry is an entry to append. Zero ID and Timestamp are filled in.
type NewEntry struct {
	ID        string
	Timestamp time.Time
	Level     domlog.Level
	Category  domlog.Category
	Message   string
	Optional  domlog.Optional
}

// Service serves the system log viewer.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a log service.
func New(repo Repository) *Service {
	return &Service{
		repo:   repo,
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
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

// Filter applies f to the whole collection. Summary ignores f.
func (s *Service) Filter(ctx context.Context, f domlog.Filter) (Result, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list log entries: %w", err)
	}
	return Result{
		Entries: f.Apply(all),
		Summary: domlog.Summarize(all),
	}, nil
}

// Append validates and stores an entry.
func (s *Service) Append(ctx context.Context, in NewEntry) (domlog.Entry, error) {
	if in.ID == "" {
		in.ID = s.newID()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = s.now()
	}
	e, err := domlog.New(in.ID, in.Timestamp, in.Level, in.Category, in.Message, in.Optional)
	if err != nil {
		return domlog.Entry{}, err
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return domlog.Entry{}, fmt.Errorf("append log entry: %w", err)
	}
	return e, nil
}

// SeedSample loads the built-in sample set into an empty collection.
func (s *Service) SeedSample(ctx context.Context) error {
	n, err := s.repo.Seed(ctx, domlog.SampleEntries(s.now()))
	if err != nil {
		return fmt.Errorf("seed log entries: %w", err)
	}
	if n > 0 {
		s.logger.Info("Seeded sample log entries", zap.Int("count", n))
	}
	return nil
}
