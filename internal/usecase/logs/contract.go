package logs

import (
	"context"

	domlog "github.com/jorgekof/hostreamly-admin/internal/domain/logentry"
)

// Repository stores system log entries.
type Repository interface {
	List(ctx context.Context) ([]domlog.Entry, error)
	Append(ctx context.Context, e domlog.Entry) error
	Seed(ctx context.Context, entries []domlog.Entry) (int, error)
}
