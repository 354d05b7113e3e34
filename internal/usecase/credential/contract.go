package credential

import (
	"context"

	domcred "github.com/jorgekof/hostreamly-admin/internal/domain/credential"
)

// Repository stores the single provider credential.
type Repository interface {
	Get(ctx context.Context) (domcred.Stored, error)
	Save(ctx context.Context, s domcred.Stored) error
	SaveTestResult(ctx context.Context, res domcred.TestResult) error
	Delete(ctx context.Context) error
}

// ConnectivityTester checks a secret against the provider.
type ConnectivityTester interface {
	TestConnection(ctx context.Context, secret string) domcred.ProbeResult
}
