package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks payment provider reachability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
