// Package infra provisions the throwaway Postgres the concurrency suite
// hammers, either via Docker or by reusing an externally supplied DSN.
package infra

import (
	"context"
	"fmt"
	"os"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// StressDB holds the container behind the suite's database. The field is
// nil when an external DSN was reused; Terminate is then a no-op.
type StressDB struct {
	container *postgres.PostgresContainer
}

// ProvisionPostgres returns a DSN for a Postgres 16 instance. An explicit
// override or STRESS_TEST_PG_DSN wins over starting a fresh container.
func ProvisionPostgres(ctx context.Context, overrideDSN string) (*StressDB, string, error) {
	if overrideDSN != "" {
		return &StressDB{}, overrideDSN, nil
	}
	if dsn := os.Getenv("STRESS_TEST_PG_DSN"); dsn != "" {
		return &StressDB{}, dsn, nil
	}

	ctr, err := postgres.Run(ctx,
		"postgres:16",
		postgres.WithDatabase("movemarket"),
		postgres.WithUsername("market"),
		postgres.WithPassword("market"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("run postgres container: %w", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = ctr.Terminate(ctx)
		return nil, "", fmt.Errorf("container connection string: %w", err)
	}
	return &StressDB{container: ctr}, dsn, nil
}

func (d *StressDB) Terminate(ctx context.Context) error {
	if d == nil || d.container == nil {
		return nil
	}
	return d.container.Terminate(ctx)
}
