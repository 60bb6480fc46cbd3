package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/kelas/internal/identity/store"
	"github.com/aussiebroadwan/kelas/internal/identity/store/drivers/postgres"
	"github.com/aussiebroadwan/kelas/internal/identity/store/storetest"
)

// startPostgres runs one container for the whole test and returns its DSN.
// Tests are skipped when Docker is not available.
func startPostgres(t *testing.T) string {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()
	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("kelas_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestStore(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := postgres.NewStore(ctx, postgres.Config{DSN: dsn, MaxConns: 5, MinConns: 1})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		require.NoError(t, s.ApplyMigrations())
		truncate(t, s)
		return s
	})
}

// truncate empties every table so each subtest starts clean on the shared
// container.
func truncate(t *testing.T, s *postgres.Store) {
	t.Helper()
	require.NoError(t, s.Truncate(context.Background()))
}
