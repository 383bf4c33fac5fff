// Package testutils starts the Postgres and NATS containers used by
// integration tests. Tests that call into it are skipped with -short or
// when no container provider is available.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	bowlingmigrations "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/infrastructure/repositories/migrations"
	"github.com/testcontainers/testcontainers-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// SkipUnlessIntegration skips t in short mode or when Docker is unreachable.
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// NewTestDB starts a Postgres container, applies the bowling migrations, and
// returns a connection. Everything is released when t finishes.
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()
	SkipUnlessIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgContainer, connStr, err := SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

// NewTestNATS starts a NATS container and returns its client URL.
func NewTestNATS(t *testing.T) string {
	t.Helper()
	SkipUnlessIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	natsContainer, natsURL, err := SetupNatsContainer(ctx)
	if err != nil {
		t.Fatalf("nats container: %v", err)
	}
	t.Cleanup(func() {
		if err := natsContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate NATS container: %v", err)
		}
	})
	return natsURL
}

// RunMigrations initializes the migration tables and applies every bowling
// migration.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, bowlingmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run bowling migrations: %w", err)
	}
	return nil
}

// TruncateTables empties the given tables between subtests.
func TruncateTables(ctx context.Context, db *bun.DB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE")
	return err
}
