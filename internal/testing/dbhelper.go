// Package testing provides helpers for integration tests that need a live
// PostgreSQL: a shared testcontainer, per-test databases and a wired loader.
package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgload/internal/db"
	"github.com/vvka-141/pgload/internal/loader"
	"github.com/vvka-141/pgload/internal/logging"
	"github.com/vvka-141/pgload/internal/sqlbuilder"
	"github.com/vvka-141/pgload/internal/testinfra"
)

// TestConnEnvVar overrides the testcontainer with an existing server.
const TestConnEnvVar = "PGLOAD_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		ctx := context.Background()
		container, err := testinfra.StartSimplePostgres(ctx)
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: PGLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnvVar); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
// Returns the test connection string if available, otherwise skips the test.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// CreateTestDB creates a fresh database, runs seedSQL in it and returns a
// connection string pointing at it. The database is dropped on cleanup.
func CreateTestDB(t *testing.T, connString, seedSQL string) string {
	t.Helper()

	ctx := context.Background()
	dbName := "pgload_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	admin, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	defer admin.Close()

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}
	t.Cleanup(func() { CleanupTestDB(t, connString, dbName) })

	target := targetConnString(t, connString, dbName)
	if seedSQL != "" {
		conn, err := pgx.Connect(ctx, target)
		if err != nil {
			t.Fatalf("Failed to connect to %s: %v", dbName, err)
		}
		defer conn.Close(ctx)
		if _, err := conn.Exec(ctx, seedSQL); err != nil {
			t.Fatalf("Failed to seed %s: %v", dbName, err)
		}
	}
	return target
}

// CleanupTestDB drops the test database.
// Safe to call multiple times (uses DROP DATABASE IF EXISTS).
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	terminateQuery := `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
	if _, err := pool.Exec(ctx, terminateQuery, dbName); err != nil {
		t.Logf("Warning: Failed to terminate connections to %s: %v", dbName, err)
	}

	dropQuery := fmt.Sprintf("DROP DATABASE IF EXISTS %s", pgx.Identifier{dbName}.Sanitize())
	if _, err := pool.Exec(ctx, dropQuery); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", dbName, err)
	}
}

func targetConnString(t *testing.T, connString, dbName string) string {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	config.Database = dbName
	return db.BuildConnectionString(config)
}

// ConnectTestDB opens a pool through the standard connector, the same path
// the CLI takes. The pool is closed when the test completes.
func ConnectTestDB(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	pool, err := db.NewStandardConnector(config).Connect(context.Background())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewTestLoader wires a RowLoader to pool with the production adapter and builder.
func NewTestLoader(t *testing.T, pool *pgxpool.Pool, opts ...loader.Option) *loader.RowLoader {
	t.Helper()

	opts = append([]loader.Option{loader.WithLogger(logging.NewNullLogger())}, opts...)
	l, err := loader.New(db.NewPoolAdapter(pool), sqlbuilder.New(), opts...)
	if err != nil {
		t.Fatalf("Failed to create loader: %v", err)
	}
	return l
}
