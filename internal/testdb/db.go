// Package testdb spins up a disposable pgvector-enabled postgres for
// integration tests.
package testdb

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/snapdish/snapdish-api/internal/database"
)

// TestDB wraps a containerized database instance.
type TestDB struct {
	DB        *gorm.DB
	Container testcontainers.Container
}

// Close terminates the container.
func (td *TestDB) Close() error {
	if td.Container != nil {
		return td.Container.Terminate(context.Background())
	}
	return nil
}

// Setup starts a pgvector postgres container, connects and migrates the
// schema. Skipped unless SNAPDISH_PG_TESTS is set, so the default test run
// does not require docker.
func Setup(t *testing.T) *TestDB {
	t.Helper()

	if os.Getenv("SNAPDISH_PG_TESTS") == "" {
		t.Skip("set SNAPDISH_PG_TESTS=1 to run postgres integration tests")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections"),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test sslmode=disable",
		host, port.Port())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	return &TestDB{DB: db, Container: container}
}
