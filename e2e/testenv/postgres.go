package testenv

import (
	"context"
	"fmt"
	"time"

	"github.com/gti/practice-automation-e2e/internal/report"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// PostgresContainer holds an ephemeral PostgreSQL container with a migrated
// results store.
type PostgresContainer struct {
	// Container is the testcontainers container instance.
	Container testcontainers.Container

	// Store is the results store connected to the container database.
	Store *report.Store

	// ConnectionString is the PostgreSQL connection URL.
	ConnectionString string
}

// PostgresConfig holds configuration for the PostgreSQL container.
type PostgresConfig struct {
	// Image is the PostgreSQL Docker image (default: postgres:16-alpine).
	Image string

	// Database is the database name (default: widget_e2e).
	Database string

	// Username is the database user (default: test_user).
	Username string

	// Password is the database password (default: test_pass).
	Password string
}

// DefaultPostgresConfig returns default PostgreSQL container configuration.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Image:    "postgres:16-alpine",
		Database: "widget_e2e",
		Username: "test_user",
		Password: "test_pass",
	}
}

// StartPostgres spins up an ephemeral PostgreSQL container for results.
//
// The results schema is migrated before returning. Always call the cleanup
// function when done, typically with defer:
//
//	pg, cleanup, err := StartPostgres(ctx, DefaultPostgresConfig(), logger)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
func StartPostgres(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*PostgresContainer, func(), error) {
	container, err := postgres.Run(ctx,
		cfg.Image,
		postgres.WithDatabase(cfg.Database),
		postgres.WithUsername(cfg.Username),
		postgres.WithPassword(cfg.Password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	store, closePool, err := report.Connect(ctx, connStr, logger)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, nil, fmt.Errorf("failed to connect results store: %w", err)
	}

	pg := &PostgresContainer{
		Container:        container,
		Store:            store,
		ConnectionString: connStr,
	}

	cleanup := func() {
		closePool()
		_ = container.Terminate(context.Background())
	}

	return pg, cleanup, nil
}
