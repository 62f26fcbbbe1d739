package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	appmigrations "github.com/wolfman30/apptline/migrations"
	"github.com/wolfman30/apptline/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logger := logging.Default()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	m, cleanup, err := newMigrator(databaseURL)
	if err != nil {
		logger.Error("failed to initialize migrator", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Usage: migrate [force <version>]
	if len(os.Args) >= 3 && os.Args[1] == "force" {
		version, err := strconv.Atoi(os.Args[2])
		if err != nil {
			logger.Error("invalid version", "arg", os.Args[2], "error", err)
			os.Exit(1)
		}
		if err := m.Force(version); err != nil {
			logger.Error("failed to force schema version", "version", version, "error", err)
			os.Exit(1)
		}
		logger.Info("schema version forced", "version", version)
		return
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations complete")
}

// newMigrator wires the embedded migration files to the target database. The
// returned cleanup closes both the migrator and the connection.
func newMigrator(databaseURL string) (*migrate.Migrate, func(), error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("migrate: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: ping db: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: db driver: %w", err)
	}
	srcDriver, err := iofs.New(appmigrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: create migrator: %w", err)
	}
	cleanup := func() {
		_, _ = m.Close()
		_ = db.Close()
	}
	return m, cleanup, nil
}
