package admin

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/internal/config"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runMigrations(cfg.DatabaseURL)
		},
	}
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && verr != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", verr)
	}

	switch {
	case verr == migrate.ErrNilVersion:
		log.Println("migrations: database is up to date (no migrations applied)")
	case dirty:
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	case err == migrate.ErrNoChange:
		log.Printf("migrations: database is up to date (version %d)", version)
	default:
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
