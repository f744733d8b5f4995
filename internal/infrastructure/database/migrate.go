package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	iofs "github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homehub/assistant-api/migrations"
)

// Migrate applies all pending SQL migrations bundled with the service.
func Migrate(ctx context.Context, gormDB *gorm.DB, log zerolog.Logger) (err error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("retrieve sql db: %w", err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire dedicated connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("initialize postgres driver: %w", err)
	}
	defer func() {
		if closeErr := driver.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration connection: %w", closeErr)
		}
	}()

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	defer func() {
		if closeErr := source.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close migration source: %w", closeErr)
		}
	}()

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	version, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("no migrations applied yet")
	case err != nil:
		log.Warn().Err(err).Msg("reading migration version failed")
	default:
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current migration state")
	}

	// Up refuses to run while the dirty flag is set.
	if dirty {
		if forceErr := migrator.Force(int(version)); forceErr != nil {
			return fmt.Errorf("force version %d: %w", version, forceErr)
		}
		log.Warn().Uint("version", version).Msg("cleared dirty migration state")
	}

	if err = migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("database schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	if finalVersion, _, versionErr := migrator.Version(); versionErr == nil {
		log.Info().Uint("version", finalVersion).Msg("migrations applied")
	}
	return nil
}
