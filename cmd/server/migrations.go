package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashcard-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/spf13/pflag"
)

const (
	migrateUp      = "up"
	migrateDown    = "down"
	migrateReset   = "reset"
	migrateStatus  = "status"
	migrateVersion = "version"
	migrateCreate  = "create"

	// migrationsSourceDir is where new migration files are written, relative
	// to the repository root.
	migrationsSourceDir = "internal/platform/postgres/" + postgres.MigrationsDir
)

// slogGooseLogger routes goose output through slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level. goose's default logger exits the process
// here; the command returns the error instead.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// runMigrate loads configuration, connects and runs one goose command
// against the embedded migrations.
func runMigrate(ctx context.Context, flags *pflag.FlagSet, command string) error {
	cfg, err := loadAppConfig(flags)
	if err != nil {
		return err
	}
	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}
	logger = logger.With(slog.String("component", "migrations"), slog.String("command", command))

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", slog.String("error", err.Error()))
		}
	}()

	return executeMigration(ctx, db, command, logger)
}

// executeMigration runs command on db.
func executeMigration(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(postgres.Migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := postgres.MigrationsDir
	var err error
	switch command {
	case migrateUp:
		err = goose.UpContext(ctx, db, dir)
	case migrateDown:
		err = goose.DownContext(ctx, db, dir)
	case migrateReset:
		err = goose.ResetContext(ctx, db, dir)
	case migrateStatus:
		err = goose.StatusContext(ctx, db, dir)
	case migrateVersion:
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			logger.Info("current schema version", slog.Int64("version", version))
		}
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	logger.Info("migration command completed")
	return nil
}

// createMigration writes a new timestamped SQL migration into the source tree.
func createMigration(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("migration name cannot be empty")
	}
	goose.SetLogger(&slogGooseLogger{logger: slog.Default().With(slog.String("component", "migrations"))})
	if err := goose.Create(nil, migrationsSourceDir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration %s: %w", name, err)
	}
	return nil
}
