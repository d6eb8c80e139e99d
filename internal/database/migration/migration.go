// Package migration applies the embedded schema migrations.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var migrationsFS embed.FS

// Source returns the embedded migration files rooted at their directory.
func Source() (fs.FS, error) {
	return fs.Sub(migrationsFS, "sql")
}

// EnsureMigrated applies every pending up migration on a dedicated connection
// from db. An up-to-date schema is a no-op. db stays open.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(slog.String("component", "database"), slog.String("db_host", dbHost))
	log.Info("db_migration_check", slog.String("status", "starting"))

	fail := func(step string, err error) error {
		log.Error("db_migration_failed",
			slog.String("status", "error"),
			slog.String("migration_step", step),
			slog.String("error_message", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("migration %s: %w", step, err)
	}

	src, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return fail("open_source", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fail("acquire_conn", err)
	}
	drv, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return fail("init_driver", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		_ = drv.Close()
		return fail("init_migrator", err)
	}
	// Closes the source and the dedicated conn, not db.
	defer m.Close()
	m.Log = &stepLogger{log: log}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			select {
			case m.GracefulStop <- true:
			default:
			}
		case <-done:
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("db_migration_skip",
				slog.String("status", "success"),
				slog.String("msg_detail", "schema already up to date"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			return nil
		}
		return fail("up", err)
	}

	version, dirty, _ := m.Version()
	log.Info("db_migration_success",
		slog.String("status", "success"),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

// stepLogger adapts migrate.Logger to slog, one event per applied file.
type stepLogger struct {
	log *slog.Logger
}

func (l *stepLogger) Printf(format string, v ...any) {
	l.log.Info("db_migration_step",
		slog.String("status", "success"),
		slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, v...))),
	)
}

func (l *stepLogger) Verbose() bool { return false }
