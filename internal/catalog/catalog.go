// Package catalog keeps a SQLite history of conversion runs.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// timeLayout is fixed width so started_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultListLimit is used by ListRuns when limit is not positive.
const DefaultListLimit = 20

// Run is one conversion attempt.
type Run struct {
	ID           string
	Source       string
	Name         string
	OutputDir    string
	Layout       string
	Status       string
	Error        string
	Decoded      int
	Selected     int
	Lines        int
	Skipped      int
	MaxParticles int
	TargetSize   float64
	MinOpacity   float64
	StartedAt    time.Time
	Duration     time.Duration
}

// Catalog is a handle on the run database.
type Catalog struct {
	db *sql.DB
}

var migrateLog = log.New(io.Discard, "[migrate] ", log.LstdFlags|log.Lmicroseconds)

// SetLogWriter routes migration progress messages to w.
func SetLogWriter(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	migrateLog.SetOutput(w)
}

// Open opens (creating if needed) the catalog at path and applies any
// pending migrations. Use ":memory:" for a throwaway catalog.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Batch conversions record concurrently; one connection serialises
	// writers and keeps an in-memory database shared.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}
	return m, nil
}

// migrateUp applies pending migrations. m is not closed because that
// would close the shared database handle.
func (c *Catalog) migrateUp() error {
	m, err := c.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Version returns the applied schema version and dirty flag.
func (c *Catalog) Version() (uint, bool, error) {
	m, err := c.newMigrate()
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	migrateLog.Printf(format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}

// RecordRun inserts r, replacing any run with the same ID.
func (c *Catalog) RecordRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("catalog: run has no ID")
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			run_id, source, name, output_dir, layout, status, error,
			decoded, selected, lines, skipped,
			max_particles, target_size, min_opacity,
			started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.Name, r.OutputDir, r.Layout, r.Status, r.Error,
		r.Decoded, r.Selected, r.Lines, r.Skipped,
		r.MaxParticles, r.TargetSize, r.MinOpacity,
		r.StartedAt.UTC().Format(timeLayout), r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first.
func (c *Catalog) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT run_id, source, name, output_dir, layout, status, error,
			decoded, selected, lines, skipped,
			max_particles, target_size, min_opacity,
			started_at, duration_ms
		FROM runs
		ORDER BY started_at DESC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			started    string
			durationMs int64
		)
		if err := rows.Scan(
			&r.ID, &r.Source, &r.Name, &r.OutputDir, &r.Layout, &r.Status, &r.Error,
			&r.Decoded, &r.Selected, &r.Lines, &r.Skipped,
			&r.MaxParticles, &r.TargetSize, &r.MinOpacity,
			&started, &durationMs,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, started, err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
