// Package sqlite provides a SQLite warehouse adapter backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapdq/pkg/adapter"

	_ "modernc.org/sqlite" // sqlite driver
)

// Adapter implements the adapter.Adapter interface for SQLite.
// Attached databases are addressed by schema prefix; there is no session
// default to switch, so UseDatabase only accepts the main database.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// Placeholder implements adapter.Adapter.
func (a *Adapter) Placeholder(_ int) string {
	return "?"
}

// Connect opens the database file at cfg.Path (":memory:" when empty).
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("opening sqlite database", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.Attach(db, cfg)
	return nil
}

// UseDatabase accepts "main" or the configured database path.
func (a *Adapter) UseDatabase(_ context.Context, name string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	if name == "main" || name == a.Cfg.Path {
		return nil
	}
	return &adapter.UnsupportedError{
		Adapter:   "sqlite",
		Operation: "UseDatabase",
		Detail:    fmt.Sprintf("cannot switch to %q; qualify tables with an attached schema instead", name),
	}
}

// ResetDatabase is a no-op: the session never leaves the main database.
func (a *Adapter) ResetDatabase(_ context.Context) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	return nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
