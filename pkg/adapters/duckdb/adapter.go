// Package duckdb provides a DuckDB warehouse adapter.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// OptionExtensions lists extensions (comma-separated) to install and load
// after connecting. Every other option is applied as a session setting.
const OptionExtensions = "extensions"

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	catalog string // default catalog after Connect
}

// New creates a new DuckDB adapter instance.
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
	return "duckdb"
}

// Placeholder implements adapter.Adapter.
func (a *Adapter) Placeholder(_ int) string {
	return "?"
}

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.Attach(db, cfg)

	if err := a.applyOptions(ctx, cfg.Options); err != nil {
		_ = a.Close()
		a.DB = nil
		return err
	}
	if err := a.setSchema(ctx, cfg.Schema); err != nil {
		_ = a.Close()
		a.DB = nil
		return err
	}
	if err := a.DB.QueryRowContext(ctx, "SELECT current_database()").Scan(&a.catalog); err != nil {
		_ = a.Close()
		a.DB = nil
		return fmt.Errorf("failed to read current database: %w", err)
	}
	return nil
}

func (a *Adapter) setSchema(ctx context.Context, schema string) error {
	if schema == "" {
		return nil
	}
	if err := a.Exec(ctx, "SET schema = '"+escapeLiteral(schema)+"'"); err != nil {
		return fmt.Errorf("failed to set schema %q: %w", schema, err)
	}
	return nil
}

// applyOptions loads extensions and applies session settings in key order.
func (a *Adapter) applyOptions(ctx context.Context, options map[string]string) error {
	if exts, ok := options[OptionExtensions]; ok {
		for _, ext := range strings.Split(exts, ",") {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if err := a.Exec(ctx, fmt.Sprintf("INSTALL %s; LOAD %s", ext, ext)); err != nil {
				return fmt.Errorf("failed to load extension %q: %w", ext, err)
			}
		}
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		if k != OptionExtensions {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		stmt := fmt.Sprintf("SET %s = '%s'", k, escapeLiteral(options[k]))
		if err := a.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply setting %q: %w", k, err)
		}
	}
	return nil
}

// UseDatabase switches the default catalog (or catalog.schema).
func (a *Adapter) UseDatabase(ctx context.Context, name string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	a.Logger.Debug("switching database", slog.String("database", name))
	if err := a.Exec(ctx, "USE "+adapter.QuoteIdent(name)); err != nil {
		return fmt.Errorf("failed to use database %q: %w", name, err)
	}
	return nil
}

// ResetDatabase switches back to the catalog and schema set up by Connect.
func (a *Adapter) ResetDatabase(ctx context.Context) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	a.Logger.Debug("restoring default database", slog.String("database", a.catalog))
	if err := a.Exec(ctx, "USE "+adapter.QuoteIdent(a.catalog)); err != nil {
		return fmt.Errorf("failed to restore database %q: %w", a.catalog, err)
	}
	return a.setSchema(ctx, a.Cfg.Schema)
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
