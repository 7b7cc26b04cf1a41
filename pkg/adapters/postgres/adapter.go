// Package postgres provides a PostgreSQL warehouse adapter.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/leapdq/pkg/adapter"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
//
// PostgreSQL cannot switch databases on an open connection, so UseDatabase
// selects a schema through search_path, matching warehouses where the
// query "database" is a schema.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgres"
}

// Placeholder implements adapter.Adapter.
func (a *Adapter) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	connCfg, err := pgx.ParseConfig(buildPostgresDSN(cfg))
	if err != nil {
		return fmt.Errorf("invalid postgres configuration: %w", err)
	}

	a.Logger.Debug("connecting to postgres", slog.String("host", connCfg.Host), slog.String("database", connCfg.Database))

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.Attach(db, cfg)
	return nil
}

// UseDatabase sets the search_path to the named schema.
func (a *Adapter) UseDatabase(ctx context.Context, name string) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	a.Logger.Debug("switching schema", slog.String("schema", name))
	if err := a.Exec(ctx, "SET search_path TO "+adapter.QuoteIdent(name)); err != nil {
		return fmt.Errorf("failed to use schema %q: %w", name, err)
	}
	return nil
}

// ResetDatabase restores the search_path the connection started with,
// including one set through the connection options.
func (a *Adapter) ResetDatabase(ctx context.Context) error {
	if a.DB == nil {
		return adapter.ErrNotConnected
	}
	if err := a.Exec(ctx, "RESET search_path"); err != nil {
		return fmt.Errorf("failed to reset search_path: %w", err)
	}
	return nil
}

// buildPostgresDSN constructs a PostgreSQL key=value connection string.
// Options other than sslmode are passed through as connection parameters.
func buildPostgresDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	parts := []string{
		"host=" + quoteValue(host),
		fmt.Sprintf("port=%d", port),
		"dbname=" + quoteValue(cfg.Database),
		"sslmode=" + quoteValue(sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, "user="+quoteValue(cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteValue(cfg.Password))
	}
	if cfg.Schema != "" {
		parts = append(parts, "search_path="+quoteValue(cfg.Schema))
	}

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		if k != "sslmode" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+quoteValue(cfg.Options[k]))
	}

	return strings.Join(parts, " ")
}

// quoteValue quotes a DSN value when it is empty or contains spaces or quotes.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
