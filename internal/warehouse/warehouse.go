// Package warehouse executes rendered queries and materializes their results
// as frames.
package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/frame"

	// Register the bundled adapters.
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/sqlite"
)

// Warehouse runs queries through one adapter session.
type Warehouse struct {
	adapter adapter.Adapter
	logger  *slog.Logger
	current string // database selected by the last UseDatabase; "" is the session default
}

// New wraps a connected adapter.
func New(a adapter.Adapter, logger *slog.Logger) *Warehouse {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Warehouse{adapter: a, logger: logger}
}

// Open creates and connects the adapter selected by target.
func Open(ctx context.Context, target *core.TargetConfig, logger *slog.Logger) (*Warehouse, error) {
	cfg := core.AdapterConfigFromTarget(target)
	a, err := adapter.NewAdapter(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s warehouse: %w", cfg.Type, err)
	}
	return New(a, logger), nil
}

// Close closes the underlying adapter.
func (w *Warehouse) Close() error {
	return w.adapter.Close()
}

// Adapter returns the underlying adapter.
func (w *Warehouse) Adapter() adapter.Adapter {
	return w.adapter
}

// Fetch runs sqlStr against database (the session default when empty) and
// returns the full result. A database selected for an earlier query never
// carries over to a query that names none.
func (w *Warehouse) Fetch(ctx context.Context, sqlStr, database string, args ...any) (*frame.Frame, error) {
	if err := w.selectDatabase(ctx, database); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := w.adapter.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	f, err := frame.FromRows(rows.Rows)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("query fetched",
		slog.String("database", database),
		slog.Int("rows", f.Len()),
		slog.Duration("duration", time.Since(start)))
	return f, nil
}

func (w *Warehouse) selectDatabase(ctx context.Context, database string) error {
	switch {
	case database == w.current:
		return nil
	case database == "":
		if err := w.adapter.ResetDatabase(ctx); err != nil {
			return err
		}
	default:
		if err := w.adapter.UseDatabase(ctx, database); err != nil {
			return err
		}
	}
	w.current = database
	return nil
}

// TableQuery builds the full-table select used by generic rules, optionally
// restricted to one partition. It returns the SQL and its bind arguments.
func (w *Warehouse) TableQuery(table string, partition *core.PartitionConfig) (string, []any) {
	sqlStr := "SELECT * FROM " + table
	if !partition.IsSet() {
		return sqlStr, nil
	}
	sqlStr += " WHERE " + adapter.QuoteIdent(partition.Column) + " = " + w.adapter.Placeholder(1)
	return sqlStr, []any{partition.Value}
}
