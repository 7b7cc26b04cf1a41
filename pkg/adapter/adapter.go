// Package adapter provides the warehouse adapter contract and registry.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves from init(). Import them with a blank identifier.
package adapter

import (
	"context"
	"errors"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

type (
	// Config is an alias for core.AdapterConfig.
	Config = core.AdapterConfig

	// Rows is an alias for core.Rows.
	Rows = core.Rows
)

// ErrNotConnected is returned by operations on an adapter without a connection.
var ErrNotConnected = errors.New("database connection not established")

// Adapter defines the interface that all warehouse adapters implement.
// Adapters hold one session: UseDatabase affects every later query.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Exec executes a statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// Query executes a statement that returns rows. Args bind to
	// placeholders produced by Placeholder.
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)

	// UseDatabase makes name the default database (or schema) for
	// unqualified table references.
	UseDatabase(ctx context.Context, name string) error

	// ResetDatabase restores the default database (or schema) the session
	// had right after Connect.
	ResetDatabase(ctx context.Context) error

	// Placeholder returns the bind parameter marker for the nth (1-based) argument.
	Placeholder(n int) string

	// DialectName returns the SQL dialect name of the adapter.
	DialectName() string
}
