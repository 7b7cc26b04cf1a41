// Package query turns query_dq declarations into executable SQL.
package query

import (
	"context"
	"fmt"
	"log/slog"

	starctx "github.com/leapstack-labs/leapdq/internal/starlark"
	"github.com/leapstack-labs/leapdq/internal/template"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/storage"
)

// Prepared bundles a declaration with the SQL rendered for it, so a query
// can never be paired with another declaration's expectations.
type Prepared struct {
	Source   core.QuerySource
	Location storage.Location // Resolved template location
	SQL      string
}

// Database returns the database the query runs against, if declared.
func (p Prepared) Database() string {
	return p.Source.Database()
}

// Builder fetches SQL templates and renders them with their parameters.
type Builder struct {
	reader storage.Reader
	env    string
	logger *slog.Logger
}

// NewBuilder creates a builder. env replaces the "-env-" token of every
// template bucket.
func NewBuilder(reader storage.Reader, env string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{reader: reader, env: env, logger: logger}
}

// Build prepares every source in declaration order. The Nth result holds the
// Nth source. The first failure stops the build.
func (b *Builder) Build(ctx context.Context, sources []core.QuerySource) ([]Prepared, error) {
	prepared := make([]Prepared, 0, len(sources))
	for i, src := range sources {
		p, err := b.Prepare(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", core.SectionQueries, i, err)
		}
		prepared = append(prepared, p)
	}
	return prepared, nil
}

// Prepare resolves, fetches and renders one source.
func (b *Builder) Prepare(ctx context.Context, src core.QuerySource) (Prepared, error) {
	loc, err := storage.ParseRoute(src.Route)
	if err != nil {
		return Prepared{}, err
	}
	loc = loc.ForEnv(b.env)

	text, err := b.reader.ReadText(ctx, loc)
	if err != nil {
		return Prepared{}, fmt.Errorf("failed to fetch query template: %w", err)
	}

	sql, err := Render(text, loc.String(), src.Parameters, b.env)
	if err != nil {
		return Prepared{}, err
	}

	b.logger.Debug("query rendered",
		slog.String("location", loc.String()),
		slog.Int("expectations", len(src.Expectations)))

	return Prepared{Source: src, Location: loc, SQL: sql}, nil
}

// Render substitutes params into a SQL template. name identifies the
// template in error messages.
func Render(text, name string, params map[string]any, env string) (string, error) {
	ctx, err := starctx.NewExecutionContext(params, env)
	if err != nil {
		return "", fmt.Errorf("invalid template parameters for %s: %w", name, err)
	}
	return template.RenderString(text, name, ctx)
}
