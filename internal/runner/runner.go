// Package runner executes one rule-set document end to end: load the
// document, plan every declaration, then for each query source and each
// generic rule group fetch a frame and validate it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapdq/internal/dispatch"
	"github.com/leapstack-labs/leapdq/internal/metrics"
	"github.com/leapstack-labs/leapdq/internal/query"
	"github.com/leapstack-labs/leapdq/internal/ruleset"
	"github.com/leapstack-labs/leapdq/internal/warehouse"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/expectation"
	"github.com/leapstack-labs/leapdq/pkg/storage"
)

// ErrRuleSetUnavailable is returned when the rule-set document could not be
// fetched or parsed. The loader logs the cause.
var ErrRuleSetUnavailable = errors.New("rule-set unavailable")

// Config selects what a run validates.
type Config struct {
	// RuleSet is the document location before environment substitution.
	RuleSet     storage.Location
	Environment string
	Partition   *core.PartitionConfig
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger. Every record carries the run ID.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLibrary replaces the default expectation catalog.
func WithLibrary(lib *expectation.Library) Option {
	return func(r *Runner) {
		r.library = lib
	}
}

// WithReporter adds a reporter that receives every result.
func WithReporter(rep dispatch.Reporter) Option {
	return func(r *Runner) {
		if rep != nil {
			r.reporters = append(r.reporters, rep)
		}
	}
}

// WithMetrics records results and run duration in rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) {
		r.metrics = rec
	}
}

// Runner executes rule-sets.
type Runner struct {
	reader    storage.Reader
	warehouse *warehouse.Warehouse
	cfg       Config
	library   *expectation.Library
	reporters []dispatch.Reporter
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// New creates a runner. The warehouse may be nil for runs that never fetch
// data (Check and Render).
func New(reader storage.Reader, wh *warehouse.Warehouse, cfg Config, opts ...Option) *Runner {
	r := &Runner{
		reader:    reader,
		warehouse: wh,
		cfg:       cfg,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report summarizes a run. It is returned even when the run fails, holding
// the results up to the failure.
type Report struct {
	RunID       string            `json:"run_id"`
	Environment string            `json:"environment"`
	RuleSet     string            `json:"ruleset"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration_ns"`
	Results     []dispatch.Result `json:"results"`
	Summary     dispatch.Summary  `json:"summary"`
	Error       string            `json:"error,omitempty"`
}

// Passed reports whether the run finished without a fatal error.
func (r *Report) Passed() bool {
	return r.Error == ""
}

// plan is a validated document: every declaration is bound before any
// warehouse access.
type plan struct {
	queries []plannedQuery
	groups  []plannedGroup
}

type plannedQuery struct {
	source core.QuerySource
	steps  []dispatch.Step
}

type plannedGroup struct {
	group core.RuleGroup
	steps []dispatch.Step
}

// Run loads, plans and executes the rule-set.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID))
	loc := r.location()

	collector := dispatch.NewCollector()
	reporters := dispatch.MultiReporter{dispatch.NewLogReporter(logger), collector}
	if r.metrics != nil {
		reporters = append(reporters, r.metrics)
	}
	reporters = append(reporters, r.reporters...)
	d := dispatch.New(r.library, dispatch.WithReporter(reporters), dispatch.WithLogger(logger))

	report := &Report{
		RunID:       runID,
		Environment: r.cfg.Environment,
		RuleSet:     loc.String(),
		StartedAt:   time.Now(),
	}
	logger.Info("run started", slog.String("ruleset", report.RuleSet), slog.String("environment", r.cfg.Environment))

	err := r.execute(ctx, d, logger)

	report.Duration = time.Since(report.StartedAt)
	report.Results = collector.Results()
	report.Summary = collector.Summary()
	if r.metrics != nil {
		r.metrics.ObserveRun(report.Duration, err)
	}
	if err != nil {
		report.Error = err.Error()
		logger.Error("run failed", slog.Duration("duration", report.Duration), slog.String("error", err.Error()))
		return report, err
	}

	logger.Info("run finished",
		slog.Duration("duration", report.Duration),
		slog.Int("expectations", report.Summary.Total),
		slog.Int("failed", report.Summary.Failed()),
	)
	return report, nil
}

func (r *Runner) execute(ctx context.Context, d *dispatch.Dispatcher, logger *slog.Logger) error {
	if r.warehouse == nil {
		return errors.New("no warehouse configured")
	}

	doc, err := r.load(ctx, logger)
	if err != nil {
		return err
	}
	if doc.IsEmpty() {
		logger.Info("rule-set declares nothing to run")
		return nil
	}

	p, err := r.plan(doc, d)
	if err != nil {
		return err
	}

	builder := query.NewBuilder(r.reader, r.cfg.Environment, logger)
	for i, pq := range p.queries {
		if err := r.runQuery(ctx, d, builder, logger, i, pq); err != nil {
			return err
		}
	}
	for _, pg := range p.groups {
		if err := r.runGroup(ctx, d, logger, pg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runQuery(ctx context.Context, d *dispatch.Dispatcher, builder *query.Builder, logger *slog.Logger, i int, pq plannedQuery) error {
	var prepared query.Prepared
	err := timed(logger, "build query", func() error {
		var err error
		prepared, err = builder.Prepare(ctx, pq.source)
		return err
	}, slog.String("source", pq.source.Route))
	if err != nil {
		return fmt.Errorf("%s[%d]: %w", core.SectionQueries, i, err)
	}

	return r.validate(ctx, d, logger, pq.source.Route, prepared.SQL, prepared.Database(), nil, pq.steps)
}

func (r *Runner) runGroup(ctx context.Context, d *dispatch.Dispatcher, logger *slog.Logger, pg plannedGroup) error {
	if len(pg.steps) == 0 {
		logger.Debug("table has no expectations", slog.String("table", pg.group.Table))
		return nil
	}
	sqlStr, args := r.warehouse.TableQuery(pg.group.Table, r.cfg.Partition)
	return r.validate(ctx, d, logger, pg.group.Table, sqlStr, pg.group.Database, args, pg.steps)
}

// validate fetches one frame and runs its steps against it. The frame is
// owned by this call only.
func (r *Runner) validate(ctx context.Context, d *dispatch.Dispatcher, logger *slog.Logger, source, sqlStr, database string, args []any, steps []dispatch.Step) error {
	var batch *expectation.Batch
	err := timed(logger, "fetch", func() error {
		f, err := r.warehouse.Fetch(ctx, sqlStr, database, args...)
		if err != nil {
			return err
		}
		batch = expectation.NewBatch(f)
		return nil
	}, slog.String("source", source))
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	return timed(logger, "validate", func() error {
		return d.Run(ctx, batch, steps)
	}, slog.String("source", source), slog.Int("rows", batch.RowCount()))
}

// Check loads and plans the rule-set without touching the warehouse. It
// returns the number of planned expectations.
func (r *Runner) Check(ctx context.Context) (int, error) {
	doc, err := r.load(ctx, r.logger)
	if err != nil {
		return 0, err
	}
	p, err := r.plan(doc, dispatch.New(r.library))
	if err != nil {
		return 0, err
	}

	n := 0
	for _, q := range p.queries {
		n += len(q.steps)
	}
	for _, g := range p.groups {
		n += len(g.steps)
	}
	return n, nil
}

// Render loads the rule-set and renders every query source without
// executing anything.
func (r *Runner) Render(ctx context.Context) ([]query.Prepared, error) {
	doc, err := r.load(ctx, r.logger)
	if err != nil {
		return nil, err
	}
	builder := query.NewBuilder(r.reader, r.cfg.Environment, r.logger)
	return builder.Build(ctx, doc.QuerySources)
}

func (r *Runner) location() storage.Location {
	return r.cfg.RuleSet.ForEnv(r.cfg.Environment)
}

func (r *Runner) load(ctx context.Context, logger *slog.Logger) (*core.RuleSetDocument, error) {
	var doc *core.RuleSetDocument
	_ = timed(logger, "load rule-set", func() error {
		doc = ruleset.NewLoader(r.reader, logger).Load(ctx, r.location())
		return nil
	})
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrRuleSetUnavailable, r.location())
	}
	return doc, nil
}

func (r *Runner) plan(doc *core.RuleSetDocument, d *dispatch.Dispatcher) (*plan, error) {
	p := &plan{}
	for i, src := range doc.QuerySources {
		steps, err := d.Plan(src.Route, src.Expectations)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", core.SectionQueries, i, err)
		}
		p.queries = append(p.queries, plannedQuery{source: src, steps: steps})
	}

	groups, err := ruleset.BindGroups(doc.Rules)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		steps, err := d.Plan(g.Table, g.Expectations)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", core.SectionRules, err)
		}
		p.groups = append(p.groups, plannedGroup{group: g, steps: steps})
	}
	return p, nil
}

// timed runs fn and logs its duration at debug level.
func timed(logger *slog.Logger, step string, fn func() error, attrs ...any) error {
	start := time.Now()
	err := fn()
	args := append([]any{slog.String("step", step), slog.Duration("duration", time.Since(start))}, attrs...)
	logger.Debug(step, args...)
	return err
}
