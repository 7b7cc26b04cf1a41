package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
)

// Result is the record of one executed expectation.
type Result struct {
	Source   string                 `json:"source"`
	Index    int                    `json:"index"`
	Rule     string                 `json:"rule"`
	Severity core.Severity          `json:"severity"`
	Action   Action                 `json:"action"`
	Outcome  core.ValidationOutcome `json:"outcome"`
	Duration time.Duration          `json:"duration_ns"`
}

// Passed reports whether the expectation was met.
func (r Result) Passed() bool {
	return r.Action == ActionPass
}

// Reporter receives every result in execution order.
type Reporter interface {
	Report(ctx context.Context, r Result)
}

// LogReporter writes results to a structured logger.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter logging through logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogReporter{logger: logger}
}

// Report implements Reporter.
func (l *LogReporter) Report(ctx context.Context, r Result) {
	attrs := []slog.Attr{
		slog.String("source", r.Source),
		slog.String("column", r.Outcome.Column),
		slog.String("rule", r.Rule),
		slog.String("severity", r.Severity.String()),
	}
	if r.Action == ActionPass {
		l.logger.LogAttrs(ctx, slog.LevelInfo, "validation passed", attrs...)
		return
	}

	attrs = append(attrs,
		slog.Float64("unexpected_percent", r.Outcome.UnexpectedPercent),
		slog.Int("element_count", r.Outcome.ElementCount),
	)
	if r.Outcome.ObservedValue != nil {
		attrs = append(attrs, slog.Any("observed_value", r.Outcome.ObservedValue))
	}

	level := slog.LevelInfo
	switch r.Action {
	case ActionAbort:
		level = slog.LevelError
	case ActionWarn:
		level = slog.LevelWarn
	}
	l.logger.LogAttrs(ctx, level, "validation failed", attrs...)
}

// Collector keeps results in order for summaries.
type Collector struct {
	mu      sync.Mutex
	results []Result
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report implements Reporter.
func (c *Collector) Report(_ context.Context, r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Results returns a copy of the collected results.
func (c *Collector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}

// Summary counts the collected results by action.
func (c *Collector) Summary() Summary {
	var s Summary
	for _, r := range c.Results() {
		s.Add(r)
	}
	return s
}

// Summary aggregates results by action.
type Summary struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Warned   int `json:"warned"`
	Informed int `json:"informed"`
	Aborted  int `json:"aborted"`
}

// Add counts one result.
func (s *Summary) Add(r Result) {
	s.Total++
	switch r.Action {
	case ActionPass:
		s.Passed++
	case ActionWarn:
		s.Warned++
	case ActionInform:
		s.Informed++
	case ActionAbort:
		s.Aborted++
	}
}

// Failed returns the number of unmet expectations.
func (s Summary) Failed() int {
	return s.Total - s.Passed
}

// MultiReporter fans results out to several reporters in order.
type MultiReporter []Reporter

// Report implements Reporter.
func (m MultiReporter) Report(ctx context.Context, r Result) {
	for _, rep := range m {
		if rep != nil {
			rep.Report(ctx, r)
		}
	}
}
