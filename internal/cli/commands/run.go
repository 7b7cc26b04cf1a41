package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/dispatch"
	"github.com/leapstack-labs/leapdq/internal/metrics"
	"github.com/leapstack-labs/leapdq/internal/runner"
	"github.com/leapstack-labs/leapdq/internal/warehouse"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate data against a rule-set",
		Long: `Load a rule-set, render its queries, fetch each result from the warehouse
and run the declared expectations in order.

A failed HIGH expectation stops the run and exits non-zero. MEDIUM and LOW
failures are reported and the run continues.`,
		Example: `  # Run the configured rule-set
  leapdq run

  # Run a rule-set for the prod environment
  leapdq run --ruleset s3://dq-env-artifacts/rules/orders.yaml --env prod

  # Validate a single partition of generic table rules
  leapdq run --partition-column dt --partition-value 2024-01-01

  # JSON report for CI, metrics for the node-exporter textfile collector
  leapdq run -o json --metrics-file /var/lib/node_exporter/leapdq.prom`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	cmd.Flags().String("partition-column", "", "Column filtering generic table rules")
	cmd.Flags().String("partition-value", "", "Partition value for --partition-column")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run")

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	if err := cc.Cfg.Validate(); err != nil {
		return err
	}

	wh, err := warehouse.Open(ctx, cc.Cfg.Target, cc.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = wh.Close() }()

	var rec *metrics.Recorder
	if cc.Cfg.MetricsFile != "" {
		rec = metrics.NewRecorder(nil)
	}

	r, err := cc.newRunner(ctx, wh, runner.WithMetrics(rec))
	if err != nil {
		return err
	}

	report, runErr := r.Run(ctx)

	if rec != nil {
		if err := rec.WriteTextfile(cc.Cfg.MetricsFile); err != nil {
			cc.Logger.Warn("metrics not written", slog.String("error", err.Error()))
		}
	}
	if report != nil {
		if err := renderReport(cc.Renderer, report); err != nil {
			return err
		}
	}
	return runErr
}

func renderReport(r *output.Renderer, report *runner.Report) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(report)
	case output.ModeMarkdown:
		renderReportMarkdown(r, report)
	default:
		renderReportText(r, report)
	}
	return nil
}

func renderReportText(r *output.Renderer, report *runner.Report) {
	styles := r.Styles()

	r.Println("")
	r.Header(1, "Data Quality Run")
	r.Println(styles.Muted.Render(fmt.Sprintf("run %s  ruleset %s  env %s",
		report.RunID, report.RuleSet, report.Environment)))
	r.Println("")

	if len(report.Results) > 0 {
		r.Table(resultHeader, resultRows(report.Results))
	}
	r.Println("")

	s := report.Summary
	line := fmt.Sprintf("%d expectations: %d passed, %d warned, %d informed, %d aborted in %s",
		s.Total, s.Passed, s.Warned, s.Informed, s.Aborted, report.Duration.Round(time.Millisecond))
	switch {
	case !report.Passed():
		r.Error(line)
	case s.Failed() > 0:
		r.Warning(line)
	default:
		r.Success(line)
	}
}

func renderReportMarkdown(r *output.Renderer, report *runner.Report) {
	r.Header(1, "Data Quality Run")
	r.Printf("- **Run:** %s\n", report.RunID)
	r.Printf("- **Rule-set:** %s\n", report.RuleSet)
	r.Printf("- **Environment:** %s\n", report.Environment)
	r.Printf("- **Duration:** %s\n", report.Duration.Round(time.Millisecond))
	r.Println("")

	if len(report.Results) > 0 {
		r.Header(2, "Results")
		r.Table(resultHeader, resultRows(report.Results))
		r.Println("")
	}

	s := report.Summary
	r.Header(2, "Summary")
	r.Printf("%d expectations: %d passed, %d warned, %d informed, %d aborted\n",
		s.Total, s.Passed, s.Warned, s.Informed, s.Aborted)
	if !report.Passed() {
		r.Println("")
		r.Printf("**Run failed:** %s\n", report.Error)
	}
}

var resultHeader = []string{"Source", "Rule", "Column", "Severity", "Status", "Unexpected %", "Elements"}

func resultRows(results []dispatch.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.Source,
			res.Rule,
			res.Outcome.Column,
			res.Severity.String(),
			res.Action.String(),
			fmt.Sprintf("%.2f", res.Outcome.UnexpectedPercent),
			fmt.Sprintf("%d", res.Outcome.ElementCount),
		})
	}
	return rows
}

// IsValidationFailure reports whether err stopped a run because data failed
// a HIGH expectation, as opposed to a configuration or access error.
func IsValidationFailure(err error) bool {
	var vf *dispatch.ValidationFailure
	return errors.As(err, &vf)
}
