package dispatch

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdq/internal/testutil"
	"github.com/leapstack-labs/leapdq/pkg/core"
)

func failedResult(action Action, severity core.Severity) Result {
	return Result{
		Source:   "orders.sql",
		Rule:     "ExpectColumnNotNull",
		Severity: severity,
		Action:   action,
		Outcome: core.ValidationOutcome{
			Column:            "amount",
			ElementCount:      8,
			UnexpectedCount:   1,
			UnexpectedPercent: 12.5,
		},
	}
}

func TestLogReporter_Levels(t *testing.T) {
	tests := []struct {
		action   Action
		severity core.Severity
		level    slog.Level
	}{
		{ActionAbort, core.SeverityHigh, slog.LevelError},
		{ActionWarn, core.SeverityMedium, slog.LevelWarn},
		{ActionInform, core.SeverityLow, slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.severity.String(), func(t *testing.T) {
			logger, rec := testutil.NewLogRecorder()
			NewLogReporter(logger).Report(context.Background(), failedResult(tt.action, tt.severity))

			entries := rec.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, "validation failed", entries[0].Message)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, "12.5", entries[0].Attrs["unexpected_percent"])
			assert.Equal(t, "ExpectColumnNotNull", entries[0].Attrs["rule"])
		})
	}
}

func TestLogReporter_ObservedValue(t *testing.T) {
	logger, rec := testutil.NewLogRecorder()
	r := failedResult(ActionWarn, core.SeverityMedium)
	r.Outcome.ObservedValue = 60.5
	NewLogReporter(logger).Report(context.Background(), r)

	e, ok := rec.Find("validation failed")
	require.True(t, ok)
	assert.Equal(t, "60.5", e.Attrs["observed_value"])
}

func TestMultiReporter(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	multi := MultiReporter{a, nil, b}

	multi.Report(context.Background(), failedResult(ActionWarn, core.SeverityMedium))
	multi.Report(context.Background(), Result{Action: ActionPass})

	assert.Len(t, a.Results(), 2)
	assert.Equal(t, a.Results(), b.Results())
	assert.Equal(t, Summary{Total: 2, Passed: 1, Warned: 1}, b.Summary())
}
