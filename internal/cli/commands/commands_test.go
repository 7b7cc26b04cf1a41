package commands

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdq/internal/cli/config"
	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/cli/testutil"
	"github.com/leapstack-labs/leapdq/internal/dispatch"
	"github.com/leapstack-labs/leapdq/internal/runner"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/expectation"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Verify flags exist (output is a global flag on root, not local)
	flags := []string{"partition-column", "partition-value", "metrics-file"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewRenderCommand(t *testing.T) {
	cmd := NewRenderCommand()

	assert.Equal(t, "render", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewCheckCommand(t *testing.T) {
	cmd := NewCheckCommand()

	assert.Equal(t, "check", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewExpectationsCommand(t *testing.T) {
	cmd := NewExpectationsCommand()

	assert.Equal(t, "expectations [name]", cmd.Use)
	assert.Contains(t, cmd.Aliases, "rules")
}

func TestExpectationsCommand_ListAll(t *testing.T) {
	config.ResetConfig()
	cmd := NewExpectationsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "# Expectations")
	for _, name := range []string{
		expectation.ValuesToBeBetween,
		expectation.NotNull,
		expectation.AverageValuesNull,
		expectation.SumToBeBetween,
		expectation.MatchRegex,
		expectation.MatchLikePattern,
		expectation.MatchRegexList,
		expectation.ValuesToBeInSet,
	} {
		assert.Contains(t, out, name)
	}
	testutil.AssertNoANSI(t, out)
}

func TestExpectationsCommand_ShowOne(t *testing.T) {
	config.ResetConfig()
	cmd := NewExpectationsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"ExpectColumnNotNull"})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "ExpectColumnNotNull")
	assert.NotContains(t, out, "ExpectColumnValuesToBeInSet")
}

func TestExpectationsCommand_NotFound(t *testing.T) {
	config.ResetConfig()
	cmd := NewExpectationsCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"expectColumnNotNull"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown expectation expectColumnNotNull")
	assert.Contains(t, err.Error(), "ExpectColumnNotNull")
}

func sampleReport(failed bool) *runner.Report {
	results := []dispatch.Result{
		{
			Source:   "s3://dq-dev-artifacts/sql/orders.sql",
			Index:    0,
			Rule:     "ExpectColumnNotNull",
			Severity: core.SeverityHigh,
			Action:   dispatch.ActionPass,
			Outcome: core.ValidationOutcome{
				Success:      true,
				RuleType:     "expect_column_values_to_not_be_null",
				Column:       "order_id",
				ElementCount: 4,
			},
		},
	}
	summary := dispatch.Summary{Total: 1, Passed: 1}
	report := &runner.Report{
		RunID:       "run-1",
		Environment: "dev",
		RuleSet:     "s3://dq-dev-artifacts/rules/orders.yaml",
		StartedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
	}
	if failed {
		results = append(results, dispatch.Result{
			Source:   "s3://dq-dev-artifacts/sql/orders.sql",
			Index:    1,
			Rule:     "ExpectColumnValuesToBeInSet",
			Severity: core.SeverityHigh,
			Action:   dispatch.ActionAbort,
			Outcome: core.ValidationOutcome{
				RuleType:          "expect_column_values_to_be_in_set",
				Column:            "status",
				ElementCount:      4,
				UnexpectedCount:   1,
				UnexpectedPercent: 25,
			},
		})
		summary = dispatch.Summary{Total: 2, Passed: 1, Aborted: 1}
		report.Error = "validation failed"
	}
	report.Results = results
	report.Summary = summary
	return report
}

func TestRenderReport_Markdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()

	require.NoError(t, renderReport(tr.Renderer, sampleReport(true)))

	out := tr.Output()
	assert.Contains(t, out, "# Data Quality Run")
	assert.Contains(t, out, "- **Run:** run-1")
	assert.Contains(t, out, "| Source |")
	assert.Contains(t, out, "ExpectColumnValuesToBeInSet")
	assert.Contains(t, out, "25.00")
	assert.Contains(t, out, "2 expectations: 1 passed, 0 warned, 0 informed, 1 aborted")
	assert.Contains(t, out, "**Run failed:** validation failed")
	testutil.AssertValidMarkdown(t, out)
	testutil.AssertOutputMode(t, tr, output.ModeMarkdown)
}

func TestRenderReport_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()

	require.NoError(t, renderReport(tr.Renderer, sampleReport(false)))

	out := tr.Output()
	assert.Contains(t, out, "Data Quality Run")
	assert.Contains(t, out, "run run-1")
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "1 expectations: 1 passed")
}

func TestRenderReport_TextFailureGoesToErrOut(t *testing.T) {
	tr := testutil.NewTestRendererText()

	require.NoError(t, renderReport(tr.Renderer, sampleReport(true)))

	assert.Contains(t, tr.ErrorOutput(), "1 aborted")
}

func TestRenderReport_JSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()

	require.NoError(t, renderReport(tr.Renderer, sampleReport(true)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	results, ok := decoded["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 2)
	testutil.AssertOutputMode(t, tr, output.ModeJSON)
}

func TestIsValidationFailure(t *testing.T) {
	vf := &dispatch.ValidationFailure{Source: "orders", Rule: "ExpectColumnNotNull", Severity: core.SeverityHigh}
	assert.True(t, IsValidationFailure(vf))
	assert.False(t, IsValidationFailure(assert.AnError))
}
