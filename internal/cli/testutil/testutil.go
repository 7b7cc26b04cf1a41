// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/warehouse"
	"github.com/leapstack-labs/leapdq/pkg/core"
)

// ConfigFile is the project config written by SetupTestProject. Storage and
// the warehouse file are resolved relative to the project directory.
const ConfigFile = `ruleset: s3://dq-env-artifacts/rules/orders.yaml
environment: dev
storage:
  type: local
  root: artifacts
target:
  type: duckdb
  database: warehouse.duckdb
`

// OrdersSQL is the query template written by SetupTestProject.
const OrdersSQL = "SELECT * FROM {{table}} ORDER BY order_id"

// PassingRuleSet is a rule-set every row of the seeded orders table meets.
const PassingRuleSet = `query_dq:
  - route: s3://dq-env-artifacts/sql/orders.sql
    parameters:
      table: orders
    rules_dq:
      - rule: ExpectColumnNotNull
        column: order_id
      - rule: ExpectColumnValuesToBeInSet
        column: status
        value_set: [open, closed]
        severity: LOW
rules:
  - parameters:
      table_name: orders
    expectations:
      - rule: ExpectColumnValuesToBeBetween
        column: order_id
        min: 1
        max: 10
`

// SetupTestProject creates a temporary project: a config file, a local
// artifact store holding OrdersSQL and ruleset, and a DuckDB warehouse file
// with an orders table.
func SetupTestProject(t *testing.T, ruleset string) string {
	t.Helper()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "leapdq.yaml"), ConfigFile)
	bucket := filepath.Join(dir, "artifacts", "dq-dev-artifacts")
	writeFile(t, filepath.Join(bucket, "sql", "orders.sql"), OrdersSQL)
	writeFile(t, filepath.Join(bucket, "rules", "orders.yaml"), ruleset)

	SeedWarehouse(t, filepath.Join(dir, "warehouse.duckdb"),
		`CREATE TABLE orders AS SELECT * FROM (VALUES
			(1, 'open'), (2, 'closed'), (3, 'lost')) v(order_id, status)`)

	return dir
}

// SeedWarehouse runs stmts against a DuckDB file and closes it.
func SeedWarehouse(t *testing.T, path string, stmts ...string) {
	t.Helper()

	ctx := context.Background()
	wh, err := warehouse.Open(ctx, &core.TargetConfig{Type: "duckdb", Database: path}, nil)
	if err != nil {
		t.Fatalf("failed to open warehouse %s: %v", path, err)
	}
	defer func() { _ = wh.Close() }()

	for _, stmt := range stmts {
		if err := wh.Adapter().Exec(ctx, stmt); err != nil {
			t.Fatalf("failed to seed warehouse: %v", err)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererAuto creates a new test renderer with auto mode detection.
// In tests, non-TTY defaults to markdown output.
func NewTestRendererAuto() *TestRenderer {
	return NewTestRenderer(output.ModeAuto, false)
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertContains checks that the string contains the expected substring.
func AssertContains(t *testing.T, s, expected string) {
	t.Helper()
	if !strings.Contains(s, expected) {
		t.Errorf("string %q does not contain expected %q", s, expected)
	}
}

// AssertNotContains checks that the string does not contain the substring.
func AssertNotContains(t *testing.T, s, unexpected string) {
	t.Helper()
	if strings.Contains(s, unexpected) {
		t.Errorf("string %q unexpectedly contains %q", s, unexpected)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}

// AssertOutputMode checks that the renderer output matches expected mode characteristics.
func AssertOutputMode(t *testing.T, tr *TestRenderer, expectedMode output.OutputMode) {
	t.Helper()

	combinedOutput := tr.Output() + tr.ErrorOutput()

	switch expectedMode {
	case output.ModeMarkdown:
		AssertNoANSI(t, combinedOutput)
		// Markdown mode should not contain ANSI codes
	case output.ModeText:
		// Text mode may contain ANSI codes if TTY
		// No specific assertion needed
	case output.ModeJSON:
		AssertNoANSI(t, combinedOutput)
		// JSON mode should not contain ANSI codes
	}
}
