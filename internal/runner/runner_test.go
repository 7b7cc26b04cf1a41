package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdq/internal/dispatch"
	"github.com/leapstack-labs/leapdq/internal/metrics"
	logtest "github.com/leapstack-labs/leapdq/internal/testutil"
	"github.com/leapstack-labs/leapdq/internal/warehouse"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/storage"
)

const ordersSQL = "SELECT * FROM {{table}} ORDER BY order_id"

// fixture is a local storage root plus an in-memory DuckDB warehouse seeded
// with orders and customers.
type fixture struct {
	root      string
	reader    storage.Reader
	warehouse *warehouse.Warehouse
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	root := t.TempDir()
	writeObject(t, root, "dq-dev-artifacts", "sql/orders.sql", ordersSQL)

	reader, err := storage.NewLocalReader(root)
	require.NoError(t, err)

	wh, err := warehouse.Open(ctx, &core.TargetConfig{Type: "duckdb"}, logtest.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wh.Close() })

	a := wh.Adapter()
	require.NoError(t, a.Exec(ctx, `CREATE TABLE orders AS SELECT * FROM (VALUES
		(1, 'open', 10.50::DECIMAL(10,2)),
		(2, 'closed', 20.00::DECIMAL(10,2)),
		(3, 'open', NULL),
		(4, 'lost', 5.25::DECIMAL(10,2))) v(order_id, status, amount)`))
	require.NoError(t, a.Exec(ctx, `CREATE TABLE customers AS SELECT * FROM (VALUES
		('2024-01-01', 'a@example.com'),
		('2024-01-01', 'b@example.com'),
		('2023-12-31', NULL)) v(dt, email)`))

	return &fixture{root: root, reader: reader, warehouse: wh}
}

func writeObject(t *testing.T, root, bucket, key, body string) {
	t.Helper()
	path := filepath.Join(root, bucket, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func (f *fixture) runner(t *testing.T, ruleset string, opts ...Option) *Runner {
	t.Helper()
	writeObject(t, f.root, "dq-dev-artifacts", "rules/orders.yaml", ruleset)
	cfg := Config{
		RuleSet:     storage.Location{Bucket: "dq-env-artifacts", Key: "rules/orders.yaml"},
		Environment: "dev",
	}
	return New(f.reader, f.warehouse, cfg, opts...)
}

const passingRuleSet = `
query_dq:
  - route: "s3://dq-env-artifacts/sql/orders.sql"
    parameters:
      table: orders
    rules_dq:
      - rule: ExpectColumnNotNull
        column: order_id
      - rule: ExpectColumnValuesToBeBetween
        column: amount
        min: 0
        max: 100
      - rule: ExpectColumnSumToBeBetween
        column: amount
        min: 30
        max: 40
rules:
  - parameters:
      table_name: customers
    expectations:
      - rule: ExpectColumnMatchLikePattern
        column: email
        like_pattern: "%@example.com"
`

func TestRun_AllPass(t *testing.T) {
	f := newFixture(t)
	logger, rec := logtest.NewLogRecorder()
	r := f.runner(t, passingRuleSet, WithLogger(logger))

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "s3://dq-dev-artifacts/rules/orders.yaml", report.RuleSet)

	rules := make([]string, 0, len(report.Results))
	for _, res := range report.Results {
		assert.True(t, res.Passed(), "%s should pass", res.Rule)
		rules = append(rules, res.Rule)
	}
	assert.Equal(t, []string{
		"ExpectColumnNotNull",
		"ExpectColumnValuesToBeBetween",
		"ExpectColumnSumToBeBetween",
		"ExpectColumnMatchLikePattern",
	}, rules)
	assert.Equal(t, "customers", report.Results[3].Source)
	assert.Equal(t, dispatch.Summary{Total: 4, Passed: 4}, report.Summary)

	passed, ok := rec.Find("validation passed")
	require.True(t, ok)
	assert.Equal(t, report.RunID, passed.Attrs["run_id"])

	for _, step := range []string{"load rule-set", "build query", "fetch", "validate"} {
		e, ok := rec.Find(step)
		require.True(t, ok, "missing timing for %s", step)
		assert.NotEmpty(t, e.Attrs["duration"])
	}
}

func TestRun_HighFailureStopsRun(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, `
query_dq:
  - route: "dq-env-artifacts/sql/orders.sql"
    parameters:
      table: orders
    rules_dq:
      - rule: ExpectColumnValuesToBeInSet
        severity: MEDIUM
        column: status
        value_set: [open, closed]
      - rule: ExpectColumnNotNull
        column: amount
      - rule: ExpectColumnNotNull
        column: order_id
rules:
  - parameters:
      table_name: customers
    expectations:
      - rule: ExpectColumnNotNull
        column: email
        severity: LOW
`)

	report, err := r.Run(context.Background())
	var failure *dispatch.ValidationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "amount", failure.Outcome.Column)
	assert.InDelta(t, 25.0, failure.Outcome.UnexpectedPercent, 0.001)

	require.NotNil(t, report)
	assert.False(t, report.Passed())
	require.Len(t, report.Results, 2)
	assert.Equal(t, dispatch.ActionWarn, report.Results[0].Action)
	assert.Equal(t, dispatch.ActionAbort, report.Results[1].Action)
}

func TestRun_RuleSetUnavailable(t *testing.T) {
	f := newFixture(t)
	logger, rec := logtest.NewLogRecorder()
	r := New(f.reader, f.warehouse, Config{
		RuleSet:     storage.Location{Bucket: "dq-env-artifacts", Key: "rules/missing.yaml"},
		Environment: "dev",
	}, WithLogger(logger))

	_, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrRuleSetUnavailable)
	_, ok := rec.Find("rule-set not found")
	assert.True(t, ok)
}

func TestRun_MalformedRuleSet(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, "query_dq: [\n")

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrRuleSetUnavailable)
}

func TestRun_UnknownRuleBeforeAnyFetch(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, `
query_dq:
  - route: "dq-env-artifacts/sql/orders.sql"
    parameters:
      table: orders
    rules_dq:
      - rule: ExpectColumnNotNull
        column: order_id
rules:
  - parameters:
      table_name: customers
    expectations:
      - rule: ExpectColumnToSparkJoy
        column: email
        severity: LOW
`)

	report, err := r.Run(context.Background())
	var unknown *dispatch.UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ExpectColumnToSparkJoy", unknown.Rule)
	assert.Empty(t, report.Results)
}

func TestRun_EmptyDocument(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, "# nothing to do\n")

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Results)
}

func TestRun_PartitionFilter(t *testing.T) {
	f := newFixture(t)
	ruleset := `
rules:
  - parameters:
      table_name: customers
    expectations:
      - rule: ExpectColumnNotNull
        column: email
`
	t.Run("whole table", func(t *testing.T) {
		_, err := f.runner(t, ruleset).Run(context.Background())
		var failure *dispatch.ValidationFailure
		assert.ErrorAs(t, err, &failure)
	})

	t.Run("single partition", func(t *testing.T) {
		r := f.runner(t, ruleset)
		r.cfg.Partition = &core.PartitionConfig{Column: "dt", Value: "2024-01-01"}

		report, err := r.Run(context.Background())
		require.NoError(t, err)
		require.Len(t, report.Results, 1)
		assert.Equal(t, 2, report.Results[0].Outcome.ElementCount)
	})
}

func TestRun_GroupsOwnTheirFrames(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, `
rules:
  - parameters:
      table_name: orders
    expectations:
      - rule: ExpectColumnNotNull
        column: order_id
  - parameters:
      table_name: customers
  - expectations:
      - rule: ExpectColumnNotNull
        column: dt
`)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "orders", report.Results[0].Source)
	assert.Equal(t, 4, report.Results[0].Outcome.ElementCount)
	assert.Equal(t, "customers", report.Results[1].Source)
	assert.Equal(t, 3, report.Results[1].Outcome.ElementCount)
}

func TestRun_Metrics(t *testing.T) {
	f := newFixture(t)
	rec := metrics.NewRecorder(nil)
	r := f.runner(t, passingRuleSet, WithMetrics(rec))

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(rec.Registry(), "leapdq_expectations_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRun_ExtraReporter(t *testing.T) {
	f := newFixture(t)
	collector := dispatch.NewCollector()
	r := f.runner(t, passingRuleSet, WithReporter(collector))

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Results, collector.Results())
}

func TestCheck(t *testing.T) {
	f := newFixture(t)

	t.Run("valid", func(t *testing.T) {
		writeObject(t, f.root, "dq-dev-artifacts", "rules/check.yaml", passingRuleSet)
		r := New(f.reader, nil, Config{
			RuleSet:     storage.Location{Bucket: "dq-env-artifacts", Key: "rules/check.yaml"},
			Environment: "dev",
		}, WithLogger(logtest.NewTestLogger(t)))

		n, err := r.Check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("orphan expectations", func(t *testing.T) {
		writeObject(t, f.root, "dq-dev-artifacts", "rules/orphan.yaml", `
rules:
  - expectations:
      - rule: ExpectColumnNotNull
        column: dt
`)
		r := New(f.reader, nil, Config{
			RuleSet:     storage.Location{Bucket: "dq-env-artifacts", Key: "rules/orphan.yaml"},
			Environment: "dev",
		})
		_, err := r.Check(context.Background())
		assert.ErrorContains(t, err, "rules[0].expectations")
	})

	t.Run("bad parameters", func(t *testing.T) {
		writeObject(t, f.root, "dq-dev-artifacts", "rules/params.yaml", `
query_dq:
  - route: "dq-env-artifacts/sql/orders.sql"
    parameters: {table: orders}
    rules_dq:
      - rule: ExpectColumnValuesToBeBetween
        column: amount
`)
		r := New(f.reader, nil, Config{
			RuleSet:     storage.Location{Bucket: "dq-env-artifacts", Key: "rules/params.yaml"},
			Environment: "dev",
		})
		_, err := r.Check(context.Background())
		var perr *dispatch.ParamError
		assert.ErrorAs(t, err, &perr)
	})
}

func TestRender(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, passingRuleSet)

	prepared, err := r.Render(context.Background())
	require.NoError(t, err)
	require.Len(t, prepared, 1)
	assert.Equal(t, "SELECT * FROM orders ORDER BY order_id", prepared[0].SQL)
	assert.Equal(t, "dq-dev-artifacts", prepared[0].Location.Bucket)
}

func TestRun_NoWarehouse(t *testing.T) {
	f := newFixture(t)
	r := New(f.reader, nil, Config{})
	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "no warehouse")
}
