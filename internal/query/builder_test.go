package query

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapdq/internal/template"
	"github.com/leapstack-labs/leapdq/internal/testutil"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memReader map[storage.Location]string

func (m memReader) ReadText(_ context.Context, loc storage.Location) (string, error) {
	text, ok := m[loc]
	if !ok {
		return "", storage.ErrObjectNotFound
	}
	return text, nil
}

func TestRender_RoundTrip(t *testing.T) {
	sql, err := Render("SELECT * FROM {{table}}", "q.sql", map[string]any{"table": "orders"}, "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders", sql)
}

func TestBuilder_PreservesOrder(t *testing.T) {
	reader := memReader{
		{Bucket: "dq-prod-artifacts", Key: "a.sql"}: "SELECT * FROM {{ table }}",
		{Bucket: "dq-prod-artifacts", Key: "b.sql"}: "SELECT count(*) AS n FROM {{ table }} WHERE dt = '{{ dt }}'",
		{Bucket: "shared", Key: "c.sql"}:            "SELECT 1",
	}
	sources := []core.QuerySource{
		{Route: "s3://dq-env-artifacts/b.sql", Parameters: map[string]any{"table": "t2", "dt": "2024-01-01"},
			Expectations: []core.Expectation{{Rule: "second"}}},
		{Route: "s3://dq-env-artifacts/a.sql", Parameters: map[string]any{"table": "t1"},
			Expectations: []core.Expectation{{Rule: "first"}}},
		{Route: "s3://shared/c.sql", Expectations: []core.Expectation{{Rule: "third"}}},
	}

	prepared, err := NewBuilder(reader, "prod", testutil.NewTestLogger(t)).Build(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, prepared, 3)

	assert.Equal(t, "SELECT count(*) AS n FROM t2 WHERE dt = '2024-01-01'", prepared[0].SQL)
	assert.Equal(t, "second", prepared[0].Source.Expectations[0].Rule)
	assert.Equal(t, "dq-prod-artifacts", prepared[0].Location.Bucket)

	assert.Equal(t, "SELECT * FROM t1", prepared[1].SQL)
	assert.Equal(t, "first", prepared[1].Source.Expectations[0].Rule)

	assert.Equal(t, "SELECT 1", prepared[2].SQL)
	assert.Equal(t, "third", prepared[2].Source.Expectations[0].Rule)
}

func TestBuilder_Errors(t *testing.T) {
	reader := memReader{
		{Bucket: "b", Key: "undefined.sql"}: "SELECT {{ nope }}",
	}

	t.Run("missing template", func(t *testing.T) {
		_, err := NewBuilder(reader, "dev", nil).Build(context.Background(), []core.QuerySource{{Route: "s3://b/absent.sql"}})
		require.ErrorIs(t, err, storage.ErrObjectNotFound)
		assert.Contains(t, err.Error(), "query_dq[0]")
	})

	t.Run("bad route", func(t *testing.T) {
		_, err := NewBuilder(reader, "dev", nil).Build(context.Background(), []core.QuerySource{{Route: "gs://b/x.sql"}})
		require.ErrorIs(t, err, storage.ErrInvalidRoute)
	})

	t.Run("undefined variable", func(t *testing.T) {
		_, err := NewBuilder(reader, "dev", nil).Build(context.Background(), []core.QuerySource{
			{Route: "s3://b/undefined.sql", Parameters: map[string]any{"table": "x"}},
		})
		var tmplErr *template.Error
		require.ErrorAs(t, err, &tmplErr)
		assert.Equal(t, template.PhaseRender, tmplErr.Phase)
	})
}

func TestPrepared_Database(t *testing.T) {
	p := Prepared{Source: core.QuerySource{Parameters: map[string]any{core.ParamDatabase: "sales"}}}
	assert.Equal(t, "sales", p.Database())
}
