package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, cfg core.AdapterConfig) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	t.Run("in-memory", func(t *testing.T) {
		adp := connect(t, core.AdapterConfig{})
		assert.True(t, adp.IsConnected())
	})

	t.Run("file-based", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.duckdb")
		connect(t, core.AdapterConfig{Path: path})
		_, err := os.Stat(path)
		assert.NoError(t, err, "database file should be created")
	})

	t.Run("settings", func(t *testing.T) {
		adp := connect(t, core.AdapterConfig{Options: map[string]string{"threads": "2"}})
		rows, err := adp.Query(context.Background(), "SELECT current_setting('threads')")
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()

		require.True(t, rows.Next())
		var threads int64
		require.NoError(t, rows.Scan(&threads))
		assert.Equal(t, int64(2), threads)
	})

	t.Run("bad setting", func(t *testing.T) {
		adp := New(nil)
		err := adp.Connect(context.Background(), core.AdapterConfig{Options: map[string]string{"no_such_setting": "1"}})
		require.Error(t, err)
		assert.False(t, adp.IsConnected())
	})
}

func TestAdapter_NotConnected(t *testing.T) {
	adp := New(nil)
	ctx := context.Background()

	require.ErrorIs(t, adp.Exec(ctx, "SELECT 1"), adapter.ErrNotConnected)
	_, err := adp.Query(ctx, "SELECT 1")
	require.ErrorIs(t, err, adapter.ErrNotConnected)
	require.ErrorIs(t, adp.UseDatabase(ctx, "x"), adapter.ErrNotConnected)
}

func TestAdapter_UseDatabase(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{})

	require.NoError(t, adp.Exec(ctx, "ATTACH ':memory:' AS sales"))
	require.NoError(t, adp.Exec(ctx, "CREATE TABLE sales.orders AS SELECT 42 AS id"))

	require.NoError(t, adp.UseDatabase(ctx, "sales"))

	rows, err := adp.Query(ctx, "SELECT id FROM orders")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var id int32
	require.NoError(t, rows.Scan(&id))
	assert.Equal(t, int32(42), id)
}

func TestAdapter_ResetDatabase(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{})

	require.NoError(t, adp.Exec(ctx, "CREATE TABLE orders AS SELECT 1 AS id"))
	require.NoError(t, adp.Exec(ctx, "ATTACH ':memory:' AS sales"))
	require.NoError(t, adp.UseDatabase(ctx, "sales"))
	require.NoError(t, adp.ResetDatabase(ctx))

	rows, err := adp.Query(ctx, "SELECT current_database(), (SELECT count(*) FROM orders)")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	require.True(t, rows.Next())
	var catalog string
	var n int64
	require.NoError(t, rows.Scan(&catalog, &n))
	assert.Equal(t, "memory", catalog)
	assert.Equal(t, int64(1), n)
}

func TestAdapter_UseDatabaseUnknown(t *testing.T) {
	adp := connect(t, core.AdapterConfig{})
	err := adp.UseDatabase(context.Background(), "missing_catalog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_catalog")
}

func TestAdapter_QueryWithArgs(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{})
	require.NoError(t, adp.Exec(ctx, "CREATE TABLE t AS SELECT * FROM (VALUES (1, 'a'), (2, 'b')) v(id, dt)"))

	rows, err := adp.Query(ctx, "SELECT id FROM t WHERE dt = "+adp.Placeholder(1), "b")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var ids []int32
	for rows.Next() {
		var id int32
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int32{2}, ids)
}
