package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_QueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dq.db")

	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{Path: path}))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, "CREATE TABLE orders (id INTEGER, status TEXT)"))
	require.NoError(t, adp.Exec(ctx, "INSERT INTO orders VALUES (1, 'open'), (2, NULL)"))

	rows, err := adp.Query(ctx, "SELECT id FROM orders WHERE status = "+adp.Placeholder(1), "open")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var id int64
	require.NoError(t, rows.Scan(&id))
	assert.Equal(t, int64(1), id)
	assert.False(t, rows.Next())
}

func TestAdapter_UseDatabase(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)
	require.NoError(t, adp.Connect(ctx, adapter.Config{}))
	defer func() { _ = adp.Close() }()

	assert.NoError(t, adp.UseDatabase(ctx, "main"))

	err := adp.UseDatabase(ctx, "sales")
	var unsupported *adapter.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "sqlite", unsupported.Adapter)

	assert.NoError(t, adp.ResetDatabase(ctx))
}

func TestAdapter_NotConnected(t *testing.T) {
	require.ErrorIs(t, New(nil).UseDatabase(context.Background(), "main"), adapter.ErrNotConnected)
}
