package adapter_test

import (
	"testing"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/leapdq/pkg/adapters/sqlite"
)

func TestSelfRegistration(t *testing.T) {
	for _, name := range []string{"duckdb", "postgres", "sqlite"} {
		assert.True(t, adapter.IsRegistered(name), "%s adapter should be auto-registered", name)
	}
	assert.False(t, adapter.IsRegistered("unknown_db"))
}

func TestNewAdapter_Registered(t *testing.T) {
	for _, name := range []string{"duckdb", "postgres", "sqlite"} {
		t.Run(name, func(t *testing.T) {
			adp, err := adapter.NewAdapter(core.AdapterConfig{Type: name}, nil)
			require.NoError(t, err)
			assert.Equal(t, name, adp.DialectName())
		})
	}
}
