package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapdq/internal/cli"
	"github.com/leapstack-labs/leapdq/internal/dispatch"
	"github.com/leapstack-labs/leapdq/pkg/core"
)

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "LeapDQ")
}

func TestHelpCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, expected := range []string{"run", "check", "render", "expectations"} {
		assert.Contains(t, output, expected)
	}
}

func TestExitCode(t *testing.T) {
	failure := &dispatch.ValidationFailure{Source: "orders", Rule: "ExpectColumnNotNull", Severity: core.SeverityHigh}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"validation failure", failure, exitValidation},
		{"wrapped validation failure", fmt.Errorf("run: %w", failure), exitValidation},
		{"other error", assert.AnError, exitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
