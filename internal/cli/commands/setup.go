// Package commands implements the leapdq subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/cli/config"
	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/internal/runner"
	"github.com/leapstack-labs/leapdq/internal/warehouse"
	"github.com/leapstack-labs/leapdq/pkg/storage"
)

// CommandContext holds common dependencies for command execution.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration
// and the logger stored on the command context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		Environment:  config.DefaultEnv,
		OutputFormat: config.DefaultOutput,
		LogLevel:     config.DefaultLogLevel,
		LogFormat:    config.DefaultLogFormat,
		Storage:      config.StorageConfig{Type: config.DefaultStorageType},
		Target:       &config.TargetConfig{Type: config.DefaultTargetType},
	}
}

// runnerConfig converts the CLI configuration into a runner configuration.
func (c *CommandContext) runnerConfig() (runner.Config, error) {
	loc, err := storage.ParseRoute(c.Cfg.RuleSet)
	if err != nil {
		return runner.Config{}, fmt.Errorf("invalid ruleset: %w", err)
	}
	return runner.Config{
		RuleSet:     loc,
		Environment: c.Cfg.Environment,
		Partition:   c.Cfg.Partition,
	}, nil
}

// newRunner validates the configuration and builds a runner. wh may be nil
// for commands that never query the warehouse.
func (c *CommandContext) newRunner(ctx context.Context, wh *warehouse.Warehouse, opts ...runner.Option) (*runner.Runner, error) {
	if err := c.Cfg.Validate(); err != nil {
		return nil, err
	}
	rc, err := c.runnerConfig()
	if err != nil {
		return nil, err
	}
	reader, err := storage.New(ctx, c.Cfg.Storage, c.Logger)
	if err != nil {
		return nil, err
	}

	opts = append([]runner.Option{runner.WithLogger(c.Logger)}, opts...)
	return runner.New(reader, wh, rc, opts...), nil
}
