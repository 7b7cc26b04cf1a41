package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/adapter"
	"github.com/leapstack-labs/leapdq/pkg/storage"
)

var validOutputs = []string{"auto", "text", "markdown", "json"}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.RuleSet == "" {
		return errors.New("ruleset is required\nHint: set ruleset in leapdq.yaml or pass --ruleset s3://bucket/key.yaml")
	}
	if _, err := storage.ParseRoute(c.RuleSet); err != nil {
		return fmt.Errorf("invalid ruleset: %w", err)
	}

	switch c.Storage.Type {
	case storage.TypeS3:
	case storage.TypeLocal:
		if c.Storage.Root == "" {
			return errors.New("storage.root is required for local storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q (expected %s or %s)", c.Storage.Type, storage.TypeS3, storage.TypeLocal)
	}

	if err := ValidateTarget(c.Target); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}

	if !contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output %q (expected one of %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format %q (expected text or json)", c.LogFormat)
	}

	if c.Partition != nil && (c.Partition.Column == "") != (c.Partition.Value == "") {
		return errors.New("partition.column and partition.value must be set together")
	}
	return nil
}

// ValidateTarget checks that a target names a registered adapter.
func ValidateTarget(t *TargetConfig) error {
	if t == nil || t.Type == "" {
		return errors.New("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{Type: t.Type, Available: adapter.ListAdapters()}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
