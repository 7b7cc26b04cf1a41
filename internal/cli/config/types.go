// Package config provides configuration management for the LeapDQ CLI.
//
// Configuration is layered with koanf: built-in defaults, then leapdq.yaml,
// then LEAPDQ_* environment variables, then explicitly set flags.
package config

import (
	"github.com/leapstack-labs/leapdq/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// StorageConfig is an alias for the shared storage configuration.
type StorageConfig = core.StorageConfig

// PartitionConfig is an alias for the shared partition filter.
type PartitionConfig = core.PartitionConfig

// Config holds all CLI configuration options.
type Config struct {
	Environment  string           `koanf:"environment"`
	RuleSet      string           `koanf:"ruleset"`
	Storage      StorageConfig    `koanf:"storage"`
	Target       *TargetConfig    `koanf:"target"`
	Partition    *PartitionConfig `koanf:"partition"`
	OutputFormat string           `koanf:"output"`
	LogLevel     string           `koanf:"log_level"`
	LogFormat    string           `koanf:"log_format"`
	MetricsFile  string           `koanf:"metrics_file"`
	Verbose      bool             `koanf:"verbose"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultEnv          = "dev"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultStorageType  = "s3"
	DefaultTargetType   = "duckdb"
	DefaultPostgresPort = 5432
)

// ApplyTargetDefaults applies default values to a TargetConfig based on its type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if t.Type == "postgres" && t.Port == 0 {
		t.Port = DefaultPostgresPort
	}
}
