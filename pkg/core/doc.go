// Package core defines the shared language of the LeapDQ system.
//
// This package contains:
//   - Rule-set entities (RuleSetDocument, QuerySource, Expectation, RuleGroup)
//   - Validation results (ValidationOutcome) and severities
//   - Configuration types (TargetConfig, StorageConfig)
//   - Adapter configuration shared by warehouse adapters
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
