package core

import (
	"fmt"
	"strings"
)

// =============================================================================
// Severity
// =============================================================================

// Severity is the escalation level of a failed expectation.
type Severity int

// Severity levels for expectations. The zero value is SeverityHigh so that an
// expectation without an explicit severity aborts the run when it fails.
const (
	// SeverityHigh aborts the run when the expectation fails.
	SeverityHigh Severity = iota
	// SeverityMedium logs a warning and continues.
	SeverityMedium
	// SeverityLow logs an informational record and continues.
	SeverityLow
)

// String returns the declared name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a declared severity to a Severity value.
// Matching is case-insensitive. An empty string yields SeverityHigh.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	default:
		return SeverityHigh, fmt.Errorf("invalid severity %q (expected HIGH, MEDIUM or LOW)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
