package core

// ValidationOutcome is the diagnostic payload every expectation produces,
// whether it passed or failed.
type ValidationOutcome struct {
	Success           bool    `json:"success"`
	Column            string  `json:"column"`
	RuleType          string  `json:"rule_type"`
	ElementCount      int     `json:"element_count"`
	UnexpectedCount   int     `json:"unexpected_count"`
	UnexpectedPercent float64 `json:"unexpected_percent"`

	// ObservedValue carries the aggregate a non-map expectation measured
	// (for example the column sum). Nil for map expectations.
	ObservedValue any `json:"observed_value,omitempty"`
}
