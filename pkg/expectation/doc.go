// Package expectation provides the catalog of named validation routines
// (expectations) that a rule-set can declare.
//
// Each routine is registered in a Library under the exact name rule-sets use
// (for example "ExpectColumnNotNull"). A routine is a pure function of a Batch
// and its decoded parameters and always returns a core.ValidationOutcome,
// including element_count and unexpected_percent, whether it passed or not.
//
// Parameters are decoded from the declaration map with mapstructure and
// validated when a declaration is bound, so a rule-set with a bad regex or a
// missing column parameter is rejected before any data is fetched:
//
//	lib := expectation.Default()
//	bound, err := lib.Bind("ExpectColumnValuesToBeInSet", map[string]any{
//		"column":    "status",
//		"value_set": []any{"open", "closed"},
//	})
//	outcome, err := bound.Run(expectation.NewBatch(f))
package expectation
