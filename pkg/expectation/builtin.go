package expectation

import (
	"cmp"
	"fmt"
	"time"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/leapstack-labs/leapdq/pkg/frame"
)

// Built-in expectation names, as declared in rule-sets.
const (
	ValuesToBeBetween = "ExpectColumnValuesToBeBetween"
	NotNull           = "ExpectColumnNotNull"
	AverageValuesNull = "ExpectColumnAverageValuesNull"
	SumToBeBetween    = "ExpectColumnSumToBeBetween"
	MatchRegex        = "ExpectColumnMatchRegex"
	MatchLikePattern  = "ExpectColumnMatchLikePattern"
	MatchRegexList    = "ExpectColumnMatchRegexList"
	ValuesToBeInSet   = "ExpectColumnValuesToBeInSet"
)

// RegisterBuiltins registers the built-in catalog in l.
func RegisterBuiltins(l *Library) {
	l.Register(Definition{
		Name:        ValuesToBeBetween,
		Type:        "expect_column_values_to_be_between",
		Description: "Column values lie between min and max (inclusive unless strict).",
		ParamKeys:   []string{"column", "min", "max", "strict_min", "strict_max", "mostly"},
		NewParams:   func() any { return &BetweenParams{} },
		Check:       checkBetween,
	})
	l.Register(Definition{
		Name:        NotNull,
		Type:        "expect_column_values_to_not_be_null",
		Description: "Column contains no null values.",
		ParamKeys:   []string{"column", "mostly"},
		NewParams:   func() any { return &NotNullParams{} },
		Check:       checkNotNull,
	})
	l.Register(Definition{
		Name:        AverageValuesNull,
		Type:        "expect_column_values_to_be_null",
		Description: "Fraction of null values is at most mostly.",
		ParamKeys:   []string{"column", "mostly"},
		NewParams:   func() any { return &NullFractionParams{} },
		Check:       checkNullFraction,
	})
	l.Register(Definition{
		Name:        SumToBeBetween,
		Type:        "expect_column_sum_to_be_between",
		Description: "Sum of the column lies between min and max.",
		ParamKeys:   []string{"column", "min", "max", "strict_min", "strict_max"},
		NewParams:   func() any { return &SumParams{} },
		Check:       checkSum,
	})
	l.Register(Definition{
		Name:        MatchRegex,
		Type:        "expect_column_values_to_match_regex",
		Description: "Column values contain a match for the regular expression.",
		ParamKeys:   []string{"column", "regex", "mostly"},
		NewParams:   func() any { return &RegexParams{} },
		Check:       checkRegex,
	})
	l.Register(Definition{
		Name:        MatchLikePattern,
		Type:        "expect_column_values_to_match_like_pattern",
		Description: "Column values match the SQL LIKE pattern.",
		ParamKeys:   []string{"column", "like_pattern", "mostly"},
		NewParams:   func() any { return &LikePatternParams{} },
		Check:       checkLike,
	})
	l.Register(Definition{
		Name:        MatchRegexList,
		Type:        "expect_column_values_to_match_regex_list",
		Description: "Column values match any (or all) of the regular expressions.",
		ParamKeys:   []string{"column", "regex_list", "match_on", "mostly"},
		NewParams:   func() any { return &RegexListParams{} },
		Check:       checkRegexList,
	})
	l.Register(Definition{
		Name:        ValuesToBeInSet,
		Type:        "expect_column_values_to_be_in_set",
		Description: "Column values belong to value_set.",
		ParamKeys:   []string{"column", "value_set", "mostly"},
		NewParams:   func() any { return &InSetParams{} },
		Check:       checkInSet,
	})
}

func checkBetween(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*BetweenParams)
	return evaluateMap(b, "expect_column_values_to_be_between", p.Column, p.mostly(), func(v any) bool {
		return withinBounds(v, p.Min, p.Max, p.StrictMin, p.StrictMax)
	})
}

func checkNotNull(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*NotNullParams)
	vals, err := b.Column(p.Column)
	if err != nil {
		return core.ValidationOutcome{}, err
	}
	nulls := countNulls(vals)
	return ratioOutcome("expect_column_values_to_not_be_null", p.Column, len(vals), len(vals), nulls, p.mostly()), nil
}

func checkNullFraction(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*NullFractionParams)
	vals, err := b.Column(p.Column)
	if err != nil {
		return core.ValidationOutcome{}, err
	}
	nulls := countNulls(vals)

	out := core.ValidationOutcome{
		Success:         true,
		Column:          p.Column,
		RuleType:        "expect_column_values_to_be_null",
		ElementCount:    len(vals),
		UnexpectedCount: nulls,
	}
	if len(vals) > 0 {
		fraction := float64(nulls) / float64(len(vals))
		out.UnexpectedPercent = fraction * 100
		out.Success = fraction <= *p.Mostly
	}
	return out, nil
}

// checkSum aggregates the column. Earlier releases ran the null-value check
// under this name; the sum is now genuinely bounded.
func checkSum(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*SumParams)
	vals, err := b.Column(p.Column)
	if err != nil {
		return core.ValidationOutcome{}, err
	}

	var sum float64
	for _, v := range vals {
		if frame.IsNull(v) {
			continue
		}
		f, ok := frame.ToFloat(v)
		if !ok {
			return core.ValidationOutcome{}, fmt.Errorf("column %q: value %v (%T) is not numeric", p.Column, v, v)
		}
		sum += f
	}

	var minV, maxV any
	if p.Min != nil {
		minV = *p.Min
	}
	if p.Max != nil {
		maxV = *p.Max
	}

	out := core.ValidationOutcome{
		Success:       withinBounds(sum, minV, maxV, p.StrictMin, p.StrictMax),
		Column:        p.Column,
		RuleType:      "expect_column_sum_to_be_between",
		ElementCount:  len(vals),
		ObservedValue: sum,
	}
	if !out.Success {
		out.UnexpectedPercent = 100
	}
	return out, nil
}

func checkRegex(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*RegexParams)
	return evaluateMap(b, "expect_column_values_to_match_regex", p.Column, p.mostly(), func(v any) bool {
		return p.re.MatchString(frame.ToString(v))
	})
}

func checkLike(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*LikePatternParams)
	return evaluateMap(b, "expect_column_values_to_match_like_pattern", p.Column, p.mostly(), func(v any) bool {
		return p.re.MatchString(frame.ToString(v))
	})
}

func checkRegexList(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*RegexListParams)
	return evaluateMap(b, "expect_column_values_to_match_regex_list", p.Column, p.mostly(), func(v any) bool {
		s := frame.ToString(v)
		for _, re := range p.res {
			matched := re.MatchString(s)
			if p.MatchOn == MatchAny && matched {
				return true
			}
			if p.MatchOn == MatchAll && !matched {
				return false
			}
		}
		return p.MatchOn == MatchAll
	})
}

func checkInSet(b *Batch, params any) (core.ValidationOutcome, error) {
	p := params.(*InSetParams)
	return evaluateMap(b, "expect_column_values_to_be_in_set", p.Column, p.mostly(), p.contains)
}

// evaluateMap runs a per-value predicate over the non-null values of a column.
// The unexpected percent is relative to the non-null values.
func evaluateMap(b *Batch, ruleType, column string, mostly float64, expected func(v any) bool) (core.ValidationOutcome, error) {
	vals, err := b.Column(column)
	if err != nil {
		return core.ValidationOutcome{}, err
	}

	nonNull, unexpected := 0, 0
	for _, v := range vals {
		if frame.IsNull(v) {
			continue
		}
		nonNull++
		if !expected(v) {
			unexpected++
		}
	}
	return ratioOutcome(ruleType, column, len(vals), nonNull, unexpected, mostly), nil
}

// ratioOutcome builds a map-expectation outcome. An empty denominator passes.
func ratioOutcome(ruleType, column string, elements, denom, unexpected int, mostly float64) core.ValidationOutcome {
	out := core.ValidationOutcome{
		Success:         true,
		Column:          column,
		RuleType:        ruleType,
		ElementCount:    elements,
		UnexpectedCount: unexpected,
	}
	if denom > 0 {
		out.UnexpectedPercent = float64(unexpected) / float64(denom) * 100
		out.Success = float64(denom-unexpected)/float64(denom) >= mostly
	}
	return out
}

func countNulls(vals []any) int {
	n := 0
	for _, v := range vals {
		if frame.IsNull(v) {
			n++
		}
	}
	return n
}

func withinBounds(v, lo, hi any, strictLo, strictHi bool) bool {
	if lo != nil {
		c, ok := compareValues(v, lo)
		if !ok || c < 0 || (strictLo && c == 0) {
			return false
		}
	}
	if hi != nil {
		c, ok := compareValues(v, hi)
		if !ok || c > 0 || (strictHi && c == 0) {
			return false
		}
	}
	return true
}

// dateLayouts are the formats a string bound may use against a time value.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// compareValues orders a column value against a declared bound. ok is false
// when the two cannot be ordered (e.g. text against a number).
func compareValues(v, bound any) (int, bool) {
	if fv, ok := frame.ToFloat(v); ok {
		if fb, ok := frame.ToFloat(bound); ok {
			return cmp.Compare(fv, fb), true
		}
		return 0, false
	}

	if tv, ok := v.(time.Time); ok {
		switch b := bound.(type) {
		case time.Time:
			return tv.Compare(b), true
		case string:
			for _, layout := range dateLayouts {
				if tb, err := time.Parse(layout, b); err == nil {
					return tv.Compare(tb), true
				}
			}
		}
		return 0, false
	}

	if sv, ok := v.(string); ok {
		if sb, ok := bound.(string); ok {
			return cmp.Compare(sv, sb), true
		}
	}
	return 0, false
}
