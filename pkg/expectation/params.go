package expectation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/leapstack-labs/leapdq/pkg/frame"
)

// ColumnParams is embedded by every parameter struct.
type ColumnParams struct {
	Column string `mapstructure:"column"`
}

func (p *ColumnParams) validateColumn() error {
	if p.Column == "" {
		return errors.New("column is required")
	}
	return nil
}

// MostlyParam holds the fraction of values that must meet a map expectation.
// Nil means 1 (every value).
type MostlyParam struct {
	Mostly *float64 `mapstructure:"mostly"`
}

func (p *MostlyParam) mostly() float64 {
	if p.Mostly == nil {
		return 1
	}
	return *p.Mostly
}

func (p *MostlyParam) validateMostly() error {
	if p.Mostly != nil && (*p.Mostly < 0 || *p.Mostly > 1) {
		return fmt.Errorf("mostly must be between 0 and 1, got %v", *p.Mostly)
	}
	return nil
}

// BetweenParams configures ExpectColumnValuesToBeBetween.
type BetweenParams struct {
	ColumnParams `mapstructure:",squash"`
	MostlyParam  `mapstructure:",squash"`
	Min          any  `mapstructure:"min"`
	Max          any  `mapstructure:"max"`
	StrictMin    bool `mapstructure:"strict_min"`
	StrictMax    bool `mapstructure:"strict_max"`
}

// Validate implements Validator.
func (p *BetweenParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	if p.Min == nil && p.Max == nil {
		return errors.New("at least one of min or max is required")
	}
	return p.validateMostly()
}

// NotNullParams configures ExpectColumnNotNull.
type NotNullParams struct {
	ColumnParams `mapstructure:",squash"`
	MostlyParam  `mapstructure:",squash"`
}

// Validate implements Validator.
func (p *NotNullParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	return p.validateMostly()
}

// NullFractionParams configures ExpectColumnAverageValuesNull. Mostly is the
// largest fraction of null values the column may hold.
type NullFractionParams struct {
	ColumnParams `mapstructure:",squash"`
	Mostly       *float64 `mapstructure:"mostly"`
}

// Validate implements Validator.
func (p *NullFractionParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	if p.Mostly == nil {
		return errors.New("mostly is required")
	}
	if *p.Mostly < 0 || *p.Mostly > 1 {
		return fmt.Errorf("mostly must be between 0 and 1, got %v", *p.Mostly)
	}
	return nil
}

// SumParams configures ExpectColumnSumToBeBetween.
type SumParams struct {
	ColumnParams `mapstructure:",squash"`
	Min          *float64 `mapstructure:"min"`
	Max          *float64 `mapstructure:"max"`
	StrictMin    bool     `mapstructure:"strict_min"`
	StrictMax    bool     `mapstructure:"strict_max"`
}

// Validate implements Validator.
func (p *SumParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	if p.Min == nil && p.Max == nil {
		return errors.New("at least one of min or max is required")
	}
	return nil
}

// RegexParams configures ExpectColumnMatchRegex.
type RegexParams struct {
	ColumnParams `mapstructure:",squash"`
	MostlyParam  `mapstructure:",squash"`
	Regex        string `mapstructure:"regex"`

	re *regexp.Regexp
}

// Validate implements Validator.
func (p *RegexParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	if p.Regex == "" {
		return errors.New("regex is required")
	}
	re, err := regexp.Compile(p.Regex)
	if err != nil {
		return fmt.Errorf("invalid regex %q: %w", p.Regex, err)
	}
	p.re = re
	return p.validateMostly()
}

// LikePatternParams configures ExpectColumnMatchLikePattern.
type LikePatternParams struct {
	ColumnParams `mapstructure:",squash"`
	MostlyParam  `mapstructure:",squash"`
	LikePattern  string `mapstructure:"like_pattern"`

	re *regexp.Regexp
}

// Validate implements Validator.
func (p *LikePatternParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	if p.LikePattern == "" {
		return errors.New("like_pattern is required")
	}
	re, err := CompileLike(p.LikePattern)
	if err != nil {
		return err
	}
	p.re = re
	return p.validateMostly()
}

// Match modes for ExpectColumnMatchRegexList.
const (
	MatchAny = "any"
	MatchAll = "all"
)

// RegexListParams configures ExpectColumnMatchRegexList.
type RegexListParams struct {
	ColumnParams `mapstructure:",squash"`
	MostlyParam  `mapstructure:",squash"`
	RegexList    []string `mapstructure:"regex_list"`
	MatchOn      string   `mapstructure:"match_on"`

	res []*regexp.Regexp
}

// Validate implements Validator.
func (p *RegexListParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	if len(p.RegexList) == 0 {
		return errors.New("regex_list must not be empty")
	}
	switch p.MatchOn {
	case "":
		p.MatchOn = MatchAny
	case MatchAny, MatchAll:
	default:
		return fmt.Errorf("match_on must be %q or %q, got %q", MatchAny, MatchAll, p.MatchOn)
	}
	p.res = make([]*regexp.Regexp, len(p.RegexList))
	for i, expr := range p.RegexList {
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("invalid regex %q: %w", expr, err)
		}
		p.res[i] = re
	}
	return p.validateMostly()
}

// InSetParams configures ExpectColumnValuesToBeInSet.
type InSetParams struct {
	ColumnParams `mapstructure:",squash"`
	MostlyParam  `mapstructure:",squash"`
	ValueSet     []any `mapstructure:"value_set"`

	nums  map[float64]struct{}
	texts map[string]struct{}
}

// Validate implements Validator.
func (p *InSetParams) Validate() error {
	if err := p.validateColumn(); err != nil {
		return err
	}
	if p.ValueSet == nil {
		return errors.New("value_set is required")
	}
	p.nums = make(map[float64]struct{})
	p.texts = make(map[string]struct{})
	for _, v := range p.ValueSet {
		if v == nil {
			continue
		}
		if f, ok := frame.ToFloat(v); ok {
			p.nums[f] = struct{}{}
			continue
		}
		p.texts[frame.ToString(v)] = struct{}{}
	}
	return p.validateMostly()
}

func (p *InSetParams) contains(v any) bool {
	if f, ok := frame.ToFloat(v); ok {
		_, found := p.nums[f]
		return found
	}
	_, found := p.texts[frame.ToString(v)]
	return found
}
