package expectation

import (
	"testing"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Catalog(t *testing.T) {
	names := Default().Names()
	assert.Equal(t, []string{
		"ExpectColumnAverageValuesNull",
		"ExpectColumnMatchLikePattern",
		"ExpectColumnMatchRegex",
		"ExpectColumnMatchRegexList",
		"ExpectColumnNotNull",
		"ExpectColumnSumToBeBetween",
		"ExpectColumnValuesToBeBetween",
		"ExpectColumnValuesToBeInSet",
	}, names)
}

func TestLibrary_LookupIsExact(t *testing.T) {
	_, ok := Default().Lookup("expectcolumnnotnull")
	assert.False(t, ok)

	_, ok = Default().Lookup(NotNull)
	assert.True(t, ok)
}

func TestLibrary_BindUnknown(t *testing.T) {
	bound, ok, err := Default().Bind("ExpectSomethingElse", nil)
	assert.Nil(t, bound)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestLibrary_BindParamErrors(t *testing.T) {
	tests := []struct {
		name   string
		rule   string
		params map[string]any
	}{
		{"missing column", NotNull, map[string]any{}},
		{"unknown key", NotNull, map[string]any{"column": "a", "colum": "b"}},
		{"mostly out of range", NotNull, map[string]any{"column": "a", "mostly": 1.5}},
		{"bad regex", MatchRegex, map[string]any{"column": "a", "regex": "("}},
		{"bad match_on", MatchRegexList, map[string]any{"column": "a", "regex_list": []any{"a"}, "match_on": "some"}},
		{"empty regex list", MatchRegexList, map[string]any{"column": "a", "regex_list": []any{}}},
		{"no bounds", ValuesToBeBetween, map[string]any{"column": "a"}},
		{"null fraction without mostly", AverageValuesNull, map[string]any{"column": "a"}},
		{"missing value_set", ValuesToBeInSet, map[string]any{"column": "a"}},
		{"unclosed like class", MatchLikePattern, map[string]any{"column": "a", "like_pattern": "[ab"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := Default().Bind(tt.rule, tt.params)
			assert.True(t, ok)
			var paramErr *ParamError
			require.ErrorAs(t, err, &paramErr)
			assert.Equal(t, tt.rule, paramErr.Rule)
		})
	}
}

func TestLibrary_RegisterCustom(t *testing.T) {
	lib := NewLibrary()
	lib.Register(Definition{
		Name: "ExpectRowCountPositive",
		Check: func(b *Batch, _ any) (core.ValidationOutcome, error) {
			return core.ValidationOutcome{Success: b.RowCount() > 0, ElementCount: b.RowCount()}, nil
		},
	})

	bound, ok, err := lib.Bind("ExpectRowCountPositive", map[string]any{"anything": 1})
	require.True(t, ok)
	require.NoError(t, err)

	out, err := bound.Run(NewBatch(nil))
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, []string{"ExpectRowCountPositive"}, lib.Names())
}
