package expectation

import (
	"fmt"
	"regexp"
	"strings"
)

// LikeToRegex translates a SQL LIKE pattern into an anchored RE2 expression.
//
//	%      any sequence of characters
//	_      any single character
//	[...]  character class, passed through ([^...] negates)
//	\x     literal x
//
// Everything else matches literally. LIKE matches the whole value, so the
// result is anchored at both ends.
func LikeToRegex(pattern string) (string, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		case '\\':
			if i+1 >= len(runes) {
				return "", fmt.Errorf("like pattern %q ends with an escape character", pattern)
			}
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case '[':
			end := classEnd(runes, i)
			if end < 0 {
				return "", fmt.Errorf("like pattern %q has an unclosed '['", pattern)
			}
			class := runes[i+1 : end]
			b.WriteByte('[')
			if len(class) > 0 && class[0] == '^' {
				b.WriteByte('^')
				class = class[1:]
			}
			for _, c := range class {
				if c == '\\' || c == ']' || c == '[' {
					b.WriteByte('\\')
				}
				b.WriteRune(c)
			}
			b.WriteByte(']')
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString("$")
	return b.String(), nil
}

// classEnd returns the index of the ']' closing the class opened at start,
// or -1. A ']' directly after '[' or '[^' is a literal member.
func classEnd(runes []rune, start int) int {
	i := start + 1
	if i < len(runes) && runes[i] == '^' {
		i++
	}
	if i < len(runes) && runes[i] == ']' {
		i++
	}
	for ; i < len(runes); i++ {
		if runes[i] == ']' {
			return i
		}
	}
	return -1
}

// CompileLike compiles a SQL LIKE pattern.
func CompileLike(pattern string) (*regexp.Regexp, error) {
	expr, err := LikeToRegex(pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid like pattern %q: %w", pattern, err)
	}
	return re, nil
}
