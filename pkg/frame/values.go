package frame

import (
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// float64er is implemented by driver decimal types (e.g. duckdb.Decimal).
type float64er interface {
	Float64() float64
}

// ToFloat converts a numeric value to float64. Strings are not parsed;
// a text column is not numeric even if its values look like numbers.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f, true
	case float64er:
		return n.Float64(), true
	default:
		return 0, false
	}
}

// ToString renders a value the way it is matched by text expectations.
func ToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Equal compares two values loosely: numbers by value regardless of their Go
// type, everything else by its text form. Declared YAML values (int, float,
// string) can therefore be compared with whatever the driver returned.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, okA := ToFloat(a)
	fb, okB := ToFloat(b)
	if okA && okB {
		return fa == fb
	}
	if okA != okB {
		return false
	}
	return ToString(a) == ToString(b)
}
