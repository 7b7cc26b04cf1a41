// Package frame provides a minimal column-oriented in-memory table used as
// the data behind validation batches.
//
// A Frame is built once, either row by row or from a *sql.Rows result, and is
// read-only afterwards. Values are normalized on the way in: byte slices become
// strings and SQL NULL or NaN become nil, so every consumer can rely on IsNull.
package frame

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Frame is a column-oriented table.
type Frame struct {
	columns []string
	index   map[string]int
	data    [][]any
	rows    int
}

// New creates an empty frame with the given column names.
func New(columns ...string) *Frame {
	f := &Frame{
		columns: make([]string, len(columns)),
		index:   make(map[string]int, len(columns)),
		data:    make([][]any, len(columns)),
	}
	copy(f.columns, columns)
	for i, c := range columns {
		f.index[c] = i
	}
	return f
}

// AppendRow adds one row. The number of values must match the column count.
func (f *Frame) AppendRow(values ...any) error {
	if len(values) != len(f.columns) {
		return fmt.Errorf("row has %d values, frame has %d columns", len(values), len(f.columns))
	}
	for i, v := range values {
		f.data[i] = append(f.data[i], normalize(v))
	}
	f.rows++
	return nil
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// HasColumn reports whether the frame has a column with the given name.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the values of a column. The returned slice must not be modified.
func (f *Frame) Column(name string) ([]any, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.data[i], true
}

// FromRows materializes a query result. The caller keeps ownership of rows
// and is responsible for closing it.
func FromRows(rows *sql.Rows) (*Frame, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	decimal := decimalColumns(rows, len(cols))

	f := New(cols...)
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", f.rows+1, err)
		}
		for i, isDecimal := range decimal {
			if !isDecimal {
				continue
			}
			if text, ok := normalize(values[i]).(string); ok {
				if n, err := strconv.ParseFloat(text, 64); err == nil {
					values[i] = n
				}
			}
		}
		if err := f.AppendRow(values...); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result: %w", err)
	}
	return f, nil
}

// decimalColumns flags NUMERIC/DECIMAL columns. Some drivers return them as
// text; they are parsed so numeric expectations apply. Drivers without type
// information report none.
func decimalColumns(rows *sql.Rows, n int) []bool {
	flags := make([]bool, n)
	types, err := rows.ColumnTypes()
	if err != nil {
		return flags
	}
	for i, ct := range types {
		if i >= n {
			break
		}
		switch strings.ToUpper(ct.DatabaseTypeName()) {
		case "NUMERIC", "DECIMAL":
			flags[i] = true
		}
	}
	return flags
}

// IsNull reports whether a normalized value is missing.
func IsNull(v any) bool {
	return v == nil
}

func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(val)
	case float64:
		if math.IsNaN(val) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(val)) {
			return nil
		}
	case sql.NullString:
		if !val.Valid {
			return nil
		}
		return val.String
	case sql.NullInt64:
		if !val.Valid {
			return nil
		}
		return val.Int64
	case sql.NullFloat64:
		if !val.Valid {
			return nil
		}
		return normalize(val.Float64)
	case sql.NullBool:
		if !val.Valid {
			return nil
		}
		return val.Bool
	}
	return fromDecimal(v)
}

// fromDecimal converts driver decimal types exposing Float64 (possibly on a
// pointer receiver) to float64.
func fromDecimal(v any) any {
	if d, ok := v.(float64er); ok {
		return d.Float64()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Struct {
		return v
	}
	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)
	if d, ok := ptr.Interface().(float64er); ok {
		return d.Float64()
	}
	return v
}
