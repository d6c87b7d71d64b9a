// SPDX-License-Identifier: MIT
// Package: pattern
//
// records.go — field values and the columnar record table used for the
// observations (events) and channels axes.
//
// Records are stored column by column. A field name is resolved to its column
// once (Column, ColumnIndex); hot loops then index plain slices and never look
// a field up by name per row.

package pattern

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var nan = math.NaN()

// Kind tells whether a Value is numeric or categorical.
type Kind uint8

const (
	// Number is a float64 value; NaN means missing.
	Number Kind = iota
	// String is a categorical value; "" means missing.
	String
)

// Value is one field of one record.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// Num builds a numeric value.
func Num(f float64) Value { return Value{Kind: Number, Num: f} }

// Str builds a categorical value.
func Str(s string) Value { return Value{Kind: String, Str: s} }

// Missing returns the numeric missing value (NaN).
func Missing() Value { return Value{Kind: Number, Num: nan} }

// IsMissing reports whether v is NaN or the empty category.
func (v Value) IsMissing() bool {
	if v.Kind == String {
		return v.Str == ""
	}

	return math.IsNaN(v.Num)
}

// Equal compares two values; two missing values of the same kind are equal.
func (v Value) Equal(w Value) bool {
	if v.Kind != w.Kind {
		return false
	}
	if v.Kind == String {
		return v.Str == w.Str
	}
	if math.IsNaN(v.Num) && math.IsNaN(w.Num) {
		return true
	}

	return v.Num == w.Num
}

// String formats the value the way it appears in labels.
func (v Value) String() string {
	if v.Kind == String {
		return v.Str
	}

	return strconv.FormatFloat(v.Num, 'g', -1, 64)
}

// key is a collision-free map key for grouping.
func (v Value) key() string {
	if v.Kind == String {
		return "s:" + v.Str
	}

	return "n:" + v.String()
}

// Key joins the grouping keys of several values into one map key.
func Key(vals ...Value) string {
	if len(vals) == 1 {
		return vals[0].key()
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.key()
	}

	return strings.Join(parts, "\x1f")
}

// Records is a columnar table: every field holds one Value per record.
type Records struct {
	fields []string
	index  map[string]int
	cols   [][]Value
	n      int
}

// NewRecords builds a table from field names and row-major values.
// Every row must have len(fields) values.
func NewRecords(fields []string, rows [][]Value) (*Records, error) {
	r := &Records{
		fields: append([]string(nil), fields...),
		index:  make(map[string]int, len(fields)),
		cols:   make([][]Value, len(fields)),
		n:      len(rows),
	}
	for j, f := range fields {
		if _, dup := r.index[f]; dup {
			return nil, patternErrorf("NewRecords", fmt.Errorf("%w: duplicate field %q", ErrConfig, f))
		}
		r.index[f] = j
		r.cols[j] = make([]Value, len(rows))
	}
	for i, row := range rows {
		if len(row) != len(fields) {
			return nil, patternErrorf("NewRecords",
				fmt.Errorf("%w: row %d has %d values, want %d", ErrShape, i, len(row), len(fields)))
		}
		for j, v := range row {
			r.cols[j][i] = v
		}
	}

	return r, nil
}

// NewRecordsFromColumns builds a table from whole columns (not copied).
func NewRecordsFromColumns(fields []string, cols [][]Value) (*Records, error) {
	if len(fields) != len(cols) {
		return nil, patternErrorf("NewRecordsFromColumns",
			fmt.Errorf("%w: %d fields, %d columns", ErrShape, len(fields), len(cols)))
	}
	r := &Records{fields: append([]string(nil), fields...), index: make(map[string]int, len(fields)), cols: cols}
	for j, f := range fields {
		if _, dup := r.index[f]; dup {
			return nil, patternErrorf("NewRecordsFromColumns", fmt.Errorf("%w: duplicate field %q", ErrConfig, f))
		}
		r.index[f] = j
		if j == 0 {
			r.n = len(cols[j])
		} else if len(cols[j]) != r.n {
			return nil, patternErrorf("NewRecordsFromColumns",
				fmt.Errorf("%w: column %q has %d values, want %d", ErrShape, f, len(cols[j]), r.n))
		}
	}

	return r, nil
}

// NewChannels builds the channel table with fields number, region and label.
func NewChannels(numbers []int, regions, labels []string) (*Records, error) {
	if len(regions) != len(numbers) || len(labels) != len(numbers) {
		return nil, patternErrorf("NewChannels", fmt.Errorf("%w: mismatched channel metadata lengths", ErrShape))
	}
	rows := make([][]Value, len(numbers))
	for i := range numbers {
		rows[i] = []Value{Num(float64(numbers[i])), Str(regions[i]), Str(labels[i])}
	}

	return NewRecords([]string{"number", "region", "label"}, rows)
}

// Len returns the number of records.
func (r *Records) Len() int {
	if r == nil {
		return 0
	}

	return r.n
}

// Fields returns the field names in table order.
func (r *Records) Fields() []string { return append([]string(nil), r.fields...) }

// Has reports whether the table has the named field.
func (r *Records) Has(field string) bool {
	_, ok := r.index[field]
	return ok
}

// ColumnIndex resolves a field name to its column position.
// Unknown names return ErrConfig and ErrUnknownField.
func (r *Records) ColumnIndex(field string) (int, error) {
	j, ok := r.index[field]
	if !ok {
		return 0, fmt.Errorf("%w: %w %q (have %v)", ErrConfig, ErrUnknownField, field, r.fields)
	}

	return j, nil
}

// Column returns the values of one field. The slice must not be modified.
func (r *Records) Column(field string) ([]Value, error) {
	j, err := r.ColumnIndex(field)
	if err != nil {
		return nil, err
	}

	return r.cols[j], nil
}

// ColumnAt returns the column at a resolved position.
func (r *Records) ColumnAt(j int) []Value { return r.cols[j] }

// Columns resolves several field names at once into an accessor table.
func (r *Records) Columns(fields ...string) ([][]Value, error) {
	out := make([][]Value, len(fields))
	for i, f := range fields {
		col, err := r.Column(f)
		if err != nil {
			return nil, err
		}
		out[i] = col
	}

	return out, nil
}

// IsNumeric reports whether every value of the column is numeric.
func (r *Records) IsNumeric(j int) bool {
	for _, v := range r.cols[j] {
		if v.Kind != Number {
			return false
		}
	}

	return true
}

// Row returns record i as a field → value map. Intended for display, not for
// hot loops.
func (r *Records) Row(i int) map[string]Value {
	out := make(map[string]Value, len(r.fields))
	for j, f := range r.fields {
		out[f] = r.cols[j][i]
	}

	return out
}

// Subset returns a new table holding the given records in the given order.
func (r *Records) Subset(idx []int) (*Records, error) {
	cols := make([][]Value, len(r.cols))
	for j := range r.cols {
		cols[j] = make([]Value, len(idx))
		for k, i := range idx {
			if i < 0 || i >= r.n {
				return nil, patternErrorf("Records.Subset",
					fmt.Errorf("%w: record %d (len %d)", ErrOutOfRange, i, r.n))
			}
			cols[j][k] = r.cols[j][i]
		}
	}
	out := &Records{fields: append([]string(nil), r.fields...), index: r.index, cols: cols, n: len(idx)}

	return out, nil
}
