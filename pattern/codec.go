// SPDX-License-Identifier: MIT

package pattern

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// arrayWire and recordsWire are the exported mirrors used by gob.
type arrayWire struct {
	Shape Shape
	Data  []float64
}

type recordsWire struct {
	Fields []string
	Cols   [][]Value
	N      int
}

// GobEncode implements gob.GobEncoder.
func (a *Array) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(arrayWire{Shape: a.shape, Data: a.data}); err != nil {
		return nil, patternErrorf("Array.GobEncode", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (a *Array) GobDecode(b []byte) error {
	var w arrayWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return patternErrorf("Array.GobDecode", err)
	}
	if err := w.Shape.validate(); err != nil {
		return patternErrorf("Array.GobDecode", err)
	}
	if len(w.Data) != w.Shape.Size() {
		return patternErrorf("Array.GobDecode", fmt.Errorf("%w: %d values for shape %v", ErrShape, len(w.Data), w.Shape))
	}
	*a = *newArray(w.Shape, w.Data)

	return nil
}

// GobEncode implements gob.GobEncoder.
func (r *Records) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(recordsWire{Fields: r.fields, Cols: r.cols, N: r.n}); err != nil {
		return nil, patternErrorf("Records.GobEncode", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (r *Records) GobDecode(b []byte) error {
	var w recordsWire
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&w); err != nil {
		return patternErrorf("Records.GobDecode", err)
	}
	cols := w.Cols
	if len(cols) != len(w.Fields) {
		// gob drops empty slices; rebuild the column set.
		cols = make([][]Value, len(w.Fields))
		copy(cols, w.Cols)
	}
	for j := range cols {
		if len(cols[j]) == 0 && w.N > 0 {
			return patternErrorf("Records.GobDecode", fmt.Errorf("%w: column %q lost", ErrShape, w.Fields[j]))
		}
	}
	out, err := NewRecordsFromColumns(w.Fields, cols)
	if err != nil {
		return patternErrorf("Records.GobDecode", err)
	}
	out.n = w.N
	*r = *out

	return nil
}
