// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"fmt"
	"math"
)

// Array is the typed result of an ingestion: a 1-D or 2-D grid of one
// scalar type, stored flat in row-major order.
//
// Methods documented as returning a view share backing storage with the
// receiver, so writes through one are visible through the other. Methods
// documented as returning a copy never alias the receiver. An Array
// returned by Ingest aliases nothing but itself.
type Array struct {
	typ   Type
	shape []int
	names []string

	floats []float64
	ints   []int64
	bools  []bool
	texts  []string
}

func newArray(typ Type, cols int) *Array {
	return &Array{typ: typ, shape: []int{0, cols}}
}

// NewFloat64Array wraps data as a rows×cols array without copying.
func NewFloat64Array(data []float64, rows, cols int) *Array {
	checkShape(len(data), rows, cols)
	return &Array{typ: Float, shape: []int{rows, cols}, floats: data}
}

// NewInt64Array wraps data as a rows×cols array without copying.
func NewInt64Array(data []int64, rows, cols int) *Array {
	checkShape(len(data), rows, cols)
	return &Array{typ: Int, shape: []int{rows, cols}, ints: data}
}

// NewBoolArray wraps data as a rows×cols array without copying.
func NewBoolArray(data []bool, rows, cols int) *Array {
	checkShape(len(data), rows, cols)
	return &Array{typ: Bool, shape: []int{rows, cols}, bools: data}
}

// NewStringArray wraps data as a rows×cols array without copying.
func NewStringArray(data []string, rows, cols int) *Array {
	checkShape(len(data), rows, cols)
	return &Array{typ: Text, shape: []int{rows, cols}, texts: data}
}

func checkShape(n, rows, cols int) {
	if rows < 0 || cols < 0 || rows*cols != n {
		panic(fmt.Sprintf("loadtxt: %d values do not fill a %dx%d array", n, rows, cols))
	}
}

func (a *Array) appendCell(c cell) {
	switch a.typ {
	case Float:
		a.floats = append(a.floats, c.f)
	case Int:
		a.ints = append(a.ints, c.i)
	case Bool:
		a.bools = append(a.bools, c.b)
	default:
		a.texts = append(a.texts, c.s)
	}
}

// endRow records one completed row of appended cells.
func (a *Array) endRow() { a.shape[0]++ }

// Type returns the scalar type.
func (a *Array) Type() Type { return a.typ }

// Shape returns a copy of the dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// Ndim is 1 or 2.
func (a *Array) Ndim() int { return len(a.shape) }

// Len is the total number of elements.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.shape {
		n *= d
	}
	return n
}

// Names returns the column names read from a header line, if any.
func (a *Array) Names() []string { return append([]string(nil), a.names...) }

// Float64s returns the elements in row-major order as a view. It is nil
// unless Type is Float.
func (a *Array) Float64s() []float64 { return a.floats }

// Int64s returns the elements in row-major order as a view. It is nil
// unless Type is Int.
func (a *Array) Int64s() []int64 { return a.ints }

// Bools returns the elements in row-major order as a view. It is nil
// unless Type is Bool.
func (a *Array) Bools() []bool { return a.bools }

// Strings returns the elements in row-major order as a view. It is nil
// unless Type is Text.
func (a *Array) Strings() []string { return a.texts }

// Value returns element k in row-major order.
func (a *Array) Value(k int) interface{} {
	switch a.typ {
	case Float:
		return a.floats[k]
	case Int:
		return a.ints[k]
	case Bool:
		return a.bools[k]
	default:
		return a.texts[k]
	}
}

// At returns the element at the given index, which must have one
// coordinate per dimension. It panics when out of range, like a slice.
func (a *Array) At(idx ...int) interface{} {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("loadtxt: %d indexes for a %d-D array", len(idx), len(a.shape)))
	}
	k := 0
	for d, i := range idx {
		if i < 0 || i >= a.shape[d] {
			panic(fmt.Sprintf("loadtxt: index %d out of range for dimension %d of size %d", i, d, a.shape[d]))
		}
		k = k*a.shape[d] + i
	}
	return a.Value(k)
}

// slice returns a view of elements [i, j) with the given shape.
func (a *Array) slice(i, j int, shape []int) *Array {
	v := &Array{typ: a.typ, shape: shape, names: a.names}
	switch a.typ {
	case Float:
		v.floats = a.floats[i:j:j]
	case Int:
		v.ints = a.ints[i:j:j]
	case Bool:
		v.bools = a.bools[i:j:j]
	default:
		v.texts = a.texts[i:j:j]
	}
	return v
}

// Row returns row i of a 2-D array as a 1-D view.
func (a *Array) Row(i int) *Array {
	if len(a.shape) != 2 {
		panic("loadtxt: Row of a 1-D array")
	}
	if i < 0 || i >= a.shape[0] {
		panic(fmt.Sprintf("loadtxt: row %d out of range [0,%d)", i, a.shape[0]))
	}
	cols := a.shape[1]
	return a.slice(i*cols, (i+1)*cols, []int{cols})
}

// Slice returns rows [i, j) as a view. On a 1-D array it slices elements.
func (a *Array) Slice(i, j int) *Array {
	if i < 0 || j < i || j > a.shape[0] {
		panic(fmt.Sprintf("loadtxt: slice [%d:%d] out of range [0,%d]", i, j, a.shape[0]))
	}
	if len(a.shape) == 1 {
		return a.slice(i, j, []int{j - i})
	}
	cols := a.shape[1]
	return a.slice(i*cols, j*cols, []int{j - i, cols})
}

// Col returns column j of a 2-D array as a 1-D copy.
func (a *Array) Col(j int) *Array {
	if len(a.shape) != 2 {
		panic("loadtxt: Col of a 1-D array")
	}
	rows, cols := a.shape[0], a.shape[1]
	if j < 0 || j >= cols {
		panic(fmt.Sprintf("loadtxt: column %d out of range [0,%d)", j, cols))
	}
	out := &Array{typ: a.typ, shape: []int{rows}}
	if j < len(a.names) {
		out.names = []string{a.names[j]}
	}
	for i := 0; i < rows; i++ {
		out.appendValueFrom(a, i*cols+j)
	}
	return out
}

func (a *Array) appendValueFrom(src *Array, k int) {
	switch a.typ {
	case Float:
		a.floats = append(a.floats, src.floats[k])
	case Int:
		a.ints = append(a.ints, src.ints[k])
	case Bool:
		a.bools = append(a.bools, src.bools[k])
	default:
		a.texts = append(a.texts, src.texts[k])
	}
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	out := &Array{
		typ:   a.typ,
		shape: a.Shape(),
		names: a.Names(),
	}
	switch a.typ {
	case Float:
		out.floats = append([]float64(nil), a.floats...)
	case Int:
		out.ints = append([]int64(nil), a.ints...)
	case Bool:
		out.bools = append([]bool(nil), a.bools...)
	default:
		out.texts = append([]string(nil), a.texts...)
	}
	return out
}

// T returns the transpose as a copy. A 1-D array is simply copied.
func (a *Array) T() *Array {
	if len(a.shape) == 1 {
		return a.Clone()
	}
	rows, cols := a.shape[0], a.shape[1]
	out := &Array{typ: a.typ, shape: []int{cols, rows}, names: a.Names()}
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out.appendValueFrom(a, i*cols+j)
		}
	}
	return out
}

// Squeeze returns a 1-D view of a non-empty 2-D array with a single row
// or a single column. Anything else is returned unchanged.
func (a *Array) Squeeze() *Array {
	if len(a.shape) != 2 || a.Len() == 0 || (a.shape[0] != 1 && a.shape[1] != 1) {
		return a
	}
	return a.slice(0, a.Len(), []int{a.Len()})
}

// AtLeast2D returns a 2-D view. A 1-D array of n elements becomes n×1,
// one element per row.
func (a *Array) AtLeast2D() *Array {
	if len(a.shape) == 2 {
		return a
	}
	return a.slice(0, a.Len(), []int{a.Len(), 1})
}

// Equal reports whether b has the same type, shape and elements. NaN
// equals NaN here.
func (a *Array) Equal(b *Array) bool {
	if a.typ != b.typ || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for k := 0; k < a.Len(); k++ {
		if a.typ == Float {
			x, y := a.floats[k], b.floats[k]
			if x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
				return false
			}
			continue
		}
		if a.Value(k) != b.Value(k) {
			return false
		}
	}
	return true
}
