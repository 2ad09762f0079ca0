// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package export

import (
	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/featurebasedb/loadtxt"
)

// DataType returns the Arrow type a loadtxt Type is stored as.
func DataType(t loadtxt.Type) arrow.DataType {
	switch t {
	case loadtxt.Int:
		return arrow.PrimitiveTypes.Int64
	case loadtxt.Bool:
		return arrow.FixedWidthTypes.Boolean
	case loadtxt.Text:
		return arrow.BinaryTypes.String
	}
	return arrow.PrimitiveTypes.Float64
}

// Schema has one non-nullable field per column of a, named by ColumnNames.
func Schema(a *loadtxt.Array) *arrow.Schema {
	names := ColumnNames(a)
	typ := DataType(a.Type())
	fields := make([]arrow.Field, len(names))
	for i, n := range names {
		fields[i] = arrow.Field{Name: n, Type: typ}
	}
	return arrow.NewSchema(fields, nil)
}

// Record copies a into a columnar Arrow record. A 1-D array becomes a
// single column. The caller must Release the record.
func Record(a *loadtxt.Array, mem memory.Allocator) arrow.Record {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	m := a.AtLeast2D()
	shape := m.Shape()
	cols := make([]arrow.Array, shape[1])
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	for j := range cols {
		cols[j] = column(m.Col(j), mem)
	}
	return array.NewRecord(Schema(a), cols, int64(shape[0]))
}

func column(c *loadtxt.Array, mem memory.Allocator) arrow.Array {
	switch c.Type() {
	case loadtxt.Int:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(c.Int64s(), nil)
		return b.NewArray()
	case loadtxt.Bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		b.AppendValues(c.Bools(), nil)
		return b.NewArray()
	case loadtxt.Text:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.AppendValues(c.Strings(), nil)
		return b.NewArray()
	}
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(c.Float64s(), nil)
	return b.NewArray()
}

// Table wraps Record in a single-chunk Arrow table. The caller must
// Release the table.
func Table(a *loadtxt.Array, mem memory.Allocator) arrow.Table {
	rec := Record(a, mem)
	defer rec.Release()
	return array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
}
