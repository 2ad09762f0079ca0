// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package export

import (
	"io"

	"github.com/featurebasedb/loadtxt"
	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
)

// WriteTable renders a as a boxed table with a header row of column names.
// A 1-D array is shown as a single column.
func WriteTable(w io.Writer, a *loadtxt.Array) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	// Don't uppercase the header values.
	t.Style().Format.Header = text.FormatDefault

	names := ColumnNames(a)
	header := make(table.Row, len(names))
	for i, n := range names {
		header[i] = n
	}
	t.AppendHeader(header)

	m := a.AtLeast2D()
	shape := m.Shape()
	for i := 0; i < shape[0]; i++ {
		row := make(table.Row, shape[1])
		for j := range row {
			row[j] = FormatValue(m.At(i, j))
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}
