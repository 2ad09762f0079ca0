// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import "github.com/featurebasedb/loadtxt/errors"

// Projector restricts rows to a selection of source columns, in the order
// the selection gives them.
type Projector struct {
	columns []int
}

// NewProjector checks that columns are non-negative and distinct. An empty
// selection keeps every column. Upper bounds are checked against the rows.
func NewProjector(columns []int) (*Projector, error) {
	seen := make(map[int]struct{}, len(columns))
	for _, c := range columns {
		if c < 0 {
			return nil, errors.Newf(ErrColumnIndex, "column index %d is negative", c)
		}
		if _, ok := seen[c]; ok {
			return nil, newInvalidConfig("column index %d selected more than once", c)
		}
		seen[c] = struct{}{}
	}
	return &Projector{columns: append([]int(nil), columns...)}, nil
}

// Sources returns the source column of each output column for rows of the
// given width.
func (p *Projector) Sources(width int) []int {
	if len(p.columns) > 0 {
		return append([]int(nil), p.columns...)
	}
	if width < 0 {
		width = 0
	}
	src := make([]int, width)
	for i := range src {
		src[i] = i
	}
	return src
}

// Width is the number of output columns for rows of the given width.
func (p *Projector) Width(width int) int {
	if len(p.columns) > 0 {
		return len(p.columns)
	}
	if width < 0 {
		return 0
	}
	return width
}

// Project returns row restricted to the selection. The input row is not
// modified.
func (p *Projector) Project(row RawRow) (RawRow, error) {
	if len(p.columns) == 0 {
		return row, nil
	}
	fields := make([]string, len(p.columns))
	for i, c := range p.columns {
		if c >= len(row.Fields) {
			return RawRow{}, newColumnIndex(row.Line, c, len(row.Fields))
		}
		fields[i] = row.Fields[c]
	}
	return RawRow{Line: row.Line, Fields: fields}, nil
}
