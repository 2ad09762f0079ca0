// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package export

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
)

// WriteDelimited writes one line per row with fields joined by delim, so
// that loadtxt.Ingest with the same delimiter reads the same content back.
// An empty delim writes a single space and is read back as whitespace. A
// 1-D array is written one element per line.
//
// There is no quoting, and the reader trims fields and skips blank lines.
// A text value holding the delimiter or a line break, one with leading or
// trailing space, an empty value in a single column, and for whitespace
// delimiting any space or nothing at all, is rejected with ErrUnencodable.
func WriteDelimited(w io.Writer, a *loadtxt.Array, delim string, header bool) error {
	sep := delim
	if sep == "" {
		sep = " "
	}
	m := a.AtLeast2D()
	shape := m.Shape()
	rows, cols := shape[0], shape[1]

	check := func(s string, line int) error {
		if strings.ContainsAny(s, "\r\n") || strings.TrimSpace(s) != s ||
			(cols == 1 && s == "") ||
			(delim != "" && strings.Contains(s, delim)) ||
			(delim == "" && (s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0)) {
			return errors.Newf(ErrUnencodable, "line %d: %q cannot be written with delimiter %q", line, s, delim)
		}
		return nil
	}

	bw := bufio.NewWriter(w)
	fields := make([]string, cols)
	line := 0

	if header {
		line++
		for j, name := range ColumnNames(a) {
			if err := check(name, line); err != nil {
				return err
			}
			fields[j] = name
		}
		if _, err := bw.WriteString(strings.Join(fields, sep) + "\n"); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}
	for i := 0; i < rows; i++ {
		line++
		for j := 0; j < cols; j++ {
			s := FormatValue(m.At(i, j))
			if a.Type() == loadtxt.Text {
				if err := check(s, line); err != nil {
					return err
				}
			}
			fields[j] = s
		}
		if _, err := bw.WriteString(strings.Join(fields, sep) + "\n"); err != nil {
			return errors.Wrapf(err, "writing row %d", i)
		}
	}
	return errors.Wrap(bw.Flush(), "flushing")
}
