// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package export writes loadtxt Arrays out as delimited text, JSON, a
// rendered table, Arrow records or Parquet files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
)

const (
	// ErrUnknownFormat is returned for an output format name that is not
	// recognized.
	ErrUnknownFormat errors.Code = "UnknownFormat"
	// ErrUnencodable means a value cannot be written in the requested
	// format without changing what a reader would get back.
	ErrUnencodable errors.Code = "Unencodable"
)

// Format names an output encoding.
type Format string

const (
	FormatTable   Format = "table"
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// Formats lists every supported Format.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatParquet}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Newf(ErrUnknownFormat, "unknown output format %q, please choose from table/csv/json/parquet", s)
}

// Options controls Write.
type Options struct {
	// Delimiter separates fields in csv output. Empty means one space.
	Delimiter string
	// Header writes column names first where the format has room for them.
	Header bool
}

// Write encodes a to w in format f.
func Write(w io.Writer, a *loadtxt.Array, f Format, opts Options) error {
	switch f {
	case FormatTable:
		return WriteTable(w, a)
	case FormatCSV:
		return WriteDelimited(w, a, opts.Delimiter, opts.Header)
	case FormatJSON:
		return WriteJSON(w, a)
	case FormatParquet:
		return WriteParquet(w, a)
	}
	return errors.Newf(ErrUnknownFormat, "unknown output format %q", f)
}

// ColumnNames returns the names carried by a when there is one per column
// of its 2-D form, and f0, f1, ... otherwise.
func ColumnNames(a *loadtxt.Array) []string {
	cols := a.AtLeast2D().Shape()[1]
	if names := a.Names(); len(names) == cols {
		return names
	}
	names := make([]string, cols)
	for i := range names {
		names[i] = "f" + strconv.Itoa(i)
	}
	return names
}

// FormatValue renders one element the way the loadtxt coercer reads it
// back with default settings.
func FormatValue(v interface{}) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return v
	}
	return fmt.Sprint(v)
}
