// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"fmt"

	"github.com/featurebasedb/loadtxt/errors"
)

// Error codes returned by Ingest. Check them with errors.Is from the
// loadtxt/errors package; errors.LocationOf gives the line and column for
// the row level kinds.
const (
	// ErrStreamOpen means the source could not be opened or read.
	ErrStreamOpen errors.Code = "StreamOpen"
	// ErrMalformedRow means a row's field count differs from the first row's.
	ErrMalformedRow errors.Code = "MalformedRow"
	// ErrColumnIndex means a selected column does not exist in the input.
	ErrColumnIndex errors.Code = "ColumnIndex"
	// ErrNoFillForType means a missing field was found for a type which has
	// no sentinel, and no fill value was configured.
	ErrNoFillForType errors.Code = "NoFillForType"
	// ErrTypeCoercion means a field could not be converted to the target type.
	ErrTypeCoercion errors.Code = "TypeCoercion"
	// ErrInvalidConfig means the configuration was rejected before any
	// input was read.
	ErrInvalidConfig errors.Code = "InvalidConfig"
)

func newInvalidConfig(format string, args ...interface{}) error {
	return errors.Newf(ErrInvalidConfig, format, args...)
}

func newStreamError(err error, format string, args ...interface{}) error {
	return errors.WithCode(err, ErrStreamOpen, fmt.Sprintf(format, args...))
}

func newMalformedRow(line, want, got int) error {
	return errors.NewAt(ErrMalformedRow, errors.Location{Line: line},
		fmt.Sprintf("expected %d fields, found %d", want, got))
}

// col is the 0-based source column; it is reported 1-based.
func newColumnIndex(line, col, width int) error {
	return errors.NewAt(ErrColumnIndex, errors.Location{Line: line},
		fmt.Sprintf("column index %d out of range for %d fields", col, width))
}

func newNoFillForType(line, col int, typ Type, token string) error {
	return errors.NewAt(ErrNoFillForType, errors.Location{Line: line, Column: col + 1},
		fmt.Sprintf("missing value %q has no fill value for %s", token, typ))
}

func newTypeCoercion(line, col int, typ Type, field string, cause error) error {
	msg := fmt.Sprintf("cannot convert %q to %s", field, typ)
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return errors.NewAt(ErrTypeCoercion, errors.Location{Line: line, Column: col + 1}, msg)
}
