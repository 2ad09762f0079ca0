// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

/*
Package loadtxt reads delimited text into typed arrays.

An ingestion runs one pipeline over a single stream:

	Reader -> Projector -> Resolver -> Coercer -> Array

The Reader splits lines into fields after skipping leading lines, comment
lines and blank lines, and rejects rows whose field count differs from the
first row. The Projector keeps a chosen, ordered subset of columns. The
Resolver recognizes missing-value tokens and decides their replacement. The
Coercer converts every remaining field to the one target Type.

	arr, err := loadtxt.Ingest(r,
		loadtxt.OptDelimiter(","),
		loadtxt.OptSkipRows(1),
		loadtxt.OptColumns(1, 2),
		loadtxt.OptMissing("NA"),
		loadtxt.OptFill(-99),
	)

Failures carry one of the codes ErrStreamOpen, ErrMalformedRow,
ErrColumnIndex, ErrNoFillForType, ErrTypeCoercion or ErrInvalidConfig,
and never come with a partial result. Float is the only type which
tolerates unparsable fields, storing NaN unless StrictNumeric is set.
*/
package loadtxt
