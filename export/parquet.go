// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package export

import (
	"io"

	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/apache/arrow/go/v10/parquet"
	"github.com/apache/arrow/go/v10/parquet/compress"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"
	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
)

// parquetChunkSize is the row group length.
const parquetChunkSize = 64 * 1024

// WriteParquet writes a as a snappy-compressed Parquet file, one column
// per array column. w is not closed.
func WriteParquet(w io.Writer, a *loadtxt.Array) error {
	if a.AtLeast2D().Shape()[1] == 0 {
		return errors.New(ErrUnencodable, "parquet needs at least one column")
	}
	mem := memory.NewGoAllocator()
	tbl := Table(a, mem)
	defer tbl.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithAllocator(mem),
	)
	arrProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	// The parquet writer closes its sink when it is an io.Closer.
	sink := struct{ io.Writer }{w}
	return errors.Wrap(pqarrow.WriteTable(tbl, sink, parquetChunkSize, props, arrProps), "writing parquet")
}
