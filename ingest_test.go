// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt_test

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
	"github.com/featurebasedb/loadtxt/logger"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weather = `id,temp,hum
1,22.5,45
2,23.1,48
`

func TestIngestProperties(t *testing.T) {
	t.Run("fill value", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader("3,NA,46\n"),
			loadtxt.OptDelimiter(","),
			loadtxt.OptMissing("NA"),
			loadtxt.OptFill(-99),
		)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, a.Shape())
		assert.Equal(t, []float64{3, -99, 46}, a.Float64s())
	})

	t.Run("columns with header skip", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader(weather),
			loadtxt.OptDelimiter(","),
			loadtxt.OptSkipRows(1),
			loadtxt.OptColumns(1, 2),
		)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 2}, a.Shape())
		assert.Equal(t, []float64{22.5, 45, 23.1, 48}, a.Float64s())
	})

	t.Run("int truncation", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader("22.5 -2.7\n"), loadtxt.OptType(loadtxt.Int))
		require.NoError(t, err)
		assert.Equal(t, []int64{22, -2}, a.Int64s())

		a, err = loadtxt.Ingest(strings.NewReader("22.5 -2.7\n"),
			loadtxt.OptType(loadtxt.Int), loadtxt.OptIntRounding(loadtxt.Floor))
		require.NoError(t, err)
		assert.Equal(t, []int64{22, -3}, a.Int64s())
	})

	t.Run("int truncation beyond float precision", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader("9007199254740993.5 12345678901234567.9\n"), loadtxt.OptType(loadtxt.Int))
		require.NoError(t, err)
		assert.Equal(t, []int64{9007199254740993, 12345678901234567}, a.Int64s())
	})

	t.Run("bool coercion failure", func(t *testing.T) {
		_, err := loadtxt.Ingest(strings.NewReader("True False\nFalse Maybe\n"), loadtxt.OptType(loadtxt.Bool))
		require.True(t, errors.Is(err, loadtxt.ErrTypeCoercion), "got %v", err)
		loc, ok := errors.LocationOf(err)
		require.True(t, ok)
		assert.Equal(t, errors.Location{Line: 2, Column: 2}, loc)
		assert.Contains(t, err.Error(), `cannot convert "Maybe" to bool`)
	})

	t.Run("comment lines contribute nothing", func(t *testing.T) {
		for _, skip := range []int{0, 1, 2} {
			input := "1,2\n# ignore me\n3,4\n5,6\n"
			a, err := loadtxt.Ingest(strings.NewReader(input),
				loadtxt.OptDelimiter(","),
				loadtxt.OptComments("#"),
				loadtxt.OptSkipRows(skip),
				loadtxt.OptMinDims(2),
			)
			require.NoError(t, err)
			exp := map[int]int{0: 3, 1: 2, 2: 2}[skip]
			assert.Equal(t, []int{exp, 2}, a.Shape(), "skip %d", skip)
		}
	})

	t.Run("ragged line number", func(t *testing.T) {
		_, err := loadtxt.Ingest(strings.NewReader("1 2 3\n\n4 5 6\n7 8\n"))
		require.True(t, errors.Is(err, loadtxt.ErrMalformedRow), "got %v", err)
		loc, ok := errors.LocationOf(err)
		require.True(t, ok)
		assert.Equal(t, 4, loc.Line)
	})

	t.Run("text is lossless", func(t *testing.T) {
		input := " a , b b ,c\n1.50, , x \n"
		a, err := loadtxt.Ingest(strings.NewReader(input), loadtxt.OptDelimiter(","), loadtxt.OptType(loadtxt.Text))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b b", "c", "1.50", "", "x"}, a.Strings())
	})

	t.Run("idempotent", func(t *testing.T) {
		opts := []loadtxt.Option{loadtxt.OptDelimiter(","), loadtxt.OptSkipRows(1)}
		a, err := loadtxt.Ingest(strings.NewReader(weather), opts...)
		require.NoError(t, err)
		b, err := loadtxt.Ingest(strings.NewReader(weather), opts...)
		require.NoError(t, err)
		assert.True(t, a.Equal(b))
	})
}

func TestIngestMissing(t *testing.T) {
	input := "1,NA,3\n4,,6\n"

	t.Run("float sentinel", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader(input), loadtxt.OptDelimiter(","), loadtxt.OptMissing("NA", ""))
		require.NoError(t, err)
		v := a.Float64s()
		assert.True(t, math.IsNaN(v[1]))
		assert.True(t, math.IsNaN(v[4]))
		assert.Equal(t, 6.0, v[5])
	})

	t.Run("text sentinel", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader(input),
			loadtxt.OptDelimiter(","), loadtxt.OptMissing("NA"), loadtxt.OptType(loadtxt.Text))
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "", "3", "4", "", "6"}, a.Strings())
	})

	t.Run("int without fill", func(t *testing.T) {
		_, err := loadtxt.Ingest(strings.NewReader(input),
			loadtxt.OptDelimiter(","), loadtxt.OptMissing("NA"), loadtxt.OptType(loadtxt.Int))
		require.True(t, errors.Is(err, loadtxt.ErrNoFillForType), "got %v", err)
		loc, _ := errors.LocationOf(err)
		assert.Equal(t, errors.Location{Line: 1, Column: 2}, loc)
	})

	t.Run("int without fill and no missing field", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader("1,2\n"),
			loadtxt.OptDelimiter(","), loadtxt.OptMissing("NA"), loadtxt.OptType(loadtxt.Int))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, a.Int64s())
	})

	t.Run("bool fill", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader("True,?\n"),
			loadtxt.OptDelimiter(","), loadtxt.OptMissing("?"), loadtxt.OptFill(false), loadtxt.OptType(loadtxt.Bool))
		require.NoError(t, err)
		assert.Equal(t, []bool{true, false}, a.Bools())
	})

	t.Run("missing fields projected away are ignored", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader(input),
			loadtxt.OptDelimiter(","), loadtxt.OptMissing("NA", ""), loadtxt.OptType(loadtxt.Int),
			loadtxt.OptColumns(2, 0))
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 1, 6, 4}, a.Int64s())
	})

	t.Run("per column", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader("1,NA,?\n"),
			loadtxt.OptDelimiter(","),
			loadtxt.OptMissing("NA"),
			loadtxt.OptFill(0),
			loadtxt.OptColumnMissing(2, "?"),
			loadtxt.OptColumnFill(2, -1),
			loadtxt.OptType(loadtxt.Int),
		)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 0, -1}, a.Int64s())
	})

	t.Run("fold case", func(t *testing.T) {
		a, err := loadtxt.Ingest(strings.NewReader("na NA Na\n"),
			loadtxt.OptMissing("NA"), loadtxt.OptMissingFoldCase(true), loadtxt.OptFill(1))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1, 1}, a.Float64s())
	})
}

func TestIngestStrictNumeric(t *testing.T) {
	input := "1 oops 3\n"
	a, err := loadtxt.Ingest(strings.NewReader(input))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(a.Float64s()[1]))

	_, err = loadtxt.Ingest(strings.NewReader(input), loadtxt.OptStrictNumeric(true))
	require.True(t, errors.Is(err, loadtxt.ErrTypeCoercion), "got %v", err)
	loc, _ := errors.LocationOf(err)
	assert.Equal(t, errors.Location{Line: 1, Column: 2}, loc)
}

func TestIngestColumnIndex(t *testing.T) {
	_, err := loadtxt.Ingest(strings.NewReader("h\n1,2\n"),
		loadtxt.OptDelimiter(","), loadtxt.OptSkipRows(1), loadtxt.OptColumns(0, 2))
	require.True(t, errors.Is(err, loadtxt.ErrColumnIndex), "got %v", err)
	loc, _ := errors.LocationOf(err)
	assert.Equal(t, 2, loc.Line)
}

func TestIngestShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []loadtxt.Option
		shape []int
		exp   []float64
	}{
		{name: "grid", input: "1 2\n3 4\n", shape: []int{2, 2}, exp: []float64{1, 2, 3, 4}},
		{name: "one row", input: "1 2 3\n", shape: []int{3}, exp: []float64{1, 2, 3}},
		{name: "one column", input: "1\n2\n3\n", shape: []int{3}, exp: []float64{1, 2, 3}},
		{name: "ndmin 2", input: "1 2 3\n", opts: []loadtxt.Option{loadtxt.OptMinDims(2)}, shape: []int{1, 3}, exp: []float64{1, 2, 3}},
		{name: "unpack", input: "1 2\n3 4\n5 6\n", opts: []loadtxt.Option{loadtxt.OptUnpack(true)}, shape: []int{2, 3}, exp: []float64{1, 3, 5, 2, 4, 6}},
		{name: "max rows", input: "1 2\n3 4\n5 6\n", opts: []loadtxt.Option{loadtxt.OptMaxRows(2)}, shape: []int{2, 2}, exp: []float64{1, 2, 3, 4}},
		{name: "max rows stops before ragged", input: "1 2\n3 4\n5\n", opts: []loadtxt.Option{loadtxt.OptMaxRows(2)}, shape: []int{2, 2}, exp: []float64{1, 2, 3, 4}},
		{name: "empty", input: "# nothing\n\n", opts: []loadtxt.Option{loadtxt.OptComments("#")}, shape: []int{0, 0}},
		{name: "empty with columns", input: "", opts: []loadtxt.Option{loadtxt.OptColumns(1, 0)}, shape: []int{0, 2}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a, err := loadtxt.Ingest(strings.NewReader(test.input), test.opts...)
			require.NoError(t, err)
			assert.Equal(t, test.shape, a.Shape())
			assert.Equal(t, len(test.exp), a.Len())
			if len(test.exp) > 0 {
				assert.Equal(t, test.exp, a.Float64s())
			}
		})
	}
}

func TestIngestNames(t *testing.T) {
	a, err := loadtxt.Ingest(strings.NewReader("# weather\n"+weather),
		loadtxt.OptDelimiter(","),
		loadtxt.OptComments("#"),
		loadtxt.OptNames(true),
		loadtxt.OptColumns(2, 1),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"hum", "temp"}, a.Names())
	assert.Equal(t, []float64{45, 22.5, 48, 23.1}, a.Float64s())
	assert.Equal(t, []string{"temp"}, a.Col(1).Names())

	a, err = loadtxt.Ingest(strings.NewReader("a b\n"), loadtxt.OptNames(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, a.Names())
	assert.Equal(t, []int{0, 2}, a.Shape())
}

func TestIngestMetrics(t *testing.T) {
	rows := testutil.ToFloat64(loadtxt.CounterRowsIngested)
	filled := testutil.ToFloat64(loadtxt.CounterFieldsFilled)
	nans := testutil.ToFloat64(loadtxt.CounterNaNFallbacks)
	coercion := testutil.ToFloat64(loadtxt.CounterIngestErrors.WithLabelValues(string(loadtxt.ErrTypeCoercion)))

	_, err := loadtxt.Ingest(strings.NewReader("1 NA x\n2 3 4\n"), loadtxt.OptMissing("NA"))
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(loadtxt.CounterRowsIngested)-rows)
	assert.Equal(t, 1.0, testutil.ToFloat64(loadtxt.CounterFieldsFilled)-filled)
	assert.Equal(t, 1.0, testutil.ToFloat64(loadtxt.CounterNaNFallbacks)-nans)

	// Failed ingestions only count the error.
	_, err = loadtxt.Ingest(strings.NewReader("1\n2\nx\n"), loadtxt.OptType(loadtxt.Int))
	require.Error(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(loadtxt.CounterRowsIngested)-rows)
	assert.Equal(t, 1.0, testutil.ToFloat64(loadtxt.CounterIngestErrors.WithLabelValues(string(loadtxt.ErrTypeCoercion)))-coercion)

	// Ragged rows dropped before a failure are not counted either.
	dropped := testutil.ToFloat64(loadtxt.CounterRowsDropped)
	_, err = loadtxt.Ingest(strings.NewReader("1 2\n3\nx y\n"), loadtxt.OptType(loadtxt.Int), loadtxt.OptAllowRagged(true))
	require.True(t, errors.Is(err, loadtxt.ErrTypeCoercion), "got %v", err)
	assert.Equal(t, 0.0, testutil.ToFloat64(loadtxt.CounterRowsDropped)-dropped)

	_, err = loadtxt.Ingest(strings.NewReader("1 2\n3\n4 5\n"), loadtxt.OptType(loadtxt.Int), loadtxt.OptAllowRagged(true))
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(loadtxt.CounterRowsDropped)-dropped)
}

func TestIngestLogging(t *testing.T) {
	log := logger.NewBufferLogger()
	_, err := loadtxt.Ingest(strings.NewReader("1 2\n3\n4 5\n"), loadtxt.OptAllowRagged(true), loadtxt.OptLogger(log))
	require.NoError(t, err)
	out := log.String()
	assert.Contains(t, out, "WARN:  line 2: dropping row with 1 fields, expected 2")
	assert.Contains(t, out, "INFO:  ingested 2 rows, shape [2 2], dtype float, 1 ragged rows dropped")
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	opts := []loadtxt.Option{loadtxt.OptDelimiter(","), loadtxt.OptSkipRows(1), loadtxt.OptColumns(1, 2)}
	exp := []float64{22.5, 45, 23.1, 48}

	t.Run("plain", func(t *testing.T) {
		a, err := loadtxt.IngestFile(ctx, writeFile(t, dir, "w.csv", []byte(weather)), opts...)
		require.NoError(t, err)
		assert.Equal(t, exp, a.Float64s())
	})

	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		_, err := gw.Write([]byte(weather))
		require.NoError(t, err)
		require.NoError(t, gw.Close())

		a, err := loadtxt.IngestFile(ctx, writeFile(t, dir, "w.csv.gz", buf.Bytes()), opts...)
		require.NoError(t, err)
		assert.Equal(t, exp, a.Float64s())
	})

	t.Run("zstd", func(t *testing.T) {
		enc, err := zstd.NewWriter(nil)
		require.NoError(t, err)
		data := enc.EncodeAll([]byte(weather), nil)
		require.NoError(t, enc.Close())

		a, err := loadtxt.IngestFile(ctx, writeFile(t, dir, "w.csv.zst", data), opts...)
		require.NoError(t, err)
		assert.Equal(t, exp, a.Float64s())
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		_, err := loadtxt.IngestFile(ctx, writeFile(t, dir, "bad.gz", []byte("plain text")), opts...)
		assert.True(t, errors.Is(err, loadtxt.ErrStreamOpen), "got %v", err)
	})

	t.Run("stdin", func(t *testing.T) {
		a, err := loadtxt.IngestFile(ctx, "-", append(opts, loadtxt.OptStdin(strings.NewReader(weather)))...)
		require.NoError(t, err)
		assert.Equal(t, exp, a.Float64s())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadtxt.IngestFile(ctx, filepath.Join(dir, "nope.csv"), opts...)
		require.True(t, errors.Is(err, loadtxt.ErrStreamOpen), "got %v", err)
		var pathErr *os.PathError
		assert.True(t, errors.As(err, &pathErr))
	})
}

func TestIngestFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	var names []string
	for i := 0; i < 8; i++ {
		names = append(names, writeFile(t, dir, fmt.Sprintf("%d.txt", i), []byte(fmt.Sprintf("%d %d\n", i, i*10))))
	}

	arrs, err := loadtxt.IngestFiles(ctx, names, loadtxt.OptConcurrency(3), loadtxt.OptType(loadtxt.Int))
	require.NoError(t, err)
	require.Len(t, arrs, len(names))
	for i, a := range arrs {
		assert.Equal(t, []int64{int64(i), int64(i * 10)}, a.Int64s())
	}

	bad := append(append([]string(nil), names...), filepath.Join(dir, "absent.txt"))
	arrs, err = loadtxt.IngestFiles(ctx, bad, loadtxt.OptConcurrency(2))
	require.True(t, errors.Is(err, loadtxt.ErrStreamOpen), "got %v", err)
	assert.Contains(t, err.Error(), "absent.txt")
	assert.Nil(t, arrs)

	_, err = loadtxt.IngestFiles(ctx, names, loadtxt.OptColumns(-1))
	assert.True(t, errors.Is(err, loadtxt.ErrColumnIndex), "got %v", err)
}
