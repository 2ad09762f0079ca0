// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/featurebasedb/loadtxt/ctl"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var Ingester *ctl.IngestCommand

func newIngestCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	Ingester = ctl.NewIngestCommand(stdin, stdout, stderr)
	ingestCmd := &cobra.Command{
		Use:   "ingest [flags] SOURCE...",
		Short: "Read delimited text into a typed array.",
		Long: `
Reads each SOURCE (a file path, an http(s) URL or "-" for stdin) as
delimited text and prints the resulting array. Sources ending in .gz or
.zst are decompressed.

Rows are split on --delimiter, or on runs of whitespace when it is empty.
Fields matching --missing-values are replaced by --fill, or by NaN for
float and "" for text when no fill is given. Int and bool sources with a
missing field and no fill are an error.

Output goes to stdout unless --output names a file. Parquet output takes
exactly one source.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			Ingester.Sources = args
			return Ingester.Run(context.Background())
		},
	}
	flags := ingestCmd.Flags()
	ingestFlags(flags, Ingester.Config)
	return ingestCmd
}

// ingestFlags binds every field of c to a flag named after its TOML key.
func ingestFlags(flags *pflag.FlagSet, c *ctl.Config) {
	flags.StringVarP(&c.Delimiter, "delimiter", "d", c.Delimiter, "Field delimiter. Empty splits on runs of whitespace.")
	flags.IntVar(&c.SkipRows, "skip-rows", c.SkipRows, "Number of lines to discard before reading, counting comments and blank lines.")
	flags.StringVar(&c.Comments, "comments", c.Comments, "Lines starting with this marker, after leading whitespace, are ignored.")
	flags.BoolVar(&c.InlineComments, "inline-comments", c.InlineComments, "Also cut each line at the first comment marker.")
	flags.BoolVar(&c.Names, "names", c.Names, "Read the first data line as column names.")
	flags.IntSliceVar(&c.Columns, "usecols", c.Columns, "0-based source columns to keep, in output order. Default is all.")
	flags.IntVar(&c.MaxRows, "max-rows", c.MaxRows, "Stop after this many data rows. 0 reads everything.")
	flags.StringSliceVar(&c.MissingValues, "missing-values", c.MissingValues, "Tokens which mark a field as missing.")
	flags.BoolVar(&c.MissingFoldCase, "missing-fold-case", c.MissingFoldCase, "Match missing tokens case-insensitively.")
	flags.Var(&c.Fill, "fill", "Replacement for missing fields.")
	flags.StringToStringVar(&c.ColumnMissing, "column-missing", c.ColumnMissing, "Per-column missing tokens as COL=TOKEN|TOKEN.")
	flags.StringToStringVar(&c.ColumnFill, "column-fill", c.ColumnFill, "Per-column fill values as COL=VALUE.")
	flags.VarP(&c.Type, "dtype", "t", "Target type: float, int, bool or text.")
	flags.BoolVar(&c.StrictNumeric, "strict-numeric", c.StrictNumeric, "Fail on unparsable float fields instead of reading NaN.")
	flags.Var(&c.IntRounding, "int-rounding", "How fractional int fields are rounded: trunc or floor.")
	flags.StringSliceVar(&c.TrueValues, "true-values", c.TrueValues, "Literals read as true for the bool dtype.")
	flags.StringSliceVar(&c.FalseValues, "false-values", c.FalseValues, "Literals read as false for the bool dtype.")
	flags.BoolVar(&c.AllowRagged, "allow-ragged", c.AllowRagged, "Drop rows with the wrong number of fields instead of failing.")
	flags.IntVar(&c.MinDims, "ndmin", c.MinDims, "Minimum number of result dimensions, 1 or 2.")
	flags.BoolVar(&c.Unpack, "unpack", c.Unpack, "Transpose the result so each row holds one column.")
	flags.IntVar(&c.Concurrency, "concurrency", c.Concurrency, "Number of sources read at once.")
	flags.Var(&c.Source.HTTPTimeout, "source.http-timeout", "Timeout of each http request.")
	flags.IntVar(&c.Source.RetryMax, "source.retry-max", c.Source.RetryMax, "Retries of a failed http request.")

	flags.StringVarP(&c.Format, "format", "f", c.Format, "Output format: table, csv, json or parquet.")
	flags.StringVarP(&c.Output, "output", "o", c.Output, "File to write output to - default stdout.")
	flags.StringVar(&c.OutputDelimiter, "output-delimiter", c.OutputDelimiter, "Delimiter of csv output. Empty reuses --delimiter.")
	flags.BoolVar(&c.Header, "header", c.Header, "Write column names as the first csv line.")
	flags.StringVar(&c.LogPath, "log-path", c.LogPath, "Log file to append to instead of stderr.")
	flags.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Enable debug logging.")
}
