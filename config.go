// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"io"
	"time"

	"github.com/featurebasedb/loadtxt/logger"
	"github.com/featurebasedb/loadtxt/toml"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultRetryMax    = 3
)

// Config describes one ingestion. The zero value is not useful; start from
// NewConfig. A Config is not modified by Ingest and may be shared by
// concurrent calls.
type Config struct {
	// Delimiter separates fields. Empty means any run of whitespace.
	Delimiter string `toml:"delimiter"`

	// SkipRows is the number of physical lines discarded before anything
	// else is looked at, including comment and blank lines.
	SkipRows int `toml:"skip-rows"`

	// Comments marks a line to drop when it begins with this string after
	// leading whitespace. Empty disables comments.
	Comments string `toml:"comments"`

	// InlineComments also cuts each line at the first Comments marker.
	InlineComments bool `toml:"inline-comments"`

	// Names reads the first data line as column names.
	Names bool `toml:"names"`

	// Columns selects and orders source columns by 0-based index. Empty
	// keeps every column.
	Columns []int `toml:"usecols"`

	// MaxRows stops after this many data rows. Zero reads everything.
	MaxRows int `toml:"max-rows"`

	// MissingValues are the tokens which mark a field as missing.
	MissingValues []string `toml:"missing-values"`

	// MissingFoldCase compares missing tokens case-insensitively.
	MissingFoldCase bool `toml:"missing-fold-case"`

	// Fill replaces missing fields. Unset means the type's sentinel.
	Fill FillValue `toml:"fill"`

	// ColumnMissing and ColumnFill override MissingValues and Fill for
	// individual source columns.
	ColumnMissing map[int][]string  `toml:"-"`
	ColumnFill    map[int]FillValue `toml:"-"`

	// Type is the target type of every retained field.
	Type Type `toml:"dtype"`

	// StrictNumeric makes unparsable float fields an error instead of NaN.
	StrictNumeric bool `toml:"strict-numeric"`

	// IntRounding applies when an int field holds a fractional literal.
	IntRounding Rounding `toml:"int-rounding"`

	// TrueValues and FalseValues are the literals accepted for Bool.
	TrueValues  []string `toml:"true-values"`
	FalseValues []string `toml:"false-values"`

	// AllowRagged drops rows whose field count differs from the first row
	// instead of failing.
	AllowRagged bool `toml:"allow-ragged"`

	// MinDims is 1 or 2. With 1, a result with exactly one row or one
	// column is returned as 1-D.
	MinDims int `toml:"ndmin"`

	// Unpack returns the transpose, one row per column.
	Unpack bool `toml:"unpack"`

	// Concurrency bounds IngestFiles. Zero or less means one source at a time.
	Concurrency int `toml:"concurrency"`

	Source SourceConfig `toml:"source"`

	// Stdin backs the source name "-". Nil means os.Stdin.
	Stdin io.Reader `toml:"-"`

	Logger logger.Logger `toml:"-"`
}

// SourceConfig controls how named sources are opened.
type SourceConfig struct {
	HTTPTimeout toml.Duration `toml:"http-timeout"`
	RetryMax    int           `toml:"retry-max"`
}

// NewConfig returns a Config with every default spelled out.
func NewConfig() *Config {
	return &Config{
		Type:        Float,
		IntRounding: Trunc,
		TrueValues:  []string{"True"},
		FalseValues: []string{"False"},
		MinDims:     1,
		Concurrency: 1,
		Source: SourceConfig{
			HTTPTimeout: toml.Duration(defaultHTTPTimeout),
			RetryMax:    defaultRetryMax,
		},
	}
}

// Option modifies a Config.
type Option func(c *Config) error

// NewConfigWith applies opts to the defaults.
func NewConfigWith(opts ...Option) (*Config, error) {
	c := NewConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func OptDelimiter(d string) Option {
	return func(c *Config) error {
		c.Delimiter = d
		return nil
	}
}

func OptSkipRows(n int) Option {
	return func(c *Config) error {
		c.SkipRows = n
		return nil
	}
}

func OptComments(prefix string) Option {
	return func(c *Config) error {
		c.Comments = prefix
		return nil
	}
}

func OptInlineComments(b bool) Option {
	return func(c *Config) error {
		c.InlineComments = b
		return nil
	}
}

func OptNames(b bool) Option {
	return func(c *Config) error {
		c.Names = b
		return nil
	}
}

func OptColumns(cols ...int) Option {
	return func(c *Config) error {
		c.Columns = append([]int(nil), cols...)
		return nil
	}
}

func OptMaxRows(n int) Option {
	return func(c *Config) error {
		c.MaxRows = n
		return nil
	}
}

func OptMissing(tokens ...string) Option {
	return func(c *Config) error {
		c.MissingValues = append([]string(nil), tokens...)
		return nil
	}
}

func OptMissingFoldCase(b bool) Option {
	return func(c *Config) error {
		c.MissingFoldCase = b
		return nil
	}
}

// OptFill sets the global fill value; see Fill for accepted kinds.
func OptFill(v interface{}) Option {
	return func(c *Config) error {
		c.Fill = Fill(v)
		return nil
	}
}

// OptColumnMissing sets the missing tokens of one source column.
func OptColumnMissing(col int, tokens ...string) Option {
	return func(c *Config) error {
		if c.ColumnMissing == nil {
			c.ColumnMissing = make(map[int][]string)
		}
		c.ColumnMissing[col] = append([]string(nil), tokens...)
		return nil
	}
}

// OptColumnFill sets the fill value of one source column.
func OptColumnFill(col int, v interface{}) Option {
	return func(c *Config) error {
		if c.ColumnFill == nil {
			c.ColumnFill = make(map[int]FillValue)
		}
		c.ColumnFill[col] = Fill(v)
		return nil
	}
}

func OptType(t Type) Option {
	return func(c *Config) error {
		c.Type = t
		return nil
	}
}

func OptStrictNumeric(b bool) Option {
	return func(c *Config) error {
		c.StrictNumeric = b
		return nil
	}
}

func OptIntRounding(r Rounding) Option {
	return func(c *Config) error {
		c.IntRounding = r
		return nil
	}
}

func OptBoolValues(trues, falses []string) Option {
	return func(c *Config) error {
		c.TrueValues = append([]string(nil), trues...)
		c.FalseValues = append([]string(nil), falses...)
		return nil
	}
}

func OptAllowRagged(b bool) Option {
	return func(c *Config) error {
		c.AllowRagged = b
		return nil
	}
}

func OptMinDims(n int) Option {
	return func(c *Config) error {
		c.MinDims = n
		return nil
	}
}

func OptUnpack(b bool) Option {
	return func(c *Config) error {
		c.Unpack = b
		return nil
	}
}

func OptConcurrency(n int) Option {
	return func(c *Config) error {
		c.Concurrency = n
		return nil
	}
}

func OptHTTPTimeout(d time.Duration) Option {
	return func(c *Config) error {
		c.Source.HTTPTimeout = toml.Duration(d)
		return nil
	}
}

func OptRetryMax(n int) Option {
	return func(c *Config) error {
		c.Source.RetryMax = n
		return nil
	}
}

func OptStdin(r io.Reader) Option {
	return func(c *Config) error {
		c.Stdin = r
		return nil
	}
}

func OptLogger(l logger.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// Validate checks everything which can be checked without input. Fill
// values are coerced here, so a bad fill literal fails before reading.
func (c *Config) Validate() error {
	_, err := c.plan()
	return err
}

func (c *Config) logger() logger.Logger {
	if c.Logger == nil {
		return logger.NopLogger
	}
	return c.Logger
}

// plan is the validated form of a Config used by one ingestion.
type plan struct {
	cfg       *Config
	projector *Projector
	resolver  *Resolver
	coercer   *Coercer
}

func (c *Config) plan() (*plan, error) {
	if c.SkipRows < 0 {
		return nil, newInvalidConfig("skip-rows must not be negative: %d", c.SkipRows)
	}
	if c.MaxRows < 0 {
		return nil, newInvalidConfig("max-rows must not be negative: %d", c.MaxRows)
	}
	if c.MinDims != 1 && c.MinDims != 2 {
		return nil, newInvalidConfig("ndmin must be 1 or 2: %d", c.MinDims)
	}
	if c.Type < Float || c.Type > Text {
		return nil, newInvalidConfig("unknown dtype %v", c.Type)
	}
	proj, err := NewProjector(c.Columns)
	if err != nil {
		return nil, err
	}
	coercer, err := NewCoercer(c.Type, CoerceOptions{
		StrictNumeric: c.StrictNumeric,
		Rounding:      c.IntRounding,
		TrueValues:    c.TrueValues,
		FalseValues:   c.FalseValues,
	})
	if err != nil {
		return nil, err
	}
	res, err := NewResolver(coercer, c.MissingValues, c.Fill, c.MissingFoldCase)
	if err != nil {
		return nil, err
	}
	for col, tokens := range c.ColumnMissing {
		if err := res.SetColumnMissing(col, tokens); err != nil {
			return nil, err
		}
	}
	for col, fill := range c.ColumnFill {
		if err := res.SetColumnFill(col, fill); err != nil {
			return nil, err
		}
	}
	return &plan{cfg: c, projector: proj, resolver: res, coercer: coercer}, nil
}
