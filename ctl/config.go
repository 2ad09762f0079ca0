// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
	"github.com/featurebasedb/loadtxt/export"
	toml "github.com/pelletier/go-toml"
)

// ErrUsage marks a command line that cannot be run as given.
const ErrUsage errors.Code = "Usage"

// tokenSep separates the tokens of one column-missing entry.
const tokenSep = "|"

// Config is everything the ingest command reads from flags, LOADTXT_
// environment variables and the configuration file.
type Config struct {
	loadtxt.Config

	// Format is one of table, csv, json or parquet.
	Format string `toml:"format"`

	// Output is a file to write to instead of stdout.
	Output string `toml:"output"`

	// OutputDelimiter separates csv output fields. Empty reuses Delimiter.
	OutputDelimiter string `toml:"output-delimiter"`

	// Header writes column names as the first csv line.
	Header bool `toml:"header"`

	LogPath string `toml:"log-path"`
	Verbose bool   `toml:"verbose"`

	// ColumnMissing and ColumnFill are keyed by source column index.
	// ColumnMissing values hold tokens separated by "|".
	ColumnMissing map[string]string `toml:"column-missing"`
	ColumnFill    map[string]string `toml:"column-fill"`
}

// NewConfig returns the command line defaults.
func NewConfig() *Config {
	return &Config{
		Config: *loadtxt.NewConfig(),
		Format: string(export.FormatTable),
	}
}

// Ingest returns a copy of the embedded loadtxt.Config with the per-column
// settings decoded.
func (c *Config) Ingest() (*loadtxt.Config, error) {
	cfg := c.Config
	cfg.ColumnMissing = nil
	cfg.ColumnFill = nil
	for _, key := range sortedKeys(c.ColumnMissing) {
		col, err := columnKey("column-missing", key)
		if err != nil {
			return nil, err
		}
		if cfg.ColumnMissing == nil {
			cfg.ColumnMissing = make(map[int][]string)
		}
		cfg.ColumnMissing[col] = strings.Split(c.ColumnMissing[key], tokenSep)
	}
	for _, key := range sortedKeys(c.ColumnFill) {
		col, err := columnKey("column-fill", key)
		if err != nil {
			return nil, err
		}
		if cfg.ColumnFill == nil {
			cfg.ColumnFill = make(map[int]loadtxt.FillValue)
		}
		cfg.ColumnFill[col] = loadtxt.Fill(c.ColumnFill[key])
	}
	return &cfg, nil
}

func columnKey(option, key string) (int, error) {
	col, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, errors.Newf(loadtxt.ErrInvalidConfig, "%s: column %q is not an integer", option, key)
	}
	return col, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConfigCommand represents a command for printing the configuration in
// effect after flags, environment and config file are merged.
type ConfigCommand struct {
	*loadtxt.CmdIO
	Config *Config
}

// NewConfigCommand returns a new instance of ConfigCommand.
func NewConfigCommand(stdin io.Reader, stdout, stderr io.Writer) *ConfigCommand {
	return &ConfigCommand{
		CmdIO:  loadtxt.NewCmdIO(stdin, stdout, stderr),
		Config: NewConfig(),
	}
}

// Run prints out the config.
func (cmd *ConfigCommand) Run(_ context.Context) error {
	buf, err := toml.Marshal(*cmd.Config)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	fmt.Fprintln(cmd.Stdout, string(buf))
	return nil
}
