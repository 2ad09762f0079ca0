// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
	"github.com/featurebasedb/loadtxt/export"
	"github.com/featurebasedb/loadtxt/logger"
)

// IngestCommand reads one or more delimited text sources and writes the
// resulting arrays in the configured output format.
type IngestCommand struct {
	*loadtxt.CmdIO

	Config *Config

	// Sources are file paths, http(s) URLs or "-" for stdin.
	Sources []string
}

// NewIngestCommand returns a new instance of IngestCommand.
func NewIngestCommand(stdin io.Reader, stdout, stderr io.Writer) *IngestCommand {
	return &IngestCommand{
		CmdIO:  loadtxt.NewCmdIO(stdin, stdout, stderr),
		Config: NewConfig(),
	}
}

// Run executes the ingest.
func (cmd *IngestCommand) Run(ctx context.Context) (err error) {
	if len(cmd.Sources) == 0 {
		return errors.New(ErrUsage, "at least one source is required")
	}
	format, err := export.ParseFormat(cmd.Config.Format)
	if err != nil {
		return err
	}
	if format == export.FormatParquet && len(cmd.Sources) > 1 {
		return errors.New(ErrUsage, "parquet output takes exactly one source")
	}

	closeLog, err := cmd.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()
	log := cmd.Logger()

	cfg, err := cmd.Config.Ingest()
	if err != nil {
		return err
	}
	cfg.Stdin = cmd.Stdin
	cfg.Logger = log

	arrays, err := cfg.IngestFiles(ctx, cmd.Sources)
	if err != nil {
		if format == export.FormatJSON {
			fmt.Fprintln(cmd.Stdout, errors.MarshalJSON(err))
		}
		return err
	}

	// Use output file, if specified.
	// Otherwise use STDOUT.
	var w io.Writer = cmd.Stdout
	if cmd.Config.Output != "" {
		f, ferr := os.Create(cmd.Config.Output)
		if ferr != nil {
			return errors.Wrap(ferr, "creating output file")
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "closing output file")
			}
		}()
		w = f
	}

	opts := export.Options{
		Delimiter: cmd.Config.OutputDelimiter,
		Header:    cmd.Config.Header,
	}
	if opts.Delimiter == "" {
		opts.Delimiter = cmd.Config.Delimiter
	}
	for i, a := range arrays {
		if err := export.Write(w, a, format, opts); err != nil {
			return errors.WithMessagef(err, "writing %s", cmd.Sources[i])
		}
		log.Debugf("wrote %s as %s", cmd.Sources[i], format)
	}
	return nil
}

// setupLogger points the command's logger at the log file, if one is
// configured, and honors the verbose setting. The returned func closes the
// log file.
func (cmd *IngestCommand) setupLogger() (func(), error) {
	var w io.Writer = cmd.Stderr
	closeFn := func() {}
	if cmd.Config.LogPath != "" {
		f, err := os.OpenFile(cmd.Config.LogPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return nil, errors.Wrap(err, "opening log file")
		}
		w = f
		closeFn = func() { f.Close() }
	}
	cmd.SetLogger(logger.New(w, cmd.Config.Verbose))
	return closeFn, nil
}
