// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"context"
	"io"

	"github.com/featurebasedb/loadtxt/errors"
	"golang.org/x/sync/errgroup"
)

// Ingest reads r as delimited text and returns a typed Array. The options
// are applied to NewConfig. r is read once and is not closed.
func Ingest(r io.Reader, opts ...Option) (*Array, error) {
	cfg, err := NewConfigWith(opts...)
	if err != nil {
		return nil, err
	}
	return cfg.Ingest(r)
}

// IngestFile opens name with an Opener built from the options, ingests it
// and closes it again on every path.
func IngestFile(ctx context.Context, name string, opts ...Option) (*Array, error) {
	cfg, err := NewConfigWith(opts...)
	if err != nil {
		return nil, err
	}
	return cfg.IngestFile(ctx, name)
}

// IngestFiles ingests each of names independently; see Config.IngestFiles.
func IngestFiles(ctx context.Context, names []string, opts ...Option) ([]*Array, error) {
	cfg, err := NewConfigWith(opts...)
	if err != nil {
		return nil, err
	}
	return cfg.IngestFiles(ctx, names)
}

// Ingest reads r using c. Either a complete Array or exactly one error is
// returned.
func (c *Config) Ingest(r io.Reader) (*Array, error) {
	arr, err := c.ingest(r)
	return arr, countError(err)
}

// IngestFile opens, ingests and closes one named source.
func (c *Config) IngestFile(ctx context.Context, name string) (*Array, error) {
	arr, err := c.ingestSource(ctx, NewOpener(c), name)
	return arr, countError(err)
}

// IngestFiles ingests names concurrently, at most Concurrency at a time.
// Results are in the order of names. The first failure cancels sources not
// yet opened and is the error returned.
func (c *Config) IngestFiles(ctx context.Context, names []string) ([]*Array, error) {
	if _, err := c.plan(); err != nil {
		return nil, countError(err)
	}
	opener := NewOpener(c)
	limit := c.Concurrency
	if limit <= 0 {
		limit = 1
	}

	out := make([]*Array, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range names {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			arr, err := c.ingestSource(ctx, opener, names[i])
			if err != nil {
				return errors.WithMessagef(err, "source %s", names[i])
			}
			out[i] = arr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, countError(err)
	}
	return out, nil
}

func (c *Config) ingestSource(ctx context.Context, o *Opener, name string) (*Array, error) {
	rc, err := o.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil {
			c.logger().Warnf("closing %s: %v", name, cerr)
		}
	}()
	c.logger().Debugf("ingesting %s", name)
	return c.ingest(rc)
}

func countError(err error) error {
	if err != nil {
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.ErrUncoded
		}
		CounterIngestErrors.WithLabelValues(string(code)).Inc()
	}
	return err
}

// ingestStats are added to the counters only once an ingestion succeeds.
type ingestStats struct {
	rows         int
	filled       int
	nanFallbacks int
	dropped      int
}

func (s ingestStats) record() {
	CounterRowsIngested.Add(float64(s.rows))
	CounterFieldsFilled.Add(float64(s.filled))
	CounterNaNFallbacks.Add(float64(s.nanFallbacks))
	CounterRowsDropped.Add(float64(s.dropped))
}

func (c *Config) ingest(r io.Reader) (*Array, error) {
	p, err := c.plan()
	if err != nil {
		return nil, err
	}
	log := c.logger()
	log.Debugf("ingest: dtype=%s delimiter=%q skip-rows=%d comments=%q usecols=%v",
		c.Type, c.Delimiter, c.SkipRows, c.Comments, c.Columns)

	rd := NewReader(r, c)
	var (
		arr     *Array
		names   []string
		sources []int
		stats   ingestStats
	)
	for c.MaxRows == 0 || stats.rows < c.MaxRows {
		raw, err := rd.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if sources == nil {
			sources = p.projector.Sources(rd.Width())
			arr = newArray(c.Type, len(sources))
		}

		row, err := p.projector.Project(raw)
		if err != nil {
			return nil, err
		}
		if c.Names && names == nil {
			names = row.Fields
			continue
		}

		fields, err := p.resolver.Resolve(row, sources)
		if err != nil {
			return nil, err
		}
		for j, f := range fields {
			v, err := p.cell(f, &stats)
			if err != nil {
				return nil, newTypeCoercion(row.Line, sources[j], c.Type, f.Text, err)
			}
			arr.appendCell(v)
		}
		arr.endRow()
		stats.rows++
	}
	if arr == nil {
		arr = newArray(c.Type, p.projector.Width(0))
	}
	arr.names = names

	if c.Unpack {
		arr = arr.T()
	}
	if c.MinDims == 1 {
		arr = arr.Squeeze()
	}
	stats.dropped = rd.Dropped()
	stats.record()
	log.Infof("ingested %d rows, shape %v, dtype %s, %d ragged rows dropped",
		stats.rows, arr.shape, c.Type, stats.dropped)
	return arr, nil
}

// cell produces the stored value of one resolved field.
func (p *plan) cell(f Field, stats *ingestStats) (cell, error) {
	if f.Missing {
		stats.filled++
		if f.fill != nil {
			return *f.fill, nil
		}
		v, _ := p.coercer.sentinel()
		return v, nil
	}
	v, nan, err := p.coercer.coerce(f.Text)
	if nan {
		stats.nanFallbacks++
	}
	return v, err
}
