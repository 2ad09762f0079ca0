// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"strings"

	"github.com/featurebasedb/loadtxt/errors"
)

// Field is a projected field after missing-value resolution.
type Field struct {
	Text    string
	Missing bool

	// fill is the coerced replacement for a missing field, nil when the
	// type's sentinel stands in.
	fill *cell
}

// Filled reports whether a fill value replaces the field.
func (f Field) Filled() bool { return f.fill != nil }

type tokenSet map[string]struct{}

// Resolver marks fields which match a missing token and decides what
// replaces them. Per-column settings are keyed by source column index and
// take precedence over the global ones.
type Resolver struct {
	coercer  *Coercer
	foldCase bool

	missing    tokenSet
	fill       *cell
	colMissing map[int]tokenSet
	colFill    map[int]*cell
}

// NewResolver coerces fill to the coercer's type up front, so a bad fill
// literal fails before any input is read. An unset fill is not an error
// here even for int or bool; that is only reported when a missing field
// actually turns up.
func NewResolver(c *Coercer, tokens []string, fill FillValue, foldCase bool) (*Resolver, error) {
	r := &Resolver{
		coercer:    c,
		foldCase:   foldCase,
		colMissing: make(map[int]tokenSet),
		colFill:    make(map[int]*cell),
	}
	r.missing = r.tokenSet(tokens)
	if fill.IsSet() {
		v, err := c.fill(fill)
		if err != nil {
			return nil, err
		}
		r.fill = &v
	}
	return r, nil
}

func (r *Resolver) tokenSet(tokens []string) tokenSet {
	set := make(tokenSet, len(tokens))
	for _, t := range tokens {
		set[r.key(t)] = struct{}{}
	}
	return set
}

func (r *Resolver) key(s string) string {
	if r.foldCase {
		return strings.ToLower(s)
	}
	return s
}

// SetColumnMissing replaces the missing tokens for one source column.
func (r *Resolver) SetColumnMissing(col int, tokens []string) error {
	if col < 0 {
		return errors.Newf(ErrColumnIndex, "missing values given for negative column %d", col)
	}
	r.colMissing[col] = r.tokenSet(tokens)
	return nil
}

// SetColumnFill replaces the fill value for one source column. An unset
// fill removes the override.
func (r *Resolver) SetColumnFill(col int, fill FillValue) error {
	if col < 0 {
		return errors.Newf(ErrColumnIndex, "fill value given for negative column %d", col)
	}
	if !fill.IsSet() {
		delete(r.colFill, col)
		return nil
	}
	v, err := r.coercer.fill(fill)
	if err != nil {
		return errors.WithMessagef(err, "column %d", col)
	}
	r.colFill[col] = &v
	return nil
}

// Resolve marks the missing fields of a projected row. sources gives the
// source column of each field.
func (r *Resolver) Resolve(row RawRow, sources []int) ([]Field, error) {
	out := make([]Field, len(row.Fields))
	for j, text := range row.Fields {
		src := sources[j]
		out[j].Text = text

		set, ok := r.colMissing[src]
		if !ok {
			set = r.missing
		}
		if len(set) == 0 {
			continue
		}
		if _, missing := set[r.key(text)]; !missing {
			continue
		}

		out[j].Missing = true
		if fill, ok := r.colFill[src]; ok {
			out[j].fill = fill
		} else if r.fill != nil {
			out[j].fill = r.fill
		} else if _, ok := r.coercer.sentinel(); !ok {
			return nil, newNoFillForType(row.Line, src, r.coercer.Type(), text)
		}
	}
	return out, nil
}
