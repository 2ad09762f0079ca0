// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/featurebasedb/loadtxt/errors"
)

var (
	errNotFinite  = errors.New(ErrTypeCoercion, "value is not finite")
	errIntRange   = errors.New(ErrTypeCoercion, "value out of range for int64")
	errNotBoolean = errors.New(ErrTypeCoercion, "not a recognized boolean literal")
	errNotDecimal = errors.New(ErrTypeCoercion, "not a base-10 number")
)

// CoerceOptions tunes a Coercer.
type CoerceOptions struct {
	// StrictNumeric turns the NaN fallback for unparsable float fields
	// into a TypeCoercion error.
	StrictNumeric bool
	Rounding      Rounding
	// TrueValues and FalseValues are matched exactly, case included.
	TrueValues  []string
	FalseValues []string
}

// cell holds one coerced scalar; only the member matching the target type
// is meaningful.
type cell struct {
	f float64
	i int64
	b bool
	s string
}

// Coercer converts fields to a single target type.
type Coercer struct {
	typ    Type
	opts   CoerceOptions
	trues  map[string]struct{}
	falses map[string]struct{}
}

// NewCoercer validates opts for typ. Bool needs at least one true and one
// false literal, and no literal may be both.
func NewCoercer(typ Type, opts CoerceOptions) (*Coercer, error) {
	c := &Coercer{
		typ:    typ,
		opts:   opts,
		trues:  make(map[string]struct{}, len(opts.TrueValues)),
		falses: make(map[string]struct{}, len(opts.FalseValues)),
	}
	for _, t := range opts.TrueValues {
		c.trues[t] = struct{}{}
	}
	for _, f := range opts.FalseValues {
		if _, ok := c.trues[f]; ok {
			return nil, newInvalidConfig("%q is listed as both true and false", f)
		}
		c.falses[f] = struct{}{}
	}
	if typ == Bool && (len(c.trues) == 0 || len(c.falses) == 0) {
		return nil, newInvalidConfig("bool needs at least one true and one false value")
	}
	return c, nil
}

// Type returns the target type.
func (c *Coercer) Type() Type { return c.typ }

// ParseInt reads s as a base-10 integer. A fractional or exponent literal
// is accepted and rounded by the configured Rounding, so "22.5" is 22.
// Rounding works on the exact decimal value, not on a float64 of it.
// NaN, infinities, hexadecimal forms and values outside int64 are errors.
func (c *Coercer) ParseInt(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	if !decimalLiteral(s) {
		return 0, errNotDecimal
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, errIntRange
		}
		return 0, err
	}
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, errNotFinite
	case math.Abs(f) >= maxIntMagnitude:
		return 0, errIntRange
	case math.Abs(f) < 1:
		// The exact value is in (-1, 1) too, and may have underflowed to 0.
		if c.opts.Rounding == Floor && strings.HasPrefix(s, "-") && nonzeroMantissa(s) {
			return -1, nil
		}
		return 0, nil
	}

	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, errNotDecimal
	}
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if c.opts.Rounding == Floor && m.Sign() < 0 {
		q.Sub(q, big.NewInt(1))
	}
	if !q.IsInt64() {
		return 0, errIntRange
	}
	return q.Int64(), nil
}

// maxIntMagnitude is above every int64 with room for float64 rounding of
// the literal.
const maxIntMagnitude = 1e19

// decimalLiteral refuses the hexadecimal and underscore forms which
// strconv.ParseFloat also accepts.
func decimalLiteral(s string) bool {
	return !strings.ContainsAny(s, "xXpP_/")
}

// nonzeroMantissa reports whether any digit before the exponent is not 0.
func nonzeroMantissa(s string) bool {
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		s = s[:i]
	}
	return strings.ContainsAny(s, "123456789")
}

func (c *Coercer) floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	f = c.opts.Rounding.apply(f)
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errIntRange
	}
	return int64(f), nil
}

// ParseFloat reads s as a decimal float. Overflow gives ±Inf rather than
// an error, matching what the literal means. Hexadecimal floats are
// refused.
func (c *Coercer) ParseFloat(s string) (float64, error) {
	if !decimalLiteral(s) {
		return 0, errNotDecimal
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, nil
		}
		return 0, err
	}
	return f, nil
}

// ParseBool matches s against the configured literals.
func (c *Coercer) ParseBool(s string) (bool, error) {
	if _, ok := c.trues[s]; ok {
		return true, nil
	}
	if _, ok := c.falses[s]; ok {
		return false, nil
	}
	return false, errNotBoolean
}

// coerce converts one present (non-missing) field. The bool result reports
// a NaN fallback.
func (c *Coercer) coerce(s string) (cell, bool, error) {
	switch c.typ {
	case Float:
		f, err := c.ParseFloat(s)
		if err != nil {
			if c.opts.StrictNumeric {
				return cell{}, false, err
			}
			return cell{f: math.NaN()}, true, nil
		}
		return cell{f: f}, false, nil
	case Int:
		i, err := c.ParseInt(s)
		return cell{i: i}, false, err
	case Bool:
		b, err := c.ParseBool(s)
		return cell{b: b}, false, err
	default:
		return cell{s: s}, false, nil
	}
}

// sentinel is the value of a missing field with no fill. ok is false for
// types without one.
func (c *Coercer) sentinel() (cell, bool) {
	switch c.typ {
	case Float:
		return cell{f: math.NaN()}, true
	case Text:
		return cell{}, true
	}
	return cell{}, false
}

// fill converts a configured fill value to the target type. Strings go
// through the field parsers without the NaN fallback.
func (c *Coercer) fill(fv FillValue) (cell, error) {
	v := fv.Value()
	if s, ok := v.(string); ok {
		var out cell
		var err error
		switch c.typ {
		case Float:
			out.f, err = c.ParseFloat(s)
		case Int:
			out.i, err = c.ParseInt(s)
		case Bool:
			out.b, err = c.ParseBool(s)
		default:
			out.s = s
		}
		if err != nil {
			return cell{}, newInvalidConfig("fill value %q is not a valid %s: %v", s, c.typ, err)
		}
		return out, nil
	}

	bad := func() (cell, error) {
		return cell{}, newInvalidConfig("fill value %v (%T) does not fit %s", v, v, c.typ)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		switch c.typ {
		case Bool:
			return cell{b: rv.Bool()}, nil
		case Text:
			return cell{s: fv.String()}, nil
		}
		return bad()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return c.fillInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return bad()
		}
		return c.fillInt(int64(u))
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch c.typ {
		case Float:
			return cell{f: f}, nil
		case Int:
			i, err := c.floatToInt(f)
			if err != nil {
				return bad()
			}
			return cell{i: i}, nil
		case Text:
			return cell{s: fv.String()}, nil
		}
	}
	return bad()
}

func (c *Coercer) fillInt(i int64) (cell, error) {
	switch c.typ {
	case Float:
		return cell{f: float64(i)}, nil
	case Int:
		return cell{i: i}, nil
	case Text:
		return cell{s: strconv.FormatInt(i, 10)}, nil
	}
	return cell{}, newInvalidConfig("fill value %d does not fit %s", i, c.typ)
}
