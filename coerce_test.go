// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"math"
	"testing"

	"github.com/featurebasedb/loadtxt/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCoercer(t *testing.T, typ Type, opts CoerceOptions) *Coercer {
	t.Helper()
	if opts.TrueValues == nil && opts.FalseValues == nil {
		opts.TrueValues, opts.FalseValues = []string{"True"}, []string{"False"}
	}
	c, err := NewCoercer(typ, opts)
	require.NoError(t, err)
	return c
}

func TestNewCoercer(t *testing.T) {
	_, err := NewCoercer(Bool, CoerceOptions{TrueValues: []string{"yes"}})
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)

	_, err = NewCoercer(Bool, CoerceOptions{TrueValues: []string{"y", "1"}, FalseValues: []string{"n", "1"}})
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)

	// Literals only matter for bool.
	_, err = NewCoercer(Int, CoerceOptions{})
	assert.NoError(t, err)
}

func TestCoercerInt(t *testing.T) {
	tests := []struct {
		in    string
		trunc int64
		floor int64
		err   bool
	}{
		{in: "42", trunc: 42, floor: 42},
		{in: "-7", trunc: -7, floor: -7},
		{in: "+3", trunc: 3, floor: 3},
		{in: "22.5", trunc: 22, floor: 22},
		{in: "-2.7", trunc: -2, floor: -3},
		{in: "1e3", trunc: 1000, floor: 1000},
		{in: "9223372036854775807", trunc: math.MaxInt64, floor: math.MaxInt64},
		{in: "9.3e18", err: true},
		{in: "NaN", err: true},
		{in: "inf", err: true},
		{in: "abc", err: true},
		{in: "", err: true},
		{in: "0x10", err: true},
		{in: "9007199254740993.5", trunc: 9007199254740993, floor: 9007199254740993},
		{in: "12345678901234567.9", trunc: 12345678901234567, floor: 12345678901234567},
		{in: "-9007199254740993.5", trunc: -9007199254740993, floor: -9007199254740994},
		{in: "9223372036854775807.5", trunc: math.MaxInt64, floor: math.MaxInt64},
		{in: "12345678901234567e-1", trunc: 1234567890123456, floor: 1234567890123456},
		{in: "0.99999999999999999999", trunc: 0, floor: 0},
		{in: "-0.5", trunc: 0, floor: -1},
		{in: "-0.0", trunc: 0, floor: 0},
		{in: "-1e-400", trunc: 0, floor: -1},
		{in: "1e400", err: true},
		{in: "0x1p4", err: true},
		{in: "-0X1P4", err: true},
		{in: "1_000", err: true},
		{in: "1/2", err: true},
	}
	trunc := mustCoercer(t, Int, CoerceOptions{Rounding: Trunc})
	floor := mustCoercer(t, Int, CoerceOptions{Rounding: Floor})
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := trunc.ParseInt(test.in)
			if test.err {
				assert.Error(t, err)
				_, _, err = trunc.coerce(test.in)
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.trunc, got)

			got, err = floor.ParseInt(test.in)
			require.NoError(t, err)
			assert.Equal(t, test.floor, got)
		})
	}
}

func TestCoercerFloat(t *testing.T) {
	lenient := mustCoercer(t, Float, CoerceOptions{})
	strict := mustCoercer(t, Float, CoerceOptions{StrictNumeric: true})

	v, nan, err := lenient.coerce("22.5")
	require.NoError(t, err)
	assert.False(t, nan)
	assert.Equal(t, 22.5, v.f)

	v, nan, err = lenient.coerce("1e999")
	require.NoError(t, err)
	assert.False(t, nan)
	assert.True(t, math.IsInf(v.f, 1))

	v, nan, err = lenient.coerce("nan")
	require.NoError(t, err)
	assert.False(t, nan, "a NaN literal is not a fallback")
	assert.True(t, math.IsNaN(v.f))

	v, nan, err = lenient.coerce("n/a")
	require.NoError(t, err)
	assert.True(t, nan)
	assert.True(t, math.IsNaN(v.f))

	_, _, err = strict.coerce("n/a")
	assert.Error(t, err)

	// Hexadecimal floats are not decimal input.
	v, nan, err = lenient.coerce("0x1p4")
	require.NoError(t, err)
	assert.True(t, nan)
	assert.True(t, math.IsNaN(v.f))
	_, _, err = strict.coerce("0x1p4")
	assert.True(t, errors.Is(err, ErrTypeCoercion), "got %v", err)
	v, _, err = strict.coerce("-0.25")
	require.NoError(t, err)
	assert.Equal(t, -0.25, v.f)
}

func TestCoercerBool(t *testing.T) {
	c := mustCoercer(t, Bool, CoerceOptions{})
	for in, exp := range map[string]bool{"True": true, "False": false} {
		v, _, err := c.coerce(in)
		require.NoError(t, err)
		assert.Equal(t, exp, v.b)
	}
	for _, in := range []string{"Maybe", "true", "TRUE", "1", ""} {
		_, _, err := c.coerce(in)
		assert.True(t, errors.Is(err, ErrTypeCoercion), "%q: got %v", in, err)
	}

	custom := mustCoercer(t, Bool, CoerceOptions{TrueValues: []string{"yes", "y"}, FalseValues: []string{"no"}})
	b, err := custom.ParseBool("y")
	require.NoError(t, err)
	assert.True(t, b)
	_, err = custom.ParseBool("True")
	assert.Error(t, err)
}

func TestCoercerText(t *testing.T) {
	c := mustCoercer(t, Text, CoerceOptions{})
	for _, in := range []string{"", "abc", "1.5", "NA"} {
		v, nan, err := c.coerce(in)
		require.NoError(t, err)
		assert.False(t, nan)
		assert.Equal(t, in, v.s)
	}
}

func TestCoercerSentinel(t *testing.T) {
	v, ok := mustCoercer(t, Float, CoerceOptions{}).sentinel()
	assert.True(t, ok)
	assert.True(t, math.IsNaN(v.f))

	v, ok = mustCoercer(t, Text, CoerceOptions{}).sentinel()
	assert.True(t, ok)
	assert.Equal(t, "", v.s)

	_, ok = mustCoercer(t, Int, CoerceOptions{}).sentinel()
	assert.False(t, ok)
	_, ok = mustCoercer(t, Bool, CoerceOptions{}).sentinel()
	assert.False(t, ok)
}

func TestCoercerFill(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		fill interface{}
		exp  cell
		err  bool
	}{
		{name: "int to float", typ: Float, fill: -99, exp: cell{f: -99}},
		{name: "float to float", typ: Float, fill: 0.5, exp: cell{f: 0.5}},
		{name: "string to float", typ: Float, fill: "-1.5", exp: cell{f: -1.5}},
		{name: "bad string to float", typ: Float, fill: "oops", err: true},
		{name: "bool to float", typ: Float, fill: true, err: true},
		{name: "int to int", typ: Int, fill: int32(-1), exp: cell{i: -1}},
		{name: "uint to int", typ: Int, fill: uint8(7), exp: cell{i: 7}},
		{name: "huge uint", typ: Int, fill: uint64(math.MaxUint64), err: true},
		{name: "float to int", typ: Int, fill: 3.9, exp: cell{i: 3}},
		{name: "nan to int", typ: Int, fill: math.NaN(), err: true},
		{name: "string to int", typ: Int, fill: "12", exp: cell{i: 12}},
		{name: "bool to bool", typ: Bool, fill: false, exp: cell{b: false}},
		{name: "string to bool", typ: Bool, fill: "True", exp: cell{b: true}},
		{name: "int to bool", typ: Bool, fill: 1, err: true},
		{name: "int to text", typ: Text, fill: 5, exp: cell{s: "5"}},
		{name: "float to text", typ: Text, fill: 2.5, exp: cell{s: "2.5"}},
		{name: "bool to text", typ: Text, fill: true, exp: cell{s: "True"}},
		{name: "string to text", typ: Text, fill: "n/a", exp: cell{s: "n/a"}},
		{name: "other kind", typ: Text, fill: []int{1}, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := mustCoercer(t, test.typ, CoerceOptions{})
			got, err := c.fill(Fill(test.fill))
			if test.err {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.exp, got)
		})
	}
}
