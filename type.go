// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the scalar type every retained field is coerced to.
type Type int

const (
	Float Type = iota
	Int
	Bool
	Text
)

var typeNames = [...]string{
	Float: "float",
	Int:   "int",
	Bool:  "bool",
	Text:  "text",
}

// ParseType accepts the names returned by Type.String along with a few
// common aliases.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float", "float64", "f8", "double":
		return Float, nil
	case "int", "int64", "i8", "integer":
		return Int, nil
	case "bool", "boolean":
		return Bool, nil
	case "text", "str", "string":
		return Text, nil
	}
	return 0, newInvalidConfig("unknown dtype %q, please choose from float/int/bool/text", s)
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Nullable reports whether the type has a sentinel for missing values which
// can stand in when no fill value is configured.
func (t Type) Nullable() bool {
	return t == Float || t == Text
}

func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Type) UnmarshalText(text []byte) error { return t.Set(string(text)) }

// Set implements pflag.Value.
func (t *Type) Set(s string) error {
	v, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Type implements pflag.Value.
func (t *Type) Type() string { return "dtype" }

// Rounding decides how a fractional literal becomes an integer.
type Rounding int

const (
	// Trunc drops the fractional part, rounding toward zero: "22.5" is 22
	// and "-2.7" is -2.
	Trunc Rounding = iota
	// Floor rounds toward negative infinity: "-2.7" is -3.
	Floor
)

func (r Rounding) String() string {
	if r == Floor {
		return "floor"
	}
	return "trunc"
}

func (r Rounding) apply(f float64) float64 {
	if r == Floor {
		return math.Floor(f)
	}
	return math.Trunc(f)
}

func (r Rounding) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Rounding) UnmarshalText(text []byte) error { return r.Set(string(text)) }

func (r *Rounding) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "trunc", "truncate":
		*r = Trunc
	case "floor":
		*r = Floor
	default:
		return newInvalidConfig("unknown int rounding %q, please choose from trunc/floor", s)
	}
	return nil
}

func (r *Rounding) Type() string { return "rounding" }

// FillValue is the scalar substituted for missing fields. The zero value
// means no fill: missing fields get the type's sentinel (NaN for float, ""
// for text) or fail for int and bool.
type FillValue struct {
	v   interface{}
	set bool
}

// Fill returns a FillValue holding v, which may be any integer or float
// kind, a bool, or a string. Strings are coerced like input fields.
func Fill(v interface{}) FillValue {
	return FillValue{v: v, set: true}
}

// IsSet reports whether a fill value was given.
func (f FillValue) IsSet() bool { return f.set }

// Value returns the fill as given, or nil if unset.
func (f FillValue) Value() interface{} { return f.v }

func (f FillValue) String() string {
	if !f.set {
		return ""
	}
	switch v := f.v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(v)
	}
}

// MarshalText renders an unset fill as the empty string, so an empty string
// fill only survives through the Go API.
func (f FillValue) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FillValue) UnmarshalText(text []byte) error { return f.Set(string(text)) }

// Set implements pflag.Value. The empty string clears the fill.
func (f *FillValue) Set(s string) error {
	if s == "" {
		*f = FillValue{}
		return nil
	}
	*f = Fill(s)
	return nil
}

func (f *FillValue) Type() string { return "fill" }
