// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package export

import (
	"io"
	"math"

	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
	json "github.com/goccy/go-json"
)

// Document is the JSON form of an Array. Data is a list of rows for a 2-D
// array and a flat list for a 1-D one. NaN and infinite floats are null.
type Document struct {
	Shape []int         `json:"shape"`
	Type  string        `json:"dtype"`
	Names []string      `json:"names,omitempty"`
	Data  []interface{} `json:"data"`
}

// NewDocument converts a to its JSON form.
func NewDocument(a *loadtxt.Array) *Document {
	doc := &Document{
		Shape: a.Shape(),
		Type:  a.Type().String(),
		Names: a.Names(),
	}
	value := func(k int) interface{} {
		v := a.Value(k)
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return nil
		}
		return v
	}
	if a.Ndim() == 1 {
		doc.Data = make([]interface{}, a.Len())
		for k := range doc.Data {
			doc.Data[k] = value(k)
		}
		return doc
	}
	rows, cols := doc.Shape[0], doc.Shape[1]
	doc.Data = make([]interface{}, rows)
	for i := range doc.Data {
		row := make([]interface{}, cols)
		for j := range row {
			row[j] = value(i*cols + j)
		}
		doc.Data[i] = row
	}
	return doc
}

// WriteJSON writes a as a single JSON Document followed by a newline.
func WriteJSON(w io.Writer, a *loadtxt.Array) error {
	enc := json.NewEncoder(w)
	return errors.Wrap(enc.Encode(NewDocument(a)), "encoding json")
}
