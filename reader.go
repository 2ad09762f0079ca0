// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"bufio"
	"io"
	"strings"

	"github.com/featurebasedb/loadtxt/logger"
)

// maxLineSize bounds a single input line.
const maxLineSize = 16 << 20

const utf8BOM = "\ufeff"

// RawRow is one data line split into trimmed, untyped fields.
type RawRow struct {
	// Line is the 1-based physical line the row came from.
	Line   int
	Fields []string
}

// Reader splits a text stream into RawRows. It reads forward only, once,
// and pulls input only as rows are requested.
type Reader struct {
	scanner *bufio.Scanner

	delim       string
	skip        int
	comments    string
	inline      bool
	allowRagged bool
	log         logger.Logger

	line    int
	width   int
	dropped int
}

// NewReader returns a Reader over r using the text layout options of cfg:
// Delimiter, SkipRows, Comments, InlineComments and AllowRagged.
func NewReader(r io.Reader, cfg *Config) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{
		scanner:     scanner,
		delim:       cfg.Delimiter,
		skip:        cfg.SkipRows,
		comments:    cfg.Comments,
		inline:      cfg.InlineComments,
		allowRagged: cfg.AllowRagged,
		log:         cfg.logger(),
		width:       -1,
	}
}

// Next returns the next data row, or io.EOF after the last one. The first
// row returned fixes the field count; a later row with a different count
// is a MalformedRow error, or is dropped with a warning when AllowRagged
// is set.
func (r *Reader) Next() (RawRow, error) {
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Text()
		if r.line == 1 {
			text = strings.TrimPrefix(text, utf8BOM)
		}
		if r.line <= r.skip {
			continue
		}
		if r.comments != "" {
			if strings.HasPrefix(strings.TrimSpace(text), r.comments) {
				r.log.Debugf("line %d: skipping comment", r.line)
				continue
			}
			if r.inline {
				if i := strings.Index(text, r.comments); i >= 0 {
					text = text[:i]
				}
			}
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := r.split(text)
		if r.width < 0 {
			r.width = len(fields)
		} else if len(fields) != r.width {
			if !r.allowRagged {
				return RawRow{}, newMalformedRow(r.line, r.width, len(fields))
			}
			r.log.Warnf("line %d: dropping row with %d fields, expected %d", r.line, len(fields), r.width)
			r.dropped++
			continue
		}
		return RawRow{Line: r.line, Fields: fields}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return RawRow{}, newStreamError(err, "reading after line %d", r.line)
	}
	return RawRow{}, io.EOF
}

func (r *Reader) split(text string) []string {
	if r.delim == "" {
		return strings.Fields(text)
	}
	fields := strings.Split(text, r.delim)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// Width is the field count fixed by the first row, or -1 before it.
func (r *Reader) Width() int { return r.width }

// Line is the number of physical lines consumed so far.
func (r *Reader) Line() int { return r.line }

// Dropped is the number of ragged rows skipped under AllowRagged.
func (r *Reader) Dropped() int { return r.dropped }
