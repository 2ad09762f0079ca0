// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"testing"

	"github.com/featurebasedb/loadtxt/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjector(t *testing.T) {
	_, err := NewProjector([]int{0, -1})
	assert.True(t, errors.Is(err, ErrColumnIndex), "got %v", err)

	_, err = NewProjector([]int{2, 0, 2})
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)

	cols := []int{2, 0}
	p, err := NewProjector(cols)
	require.NoError(t, err)
	cols[0] = 7
	assert.Equal(t, []int{2, 0}, p.Sources(3))
}

func TestProjector(t *testing.T) {
	row := RawRow{Line: 4, Fields: []string{"a", "b", "c"}}

	t.Run("all", func(t *testing.T) {
		p, err := NewProjector(nil)
		require.NoError(t, err)
		got, err := p.Project(row)
		require.NoError(t, err)
		assert.Equal(t, row, got)
		assert.Equal(t, []int{0, 1, 2}, p.Sources(3))
		assert.Equal(t, 3, p.Width(3))
		assert.Equal(t, 0, p.Width(-1))
	})

	t.Run("reorder", func(t *testing.T) {
		p, err := NewProjector([]int{2, 0})
		require.NoError(t, err)
		got, err := p.Project(row)
		require.NoError(t, err)
		assert.Equal(t, RawRow{Line: 4, Fields: []string{"c", "a"}}, got)
		assert.Equal(t, []string{"a", "b", "c"}, row.Fields)
		assert.Equal(t, 2, p.Width(3))
	})

	t.Run("out of range", func(t *testing.T) {
		p, err := NewProjector([]int{1, 3})
		require.NoError(t, err)
		_, err = p.Project(row)
		require.True(t, errors.Is(err, ErrColumnIndex), "got %v", err)
		loc, ok := errors.LocationOf(err)
		require.True(t, ok)
		assert.Equal(t, 4, loc.Line)
		assert.Contains(t, err.Error(), "column index 3 out of range for 3 fields")
	})
}
