// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/featurebasedb/loadtxt"
	"github.com/featurebasedb/loadtxt/errors"
	"github.com/featurebasedb/loadtxt/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngest(stdin string) (*IngestCommand, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cm := NewIngestCommand(strings.NewReader(stdin), stdout, stderr)
	cm.Sources = []string{"-"}
	return cm, stdout, stderr
}

func TestIngestCommand_Run(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		config func(c *Config)
		want   string
	}{
		{
			name:  "csv",
			input: "1,2\n3,4\n",
			config: func(c *Config) {
				c.Delimiter = ","
				c.Format = "csv"
			},
			want: "1,2\n3,4\n",
		},
		{
			name:  "csv output delimiter and header",
			input: "a b\n1 NA\n",
			config: func(c *Config) {
				c.Format = "csv"
				c.Names = true
				c.MinDims = 2
				c.MissingValues = []string{"NA"}
				c.OutputDelimiter = ";"
				c.Header = true
			},
			want: "a;b\n1;NaN\n",
		},
		{
			name:  "column fill",
			input: "1,x\n2,\n",
			config: func(c *Config) {
				c.Format = "csv"
				c.Delimiter = ","
				c.Type = loadtxt.Text
				c.ColumnMissing = map[string]string{"1": ""}
				c.ColumnFill = map[string]string{"1": "none"}
				c.Columns = []int{1}
			},
			want: "x\nnone\n",
		},
		{
			name:  "json",
			input: "1 2\n",
			config: func(c *Config) {
				c.Format = "JSON"
				c.Type = loadtxt.Int
			},
			want: `{"shape":[2],"dtype":"int","data":[1,2]}` + "\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cm, stdout, _ := newTestIngest(test.input)
			test.config(cm.Config)
			require.NoError(t, cm.Run(context.Background()))
			if strings.HasPrefix(test.want, "{") {
				assert.JSONEq(t, test.want, stdout.String())
				return
			}
			assert.Equal(t, test.want, stdout.String())
		})
	}
}

func TestIngestCommand_Table(t *testing.T) {
	cm, stdout, stderr := newTestIngest("city,temp\nOslo,4.5\n")
	cm.Config.Delimiter = ","
	cm.Config.Names = true
	cm.Config.Type = loadtxt.Text
	require.NoError(t, cm.Run(context.Background()))
	assert.Contains(t, stdout.String(), "Oslo")
	assert.Contains(t, stdout.String(), "city")
	assert.Contains(t, stderr.String(), "INFO:  ingested 1 rows")
	assert.NotContains(t, stderr.String(), "DEBUG:")
}

func TestIngestCommand_Errors(t *testing.T) {
	t.Run("no sources", func(t *testing.T) {
		cm, _, _ := newTestIngest("")
		cm.Sources = nil
		assert.True(t, errors.Is(cm.Run(context.Background()), ErrUsage))
	})
	t.Run("unknown format", func(t *testing.T) {
		cm, _, _ := newTestIngest("1\n")
		cm.Config.Format = "xml"
		assert.True(t, errors.Is(cm.Run(context.Background()), export.ErrUnknownFormat))
	})
	t.Run("parquet needs one source", func(t *testing.T) {
		cm, _, _ := newTestIngest("1\n")
		cm.Config.Format = "parquet"
		cm.Sources = []string{"a.txt", "b.txt"}
		assert.True(t, errors.Is(cm.Run(context.Background()), ErrUsage))
	})
	t.Run("json error document", func(t *testing.T) {
		cm, stdout, _ := newTestIngest("1 2\n3\n")
		cm.Config.Format = "json"
		err := cm.Run(context.Background())
		require.True(t, errors.Is(err, loadtxt.ErrMalformedRow), "got %v", err)
		assert.Contains(t, stdout.String(), `"code":"MalformedRow"`)
	})
	t.Run("table error writes nothing", func(t *testing.T) {
		cm, stdout, _ := newTestIngest("1 2\n3\n")
		require.Error(t, cm.Run(context.Background()))
		assert.Empty(t, stdout.String())
	})
}

func TestIngestCommand_Files(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("# temps\n1 2.5\n2 3.5\n"), 0600))

	cm, stdout, stderr := newTestIngest("")
	cm.Sources = []string{in}
	cm.Config.Comments = "#"
	cm.Config.Format = "parquet"
	cm.Config.Output = filepath.Join(dir, "out.parquet")
	cm.Config.LogPath = filepath.Join(dir, "loadtxt.log")
	cm.Config.Verbose = true
	require.NoError(t, cm.Run(context.Background()))

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())

	out, err := os.ReadFile(cm.Config.Output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("PAR1")), "not a parquet file")

	logged, err := os.ReadFile(cm.Config.LogPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "DEBUG: ")
	assert.Contains(t, string(logged), "ingested 2 rows")
}
