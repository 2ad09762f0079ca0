// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package loadtxt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/featurebasedb/loadtxt/errors"
	"github.com/featurebasedb/loadtxt/logger"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// StdinName is the source name which reads standard input.
const StdinName = "-"

// Opener turns a source name into a stream. A name is "-" for Stdin, an
// http or https URL, or a file path. A ".gz" or ".zst" suffix on the path
// decompresses the stream.
type Opener struct {
	Stdin io.Reader

	HTTPTimeout time.Duration
	RetryMax    int
	// RetryWaitMin and RetryWaitMax bound the backoff between HTTP
	// attempts. Zero keeps the client defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Logger logger.Logger
}

// NewOpener returns an Opener configured from cfg.Source.
func NewOpener(cfg *Config) *Opener {
	stdin := cfg.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	return &Opener{
		Stdin:       stdin,
		HTTPTimeout: time.Duration(cfg.Source.HTTPTimeout),
		RetryMax:    cfg.Source.RetryMax,
		Logger:      cfg.logger(),
	}
}

// Open returns the named stream. Every failure is an ErrStreamOpen. The
// caller must close the result; closing stdin is a no-op.
func (o *Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	var err error
	p := name
	switch {
	case name == StdinName:
		if o.Stdin == nil {
			return nil, errors.New(ErrStreamOpen, "no standard input available")
		}
		return io.NopCloser(o.Stdin), nil
	case strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://"):
		u, perr := url.Parse(name)
		if perr != nil {
			return nil, newStreamError(perr, "parsing %s", name)
		}
		p = u.Path
		rc, err = o.openURL(ctx, name)
	default:
		rc, err = os.Open(name)
		if err != nil {
			err = newStreamError(err, "opening %s", name)
		}
	}
	if err != nil {
		return nil, err
	}
	return decompress(rc, p, name)
}

func (o *Opener) openURL(ctx context.Context, name string) (io.ReadCloser, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = o.RetryMax
	if o.RetryWaitMin > 0 {
		client.RetryWaitMin = o.RetryWaitMin
	}
	if o.RetryWaitMax > 0 {
		client.RetryWaitMax = o.RetryWaitMax
	}
	client.HTTPClient.Timeout = o.HTTPTimeout
	client.Logger = leveledLogger{log: o.log()}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, name, nil)
	if err != nil {
		return nil, newStreamError(err, "building request for %s", name)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, newStreamError(err, "fetching %s", name)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errors.Newf(ErrStreamOpen, "fetching %s: unexpected status %s", name, resp.Status)
	}
	return resp.Body, nil
}

func (o *Opener) log() logger.Logger {
	if o.Logger == nil {
		return logger.NopLogger
	}
	return o.Logger
}

// decompress wraps rc according to the suffix of p. On error rc is closed.
func decompress(rc io.ReadCloser, p, name string) (io.ReadCloser, error) {
	switch path.Ext(p) {
	case ".gz":
		gr, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, newStreamError(err, "opening gzip stream %s", name)
		}
		return &stackedReadCloser{Reader: gr, closers: []io.Closer{gr, rc}}, nil
	case ".zst":
		zr, err := zstd.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, newStreamError(err, "opening zstd stream %s", name)
		}
		zc := zr.IOReadCloser()
		return &stackedReadCloser{Reader: zc, closers: []io.Closer{zc, rc}}, nil
	}
	return rc, nil
}

// stackedReadCloser reads from the outermost layer and closes every layer,
// outermost first.
type stackedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReadCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// leveledLogger adapts a Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log logger.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.log.Errorf("%s%s", msg, formatKV(kv)) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.log.Debugf("%s%s", msg, formatKV(kv)) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.log.Debugf("%s%s", msg, formatKV(kv)) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.log.Warnf("%s%s", msg, formatKV(kv)) }

func formatKV(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
