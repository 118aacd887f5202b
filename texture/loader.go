// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"context"
	"io"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
)

// Loader fetches the bytes behind a URL. Loaders are called from background
// goroutines and must be safe for concurrent use.
type Loader interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, url string) (io.ReadCloser, error)

// Open implements Loader.
func (f LoaderFunc) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	return f(ctx, url)
}

// FSLoader resolves URLs as slash-separated paths in a file system.
type FSLoader struct {
	FS fs.FS
}

// Open implements Loader.
func (l FSLoader) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.FS.Open(strings.TrimPrefix(url, "/"))
}

var resolutionPattern = regexp.MustCompile(`@([0-9]*\.?[0-9]+)x(?:\.[A-Za-z0-9]+)?(?:\?.*)?$`)

// ResolutionOfURL extracts the device-pixel ratio encoded in a file name
// such as "hero@2x.png", or returns def.
func ResolutionOfURL(url string, def float64) float64 {
	m := resolutionPattern.FindStringSubmatch(url)
	if m == nil {
		return def
	}
	r, err := strconv.ParseFloat(m[1], 64)
	if err != nil || r <= 0 {
		return def
	}
	return r
}
