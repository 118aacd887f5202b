// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"iter"
	"reflect"
	"strconv"
	"sync"

	"github.com/gogpu/stage/gpucore"
	"github.com/gogpu/stage/internal/logger"
)

// Options configures one Acquire call.
type Options struct {
	// CacheKey overrides the key derived from the source.
	CacheKey string

	// Resolution is device pixels per logical pixel. Zero reads an "@2x"
	// style suffix from the key, defaulting to 1.
	Resolution float64

	// ScaleMode is the sampling filter.
	ScaleMode gpucore.ScaleMode

	// WrapMode is the addressing mode.
	WrapMode gpucore.WrapMode

	// SVGScale overrides the cache SVG scale for this source.
	SVGScale float64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLoader sets the Loader used for non data: URLs.
func WithLoader(l Loader) CacheOption {
	return func(c *Cache) { c.loader = l }
}

// WithSVGScale sets the default SVG rasterization scale.
func WithSVGScale(scale float64) CacheOption {
	return func(c *Cache) {
		if scale > 0 {
			c.svgScale = scale
		}
	}
}

// WithMaxSize downscales decoded images whose sides exceed n pixels.
func WithMaxSize(n int) CacheOption {
	return func(c *Cache) { c.maxSize = n }
}

// completion is the result of a background load.
type completion struct {
	base *Base
	img  *image.RGBA
	// factor is the downscale applied to fit the maximum size.
	factor float64
	err    error
}

// Cache maps cache keys to textures and owns asynchronous loading.
//
// All methods except the background loads themselves must be called from
// the render goroutine.
type Cache struct {
	entries    map[string]*Base
	sourceKeys map[any]string
	loader     Loader
	svgScale   float64
	maxSize    int
	nextID     uint64
	pending    int

	mu       sync.Mutex
	done     []completion
	inflight sync.WaitGroup
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries:    make(map[string]*Base),
		sourceKeys: make(map[any]string),
		svgScale:   1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Acquire returns the texture cached under the source's key, creating and
// registering it on first use. Synchronous sources are Ready on return;
// URL and SVG sources are Loading until a later Poll applies their result.
// Construction errors (empty sources, zero-size inline SVG) are returned and
// nothing is cached.
func (c *Cache) Acquire(ctx context.Context, src Source, opts Options) (*Base, error) {
	key := opts.CacheKey
	if key == "" {
		key = c.keyFor(src)
	}
	if b, ok := c.entries[key]; ok {
		return b, nil
	}

	b := NewBase(key)
	b.cache = c
	b.scale = opts.ScaleMode
	b.wrap = opts.WrapMode
	b.resolution = opts.Resolution
	if b.resolution <= 0 {
		b.resolution = ResolutionOfURL(key, 1)
	}
	svgScale := opts.SVGScale
	if svgScale <= 0 {
		svgScale = c.svgScale
	}

	switch s := src.(type) {
	case ImageSource:
		if s.Image == nil || s.Image.Bounds().Empty() {
			return nil, fmt.Errorf("%w: image %q", ErrEmptySource, key)
		}
		img, f := fitRGBA(toRGBA(s.Image), c.maxSize)
		b.resolution *= f
		b.setCanvas(img)
	case CanvasSource:
		if s.Canvas == nil || s.Canvas.Rect.Empty() {
			return nil, fmt.Errorf("%w: canvas %q", ErrEmptySource, key)
		}
		b.setCanvas(s.Canvas)
	case RawSource:
		img, err := rawImage(s)
		if err != nil {
			return nil, err
		}
		b.setCanvas(img)
	case TextSource:
		img, err := rasterizeText(s)
		if err != nil {
			return nil, err
		}
		b.setCanvas(img)
	case URLSource:
		if s.URL == "" {
			return nil, fmt.Errorf("%w: empty URL", ErrEmptySource)
		}
		c.load(b, func() (*image.RGBA, float64, error) { return c.fetch(ctx, s.URL, svgScale) })
	case SVGSource:
		switch {
		case s.URL != "":
			c.load(b, func() (*image.RGBA, float64, error) { return c.fetch(ctx, s.URL, svgScale) })
		case s.Markup != "":
			data := []byte(s.Markup)
			if _, _, err := svgSize(data); err != nil {
				return nil, err
			}
			if s.Scale > 0 {
				svgScale = s.Scale
			}
			c.load(b, func() (*image.RGBA, float64, error) { return rasterizeSVG(data, svgScale, c.maxSize) })
		default:
			return nil, fmt.Errorf("%w: SVG source has neither markup nor URL", ErrEmptySource)
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}

	c.entries[key] = b
	logger.Get().Debug("texture: acquired", "key", key, "state", b.state)
	return b, nil
}

// keyFor derives a cache key, assigning synthetic ids to sources without
// one. Canvases and images keep their synthetic id across calls.
func (c *Cache) keyFor(src Source) string {
	if k := src.Key(); k != "" {
		return k
	}
	var identity any
	prefix := "texture"
	switch s := src.(type) {
	case CanvasSource:
		identity, prefix = s.Canvas, "canvas"
	case ImageSource:
		if s.Image != nil && reflect.TypeOf(s.Image).Comparable() {
			identity = s.Image
		}
		prefix = "image"
	case TextSource:
		prefix = "text"
	}
	if identity != nil {
		if k, ok := c.sourceKeys[identity]; ok {
			return k
		}
	}
	c.nextID++
	k := prefix + "_" + strconv.FormatUint(c.nextID, 10)
	if identity != nil {
		c.sourceKeys[identity] = k
	}
	return k
}

// rawImage wraps raw pixels in a canvas, premultiplying straight alpha.
func rawImage(s RawSource) (*image.RGBA, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: raw %dx%d", ErrEmptySource, s.Width, s.Height)
	}
	if len(s.Pixels) != s.Width*s.Height*4 {
		return nil, fmt.Errorf("%w: raw %dx%d has %d bytes", gpucore.ErrSizeMismatch, s.Width, s.Height, len(s.Pixels))
	}
	pix := append([]byte(nil), s.Pixels...)
	if !s.Premultiplied {
		premultiply(pix)
	}
	return &image.RGBA{Pix: pix, Stride: s.Width * 4, Rect: image.Rect(0, 0, s.Width, s.Height)}, nil
}

// load marks b Loading and runs fn on a background goroutine. The result
// is queued for Poll. A panic in a decoder becomes an ErrDecode result.
func (c *Cache) load(b *Base, fn func() (*image.RGBA, float64, error)) {
	b.state = StateLoading
	c.pending++
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		img, factor, err := runLoad(fn)
		c.mu.Lock()
		c.done = append(c.done, completion{base: b, img: img, factor: factor, err: err})
		c.mu.Unlock()
	}()
}

func runLoad(fn func() (*image.RGBA, float64, error)) (img *image.RGBA, factor float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, factor, err = nil, 0, fmt.Errorf("%w: %v", ErrDecode, r)
		}
	}()
	return fn()
}

// fetch reads and decodes the bytes behind url. It also returns the
// downscale factor applied to fit the maximum size.
func (c *Cache) fetch(ctx context.Context, url string, svgScale float64) (*image.RGBA, float64, error) {
	var (
		data      []byte
		mediaType string
		err       error
	)
	if isDataURI(url) {
		mediaType, data, err = parseDataURI(url)
		if err != nil {
			return nil, 0, err
		}
	} else {
		if c.loader == nil {
			return nil, 0, fmt.Errorf("%w: %s", ErrNoLoader, url)
		}
		rc, err := c.loader.Open(ctx, url)
		if err != nil {
			return nil, 0, fmt.Errorf("texture: open %s: %w", url, err)
		}
		defer rc.Close()
		if data, err = io.ReadAll(rc); err != nil {
			return nil, 0, fmt.Errorf("texture: read %s: %w", url, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	if isSVGURL(url) || mediaType == "image/svg+xml" || looksLikeSVG(data) {
		return rasterizeSVG(data, svgScale, c.maxSize)
	}
	img, err := decodeImage(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	img, f := fitRGBA(img, c.maxSize)
	return img, f, nil
}

// Poll applies finished background loads and returns how many textures
// changed state. It is called once per frame before drawing.
func (c *Cache) Poll() int {
	c.mu.Lock()
	done := c.done
	c.done = nil
	c.mu.Unlock()

	applied := 0
	for _, d := range done {
		c.pending--
		if !d.base.finishLoad(d.img, d.factor, d.err) {
			logger.Get().Debug("texture: discarded load for destroyed texture", "key", d.base.key)
			continue
		}
		applied++
		if d.err != nil {
			logger.Get().Warn("texture: load failed", "key", d.base.key, "err", d.err)
		} else {
			logger.Get().Debug("texture: loaded", "key", d.base.key,
				"width", d.base.RealWidth(), "height", d.base.RealHeight())
		}
	}
	return applied
}

// Wait blocks until every background load has queued its result. Poll must
// still be called to apply them.
func (c *Cache) Wait() {
	c.inflight.Wait()
}

// Pending returns the number of loads not yet applied by Poll.
func (c *Cache) Pending() int { return c.pending }

// Get returns the texture cached under key.
func (c *Cache) Get(key string) (*Base, bool) {
	b, ok := c.entries[key]
	return b, ok
}

// Remove drops the texture cached under key without destroying it.
func (c *Cache) Remove(key string) (*Base, bool) {
	b, ok := c.entries[key]
	if ok {
		c.forget(b)
		b.cache = nil
	}
	return b, ok
}

// Len returns the number of cached textures.
func (c *Cache) Len() int { return len(c.entries) }

// All iterates over the cached textures in unspecified order.
func (c *Cache) All() iter.Seq[*Base] {
	return func(yield func(*Base) bool) {
		for _, b := range c.entries {
			if !yield(b) {
				return
			}
		}
	}
}

// Destroy destroys every cached texture.
func (c *Cache) Destroy() {
	for _, b := range c.entries {
		b.Destroy()
	}
}

// forget removes b's entry and any synthetic key pointing at it.
func (c *Cache) forget(b *Base) {
	if c.entries[b.key] == b {
		delete(c.entries, b.key)
	}
	for id, k := range c.sourceKeys {
		if k == b.key {
			delete(c.sourceKeys, id)
		}
	}
}
