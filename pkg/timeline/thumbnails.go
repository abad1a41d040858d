// ABOUTME: Thumbnail caches for the timeline and version list
// ABOUTME: Results are keyed by version and ticket so stale generations are dropped

package timeline

import (
	"context"
)

// DefaultThumbnailCount is how many timeline thumbnails are requested
const DefaultThumbnailCount = 12

// Generator extracts count evenly spaced frames from the media at locator.
// Implementations own decoding and any retry policy.
type Generator interface {
	Generate(ctx context.Context, locator string, count int) ([]string, error)
}

// Request identifies one thumbnail generation
type Request struct {
	Version int
	Ticket  uint64
	Locator string
	Count   int
}

// Result is the outcome of a generation
type Result struct {
	Version int
	Ticket  uint64
	Frames  []string
	Err     error
}

// Start runs the generator in its own goroutine and delivers exactly one
// result on the returned channel
func Start(ctx context.Context, gen Generator, req Request) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		frames, err := gen.Generate(ctx, req.Locator, req.Count)
		if err == nil {
			err = ctx.Err()
		}
		ch <- Result{
			Version: req.Version,
			Ticket:  req.Ticket,
			Frames:  frames,
			Err:     err,
		}
	}()
	return ch
}

// Cache holds the timeline thumbnails of the active version
type Cache struct {
	version int
	ticket  uint64
	frames  []string
	pending bool
}

// NewCache creates an empty thumbnail cache
func NewCache() *Cache {
	return &Cache{}
}

// Request invalidates any in-flight generation and returns a new request
func (c *Cache) Request(version int, locator string, count int) Request {
	c.ticket++
	c.version = version
	c.frames = nil
	c.pending = true
	return Request{Version: version, Ticket: c.ticket, Locator: locator, Count: count}
}

// Reset drops the cached thumbnails and invalidates in-flight generations
func (c *Cache) Reset() {
	c.ticket++
	c.version = 0
	c.frames = nil
	c.pending = false
}

// Apply stores a result if it belongs to the current request. It reports
// whether the result was current; failed results leave the cache empty.
func (c *Cache) Apply(r Result) bool {
	if !c.pending || r.Ticket != c.ticket || r.Version != c.version {
		return false
	}
	c.pending = false
	if r.Err != nil {
		c.frames = nil
		return true
	}
	c.frames = r.Frames
	return true
}

// Pending reports whether a generation is in flight
func (c *Cache) Pending() bool {
	return c.pending
}

// Frames returns the cached thumbnails
func (c *Cache) Frames() []string {
	return c.frames
}

// At returns the thumbnail covering a hover fraction
func (c *Cache) At(fraction float64) (string, bool) {
	i := ThumbnailIndex(fraction, len(c.frames))
	if i < 0 || c.frames[i] == "" {
		return "", false
	}
	return c.frames[i], true
}

// PreviewCache holds one preview image per version number
type PreviewCache struct {
	previews   map[int]string
	generating map[int]bool
}

// NewPreviewCache creates an empty preview cache
func NewPreviewCache() *PreviewCache {
	return &PreviewCache{
		previews:   make(map[int]string),
		generating: make(map[int]bool),
	}
}

// Needs reports whether a preview for version should be requested
func (p *PreviewCache) Needs(version int) bool {
	_, done := p.previews[version]
	return !done && !p.generating[version]
}

// Set stores a preview directly, as image versions use their own media
func (p *PreviewCache) Set(version int, preview string) {
	p.previews[version] = preview
	delete(p.generating, version)
}

// Begin marks version as generating
func (p *PreviewCache) Begin(version int) {
	p.generating[version] = true
}

// Complete records a generation result. Failures leave the slot empty so a
// later hover can retry.
func (p *PreviewCache) Complete(r Result) {
	delete(p.generating, r.Version)
	if r.Err != nil || len(r.Frames) == 0 {
		return
	}
	p.previews[r.Version] = r.Frames[0]
}

// Generating reports whether a preview for version is in flight
func (p *PreviewCache) Generating(version int) bool {
	return p.generating[version]
}

// Get returns the preview of version
func (p *PreviewCache) Get(version int) (string, bool) {
	s, ok := p.previews[version]
	return s, ok
}
