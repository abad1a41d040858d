// ABOUTME: Thumbnail requests and result application for the session
// ABOUTME: Generation runs off the session; stale results are discarded on apply

package session

import (
	"context"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/timeline"
)

// RequestThumbnails starts timeline thumbnail generation for the active video
// version. The caller feeds the result back through ApplyThumbnails.
func (s *Session) RequestThumbnails(ctx context.Context) (<-chan timeline.Result, bool) {
	v := s.active()
	if s.generator == nil || !v.IsVideo() {
		return nil, false
	}
	req := s.thumbs.Request(v.Number, v.MediaLocator, s.thumbCount)
	return timeline.Start(ctx, s.generator, req), true
}

// ApplyThumbnails merges a generation result. It reports whether the result
// was current; failures are logged and leave the timeline without previews.
func (s *Session) ApplyThumbnails(r timeline.Result) bool {
	if !s.thumbs.Apply(r) {
		s.metrics.RecordThumbnail("timeline", "stale")
		return false
	}
	if r.Err != nil {
		s.log.LogThumbnailFailure(r.Version, "timeline", r.Err)
		s.metrics.RecordThumbnail("timeline", "error")
		return true
	}
	s.metrics.RecordThumbnail("timeline", "success")
	return true
}

// TimelinePreview returns the thumbnail for a hover fraction of the timeline
func (s *Session) TimelinePreview(fraction float64) (string, bool) {
	if s.duration <= 0 {
		return "", false
	}
	return s.thumbs.At(fraction)
}

// RequestVersionPreview prepares the preview of version i for the version
// list. Image versions use their own media; video versions request a single
// frame from the generator.
func (s *Session) RequestVersionPreview(ctx context.Context, i int) (<-chan timeline.Result, bool) {
	v, err := s.history.At(i)
	if err != nil || !s.previews.Needs(v.Number) {
		return nil, false
	}
	if !v.IsVideo() {
		s.previews.Set(v.Number, v.MediaLocator)
		return nil, false
	}
	if s.generator == nil {
		return nil, false
	}
	s.previews.Begin(v.Number)
	return timeline.Start(ctx, s.generator, timeline.Request{
		Version: v.Number,
		Locator: v.MediaLocator,
		Count:   1,
	}), true
}

// ApplyVersionPreview merges a version preview result
func (s *Session) ApplyVersionPreview(r timeline.Result) {
	s.previews.Complete(r)
	if r.Err != nil {
		s.log.LogThumbnailFailure(r.Version, "version", r.Err)
		s.metrics.RecordThumbnail("version", "error")
		return
	}
	s.metrics.RecordThumbnail("version", "success")
}

// VersionPreview returns the cached preview of a version number
func (s *Session) VersionPreview(number int) (string, bool) {
	return s.previews.Get(number)
}
