// ABOUTME: Review session state object
// ABOUTME: Transition functions for capture, composing, annotations, versions and playback

package session

import (
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/logger"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/metrics"
	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/chat"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/composer"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/query"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/timeline"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/version"
)

// Options configures a session
type Options struct {
	Actor            annotation.Actor
	Vocabulary       composer.Vocabulary
	VisibilityWindow float64
	ThumbnailCount   int
	StrokeColor      string
	StrokeWidth      float64
	Generator        timeline.Generator // Optional thumbnail collaborator
	Logger           *logger.Logger
	Metrics          *metrics.Metrics
	Clock            func() time.Time
}

// Session is the single-actor review state. It is not safe for concurrent
// use; asynchronous results are applied through the session's own methods.
type Session struct {
	actor   annotation.Actor
	vocab   composer.Vocabulary
	history *version.History
	thread  *chat.Thread
	engine  *query.Engine
	capture *region.Capturer
	draft   annotation.Draft
	filter  query.Filter

	selected string
	hovered  string

	playback float64
	playing  bool
	duration float64

	thumbCount int
	generator  timeline.Generator
	thumbs     *timeline.Cache
	previews   *timeline.PreviewCache

	baseLog *logger.Logger
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a session over a version history and chat thread
func New(history *version.History, thread *chat.Thread, opts Options) *Session {
	if thread == nil {
		thread = chat.NewThread(nil)
	}
	if opts.Vocabulary.Assignees == nil && opts.Vocabulary.Labels == nil {
		opts.Vocabulary = composer.DefaultVocabulary()
	}
	if opts.ThumbnailCount <= 0 {
		opts.ThumbnailCount = timeline.DefaultThumbnailCount
	}
	if opts.StrokeColor == "" {
		opts.StrokeColor = "#E57373"
	}
	if opts.StrokeWidth <= 0 {
		opts.StrokeWidth = 4
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewMetrics()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Actor.Role == "" {
		opts.Actor.Role = annotation.RoleClient
	}

	s := &Session{
		actor:      opts.Actor,
		vocab:      opts.Vocabulary,
		history:    history,
		thread:     thread,
		engine:     query.NewEngine(opts.VisibilityWindow),
		capture:    region.NewCapturer(region.NewIDSource(), opts.StrokeColor, opts.StrokeWidth),
		draft:      annotation.NewDraft(),
		filter:     query.NewFilterBuilder(opts.Actor.Role).Build(),
		thumbCount: opts.ThumbnailCount,
		generator:  opts.Generator,
		thumbs:     timeline.NewCache(),
		previews:   timeline.NewPreviewCache(),
		baseLog:    opts.Logger,
		log:        sessionLogger(opts.Logger, opts.Actor),
		metrics:    opts.Metrics,
		now:        opts.Clock,
	}
	s.updateStats()
	return s
}

// History returns the version history
func (s *Session) History() *version.History {
	return s.history
}

// Chat returns the review chat thread
func (s *Session) Chat() *chat.Thread {
	return s.thread
}

// Actor returns the current actor
func (s *Session) Actor() annotation.Actor {
	return s.actor
}

// SetActor switches the acting reviewer. The sidebar viewer follows the role.
func (s *Session) SetActor(a annotation.Actor) {
	s.actor = a
	s.filter.Viewer = a.Role
	if a.Role != annotation.RoleStaff {
		s.filter.InternalOnly = false
		s.draft.Internal = false
	}
	s.log = sessionLogger(s.baseLog, a)
}

// Draft returns a copy of the pending draft
func (s *Session) Draft() annotation.Draft {
	return s.draft
}

// Selected returns the selected annotation id
func (s *Session) Selected() string {
	return s.selected
}

// Hovered returns the hovered annotation id
func (s *Session) Hovered() string {
	return s.hovered
}

// Playback returns the playback position, state and known duration
func (s *Session) Playback() (position float64, playing bool, duration float64) {
	return s.playback, s.playing, s.duration
}

func sessionLogger(base *logger.Logger, a annotation.Actor) *logger.Logger {
	return base.SessionLogger(a.Name).WithFields(map[string]interface{}{"role": string(a.Role)})
}

func (s *Session) active() *version.Version {
	return s.history.Active()
}

func (s *Session) video() bool {
	return s.active().IsVideo()
}

func (s *Session) comparing() bool {
	_, ok := s.history.Comparison()
	return ok
}

// reject records a user-facing rejection and returns it
func (s *Session) reject(op string, err error) error {
	s.log.LogRejected(op, err)
	s.metrics.RecordRejected(string(reviewerr.CodeOf(err)))
	return err
}

// outcome classifies a store error for the session boundary: no-op refusals
// are logged and swallowed, everything else is returned
func (s *Session) outcome(op, id string, start time.Time, err error) error {
	s.log.StoreLogger(s.active().Number).LogMutation(op, id, time.Since(start), err)
	switch {
	case err == nil:
		s.metrics.RecordAnnotationOp(op, "success")
		s.updateStats()
		return nil
	case reviewerr.IsNoop(err):
		s.metrics.RecordAnnotationOp(op, "noop")
		return nil
	default:
		s.metrics.RecordAnnotationOp(op, "error")
		if reviewerr.IsUserFacing(err) {
			return s.reject(op, err)
		}
		return err
	}
}

func (s *Session) updateStats() {
	s.metrics.UpdateSessionStats(s.history.Len(), s.active().Annotations.Len())
}

// resetView clears every piece of transient state tied to the active version
func (s *Session) resetView() {
	s.draft.Reset()
	s.capture.Cancel()
	s.selected = ""
	s.hovered = ""
	s.playback = 0
	s.playing = false
	s.duration = 0
	s.thumbs.Reset()
}
