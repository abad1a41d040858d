// ABOUTME: Version transitions of the review session
// ABOUTME: Switch, restore, publish and comparison selection with view resets

package session

import (
	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/version"
)

// SwitchVersion makes version i active and resets all transient view state
func (s *Session) SwitchVersion(i int) error {
	if err := s.history.SwitchActive(i); err != nil {
		s.log.Debug("switch ignored").Int("index", i).Err(err).Send()
		return nil
	}
	s.resetView()
	s.metrics.VersionSwitchesTotal.Inc()
	s.updateStats()
	s.log.Info("switched version").Int("version", s.active().Number).Send()
	return nil
}

// RestoreVersion copies version i into a new latest version and switches to it
func (s *Session) RestoreVersion(i int) (*version.Version, error) {
	v, err := s.history.RestoreAsNew(i, s.actor.Name, s.now())
	if err != nil {
		s.log.Debug("restore ignored").Int("index", i).Err(err).Send()
		return nil, nil
	}
	s.resetView()
	s.metrics.VersionRestoresTotal.Inc()
	s.updateStats()
	s.log.Info("restored version").Int("version", v.Number).Str("label", v.Label).Send()
	return v, nil
}

// PublishVersion appends an uploaded version and switches to it
func (s *Session) PublishVersion(nv version.NewVersion) *version.Version {
	if nv.CreatedAt.IsZero() {
		nv.CreatedAt = s.now()
	}
	if nv.CreatedBy == "" {
		nv.CreatedBy = s.actor.Name
	}
	v := s.history.Publish(nv)
	s.resetView()
	s.updateStats()
	s.log.Info("published version").Int("version", v.Number).Send()
	return v
}

// SetComparison selects a comparison version, or clears it with nil. A
// comparison cannot coexist with a pending draft, so setting one discards it.
func (s *Session) SetComparison(i *int) error {
	if err := s.history.SetComparison(i); err != nil {
		if reviewerr.IsNoop(err) {
			s.log.Debug("comparison ignored").Err(err).Send()
			return nil
		}
		return err
	}
	if i != nil {
		s.capture.Cancel()
		s.draft.Reset()
	}
	return nil
}
