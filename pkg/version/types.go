// ABOUTME: Version history data model
// ABOUTME: Ordered, append-only snapshots each owning an annotation store

package version

import (
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Version represents one uploaded or restored snapshot of the reviewed asset
type Version struct {
	Number       int                  // Monotonic, unique version number
	Label        string               // Version description
	MediaKind    annotation.MediaKind // Image or video
	MediaLocator string               // Where the media can be loaded from
	CreatedAt    time.Time            // Version creation time
	CreatedBy    string               // User that created the version
	Annotations  *annotation.Store    // Annotation set owned by this version
}

// NewVersion describes a version to publish
type NewVersion struct {
	Label        string
	MediaKind    annotation.MediaKind
	MediaLocator string
	CreatedAt    time.Time
	CreatedBy    string
	Annotations  []*annotation.Annotation
}

// IsVideo reports whether the version holds video media
func (v *Version) IsVideo() bool {
	return v.MediaKind == annotation.MediaVideo
}
