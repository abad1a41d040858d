// ABOUTME: Annotation data model for review comments
// ABOUTME: Comments anchored to regions and, for video, a timestamp

package annotation

import (
	"fmt"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
)

// Role is the reviewer role of an author
type Role string

const (
	RoleClient Role = "client"
	RoleStaff  Role = "staff"
)

// CommentType classifies a comment
type CommentType string

const (
	TypeNote     CommentType = "Note"
	TypeBlocker  CommentType = "Blocker"
	TypeQuestion CommentType = "Question"
)

// Status is the resolution state of a comment
type Status string

const (
	StatusOpen     Status = "Open"
	StatusResolved Status = "Resolved"
)

// Toggled flips Open and Resolved
func (s Status) Toggled() Status {
	if s == StatusResolved {
		return StatusOpen
	}
	return StatusResolved
}

// MediaKind is the kind of media a version holds
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MaxReferenceFileSize is the largest accepted attachment (5 MB)
const MaxReferenceFileSize int64 = 5 * 1024 * 1024

// ParseRole parses a role name
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleStaff:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

// ParseCommentType parses a comment type name
func ParseCommentType(s string) (CommentType, error) {
	switch CommentType(s) {
	case TypeNote, TypeBlocker, TypeQuestion:
		return CommentType(s), nil
	default:
		return "", fmt.Errorf("unknown comment type: %s", s)
	}
}

// ParseStatus parses a status name
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOpen, StatusResolved:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// ParseDueDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date
func ParseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: %w", s, err)
	}
	return t, nil
}

// Actor identifies who performs an action
type Actor struct {
	Role Role   `json:"role"`
	Name string `json:"name"`
}

// ReferenceFile is a finalized attachment supplied by the file-read pipeline
type ReferenceFile struct {
	Name        string `json:"name"` // Original file name
	MimeType    string `json:"type"` // MIME type
	DataLocator string `json:"url"`  // Where the file data can be read
	SizeBytes   int64  `json:"size"` // Size in bytes
}

// Validate enforces the attachment size limit
func (f ReferenceFile) Validate() error {
	if f.SizeBytes > MaxReferenceFileSize {
		return reviewerr.Newf(reviewerr.AttachmentSize,
			"File is too large (%s). Max %s.",
			humanize.IBytes(uint64(f.SizeBytes)), humanize.IBytes(uint64(MaxReferenceFileSize)))
	}
	return nil
}

// Annotation is a persisted comment owned by exactly one version
type Annotation struct {
	ID            string          `json:"id"`                      // Opaque unique identifier
	AuthorRole    Role            `json:"authorRole"`              // Author role
	AuthorName    string          `json:"authorName"`              // Author display name
	Text          string          `json:"text"`                    // Comment text, shorthand stripped
	CreatedAt     time.Time       `json:"createdAt"`               // Creation time
	Timestamp     *float64        `json:"timestamp"`               // Video position; nil for general comments
	Regions       []region.Region `json:"regions"`                 // Drawn regions, possibly empty
	CommentType   CommentType     `json:"commentType"`             // Note, Blocker or Question
	Status        Status          `json:"status"`                  // Open or Resolved
	Assignee      *string         `json:"assignee"`                // Optional assignee
	DueDate       *time.Time      `json:"dueDate"`                 // Optional due date
	Labels        []string        `json:"labels"`                  // Label set, insertion ordered
	ReferenceFile *ReferenceFile  `json:"referenceFile,omitempty"` // Optional attachment
	IsInternal    bool            `json:"isInternal"`              // Staff-only comment
}

// HasRegions reports whether the annotation is anchored to any region
func (a *Annotation) HasRegions() bool {
	return len(a.Regions) > 0
}

// HasLabel reports whether the label set contains label
func (a *Annotation) HasLabel(label string) bool {
	return slices.Contains(a.Labels, label)
}

// SortTime is the timeline position used for ordering; nil counts as 0
func (a *Annotation) SortTime() float64 {
	if a.Timestamp == nil {
		return 0
	}
	return *a.Timestamp
}

// AssigneeName returns the assignee or ""
func (a *Annotation) AssigneeName() string {
	if a.Assignee == nil {
		return ""
	}
	return *a.Assignee
}

// Clone returns a deep, independent copy
func (a *Annotation) Clone() *Annotation {
	out := *a
	out.Regions = region.CloneAll(a.Regions)
	out.Labels = slices.Clone(a.Labels)
	if a.Timestamp != nil {
		ts := *a.Timestamp
		out.Timestamp = &ts
	}
	if a.Assignee != nil {
		as := *a.Assignee
		out.Assignee = &as
	}
	if a.DueDate != nil {
		d := *a.DueDate
		out.DueDate = &d
	}
	if a.ReferenceFile != nil {
		rf := *a.ReferenceFile
		out.ReferenceFile = &rf
	}
	return &out
}

// AddLabel adds label to a label set, keeping insertion order
func AddLabel(labels []string, label string) []string {
	if slices.Contains(labels, label) {
		return labels
	}
	return append(labels, label)
}
