// ABOUTME: Review chat data model
// ABOUTME: Messages posted by reviewers alongside the annotation thread

package chat

import (
	"time"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Message represents a single message in the review chat
type Message struct {
	ID         string          `json:"id"`         // Unique message identifier
	AuthorRole annotation.Role `json:"authorRole"` // Role of the author
	AuthorName string          `json:"authorName"` // Author display name
	Text       string          `json:"text"`       // Message content
	CreatedAt  time.Time       `json:"createdAt"`  // Message timestamp
}

// Query options for listing messages
type Query struct {
	Role  *annotation.Role // Filter by author role
	Since *time.Time       // Messages strictly after this time
	Limit int              // Maximum results, newest kept; 0 means all
}
