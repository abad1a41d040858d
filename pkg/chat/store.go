// ABOUTME: In-memory review chat thread
// ABOUTME: Handles posting and ordered retrieval of messages

package chat

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

// Thread holds the chat messages of a review session in posting order
type Thread struct {
	messages []*Message
}

// NewThread creates a thread seeded with existing messages
func NewThread(seed []*Message) *Thread {
	msgs := slices.Clone(seed)
	slices.SortStableFunc(msgs, func(a, b *Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return &Thread{messages: msgs}
}

// Post appends a message from actor
func (t *Thread) Post(actor annotation.Actor, text string, now time.Time) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, reviewerr.New(reviewerr.EmptyComment, "Message cannot be empty.")
	}

	msg := &Message{
		ID:         uuid.NewString(),
		AuthorRole: actor.Role,
		AuthorName: actor.Name,
		Text:       text,
		CreatedAt:  now,
	}
	t.messages = append(t.messages, msg)
	return msg, nil
}

// Get returns a message by id
func (t *Thread) Get(id string) (*Message, error) {
	for _, m := range t.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, fmt.Errorf("message not found: %s", id)
}

// Len returns the number of messages
func (t *Thread) Len() int {
	return len(t.messages)
}

// List returns messages matching q in posting order
func (t *Thread) List(q Query) []*Message {
	out := make([]*Message, 0, len(t.messages))
	for _, m := range t.messages {
		if q.Role != nil && m.AuthorRole != *q.Role {
			continue
		}
		if q.Since != nil && !m.CreatedAt.After(*q.Since) {
			continue
		}
		out = append(out, m)
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out
}

// Since returns the messages posted after a time
func (t *Thread) Since(after time.Time) []*Message {
	return t.List(Query{Since: &after})
}
