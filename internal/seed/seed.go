// Package seed loads the initial version history and chat of a review
// session from a JSON fixture validated against an embedded schema.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ibbymorris/collaborative-media-review-tool/internal/reviewerr"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/chat"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/region"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/version"
)

//go:embed schema.json
var schemaJSON string

//go:embed default.json
var defaultJSON []byte

// Fixture is a decoded seed: the version history plus the chat backlog
type Fixture struct {
	History *version.History
	Chat    []*chat.Message
}

// Thread returns a chat thread holding the seeded messages
func (f *Fixture) Thread() *chat.Thread {
	return chat.NewThread(f.Chat)
}

// Times are either absolute (createdAt) or relative to load time
// (createdMinutesAgo), so the bundled demo always looks recent.
type stamp struct {
	CreatedAt         *time.Time `json:"createdAt"`
	CreatedMinutesAgo float64    `json:"createdMinutesAgo"`
}

func (s stamp) resolve(now time.Time) time.Time {
	if s.CreatedAt != nil {
		return *s.CreatedAt
	}
	return now.Add(-time.Duration(s.CreatedMinutesAgo * float64(time.Minute)))
}

type document struct {
	Versions []versionDoc `json:"versions"`
	Chat     []messageDoc `json:"chat"`
}

type versionDoc struct {
	stamp
	Number       int             `json:"number"`
	Label        string          `json:"label"`
	MediaKind    string          `json:"mediaKind"`
	MediaLocator string          `json:"mediaLocator"`
	CreatedBy    string          `json:"createdBy"`
	Annotations  []annotationDoc `json:"annotations"`
}

type annotationDoc struct {
	stamp
	ID          string          `json:"id"`
	AuthorRole  string          `json:"authorRole"`
	AuthorName  string          `json:"authorName"`
	Text        string          `json:"text"`
	Timestamp   *float64        `json:"timestamp"`
	CommentType string          `json:"commentType"`
	Status      string          `json:"status"`
	Assignee    *string         `json:"assignee"`
	DueDate     string          `json:"dueDate"`
	DueInDays   *float64        `json:"dueInDays"`
	Labels      []string        `json:"labels"`
	Regions     []region.Region `json:"regions"`
	IsInternal  bool            `json:"isInternal"`
}

type messageDoc struct {
	stamp
	ID         string `json:"id"`
	AuthorRole string `json:"authorRole"`
	AuthorName string `json:"authorName"`
	Text       string `json:"text"`
}

// Loader validates and converts seed documents
type Loader struct {
	schema *gojsonschema.Schema
}

// NewLoader compiles the embedded fixture schema
func NewLoader() (*Loader, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid seed schema: %w", err)
	}
	return &Loader{schema: schema}, nil
}

// Default returns the bundled three-version demo relative to now
func (l *Loader) Default(now time.Time) (*Fixture, error) {
	return l.Parse(defaultJSON, now)
}

// LoadFile reads a seed document from disk
func (l *Loader) LoadFile(path string, now time.Time) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, reviewerr.Wrap(reviewerr.Seed, "failed to read seed file", err)
	}
	return l.Parse(data, now)
}

// Parse validates a seed document and builds the fixture it describes
func (l *Loader) Parse(data []byte, now time.Time) (*Fixture, error) {
	if err := l.Validate(data); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, reviewerr.Wrap(reviewerr.Seed, "failed to decode seed", err)
	}

	seen := make(map[string]bool)
	versions := make([]*version.Version, 0, len(doc.Versions))
	for _, vd := range doc.Versions {
		v, err := vd.build(now, seen)
		if err != nil {
			return nil, reviewerr.Wrap(reviewerr.Seed, fmt.Sprintf("version %d", vd.Number), err)
		}
		versions = append(versions, v)
	}

	history, err := version.NewHistory(versions)
	if err != nil {
		return nil, reviewerr.Wrap(reviewerr.Seed, "invalid version history", err)
	}

	msgs := make([]*chat.Message, 0, len(doc.Chat))
	for _, md := range doc.Chat {
		role, err := annotation.ParseRole(md.AuthorRole)
		if err != nil {
			return nil, reviewerr.Wrap(reviewerr.Seed, fmt.Sprintf("message %s", md.ID), err)
		}
		msgs = append(msgs, &chat.Message{
			ID:         md.ID,
			AuthorRole: role,
			AuthorName: md.AuthorName,
			Text:       md.Text,
			CreatedAt:  md.resolve(now),
		})
	}

	return &Fixture{History: history, Chat: msgs}, nil
}

// Validate checks a document against the fixture schema
func (l *Loader) Validate(data []byte) error {
	result, err := l.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return reviewerr.Wrap(reviewerr.Seed, "seed is not valid JSON", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return reviewerr.New(reviewerr.Seed, "seed validation failed: "+strings.Join(errs, "; "))
	}
	return nil
}

// build converts one version; seen tracks annotation ids across the whole
// history so no id is reused between versions
func (vd versionDoc) build(now time.Time, seen map[string]bool) (*version.Version, error) {
	kind := annotation.MediaKind(vd.MediaKind)

	items := make([]*annotation.Annotation, 0, len(vd.Annotations))
	for _, ad := range vd.Annotations {
		if seen[ad.ID] {
			return nil, fmt.Errorf("duplicate annotation id %s", ad.ID)
		}
		seen[ad.ID] = true

		a, err := ad.build(kind, now)
		if err != nil {
			return nil, fmt.Errorf("annotation %s: %w", ad.ID, err)
		}
		items = append(items, a)
	}

	return &version.Version{
		Number:       vd.Number,
		Label:        vd.Label,
		MediaKind:    kind,
		MediaLocator: vd.MediaLocator,
		CreatedAt:    vd.resolve(now),
		CreatedBy:    vd.CreatedBy,
		Annotations:  annotation.NewStore(items),
	}, nil
}

func (ad annotationDoc) build(kind annotation.MediaKind, now time.Time) (*annotation.Annotation, error) {
	role, err := annotation.ParseRole(ad.AuthorRole)
	if err != nil {
		return nil, err
	}

	a := &annotation.Annotation{
		ID:          ad.ID,
		AuthorRole:  role,
		AuthorName:  ad.AuthorName,
		Text:        ad.Text,
		CreatedAt:   ad.resolve(now),
		CommentType: annotation.TypeNote,
		Status:      annotation.StatusOpen,
		Assignee:    ad.Assignee,
		Labels:      []string{},
		Regions:     []region.Region{},
		IsInternal:  ad.IsInternal,
	}

	if ad.CommentType != "" {
		if a.CommentType, err = annotation.ParseCommentType(ad.CommentType); err != nil {
			return nil, err
		}
	}
	if ad.Status != "" {
		if a.Status, err = annotation.ParseStatus(ad.Status); err != nil {
			return nil, err
		}
	}

	// Image comments never carry a timeline position.
	if kind == annotation.MediaVideo && ad.Timestamp != nil {
		ts := *ad.Timestamp
		a.Timestamp = &ts
	}

	switch {
	case ad.DueDate != "":
		due, err := annotation.ParseDueDate(ad.DueDate)
		if err != nil {
			return nil, err
		}
		a.DueDate = &due
	case ad.DueInDays != nil:
		due := now.Add(time.Duration(*ad.DueInDays * float64(24*time.Hour)))
		a.DueDate = &due
	}

	for _, l := range ad.Labels {
		a.Labels = annotation.AddLabel(a.Labels, l)
	}

	for _, r := range ad.Regions {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		a.Regions = append(a.Regions, r.Clone())
	}

	return a, nil
}
