// ABOUTME: Tests for the composer shorthand parser
// ABOUTME: Verifies keyword labels, mentions, trailing types and stripping

package composer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
)

func TestDeriveFullShorthand(t *testing.T) {
	text := "fix the color grading @Bob #VFX!"
	m := Derive(text, Metadata{}, DefaultVocabulary())

	assert.Contains(t, m.Labels, "Color")
	assert.Contains(t, m.Labels, "VFX")
	require.NotNil(t, m.Assignee)
	assert.Equal(t, "Bob (Staff)", *m.Assignee)
	assert.Equal(t, annotation.TypeBlocker, m.Type)
	assert.False(t, m.Internal)

	assert.Equal(t, "fix the color grading", Strip(text))
}

func TestDeriveIsAdditive(t *testing.T) {
	v := DefaultVocabulary()

	m := Derive("the audio is too loud", Metadata{}, v)
	assert.Equal(t, []string{"Audio"}, m.Labels)

	m = Derive("the music", m, v)
	assert.Equal(t, []string{"Audio"}, m.Labels, "no duplicates")

	m = Derive("", m, v)
	assert.Equal(t, []string{"Audio"}, m.Labels, "labels are never removed")
}

func TestDeriveTypeIsOneWay(t *testing.T) {
	v := DefaultVocabulary()

	m := Derive("is this right?", Metadata{}, v)
	assert.Equal(t, annotation.TypeQuestion, m.Type)

	m = Derive("is this right", m, v)
	assert.Equal(t, annotation.TypeQuestion, m.Type)

	m = Derive("must fix!", m, v)
	assert.Equal(t, annotation.TypeBlocker, m.Type)
}

func TestDeriveInternalPrefix(t *testing.T) {
	v := DefaultVocabulary()

	m := Derive("// staff only note", Metadata{}, v)
	assert.True(t, m.Internal)

	m = Derive("staff only note", m, v)
	assert.True(t, m.Internal)
}

func TestDeriveMention(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"substring match", "ping @char", "Charlie (VFX)"},
		{"case insensitive", "ping @ALICE", "Alice (Client)"},
		{"first mention wins", "@bob and @alice", "Bob (Staff)"},
		{"first match in list wins", "@staff", "Bob (Staff)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Derive(tt.text, Metadata{}, v)
			require.NotNil(t, m.Assignee)
			assert.Equal(t, tt.want, *m.Assignee)
		})
	}

	prior := "Alice (Client)"
	m := Derive("ping @nobody", Metadata{Assignee: &prior}, v)
	require.NotNil(t, m.Assignee)
	assert.Equal(t, "Alice (Client)", *m.Assignee, "unknown mention keeps prior assignee")

	m = Derive("ping @charlie", Metadata{Assignee: &prior}, v)
	assert.Equal(t, "Charlie (VFX)", *m.Assignee, "match overwrites")
}

func TestDeriveLabelShorthandExactMatch(t *testing.T) {
	v := DefaultVocabulary()

	m := Derive("see #general", Metadata{}, v)
	assert.Equal(t, []string{"General"}, m.Labels)

	m = Derive("see #gen", Metadata{}, v)
	assert.Empty(t, m.Labels)
}

func TestDeriveDoesNotAliasPrior(t *testing.T) {
	prior := Metadata{Labels: make([]string, 1, 4)}
	prior.Labels[0] = "Edit"

	m := Derive("color", prior, DefaultVocabulary())
	assert.Equal(t, []string{"Edit", "Color"}, m.Labels)
	assert.Equal(t, []string{"Edit"}, prior.Labels)
	assert.Equal(t, annotation.TypeNote, m.Type)
}

func TestStrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"// internal note", "internal note"},
		{"what? really!", "what really"},
		{"@bob #vfx", ""},
		{"   plain   ", "plain"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Strip(tt.in), tt.in)
	}
}

func TestVocabularyValidate(t *testing.T) {
	assert.NoError(t, DefaultVocabulary().Validate())

	v := DefaultVocabulary()
	v.Rules = append(v.Rules, LabelRule{Label: "Music", Keywords: []string{"song"}})
	assert.Error(t, v.Validate())
}

func TestMetadataRoundTripThroughDraft(t *testing.T) {
	d := annotation.NewDraft()
	m := Derive("fix the color @alice?", FromDraft(&d), DefaultVocabulary())
	m.ApplyTo(&d)

	assert.Equal(t, annotation.TypeQuestion, d.Type)
	assert.Equal(t, []string{"Color"}, d.Labels)
	require.NotNil(t, d.Assignee)
	assert.Equal(t, "Alice (Client)", *d.Assignee)
}
