package psalm_test

import (
	"testing"

	"github.com/psalmlegal/psalm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Empty(t *testing.T) {
	t.Parallel()

	t.Run("no messages", func(t *testing.T) {
		t.Parallel()
		assert.True(t, psalm.Session{}.Empty())
	})

	t.Run("single system message", func(t *testing.T) {
		t.Parallel()
		s := psalm.Session{Messages: []psalm.Message{
			{Role: psalm.RoleSystem, Content: "You are a legal assistant."},
		}}
		assert.True(t, s.Empty())
	})

	t.Run("single user message", func(t *testing.T) {
		t.Parallel()
		s := psalm.Session{Messages: []psalm.Message{
			{Role: psalm.RoleUser, Content: "hello"},
		}}
		assert.False(t, s.Empty())
	})

	t.Run("system plus user", func(t *testing.T) {
		t.Parallel()
		s := psalm.Session{Messages: []psalm.Message{
			{Role: psalm.RoleSystem, Content: "sys"},
			{Role: psalm.RoleUser, Content: "hello"},
		}}
		assert.False(t, s.Empty())
	})
}

func TestSession_Clone_IsDeep(t *testing.T) {
	t.Parallel()
	orig := psalm.Session{
		ID:    "s1",
		Title: "Original",
		Messages: []psalm.Message{
			{ID: "m1", Role: psalm.RoleAssistant, Content: "answer", Citations: []psalm.Citation{
				{ID: "c1", Title: "Smith v Jones", Snippet: "..."},
			}},
		},
		Attachments: []psalm.UploadRef{{ID: "f1", Name: "nda.pdf"}},
	}

	cp := orig.Clone()
	cp.Title = "Changed"
	cp.Messages[0].Content = "mutated"
	cp.Messages[0].Citations[0].Title = "mutated"
	cp.Attachments[0].Name = "mutated"

	assert.Equal(t, "Original", orig.Title)
	assert.Equal(t, "answer", orig.Messages[0].Content)
	assert.Equal(t, "Smith v Jones", orig.Messages[0].Citations[0].Title)
	assert.Equal(t, "nda.pdf", orig.Attachments[0].Name)
}

func TestSession_Clone_PreservesNilSlices(t *testing.T) {
	t.Parallel()
	cp := psalm.Session{ID: "s1"}.Clone()
	assert.Nil(t, cp.Messages)
	assert.Nil(t, cp.Attachments)
}

func TestNewUserMessage(t *testing.T) {
	t.Parallel()
	m := psalm.NewUserMessage("what is consideration?")

	require.NotEmpty(t, m.ID)
	assert.Equal(t, psalm.RoleUser, m.Role)
	assert.Equal(t, "what is consideration?", m.Content)
	assert.False(t, m.Timestamp.IsZero())
	assert.False(t, m.IsStreaming)

	other := psalm.NewUserMessage("again")
	assert.NotEqual(t, m.ID, other.ID)
}

func TestNewSystemMessage(t *testing.T) {
	t.Parallel()
	m := psalm.NewSystemMessage("You are a legal assistant.")
	assert.Equal(t, psalm.RoleSystem, m.Role)
	assert.NotEmpty(t, m.ID)
}
