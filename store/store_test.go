package store_test

import (
	"context"
	"strings"
	"testing"

	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/kv"
	"github.com/psalmlegal/psalm/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(kv.NewMemory(), nil)
}

func TestCreateSession_ReusesEmpty(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	first := s.CreateSession(nil)
	second := s.CreateSession(nil)

	assert.Equal(t, first, second)
	assert.Len(t, s.Sessions(), 1)
	assert.Equal(t, first, s.CurrentID())
}

func TestCreateSession_ReusesSystemOnlySession(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	preset := psalm.Preset{System: "You are a contract reviewer."}
	id := s.CreateSession(&preset)

	reused := s.CreateSession(nil)
	assert.Equal(t, id, reused)
	assert.Len(t, s.Sessions(), 1)
}

func TestCreateSession_PresetForcesNew(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	first := s.CreateSession(nil)
	preset := psalm.Preset{}
	second := s.CreateSession(&preset)

	assert.NotEqual(t, first, second)
	assert.Len(t, s.Sessions(), 2)
	assert.Equal(t, second, s.CurrentID())
}

func TestCreateSession_PresetSeedsSystemMessage(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	preset := psalm.Preset{
		System:       "You are a legal research assistant for US-NY.",
		Prefill:      "Research question: ",
		Jurisdiction: "US-NY",
	}
	id := s.CreateSession(&preset)

	sess, ok := s.Get(id)
	require.True(t, ok)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, psalm.RoleSystem, sess.Messages[0].Role)
	assert.Equal(t, preset.System, sess.Messages[0].Content)
	assert.Equal(t, "US-NY", sess.Jurisdiction)
	assert.Equal(t, "Research question: ", sess.PrefillContent)
	assert.Equal(t, store.DefaultTitle, sess.Title)
}

func TestCreateSession_NewestFirst(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	p := psalm.Preset{System: "a"}
	first := s.CreateSession(&p)
	second := s.CreateSession(&p)

	sessions := s.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, second, sessions[0].ID)
	assert.Equal(t, first, sessions[1].ID)
}

func TestAppendMessage_DerivesTitle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)

	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("What is the statute of limitations?")))

	sess, _ := s.Get(id)
	assert.Equal(t, "What is the statute of limitations?", sess.Title)
}

func TestAppendMessage_TruncatesLongTitle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)

	long := strings.Repeat("a", 80)
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage(long)))

	sess, _ := s.Get(id)
	assert.Equal(t, strings.Repeat("a", 50)+"…", sess.Title)
}

func TestAppendMessage_ShortContentNotTruncated(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)

	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage(strings.Repeat("b", 30))))

	sess, _ := s.Get(id)
	assert.Equal(t, strings.Repeat("b", 30), sess.Title)
	assert.NotContains(t, sess.Title, "…")
}

func TestAppendMessage_TitleOverwritesManualRename(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)

	require.NoError(t, s.RenameSession(id, "My careful name"))
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("hello")))

	sess, _ := s.Get(id)
	assert.Equal(t, "hello", sess.Title)
}

func TestAppendMessage_SecondUserMessageKeepsTitle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)

	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("first")))
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("second")))

	sess, _ := s.Get(id)
	assert.Equal(t, "first", sess.Title)
}

func TestAppendMessage_SystemMessageDoesNotDeriveTitle(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	preset := psalm.Preset{System: "system prompt"}
	id := s.CreateSession(&preset)

	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("user question")))

	sess, _ := s.Get(id)
	assert.Equal(t, "user question", sess.Title)
}

func TestDeleteSession_ClearsCurrentPointer(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)

	require.NoError(t, s.DeleteSession(id))

	assert.Equal(t, "", s.CurrentID())
	assert.Empty(t, s.Sessions())
}

func TestDeleteSession_OtherSessionKeepsCurrent(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	p := psalm.Preset{System: "a"}
	first := s.CreateSession(&p)
	second := s.CreateSession(&p)

	require.NoError(t, s.DeleteSession(first))

	assert.Equal(t, second, s.CurrentID())
}

func TestDeleteSession_Unknown(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	assert.ErrorIs(t, s.DeleteSession("nope"), psalm.ErrSessionNotFound)
}

func TestUpdateSession_ShallowMerge(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("keep me")))

	title := "renamed"
	jur := "US-CA"
	require.NoError(t, s.UpdateSession(id, store.Update{Title: &title, Jurisdiction: &jur}))

	sess, _ := s.Get(id)
	assert.Equal(t, "renamed", sess.Title)
	assert.Equal(t, "US-CA", sess.Jurisdiction)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "keep me", sess.Messages[0].Content)
}

func TestEditMessage(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)
	msg := psalm.NewUserMessage("tpyo")
	require.NoError(t, s.AppendMessage(id, msg))

	require.NoError(t, s.EditMessage(id, msg.ID, "typo"))

	sess, _ := s.Get(id)
	assert.Equal(t, "typo", sess.Messages[0].Content)
}

func TestDeleteMessage(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)
	msg := psalm.NewUserMessage("remove me")
	require.NoError(t, s.AppendMessage(id, msg))

	require.NoError(t, s.DeleteMessage(id, msg.ID))

	sess, _ := s.Get(id)
	assert.Empty(t, sess.Messages)
	assert.ErrorIs(t, s.DeleteMessage(id, msg.ID), psalm.ErrMessageNotFound)
}

func TestRegenerateMessage_ResetsContentAndStreams(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("q")))
	reply := psalm.Message{ID: psalm.NewID(), Role: psalm.RoleAssistant, Content: "old answer"}
	require.NoError(t, s.AppendMessage(id, reply))

	require.NoError(t, s.RegenerateMessage(id, reply.ID))

	sess, _ := s.Get(id)
	assert.Equal(t, "", sess.Messages[1].Content)
	assert.True(t, sess.Messages[1].IsStreaming)
}

func TestDuplicateSession(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	preset := psalm.Preset{System: "sys", Jurisdiction: "US-TX"}
	id := s.CreateSession(&preset)
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("original question")))

	dupID, err := s.DuplicateSession(id)
	require.NoError(t, err)
	require.NotEqual(t, id, dupID)

	dup, ok := s.Get(dupID)
	require.True(t, ok)
	assert.Equal(t, dupID, s.CurrentID())
	assert.Equal(t, "sys", dup.SystemPrompt)
	assert.Equal(t, "US-TX", dup.Jurisdiction)

	orig, _ := s.Get(id)
	var origUser, dupUser *psalm.Message
	for i := range orig.Messages {
		if orig.Messages[i].Role == psalm.RoleUser {
			origUser = &orig.Messages[i]
		}
	}
	require.Equal(t, psalm.RoleSystem, dup.Messages[0].Role)
	assert.Equal(t, "sys", dup.Messages[0].Content)
	for i := range dup.Messages {
		if dup.Messages[i].Role == psalm.RoleUser {
			dupUser = &dup.Messages[i]
		}
	}
	assert.Equal(t, "original question", dup.Title)
	require.NotNil(t, origUser)
	require.NotNil(t, dupUser)
	assert.Equal(t, origUser.Content, dupUser.Content)
	assert.NotEqual(t, origUser.ID, dupUser.ID)
}

func TestClearMessages(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("x")))

	require.NoError(t, s.ClearMessages(id))

	sess, _ := s.Get(id)
	assert.Empty(t, sess.Messages)
}

func TestSetCurrent_Unknown(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	assert.ErrorIs(t, s.SetCurrent("nope"), psalm.ErrSessionNotFound)
}

func TestGenerationGuard(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)

	require.NoError(t, s.BeginGeneration(id))
	assert.True(t, s.Generating(id))
	assert.ErrorIs(t, s.BeginGeneration(id), psalm.ErrGenerationInFlight)

	s.EndGeneration(id)
	assert.False(t, s.Generating(id))
	require.NoError(t, s.BeginGeneration(id))
}

func TestSessions_ReturnsClones(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	id := s.CreateSession(nil)
	require.NoError(t, s.AppendMessage(id, psalm.NewUserMessage("immutable")))

	got := s.Sessions()
	got[0].Messages[0].Content = "mutated"

	sess, _ := s.Get(id)
	assert.Equal(t, "immutable", sess.Messages[0].Content)
}

func TestRehydrate_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kvs := kv.NewMemory()

	s1 := store.New(kvs, nil)
	id := s1.CreateSession(nil)
	require.NoError(t, s1.AppendMessage(id, psalm.NewUserMessage("persisted question")))

	s2 := store.New(kvs, nil)
	s2.Rehydrate(ctx)

	assert.Equal(t, id, s2.CurrentID())
	sess, ok := s2.Get(id)
	require.True(t, ok)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "persisted question", sess.Messages[0].Content)
	assert.Equal(t, "persisted question", sess.Title)
}

func TestRehydrate_ClearsStreamingFlags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kvs := kv.NewMemory()

	// Simulate a crash mid-generation: the persisted blob carries a
	// message still marked streaming.
	s1 := store.New(kvs, nil)
	id := s1.CreateSession(nil)
	require.NoError(t, s1.AppendMessage(id, psalm.NewUserMessage("question")))
	require.NoError(t, s1.AppendMessage(id, psalm.Message{
		ID:          "a1",
		Role:        psalm.RoleAssistant,
		Content:     "partial ans",
		IsStreaming: true,
	}))

	s2 := store.New(kvs, nil)
	s2.Rehydrate(ctx)

	sess, ok := s2.Get(id)
	require.True(t, ok)
	require.Len(t, sess.Messages, 2)
	for _, m := range sess.Messages {
		assert.False(t, m.IsStreaming, "message %s still streaming after reload", m.ID)
	}
	assert.Equal(t, "partial ans", sess.Messages[1].Content)
}

func TestRehydrate_CorruptStateStartsFresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kvs := kv.NewMemory()
	require.NoError(t, kvs.Set(ctx, "psalm_chats_v1", []byte("{not json")))

	s := store.New(kvs, nil)
	s.Rehydrate(ctx)

	assert.Empty(t, s.Sessions())
	assert.Equal(t, "", s.CurrentID())
}

func TestClearAll(t *testing.T) {
	t.Parallel()
	s := newStore(t)
	p := psalm.Preset{System: "a"}
	s.CreateSession(&p)
	s.CreateSession(&p)

	s.ClearAll()

	assert.Empty(t, s.Sessions())
	assert.Equal(t, "", s.CurrentID())
}
