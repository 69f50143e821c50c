package session

import (
	"errors"
	"testing"
	"time"

	"github.com/gennadis/poshana/internal/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgs(texts ...string) []chat.Message {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]chat.Message, 0, len(texts))
	for _, text := range texts {
		out = append(out, chat.NewUserMessage(text, now))
	}
	return out
}

func TestNewStore(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.Len())
	_, ok := s.ActiveID()
	assert.False(t, ok)
	assert.Empty(t, s.Sessions())
}

func TestStore_Replace(t *testing.T) {
	s := NewStore()
	s.Replace([]chat.Session{
		{ID: "a", Messages: msgs("one")},
		{ID: "b", Messages: msgs("two")},
	})
	require.Equal(t, 2, s.Len())

	// a refresh is wholesale: "a" disappears, "c" appears
	s.Replace([]chat.Session{
		{ID: "b", Messages: msgs("two", "three")},
		{ID: "c"},
	})
	require.Equal(t, 2, s.Len())

	_, ok := s.Lookup("a")
	assert.False(t, ok)

	b, ok := s.Lookup("b")
	require.True(t, ok)
	assert.Len(t, b.Messages, 2)

	ids := []string{}
	for _, sess := range s.Sessions() {
		ids = append(ids, sess.ID)
	}
	assert.Equal(t, []string{"b", "c"}, ids)
}

func TestStore_ReplaceDeduplicates(t *testing.T) {
	s := NewStore()
	s.Replace([]chat.Session{
		{ID: "a", Messages: msgs("old")},
		{ID: "b"},
		{ID: "a", Messages: msgs("new")},
	})

	require.Equal(t, 2, s.Len())
	sessions := s.Sessions()
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "new", sessions[0].Messages[0].Text)
}

func TestStore_LookupReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Replace([]chat.Session{{ID: "a", Messages: msgs("one")}})

	got, _ := s.Lookup("a")
	got.Messages[0].Text = "mutated"

	again, _ := s.Lookup("a")
	assert.Equal(t, "one", again.Messages[0].Text)
}

func TestStore_ActiveMayBeUnknown(t *testing.T) {
	s := NewStore()
	s.SetActive("fresh")

	id, ok := s.ActiveID()
	assert.True(t, ok)
	assert.Equal(t, "fresh", id)

	_, found := s.Lookup("fresh")
	assert.False(t, found)
}

func TestLog_AppendAndReset(t *testing.T) {
	l := NewLog()
	assert.Equal(t, uint64(0), l.Epoch())

	l.Reset(msgs("welcome"))
	assert.Equal(t, uint64(1), l.Epoch())
	assert.Equal(t, 1, l.Len())

	i := l.Append(msgs("hi")[0])
	assert.Equal(t, 1, i)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, uint64(1), l.Epoch(), "append must not start a new epoch")

	l.Reset(nil)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, uint64(2), l.Epoch())
}

func TestLog_ResetCopiesInput(t *testing.T) {
	in := msgs("a", "b")
	l := NewLog()
	l.Reset(in)
	in[0].Text = "mutated"

	assert.Equal(t, "a", l.Messages()[0].Text)
}

func TestLog_SetStatus(t *testing.T) {
	l := NewLog()
	i := l.Append(msgs("hi")[0])

	assert.True(t, l.SetStatus(i, chat.StatusConfirmed))
	assert.Equal(t, chat.StatusConfirmed, l.Messages()[i].Status)

	assert.False(t, l.SetStatus(5, chat.StatusFailed))
	assert.False(t, l.SetStatus(-1, chat.StatusFailed))
}

func TestNotFoundError(t *testing.T) {
	var err error = &NotFoundError{SessionID: "missing"}
	assert.Equal(t, "session not found: missing", err.Error())

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}
