package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gennadis/poshana/internal/chat"
)

func newTestSlots(t *testing.T) *Slots {
	t.Helper()
	db, err := NewSqliteDB(filepath.Join(t.TempDir(), "data", "poshana.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	slots, err := NewSlots(db)
	require.NoError(t, err)
	return slots
}

func TestSlots_ReadMissing(t *testing.T) {
	slots := newTestSlots(t)

	value, err := slots.Read("nothing")
	require.NoError(t, err)
	assert.Nil(t, value)

	messages, err := slots.Messages("nothing")
	require.NoError(t, err)
	assert.Nil(t, messages)
}

func TestSlots_WriteOverwrites(t *testing.T) {
	slots := newTestSlots(t)

	require.NoError(t, slots.Write("k", []byte("one")))
	require.NoError(t, slots.Write("k", []byte("two")))

	value, err := slots.Read("k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(value))

	var count int
	require.NoError(t, slots.db.Get(&count, "SELECT COUNT(*) FROM slots"))
	assert.Equal(t, 1, count)
}

func TestSlots_Delete(t *testing.T) {
	slots := newTestSlots(t)

	require.NoError(t, slots.Write("k", []byte("v")))
	require.NoError(t, slots.Delete("k"))
	require.NoError(t, slots.Delete("k"), "deleting an empty slot is fine")

	value, err := slots.Read("k")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSlots_SaveMessages(t *testing.T) {
	slots := newTestSlots(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	log := []chat.Message{
		chat.NewAssistantMessage("welcome", at),
		chat.NewUserMessage("hi", at.Add(time.Second)).WithStatus(chat.StatusFailed),
	}
	require.NoError(t, slots.Save("chatHistory", log))

	got, err := slots.Messages("chatHistory")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "welcome", got[0].Text)
	assert.Equal(t, chat.SenderAssistant, got[0].Sender)
	assert.Equal(t, chat.StatusFailed, got[1].Status)
	assert.True(t, at.Add(time.Second).Equal(got[1].Timestamp))

	require.NoError(t, slots.Save("chatHistory", nil))
	got, err = slots.Messages("chatHistory")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSlots_MessagesCorrupt(t *testing.T) {
	slots := newTestSlots(t)

	require.NoError(t, slots.Write("chatHistory", []byte("{not json")))
	_, err := slots.Messages("chatHistory")
	assert.ErrorContains(t, err, "failed to decode slot")
}
