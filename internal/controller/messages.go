package controller

import (
	"time"

	"github.com/gennadis/poshana/internal/chat"
	"github.com/gennadis/poshana/internal/client"
)

// SessionCreatedMsg is the result of NewSession
type SessionCreatedMsg struct {
	SessionID string
	Err       error
}

// MessageSentMsg is the result of SendMessage
type MessageSentMsg struct {
	Response client.PostResponse
	Err      error

	epoch     uint64
	index     int
	sessionID string
	text      string
	sentAt    time.Time
}

// HistoryLoadedMsg is the result of a history refresh
type HistoryLoadedMsg struct {
	Sessions []chat.Session
	Err      error
}

// RefreshTickMsg fires when a scheduled refresh is due
type RefreshTickMsg struct{}

// SessionChangedMsg is the result of a remote clear, delete or edit
type SessionChangedMsg struct {
	Op        string
	SessionID string
	Err       error
}
