package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gennadis/poshana/internal/chat"
)

// Sender values used on the wire
const (
	wireSenderUser = "user"
	wireSenderBot  = "bot"
)

type NewSessionResponse struct {
	SessionID string `json:"session_id"`
}

type HistoryResponse struct {
	ChatSessions []HistorySession `json:"chat_sessions"`
}

type HistorySession struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}

type HistoryMessage struct {
	Message   string   `json:"message"`
	Sender    string   `json:"sender"`
	Timestamp WireTime `json:"timestamp"`
}

// PostRequest is a user message sent to the service. An empty SessionID
// lets the service assign one.
type PostRequest struct {
	Message   string
	UserID    string
	SessionID string
	Lang      string
}

type postMessageBody struct {
	Message   string  `json:"message"`
	UserID    string  `json:"user_id"`
	SessionID *string `json:"session_id"`
	Lang      string  `json:"lang"`
}

// PostResponse carries the assistant reply and the session it was stored
// under, which may differ from the requested one
type PostResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
}

// postResponseBody tells a missing response field apart from an empty one
type postResponseBody struct {
	SessionID string  `json:"session_id"`
	Response  *string `json:"response"`
}

type EditRequest struct {
	SessionID  string `json:"session_id"`
	OldMessage string `json:"old_message"`
	NewMessage string `json:"new_message"`
}

// WireTime accepts the timestamp layouts the service is known to emit:
// RFC 1123 (HTTP date), RFC 3339, naive ISO 8601 and unix seconds.
type WireTime struct {
	time.Time
}

var wireTimeLayouts = []string{
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func (t *WireTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] != '"' {
		var seconds float64
		if err := json.Unmarshal(data, &seconds); err != nil {
			return fmt.Errorf("invalid timestamp %s: %w", data, err)
		}
		whole, frac := math.Modf(seconds)
		t.Time = time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// the timestamp is informational, an odd format must not lose the message
	slog.Warn("Unrecognized timestamp format, leaving it empty", "timestamp", raw)
	t.Time = time.Time{}
	return nil
}

func (t WireTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(http.TimeFormat))
}

func senderFromWire(sender string) chat.Sender {
	switch sender {
	case wireSenderUser:
		return chat.SenderUser
	case wireSenderBot, string(chat.SenderAssistant):
		return chat.SenderAssistant
	default:
		slog.Warn("Unknown message sender, treating as assistant", "sender", sender)
		return chat.SenderAssistant
	}
}

func (s HistorySession) toSession() chat.Session {
	sess := chat.Session{
		ID:       s.SessionID,
		Messages: make([]chat.Message, 0, len(s.Messages)),
	}
	for _, m := range s.Messages {
		sess.Messages = append(sess.Messages, chat.Message{
			Text:      m.Message,
			Sender:    senderFromWire(m.Sender),
			Timestamp: m.Timestamp.Time,
			Status:    chat.StatusConfirmed,
		})
	}
	return sess
}
