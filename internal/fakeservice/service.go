// Package fakeservice is an in-memory stand-in for the remote chat service.
// It speaks the same JSON contract and is used by tests and by the
// serve-fake command for local development.
package fakeservice

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const guestUserID = "guest"

type storedMessage struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

type storedSession struct {
	SessionID string          `json:"session_id"`
	UserID    string          `json:"-"`
	Messages  []storedMessage `json:"messages"`
}

// ReplyFunc produces the assistant reply for a user message
type ReplyFunc func(message, lang string) string

// EchoReply answers every message with "You said: <message>"
func EchoReply(message, _ string) string {
	return "You said: " + message
}

// Service holds sessions in memory. A session created through /chat/new is
// not stored until its first message arrives, like the real service.
type Service struct {
	mu       sync.Mutex
	sessions []*storedSession
	reply    ReplyFunc
	now      func() time.Time
}

func New(reply ReplyFunc) *Service {
	if reply == nil {
		reply = EchoReply
	}
	return &Service{reply: reply, now: time.Now}
}

// Handler returns the HTTP routes of the service
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/chat/", s.postMessage)
	r.Post("/chat/new", s.newSession)
	r.Get("/chat/history/{userID}", s.history)
	r.Delete("/chat/clear/{sessionID}", s.clearSession)
	r.Delete("/chat/delete/{sessionID}", s.deleteSession)
	r.Put("/chat/edit", s.editMessage)
	return r
}

// SessionCount returns the number of stored sessions
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) find(sessionID string) (int, *storedSession) {
	for i, sess := range s.sessions {
		if sess.SessionID == sessionID {
			return i, sess
		}
	}
	return -1, nil
}

func (s *Service) newSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"session_id": uuid.NewString()})
}

type postRequest struct {
	Message   string  `json:"message"`
	UserID    string  `json:"user_id"`
	SessionID *string `json:"session_id"`
	Lang      string  `json:"lang"`
}

func (s *Service) postMessage(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request format"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"response": "Please enter a message."})
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = guestUserID
	}
	sessionID := ""
	if req.SessionID != nil {
		sessionID = *req.SessionID
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	reply := s.reply(message, req.Lang)
	stamp := s.now().UTC().Format(http.TimeFormat)

	s.mu.Lock()
	_, sess := s.find(sessionID)
	if sess == nil {
		sess = &storedSession{SessionID: sessionID, UserID: userID}
		s.sessions = append(s.sessions, sess)
	}
	sess.Messages = append(sess.Messages,
		storedMessage{Message: message, Sender: "user", Timestamp: stamp},
		storedMessage{Message: reply, Sender: "bot", Timestamp: stamp},
	)
	s.mu.Unlock()

	slog.Debug("fake service stored exchange",
		slog.String("session_id", sessionID),
		slog.String("user_id", userID),
	)
	writeJSON(w, http.StatusOK, map[string]string{"response": reply, "session_id": sessionID})
}

func (s *Service) history(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	sessions := make([]storedSession, 0)
	for _, sess := range s.sessions {
		if sess.UserID != userID {
			continue
		}
		c := *sess
		c.Messages = append([]storedMessage{}, sess.Messages...)
		sessions = append(sessions, c)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"chat_sessions": sessions})
}

func (s *Service) clearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	_, sess := s.find(sessionID)
	cleared := sess != nil && len(sess.Messages) > 0
	if cleared {
		sess.Messages = nil
	}
	s.mu.Unlock()

	if !cleared {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Chat session not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat cleared successfully."})
}

func (s *Service) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	i, sess := s.find(sessionID)
	if sess != nil {
		s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	}
	s.mu.Unlock()

	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Chat session not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted successfully."})
}

type editRequest struct {
	SessionID  string `json:"session_id"`
	OldMessage string `json:"old_message"`
	NewMessage string `json:"new_message"`
}

func (s *Service) editMessage(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.SessionID == "" || req.OldMessage == "" || req.NewMessage == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request parameters."})
		return
	}

	s.mu.Lock()
	edited := false
	if _, sess := s.find(req.SessionID); sess != nil {
		for i := range sess.Messages {
			if sess.Messages[i].Message == req.OldMessage {
				sess.Messages[i].Message = req.NewMessage
				edited = true
				break
			}
		}
	}
	s.mu.Unlock()

	if !edited {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Message not found."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat edited successfully."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
