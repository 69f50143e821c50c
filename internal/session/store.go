package session

import "github.com/gennadis/poshana/internal/chat"

// Store holds the sessions known from the last history refresh and the
// active session id. The active id may name a session the store has not
// seen yet: a freshly created session only shows up after a refresh.
type Store struct {
	sessions []chat.Session
	index    map[string]int
	activeID string
}

// NewStore creates an empty Store with no active session
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Replace swaps the whole session set. Duplicate ids keep the position of
// their first occurrence and the contents of the last one.
func (s *Store) Replace(sessions []chat.Session) {
	next := make([]chat.Session, 0, len(sessions))
	index := make(map[string]int, len(sessions))
	for _, sess := range sessions {
		sess.Messages = cloneMessages(sess.Messages)
		if i, ok := index[sess.ID]; ok {
			next[i] = sess
			continue
		}
		index[sess.ID] = len(next)
		next = append(next, sess)
	}
	s.sessions = next
	s.index = index
}

// Lookup returns a copy of the session with the given id
func (s *Store) Lookup(id string) (chat.Session, bool) {
	i, ok := s.index[id]
	if !ok {
		return chat.Session{}, false
	}
	sess := s.sessions[i]
	sess.Messages = cloneMessages(sess.Messages)
	return sess, true
}

// Sessions returns a copy of all known sessions in service order
func (s *Store) Sessions() []chat.Session {
	out := make([]chat.Session, len(s.sessions))
	for i, sess := range s.sessions {
		sess.Messages = cloneMessages(sess.Messages)
		out[i] = sess
	}
	return out
}

func (s *Store) Len() int {
	return len(s.sessions)
}

// ActiveID returns the active session id, if any
func (s *Store) ActiveID() (string, bool) {
	return s.activeID, s.activeID != ""
}

func (s *Store) SetActive(id string) {
	s.activeID = id
}

func cloneMessages(messages []chat.Message) []chat.Message {
	if messages == nil {
		return nil
	}
	out := make([]chat.Message, len(messages))
	copy(out, messages)
	return out
}
