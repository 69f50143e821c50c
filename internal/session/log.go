package session

import "github.com/gennadis/poshana/internal/chat"

// Log is the ordered message sequence rendered for the active session.
// Order is append order. Every Reset starts a new epoch so that late
// results aimed at a previous log can be recognized and dropped.
type Log struct {
	messages []chat.Message
	epoch    uint64
}

func NewLog() *Log {
	return &Log{}
}

// Reset replaces the log contents and starts a new epoch
func (l *Log) Reset(messages []chat.Message) {
	l.messages = make([]chat.Message, len(messages))
	copy(l.messages, messages)
	l.epoch++
}

// Append adds a message and returns its index
func (l *Log) Append(msg chat.Message) int {
	l.messages = append(l.messages, msg)
	return len(l.messages) - 1
}

// SetStatus updates the delivery status of the message at index i
func (l *Log) SetStatus(i int, status chat.Status) bool {
	if i < 0 || i >= len(l.messages) {
		return false
	}
	l.messages[i] = l.messages[i].WithStatus(status)
	return true
}

// Messages returns a copy of the log contents
func (l *Log) Messages() []chat.Message {
	out := make([]chat.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Len() int {
	return len(l.messages)
}

func (l *Log) Epoch() uint64 {
	return l.epoch
}
