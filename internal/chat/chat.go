package chat

import "time"

// DefaultWelcomeText seeds the message log of every new session
const DefaultWelcomeText = "Hello there! 👋 Welcome to our nutrition-focused chatbot! I'm here to help you navigate the world of children's nutrition and provide personalized advice for your little one. Let's get started!"

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Status tracks delivery of an optimistically appended message
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Message represents a single chat message
type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
}

// NewUserMessage creates a user message awaiting server confirmation
func NewUserMessage(text string, now time.Time) Message {
	return Message{
		Text:      text,
		Sender:    SenderUser,
		Timestamp: now,
		Status:    StatusPending,
	}
}

// NewAssistantMessage creates an assistant message. Assistant messages only
// ever come from the service, so they are confirmed on creation.
func NewAssistantMessage(text string, now time.Time) Message {
	return Message{
		Text:      text,
		Sender:    SenderAssistant,
		Timestamp: now,
		Status:    StatusConfirmed,
	}
}

// WithStatus returns a copy of the message with the given status
func (m Message) WithStatus(status Status) Message {
	m.Status = status
	return m
}

func (m Message) FromUser() bool {
	return m.Sender == SenderUser
}
