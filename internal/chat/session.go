package chat

const (
	titleLength     = 20
	newSessionTitle = "New Chat"
)

// Session represents a chat session as known by the remote service
type Session struct {
	ID       string
	Messages []Message
}

// Title returns a short label for the session built from its first message
func (s Session) Title() string {
	if len(s.Messages) == 0 {
		return newSessionTitle
	}
	runes := []rune(s.Messages[0].Text)
	if len(runes) > titleLength {
		runes = runes[:titleLength]
	}
	return string(runes) + "..."
}
