package chat

import "strings"

// Transcript renders messages as plain "You: ..." / "Bot: ..." lines for sharing
func Transcript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := "Bot"
		if msg.FromUser() {
			label = "You"
		}
		lines = append(lines, label+": "+msg.Text)
	}
	return strings.Join(lines, "\n")
}
