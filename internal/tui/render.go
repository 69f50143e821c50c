package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/gennadis/poshana/internal/chat"
)

const timeLayout = "15:04"

// NewRenderer creates the markdown renderer used for assistant replies
func NewRenderer(width int) *glamour.TermRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// RenderMessages formats a message log. Assistant replies are rendered as
// markdown when renderer is not nil.
func RenderMessages(messages []chat.Message, renderer *glamour.TermRenderer) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderHeader(msg))
		b.WriteString("\n")
		b.WriteString(renderBody(msg, renderer))
		b.WriteString("\n")
	}
	return b.String()
}

func renderHeader(msg chat.Message) string {
	label := assistantStyle.Render("Bot")
	if msg.FromUser() {
		label = userStyle.Render("You")
	}
	header := label
	if !msg.Timestamp.IsZero() {
		header += " " + timestampStyle.Render(msg.Timestamp.Local().Format(timeLayout))
	}
	switch msg.Status {
	case chat.StatusPending:
		header += " " + statusStyle.Render("sending...")
	case chat.StatusFailed:
		header += " " + errorStyle.Render("not delivered")
	}
	return header
}

func renderBody(msg chat.Message, renderer *glamour.TermRenderer) string {
	if msg.FromUser() || renderer == nil {
		return msg.Text
	}
	out, err := renderer.Render(msg.Text)
	if err != nil {
		return msg.Text
	}
	return strings.Trim(out, "\n")
}
