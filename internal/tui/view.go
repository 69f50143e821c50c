package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	body := m.viewport.View()
	if m.showSessions {
		body = m.renderSessions()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		body,
		inputStyle.Width(max(m.width-2, 10)).Render(m.input.View()),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Poshana")

	label := "New Chat"
	if id, ok := m.ctrl.ActiveSessionID(); ok {
		label = shortID(id)
		for _, sess := range m.ctrl.Sessions() {
			if sess.ID == id {
				label = sess.Title()
				break
			}
		}
	}
	header := title + " " + statusStyle.Render(label)

	if m.bridge.Listening() {
		header += " " + badgeStyle.Render("listening")
	}
	if m.bridge.Speaking() {
		header += " " + badgeStyle.Render("speaking")
	}
	return header
}

func (m Model) renderSessions() string {
	sessions := m.ctrl.Sessions()
	if len(sessions) == 0 {
		return statusStyle.Render("No conversations yet")
	}

	activeID, _ := m.ctrl.ActiveSessionID()
	lines := make([]string, 0, len(sessions))
	for i, sess := range sessions {
		line := fmt.Sprintf("%s  %s", sess.Title(), timestampStyle.Render(shortID(sess.ID)))
		if sess.ID == activeID {
			line += " *"
		}
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}

	height := max(m.viewport.Height, 1)
	return lipgloss.NewStyle().Height(height).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	var status string
	if text := m.errorText(); text != "" {
		status = errorStyle.Render(text)
	} else if m.status != "" {
		status = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, status, helpStyle.Render(m.helpText()))
}

// helpText lists the bindings usable right now. Voice bindings only show
// when the host supports them.
func (m Model) helpText() string {
	if m.showSessions {
		return "↑/↓ select • enter open • d delete • esc back"
	}

	keys := []string{"enter send", "tab sessions", "ctrl+n new"}
	if m.bridge.CanListen() {
		keys = append(keys, "ctrl+r listen")
	}
	if m.bridge.CanSpeak() {
		keys = append(keys, "ctrl+s speak")
	}
	if m.bridge.CanListen() || m.bridge.CanSpeak() {
		keys = append(keys, "ctrl+x stop")
	}
	keys = append(keys, "ctrl+y share", "ctrl+l clear", "esc quit")
	return strings.Join(keys, " • ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
