// Package tui is the terminal front end of the chat client
package tui

import (
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/gennadis/poshana/internal/chat"
	"github.com/gennadis/poshana/internal/controller"
	"github.com/gennadis/poshana/internal/voice"
)

const (
	headerHeight = 1
	inputHeight  = 3
	footerHeight = 2
	voiceBuffer  = 4
)

// transcriptMsg carries recognized speech into the input buffer
type transcriptMsg struct {
	Text string
}

type listenEndedMsg struct {
	Err error
}

type speechEndedMsg struct{}

type Model struct {
	ctrl     *controller.Controller
	bridge   *voice.Bridge
	copyText func(string) error
	lang     string

	input    textinput.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	// voice callbacks run off the event loop and report back through here
	voiceEvents chan tea.Msg

	showSessions bool
	cursor       int
	status       string
	width        int
}

type Option func(*Model)

func WithVoice(b *voice.Bridge) Option {
	return func(m *Model) { m.bridge = b }
}

// WithClipboard replaces the system clipboard used by share
func WithClipboard(copyText func(string) error) Option {
	return func(m *Model) { m.copyText = copyText }
}

func New(ctrl *controller.Controller, lang string, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message... (Enter to send, Ctrl+C to exit)"
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = 80
	ti.Focus()

	m := Model{
		ctrl:        ctrl,
		bridge:      voice.NewBridge(nil, nil),
		copyText:    clipboard.WriteAll,
		lang:        lang,
		input:       ti,
		viewport:    viewport.New(80, 20),
		renderer:    NewRenderer(76),
		voiceEvents: make(chan tea.Msg, voiceBuffer),
		width:       80,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.ctrl.Init(), m.waitForVoice())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.showSessions {
			return m.handleSessionKey(msg)
		}
		return m.handleKey(msg)

	case transcriptMsg:
		m.input.SetValue(msg.Text)
		m.input.CursorEnd()
		m.ctrl.SetInput(msg.Text)
		return m, m.waitForVoice()

	case listenEndedMsg:
		m.status = ""
		if msg.Err != nil {
			m.status = "Voice input failed: " + msg.Err.Error()
		}
		return m, m.waitForVoice()

	case speechEndedMsg:
		return m, nil
	}

	cmd := m.ctrl.Update(msg)
	m.refreshViewport()

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, tea.Batch(cmd, inputCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.bridge.Stop()
		return m, tea.Quit

	case "enter":
		m.ctrl.SetInput(m.input.Value())
		cmd := m.ctrl.Send()
		if cmd != nil {
			m.input.Reset()
		}
		m.refreshViewport()
		return m, cmd

	case "tab":
		m.showSessions = true
		m.cursor = 0
		return m, nil

	case "ctrl+n":
		m.status = ""
		return m, m.ctrl.NewSession()

	case "ctrl+r":
		m.startListening()
		return m, nil

	case "ctrl+s":
		return m, m.speakLastReply()

	case "ctrl+x":
		m.bridge.Stop()
		m.status = ""
		return m, nil

	case "ctrl+y":
		m.share()
		return m, nil

	case "ctrl+l":
		if id, ok := m.ctrl.ActiveSessionID(); ok {
			return m, m.ctrl.ClearSession(id)
		}
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return m, cmd
}

func (m Model) handleSessionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.ctrl.Sessions()

	switch msg.String() {
	case "ctrl+c":
		m.bridge.Stop()
		return m, tea.Quit

	case "esc", "tab":
		m.showSessions = false

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(sessions)-1 {
			m.cursor++
		}

	case "enter":
		m.showSessions = false
		if m.cursor >= len(sessions) {
			return m, nil
		}
		if err := m.ctrl.LoadSession(sessions[m.cursor].ID); err != nil {
			m.status = err.Error()
		} else {
			m.status = ""
		}
		m.refreshViewport()

	case "d", "delete":
		if m.cursor < len(sessions) {
			return m, m.ctrl.DeleteSession(sessions[m.cursor].ID)
		}
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.viewport.Width = width
	m.viewport.Height = max(height-headerHeight-inputHeight-footerHeight, 1)
	m.input.Width = max(width-6, 10)
	m.renderer = NewRenderer(max(width-4, 20))
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(RenderMessages(m.ctrl.Messages(), m.renderer))
	m.viewport.GotoBottom()
}

func (m *Model) startListening() {
	if !m.bridge.CanListen() {
		m.status = "Voice input unavailable"
		return
	}
	events := m.voiceEvents
	_, err := m.bridge.StartListening(m.lang,
		func(text string) { events <- transcriptMsg{Text: text} },
		func(err error) { events <- listenEndedMsg{Err: err} },
	)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = "Listening..."
}

func (m *Model) speakLastReply() tea.Cmd {
	if !m.bridge.CanSpeak() {
		m.status = "Voice output unavailable"
		return nil
	}
	text, ok := lastReply(m.ctrl.Messages())
	if !ok {
		return nil
	}
	if _, err := m.bridge.Speak(text); err != nil {
		m.status = err.Error()
		return nil
	}
	done := m.bridge.SpeechDone()
	return func() tea.Msg {
		<-done
		return speechEndedMsg{}
	}
}

func (m *Model) share() {
	if err := m.copyText(m.ctrl.Transcript()); err != nil {
		m.status = "Copy failed: " + err.Error()
		return
	}
	m.status = "Conversation copied to clipboard"
}

func (m Model) waitForVoice() tea.Cmd {
	events := m.voiceEvents
	return func() tea.Msg {
		return <-events
	}
}

func lastReply(messages []chat.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if !messages[i].FromUser() {
			return messages[i].Text, true
		}
	}
	return "", false
}

// errorText reports the last session operation failure, if any
func (m Model) errorText() string {
	if err := m.ctrl.Err(); err != nil {
		return err.Error()
	}
	return ""
}
