// Package controller orchestrates sessions and messages between the local
// chat state and the remote service.
//
// The Controller is driven by a single event loop. User actions call its
// methods directly; remote calls are returned as tea.Cmd values that run off
// the loop and come back as result messages through Update. Update and the
// action methods are the only places that mutate state, so the Controller
// needs no locking as long as one goroutine drives it.
package controller

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gennadis/poshana/internal/chat"
	"github.com/gennadis/poshana/internal/client"
	"github.com/gennadis/poshana/internal/session"
)

// MirrorKey is the local slot the active log is mirrored to
const MirrorKey = "chatHistory"

const defaultRefreshDelay = 500 * time.Millisecond

// Service is the remote chat service
type Service interface {
	CreateSession(ctx context.Context) (string, error)
	FetchHistory(ctx context.Context, userID string) ([]chat.Session, error)
	PostMessage(ctx context.Context, req client.PostRequest) (client.PostResponse, error)
	ClearSession(ctx context.Context, sessionID string) error
	DeleteSession(ctx context.Context, sessionID string) error
	EditMessage(ctx context.Context, req client.EditRequest) error
}

// Mirror is a best-effort durable copy of the active log. It is written
// after every change and never read back to rebuild state.
type Mirror interface {
	Save(key string, messages []chat.Message) error
}

// Config carries the identity and presentation settings of the session
type Config struct {
	UserID       string
	Lang         string
	WelcomeText  string
	RefreshDelay time.Duration
}

type Controller struct {
	cfg       Config
	service   Service
	scheduler Scheduler
	mirror    Mirror
	now       func() time.Time

	store *session.Store
	log   *session.Log
	input string

	refreshRequested bool
	refreshScheduled bool
	err              error
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

func WithMirror(m Mirror) Option {
	return func(c *Controller) { c.mirror = m }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller with an empty session store and log
func New(cfg Config, service Service, opts ...Option) *Controller {
	if cfg.WelcomeText == "" {
		cfg.WelcomeText = chat.DefaultWelcomeText
	}
	if cfg.RefreshDelay <= 0 {
		cfg.RefreshDelay = defaultRefreshDelay
	}
	c := &Controller{
		cfg:       cfg,
		service:   service,
		scheduler: TickScheduler{},
		now:       time.Now,
		store:     session.NewStore(),
		log:       session.NewLog(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init seeds the log with the welcome message and requests the first
// history refresh. It is the only initialization path.
func (c *Controller) Init() tea.Cmd {
	c.resetLog([]chat.Message{c.welcome()})
	return c.RequestRefresh()
}

// NewSession asks the service for a fresh session. State changes only when
// the result arrives in Update.
func (c *Controller) NewSession() tea.Cmd {
	service := c.service
	return func() tea.Msg {
		id, err := service.CreateSession(context.Background())
		return SessionCreatedMsg{SessionID: id, Err: err}
	}
}

// LoadSession makes a known session active and shows its messages.
// Unknown ids return a *session.NotFoundError and change nothing.
func (c *Controller) LoadSession(id string) error {
	sess, ok := c.store.Lookup(id)
	if !ok {
		slog.Warn("Session not found", "session_id", id)
		return &session.NotFoundError{SessionID: id}
	}
	c.resetLog(sess.Messages)
	c.store.SetActive(id)
	slog.Debug("session loaded",
		slog.String("session_id", id),
		slog.Int("messages", len(sess.Messages)),
	)
	return nil
}

// Resume makes id active and shows an empty conversation. It is for ids the
// service handed out that the history does not list yet, such as a session
// with no messages.
func (c *Controller) Resume(id string) {
	c.store.SetActive(id)
	c.resetLog([]chat.Message{c.welcome()})
	slog.Debug("session resumed", slog.String("session_id", id))
}

// SetInput replaces the pending input buffer
func (c *Controller) SetInput(text string) {
	c.input = text
}

func (c *Controller) Input() string {
	return c.input
}

// Send sends the pending input buffer
func (c *Controller) Send() tea.Cmd {
	return c.SendMessage(c.input)
}

// SendMessage appends text to the log as a pending user message, clears the
// input buffer and returns the command that posts it. Blank text is ignored.
func (c *Controller) SendMessage(text string) tea.Cmd {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentAt := c.now()
	index := c.log.Append(chat.NewUserMessage(text, sentAt))
	c.saveMirror()
	c.input = ""

	activeID, _ := c.store.ActiveID()
	req := client.PostRequest{
		Message:   text,
		UserID:    c.cfg.UserID,
		SessionID: activeID,
		Lang:      c.cfg.Lang,
	}
	epoch := c.log.Epoch()
	service := c.service
	return func() tea.Msg {
		resp, err := service.PostMessage(context.Background(), req)
		return MessageSentMsg{
			Response:  resp,
			Err:       err,
			epoch:     epoch,
			index:     index,
			sessionID: req.SessionID,
			text:      text,
			sentAt:    sentAt,
		}
	}
}

// RequestRefresh marks the history as stale and schedules a refresh unless
// one is already pending. Several requests before the tick collapse into
// one fetch.
func (c *Controller) RequestRefresh() tea.Cmd {
	c.refreshRequested = true
	if c.refreshScheduled {
		return nil
	}
	c.refreshScheduled = true
	return c.scheduler.Schedule(c.cfg.RefreshDelay, RefreshTickMsg{})
}

// Refresh fetches the history right away
func (c *Controller) Refresh() tea.Cmd {
	c.refreshRequested = false
	service := c.service
	userID := c.cfg.UserID
	return func() tea.Msg {
		sessions, err := service.FetchHistory(context.Background(), userID)
		return HistoryLoadedMsg{Sessions: sessions, Err: err}
	}
}

// ClearSession removes the messages of a session on the service
func (c *Controller) ClearSession(id string) tea.Cmd {
	service := c.service
	return func() tea.Msg {
		err := service.ClearSession(context.Background(), id)
		return SessionChangedMsg{Op: "clear", SessionID: id, Err: err}
	}
}

// DeleteSession removes a session on the service
func (c *Controller) DeleteSession(id string) tea.Cmd {
	service := c.service
	return func() tea.Msg {
		err := service.DeleteSession(context.Background(), id)
		return SessionChangedMsg{Op: "delete", SessionID: id, Err: err}
	}
}

// EditMessage replaces the text of a stored message on the service
func (c *Controller) EditMessage(sessionID, oldText, newText string) tea.Cmd {
	service := c.service
	req := client.EditRequest{SessionID: sessionID, OldMessage: oldText, NewMessage: newText}
	return func() tea.Msg {
		err := service.EditMessage(context.Background(), req)
		return SessionChangedMsg{Op: "edit", SessionID: sessionID, Err: err}
	}
}

// Update applies a result message and returns any follow-up command
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SessionCreatedMsg:
		return c.handleSessionCreated(msg)
	case MessageSentMsg:
		return c.handleMessageSent(msg)
	case HistoryLoadedMsg:
		c.handleHistoryLoaded(msg)
	case RefreshTickMsg:
		c.refreshScheduled = false
		if c.refreshRequested {
			return c.Refresh()
		}
	case SessionChangedMsg:
		if msg.Err != nil {
			slog.Error("Failed to change session", "op", msg.Op, "session_id", msg.SessionID, "error", msg.Err)
			c.err = msg.Err
			return nil
		}
		c.err = nil
		return c.RequestRefresh()
	}
	return nil
}

func (c *Controller) handleSessionCreated(msg SessionCreatedMsg) tea.Cmd {
	if msg.Err != nil {
		slog.Error("Failed to create new chat", "error", msg.Err)
		c.err = msg.Err
		return nil
	}
	c.err = nil
	c.store.SetActive(msg.SessionID)
	c.resetLog([]chat.Message{c.welcome()})
	slog.Info("New session created", "session_id", msg.SessionID)
	return c.RequestRefresh()
}

func (c *Controller) handleMessageSent(msg MessageSentMsg) tea.Cmd {
	current := msg.epoch == c.log.Epoch()

	if msg.Err != nil {
		slog.Error("Failed to send message", "error", msg.Err)
		if current {
			c.log.SetStatus(msg.index, chat.StatusFailed)
			c.saveMirror()
		}
		return nil
	}

	if !current {
		if c.reopened(msg) {
			c.adoptLateReply(msg)
			c.err = nil
			return c.RequestRefresh()
		}
		// the log was replaced while the message was in flight
		slog.Warn("Discarding reply for a log that is no longer shown",
			"session_id", msg.Response.SessionID,
		)
		return c.RequestRefresh()
	}

	c.err = nil
	c.store.SetActive(msg.Response.SessionID)
	c.log.SetStatus(msg.index, chat.StatusConfirmed)
	c.log.Append(chat.NewAssistantMessage(msg.Response.Response, c.now()))
	c.saveMirror()
	return c.RequestRefresh()
}

// reopened reports whether the log was reset onto the same session the
// message was posted to
func (c *Controller) reopened(msg MessageSentMsg) bool {
	if msg.sessionID == "" || msg.Response.SessionID != msg.sessionID {
		return false
	}
	activeID, ok := c.store.ActiveID()
	return ok && activeID == msg.sessionID
}

// adoptLateReply appends a reply to a reopened log. The reloaded history may
// already hold the exchange, or only the question, or neither.
func (c *Controller) adoptLateReply(msg MessageSentMsg) {
	messages := c.log.Messages()
	n := len(messages)
	if n >= 2 && isMessage(messages[n-2], chat.SenderUser, msg.text) &&
		isMessage(messages[n-1], chat.SenderAssistant, msg.Response.Response) {
		return
	}
	if n == 0 || !isMessage(messages[n-1], chat.SenderUser, msg.text) {
		c.log.Append(chat.NewUserMessage(msg.text, msg.sentAt).WithStatus(chat.StatusConfirmed))
	}
	c.log.Append(chat.NewAssistantMessage(msg.Response.Response, c.now()))
	c.saveMirror()
	slog.Debug("late reply adopted", slog.String("session_id", msg.sessionID))
}

func isMessage(m chat.Message, sender chat.Sender, text string) bool {
	return m.Sender == sender && m.Text == text
}

func (c *Controller) handleHistoryLoaded(msg HistoryLoadedMsg) {
	if msg.Err != nil {
		slog.Error("Failed to fetch chat history", "error", msg.Err)
		return
	}
	c.err = nil
	c.store.Replace(msg.Sessions)
	slog.Debug("history refreshed", slog.Int("sessions", len(msg.Sessions)))
}

func (c *Controller) welcome() chat.Message {
	return chat.NewAssistantMessage(c.cfg.WelcomeText, c.now())
}

func (c *Controller) resetLog(messages []chat.Message) {
	c.log.Reset(messages)
	c.saveMirror()
}

func (c *Controller) saveMirror() {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Save(MirrorKey, c.log.Messages()); err != nil {
		slog.Warn("Failed to mirror chat log", "error", err)
	}
}

// Messages returns the active log
func (c *Controller) Messages() []chat.Message {
	return c.log.Messages()
}

// Sessions returns the sessions known from the last refresh
func (c *Controller) Sessions() []chat.Session {
	return c.store.Sessions()
}

func (c *Controller) ActiveSessionID() (string, bool) {
	return c.store.ActiveID()
}

func (c *Controller) RefreshRequested() bool {
	return c.refreshRequested
}

// Err returns the last surfaced failure of a session operation. The next
// successful remote result clears it.
func (c *Controller) Err() error {
	return c.err
}

// Transcript renders the active log for sharing
func (c *Controller) Transcript() string {
	return chat.Transcript(c.log.Messages())
}
