package controller

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler turns a delayed event into a command for the event loop
type Scheduler interface {
	Schedule(delay time.Duration, msg tea.Msg) tea.Cmd
}

// TickScheduler delivers msg after delay using the bubbletea timer
type TickScheduler struct{}

func (TickScheduler) Schedule(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return msg
	})
}

// ImmediateScheduler delivers msg as soon as the command runs. Useful for
// one-shot commands and tests that do not care about the delay.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(_ time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
