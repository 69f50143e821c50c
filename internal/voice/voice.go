// Package voice adapts host speech recognition and synthesis into text
// input and audible output. Both capabilities are optional: when one is
// missing, calls fail with ErrCapabilityUnavailable and callers disable the
// matching affordance.
package voice

import (
	"context"
	"errors"
)

var (
	ErrCapabilityUnavailable = errors.New("voice capability unavailable")
	ErrAlreadyListening      = errors.New("already listening")
)

// Recognizer captures a single utterance and returns its transcript
type Recognizer interface {
	Available() bool
	Listen(ctx context.Context, lang string) (string, error)
}

// Synthesizer speaks text aloud and returns when the utterance has finished
// or ctx is cancelled
type Synthesizer interface {
	Available() bool
	Speak(ctx context.Context, text string) error
}

// CancelFunc stops an operation started by the Bridge
type CancelFunc func()

// Unavailable is the recognizer and synthesizer of a host without voice
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Listen(context.Context, string) (string, error) {
	return "", ErrCapabilityUnavailable
}

func (Unavailable) Speak(context.Context, string) error {
	return ErrCapabilityUnavailable
}
