package voice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// Bridge owns the listening and speaking state. Recognition is single-shot:
// idle -> listening -> idle. Audio output is exclusive: a new utterance
// cancels the current one and waits for it to stop before starting.
type Bridge struct {
	recognizer  Recognizer
	synthesizer Synthesizer

	mu           sync.Mutex
	listening    bool
	cancelListen context.CancelFunc
	speaking     bool
	cancelSpeech context.CancelFunc
	speechDone   chan struct{}

	// serializes Speak so two callers cannot both start an utterance
	speakMu sync.Mutex
	wg      sync.WaitGroup
}

// NewBridge creates a Bridge. A nil recognizer or synthesizer is treated
// as unavailable.
func NewBridge(recognizer Recognizer, synthesizer Synthesizer) *Bridge {
	if recognizer == nil {
		recognizer = Unavailable{}
	}
	if synthesizer == nil {
		synthesizer = Unavailable{}
	}
	return &Bridge{recognizer: recognizer, synthesizer: synthesizer}
}

func (b *Bridge) CanListen() bool {
	return b.recognizer.Available()
}

func (b *Bridge) CanSpeak() bool {
	return b.synthesizer.Available()
}

func (b *Bridge) Listening() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listening
}

func (b *Bridge) Speaking() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speaking
}

// StartListening captures one utterance in lang. onResult receives a
// non-empty transcript; onEnd fires exactly once when capture ends, after
// the listening flag has been cleared. Both run on the capture goroutine.
func (b *Bridge) StartListening(lang string, onResult func(string), onEnd func(error)) (CancelFunc, error) {
	if !b.recognizer.Available() {
		return nil, ErrCapabilityUnavailable
	}

	b.mu.Lock()
	if b.listening {
		b.mu.Unlock()
		return nil, ErrAlreadyListening
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.listening = true
	b.cancelListen = cancel
	b.mu.Unlock()

	slog.Debug("listening started", slog.String("lang", lang))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()

		text, err := b.recognizer.Listen(ctx, lang)
		text = strings.TrimSpace(text)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if err != nil {
			slog.Error("Failed to recognize speech", "error", err)
		} else if text != "" && onResult != nil {
			onResult(text)
		}

		b.mu.Lock()
		b.listening = false
		b.cancelListen = nil
		b.mu.Unlock()

		if onEnd != nil {
			onEnd(err)
		}
	}()

	return CancelFunc(cancel), nil
}

// Speak starts speaking text. Any utterance in progress is cancelled first.
// The returned CancelFunc stops this utterance and waits for it to end.
func (b *Bridge) Speak(text string) (CancelFunc, error) {
	if !b.synthesizer.Available() {
		return nil, ErrCapabilityUnavailable
	}

	b.speakMu.Lock()
	defer b.speakMu.Unlock()

	b.stopSpeaking()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	b.mu.Lock()
	b.speaking = true
	b.cancelSpeech = cancel
	b.speechDone = done
	b.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		err := b.synthesizer.Speak(ctx, text)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Failed to synthesize speech", "error", err)
		}

		b.mu.Lock()
		if b.speechDone == done {
			b.speaking = false
			b.cancelSpeech = nil
			b.speechDone = nil
		}
		b.mu.Unlock()
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

// SpeechDone returns a channel closed when the current utterance ends. It
// is already closed when nothing is being spoken.
func (b *Bridge) SpeechDone() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.speechDone == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return b.speechDone
}

// Stop cancels listening and speaking and waits for both to finish
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancelListen := b.cancelListen
	b.mu.Unlock()
	if cancelListen != nil {
		cancelListen()
	}

	b.speakMu.Lock()
	b.stopSpeaking()
	b.speakMu.Unlock()

	b.wg.Wait()
}

func (b *Bridge) stopSpeaking() {
	b.mu.Lock()
	cancel := b.cancelSpeech
	done := b.speechDone
	b.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
