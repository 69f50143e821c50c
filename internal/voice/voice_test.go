package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRecognizer struct {
	text string
	err  error
	// when set, Listen blocks until ctx is cancelled or release is closed
	release chan struct{}
	langs   chan string
}

func (f *fakeRecognizer) Available() bool { return true }

func (f *fakeRecognizer) Listen(ctx context.Context, lang string) (string, error) {
	if f.langs != nil {
		f.langs <- lang
	}
	if f.release != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-f.release:
		}
	}
	return f.text, f.err
}

// fakeSynthesizer records utterance boundaries and blocks each utterance
// until it is cancelled
type fakeSynthesizer struct {
	mu      sync.Mutex
	events  []string
	started chan string
}

func newFakeSynthesizer() *fakeSynthesizer {
	return &fakeSynthesizer{started: make(chan string, 8)}
}

func (f *fakeSynthesizer) Available() bool { return true }

func (f *fakeSynthesizer) Speak(ctx context.Context, text string) error {
	f.record("start " + text)
	f.started <- text
	<-ctx.Done()
	f.record("end " + text)
	return ctx.Err()
}

func (f *fakeSynthesizer) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeSynthesizer) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

type listenResult struct {
	texts []string
	err   error
	ended int
}

func listen(t *testing.T, b *Bridge, lang string) (*listenResult, chan struct{}) {
	t.Helper()
	res := &listenResult{}
	ended := make(chan struct{})
	_, err := b.StartListening(lang,
		func(text string) { res.texts = append(res.texts, text) },
		func(err error) {
			res.err = err
			res.ended++
			close(ended)
		},
	)
	require.NoError(t, err)
	return res, ended
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestBridge_Unavailable(t *testing.T) {
	b := NewBridge(nil, nil)
	assert.False(t, b.CanListen())
	assert.False(t, b.CanSpeak())

	_, err := b.StartListening("en", nil, nil)
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)
	_, err = b.Speak("hello")
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)
	assert.False(t, b.Listening())
	assert.False(t, b.Speaking())

	b.Stop()
}

func TestBridge_ListenDeliversTranscript(t *testing.T) {
	rec := &fakeRecognizer{text: "  what should I eat  ", langs: make(chan string, 1)}
	b := NewBridge(rec, nil)

	res, ended := listen(t, b, "fr")
	waitClosed(t, ended)

	assert.Equal(t, "fr", <-rec.langs)
	assert.Equal(t, []string{"what should I eat"}, res.texts)
	assert.NoError(t, res.err)
	assert.Equal(t, 1, res.ended)
	assert.False(t, b.Listening())
	b.Stop()
}

func TestBridge_ListenEmptyTranscript(t *testing.T) {
	b := NewBridge(&fakeRecognizer{text: "   "}, nil)

	res, ended := listen(t, b, "en")
	waitClosed(t, ended)

	assert.Empty(t, res.texts)
	assert.Equal(t, 1, res.ended)
	b.Stop()
}

func TestBridge_ListenFailureStillEnds(t *testing.T) {
	boom := errors.New("no microphone")
	b := NewBridge(&fakeRecognizer{text: "ignored", err: boom}, nil)

	res, ended := listen(t, b, "en")
	waitClosed(t, ended)

	assert.Empty(t, res.texts)
	assert.ErrorIs(t, res.err, boom)
	assert.False(t, b.Listening())
	b.Stop()
}

func TestBridge_ListenIsSingleShot(t *testing.T) {
	rec := &fakeRecognizer{text: "hi", release: make(chan struct{})}
	b := NewBridge(rec, nil)

	res, ended := listen(t, b, "en")
	assert.True(t, b.Listening())

	_, err := b.StartListening("en", nil, nil)
	assert.ErrorIs(t, err, ErrAlreadyListening)

	close(rec.release)
	waitClosed(t, ended)
	assert.Equal(t, []string{"hi"}, res.texts)
	assert.False(t, b.Listening())

	// back to idle, a new capture may start
	rec.release = nil
	_, again := listen(t, b, "en")
	waitClosed(t, again)
	b.Stop()
}

func TestBridge_CancelListening(t *testing.T) {
	rec := &fakeRecognizer{text: "late", release: make(chan struct{})}
	b := NewBridge(rec, nil)

	res := &listenResult{}
	ended := make(chan struct{})
	cancel, err := b.StartListening("en",
		func(text string) { res.texts = append(res.texts, text) },
		func(err error) { res.err = err; close(ended) },
	)
	require.NoError(t, err)

	cancel()
	waitClosed(t, ended)
	assert.Empty(t, res.texts)
	assert.NoError(t, res.err, "cancellation is a normal end of capture")
	assert.False(t, b.Listening())
	b.Stop()
}

func TestBridge_SpeakIsExclusive(t *testing.T) {
	synth := newFakeSynthesizer()
	b := NewBridge(nil, synth)

	_, err := b.Speak("first")
	require.NoError(t, err)
	assert.Equal(t, "first", <-synth.started)
	assert.True(t, b.Speaking())

	cancel, err := b.Speak("second")
	require.NoError(t, err)
	assert.Equal(t, "second", <-synth.started)
	assert.True(t, b.Speaking())

	assert.Equal(t, []string{"start first", "end first", "start second"}, synth.Events())

	cancel()
	assert.False(t, b.Speaking())
	assert.Equal(t, []string{"start first", "end first", "start second", "end second"}, synth.Events())
	b.Stop()
}

func TestBridge_SpeechDone(t *testing.T) {
	synth := newFakeSynthesizer()
	b := NewBridge(nil, synth)

	waitClosed(t, b.SpeechDone())

	_, err := b.Speak("hello")
	require.NoError(t, err)
	<-synth.started
	done := b.SpeechDone()

	select {
	case <-done:
		t.Fatal("speech ended early")
	default:
	}

	b.Stop()
	waitClosed(t, done)
	assert.False(t, b.Speaking())
}

func TestBridge_StopWhileListening(t *testing.T) {
	rec := &fakeRecognizer{release: make(chan struct{})}
	b := NewBridge(rec, nil)

	_, ended := listen(t, b, "en")
	b.Stop()
	waitClosed(t, ended)
	assert.False(t, b.Listening())
}

func TestNewRecognizer(t *testing.T) {
	assert.Equal(t, Unavailable{}, NewRecognizer(""))
	assert.Equal(t, Unavailable{}, NewRecognizer("   "))
	assert.Equal(t, CommandRecognizer{Command: "listen", Args: []string{"--lang", "{lang}"}},
		NewRecognizer("listen --lang {lang}"))
	assert.Equal(t, Unavailable{}, NewSynthesizer(""))
	assert.Equal(t, CommandSynthesizer{Command: "espeak", Args: []string{"--stdin"}},
		NewSynthesizer("espeak --stdin"))
}

func TestCommandRecognizer(t *testing.T) {
	rec := CommandRecognizer{Command: "echo", Args: []string{"hello", "in", LangPlaceholder}}
	require.True(t, rec.Available())

	text, err := rec.Listen(context.Background(), "de")
	require.NoError(t, err)
	assert.Equal(t, "hello in de", text)
}

func TestCommandRecognizer_Missing(t *testing.T) {
	rec := CommandRecognizer{Command: "definitely-not-a-recognizer-binary"}
	assert.False(t, rec.Available())

	_, err := rec.Listen(context.Background(), "en")
	assert.ErrorIs(t, err, ErrCapabilityUnavailable)

	b := NewBridge(rec, nil)
	assert.False(t, b.CanListen())
}

func TestCommandRecognizer_Failure(t *testing.T) {
	rec := CommandRecognizer{Command: "false"}
	_, err := rec.Listen(context.Background(), "en")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "recognizer false")
}

func TestCommandSynthesizer(t *testing.T) {
	synth := CommandSynthesizer{Command: "cat"}
	require.True(t, synth.Available())
	assert.NoError(t, synth.Speak(context.Background(), "hello"))
}

func TestCommandSynthesizer_Cancel(t *testing.T) {
	synth := CommandSynthesizer{Command: "sleep", Args: []string{"10"}}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := synth.Speak(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
