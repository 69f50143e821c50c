package voice

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// LangPlaceholder in recognizer arguments is replaced with the capture language
const LangPlaceholder = "{lang}"

// CommandRecognizer runs a host program that records one utterance and
// prints its transcript on stdout
type CommandRecognizer struct {
	Command string
	Args    []string
}

// CommandSynthesizer runs a host program that reads text on stdin and
// speaks it, e.g. "espeak --stdin"
type CommandSynthesizer struct {
	Command string
	Args    []string
}

// NewRecognizer parses a command line such as "listen --lang {lang}". An
// empty line yields an unavailable recognizer.
func NewRecognizer(line string) Recognizer {
	name, args := splitCommand(line)
	if name == "" {
		return Unavailable{}
	}
	return CommandRecognizer{Command: name, Args: args}
}

// NewSynthesizer parses a command line. An empty line yields an unavailable
// synthesizer.
func NewSynthesizer(line string) Synthesizer {
	name, args := splitCommand(line)
	if name == "" {
		return Unavailable{}
	}
	return CommandSynthesizer{Command: name, Args: args}
}

func splitCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func (r CommandRecognizer) Available() bool {
	return onPath(r.Command)
}

func (r CommandRecognizer) Listen(ctx context.Context, lang string) (string, error) {
	if !r.Available() {
		return "", ErrCapabilityUnavailable
	}

	args := make([]string, len(r.Args))
	for i, arg := range r.Args {
		args[i] = strings.ReplaceAll(arg, LangPlaceholder, lang)
	}

	out, err := exec.CommandContext(ctx, r.Command, args...).Output()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("recognizer %s: %w", r.Command, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (s CommandSynthesizer) Available() bool {
	return onPath(s.Command)
}

func (s CommandSynthesizer) Speak(ctx context.Context, text string) error {
	if !s.Available() {
		return ErrCapabilityUnavailable
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = strings.NewReader(text)
	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("synthesizer %s: %w", s.Command, err)
	}
	return nil
}

func onPath(name string) bool {
	if name == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
