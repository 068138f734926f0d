package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned when a required answer is blank.
var ErrEmptyInput = errors.New("empty input")

// Prompter asks for form values on a terminal.
type Prompter struct {
	reader *NonBlockingReader
	writer io.Writer
	// readSecret reads without echo; nil when input is not a terminal.
	readSecret func() ([]byte, error)
}

// NewPrompter creates a prompter. Secrets are read without echo when
// reader is a terminal.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	p := &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}

	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}

	return p
}

// Ask prompts for a line of text. def is returned for an empty answer.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		answer = def
	}
	return answer, nil
}

// AskRequired is Ask without a default that rejects blank answers.
func (p *Prompter) AskRequired(ctx context.Context, label string) (string, error) {
	answer, err := p.Ask(ctx, label, "")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyInput, label)
	}
	return answer, nil
}

// AskSecret prompts for a password. Surrounding whitespace is kept.
func (p *Prompter) AskSecret(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	if p.readSecret == nil {
		line, err := p.reader.ReadString(ctx, '\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	secret, err := p.readSecret()
	_, _ = fmt.Fprintln(p.writer)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}
