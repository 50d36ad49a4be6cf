package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/marketpulse/internal/resource"
	"golang.org/x/term"
)

// ErrInvalidChoice is returned when a menu answer is not one of the options.
var ErrInvalidChoice = errors.New("invalid choice")

// Prompter asks the user for input on a terminal.
type Prompter struct {
	writer io.Writer
	reader *lineReader
	fd     int
	isTTY  bool
}

// NewPrompter creates a prompter. When in is a terminal, secrets are read
// without echo.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	p := &Prompter{reader: newLineReader(in), writer: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.isTTY = true
	}
	return p
}

// Ask prints label and returns the answer, or def when the answer is empty.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt += " [" + def + "]"
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := p.reader.next(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskSecret reads a value without echoing it when possible.
func (p *Prompter) AskSecret(ctx context.Context, label string) (string, error) {
	if !p.isTTY {
		return p.Ask(ctx, label, "")
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	secret, err := term.ReadPassword(p.fd)
	if _, werr := fmt.Fprintln(p.writer); werr != nil {
		slog.Warn("Failed to write newline after secret prompt", "error", werr)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(secret), nil
}

// Choose shows a numbered menu and returns the index picked.
func (p *Prompter) Choose(ctx context.Context, label string, options []string) (int, error) {
	if _, err := fmt.Fprintln(p.writer, BoldStyle.Render(label)); err != nil {
		return 0, fmt.Errorf("failed to write menu: %w", err)
	}
	for i, opt := range options {
		if _, err := fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, opt); err != nil {
			return 0, fmt.Errorf("failed to write menu: %w", err)
		}
	}

	answer, err := p.Ask(ctx, "Choice", "")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, answer)
	}
	return n - 1, nil
}

// Confirm asks a yes/no question; anything but y or yes is a no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" (y/N)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Confirmer adapts the prompter for resource removals. Read errors count as
// a refusal.
func (p *Prompter) Confirmer(ctx context.Context) resource.Confirmer {
	return resource.ConfirmFunc(func(prompt string) bool {
		ok, err := p.Confirm(ctx, prompt)
		if err != nil {
			slog.Debug("Confirmation not answered", "error", err)
			return false
		}
		return ok
	})
}
