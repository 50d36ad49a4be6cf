package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Veraticus/marketpulse/internal/resource"
)

// Notifier prints resource notices as styled lines.
type Notifier struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewNotifier creates a notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{writer: w}
}

// Notify implements resource.Notifier.
func (n *Notifier) Notify(notice resource.Notice) {
	var line string
	switch notice.Level {
	case resource.LevelSuccess:
		line = FormatSuccess(notice.Message)
	case resource.LevelError:
		line = FormatError(notice.Message)
	default:
		line = FormatInfo(notice.Message)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintln(n.writer, line); err != nil {
		slog.Warn("Failed to write notice", "error", err)
	}
}

// ReportedError marks an error the user has already been told about.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// Reported wraps err as already shown. It returns nil for nil.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &ReportedError{Err: err}
}

// WasReported reports whether err was already shown to the user.
func WasReported(err error) bool {
	var r *ReportedError
	return errors.As(err, &r)
}
