package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupted is the cancellation cause of a guarded request stopped by
// Ctrl+C or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

// Guard watches a long-running request such as analysis creation or report
// generation. The server keeps working after the client gives up, so the
// user is told to check the list rather than retry blindly.
type Guard struct {
	w      io.Writer
	cancel context.CancelCauseFunc
	op     string
	once   sync.Once
}

// GuardRequest returns a context canceled with ErrInterrupted on the first
// SIGINT or SIGTERM. Call Release when the request finishes.
func GuardRequest(ctx context.Context, w io.Writer, op string) (context.Context, *Guard) {
	if w == nil {
		w = os.Stderr
	}
	if op == "" {
		op = "Request"
	}

	ctx, cancel := context.WithCancelCause(ctx)
	g := &Guard{w: w, cancel: cancel, op: op}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sig)
		select {
		case <-sig:
			g.Interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx, g
}

// Interrupt stops the request and prints the notice. Only the first call
// has any effect.
func (g *Guard) Interrupt() {
	g.once.Do(func() {
		msg := fmt.Sprintf("\n%s\n%s\n",
			FormatWarning(g.op+" interrupted"),
			FormatInfo("The server may still finish it; check with the list command."))
		if _, err := fmt.Fprint(g.w, msg); err != nil {
			slog.Warn("Failed to write interrupt notice", "error", err)
		}
		g.cancel(ErrInterrupted)
	})
}

// Release frees the signal watcher without reporting anything.
func (g *Guard) Release() {
	g.cancel(context.Canceled)
}

// Interrupted reports whether ctx was stopped by a guard.
func Interrupted(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrInterrupted)
}
