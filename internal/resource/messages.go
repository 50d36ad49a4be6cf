package resource

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Veraticus/marketpulse/internal/common"
)

// SessionExpiredMessage is shown once when the backend refuses the token.
const SessionExpiredMessage = "Your session has expired. Please sign in again."

// Messages is the notice catalog for one resource. Empty success messages
// are not shown.
type Messages struct {
	LoadFailed      string
	GetFailed       string
	CreateSucceeded string
	CreateFailed    string
	RemovePrompt    string
	RemoveSucceeded string
	RemoveFailed    string
}

// Authorizer is the session surface a resource needs.
type Authorizer interface {
	AuthorizationHeader() string
	Invalidate(ctx context.Context, usedHeader string) bool
}

// reporter turns outcomes into notices and remembers the last failure.
type reporter struct {
	lastErr  error
	notifier Notifier
	session  Authorizer
	name     string
	mu       sync.Mutex
	quiet    bool
}

func newReporter(name string, notifier Notifier, session Authorizer, quiet bool) *reporter {
	if notifier == nil {
		notifier = Discard
	}
	return &reporter{name: name, notifier: notifier, session: session, quiet: quiet}
}

// Notable reports whether err deserves its own failure notice. Canceled
// operations are silent and refused tokens are reported as session expiry.
func Notable(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, common.ErrAuthorization)
}

func (r *reporter) auth() string {
	if r.session == nil {
		return ""
	}
	return r.session.AuthorizationHeader()
}

func (r *reporter) succeed(message string) {
	r.mu.Lock()
	r.lastErr = nil
	r.mu.Unlock()
	if message != "" {
		r.notifier.Notify(Notice{Level: LevelSuccess, Message: message})
	}
}

// fail records err and emits at most one notice. Canceled operations are
// silent. A refused token invalidates the session; only the call that
// actually signed the user out reports it.
func (r *reporter) fail(ctx context.Context, op, usedAuth string, err error, fallback string) {
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()

	if errors.Is(err, context.Canceled) {
		slog.Debug("Resource operation canceled", "resource", r.name, "op", op)
		return
	}

	if errors.Is(err, common.ErrAuthorization) {
		slog.Warn("Request refused, session is no longer valid", "resource", r.name, "op", op)
		if r.session != nil && r.session.Invalidate(ctx, usedAuth) {
			r.notifier.Notify(Notice{Level: LevelError, Message: SessionExpiredMessage})
		}
		return
	}

	if !errors.Is(err, common.ErrValidation) {
		common.LogError(err, "Resource operation failed", common.Fields{"resource": r.name, "op": op})
	}
	if r.quiet {
		return
	}
	r.notifier.Notify(Notice{Level: LevelError, Message: common.Message(err, fallback)})
}

func (r *reporter) last() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
