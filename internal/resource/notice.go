package resource

import "sync"

// Level is the severity of a notice.
type Level int

const (
	// LevelInfo is neutral feedback.
	LevelInfo Level = iota
	// LevelSuccess confirms a completed mutation.
	LevelSuccess
	// LevelError reports a failure.
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient user-facing message.
type Notice struct {
	Message string
	Level   Level
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// Recorder keeps every notice it receives.
type Recorder struct {
	notices []Notice
	mu      sync.Mutex
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Reset forgets recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
