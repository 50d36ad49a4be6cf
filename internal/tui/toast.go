package tui

import (
	"sync"
	"time"

	"github.com/Veraticus/marketpulse/internal/resource"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3
)

type toast struct {
	notice resource.Notice
	id     int
}

// noticeQueue collects notices emitted by controllers on command goroutines.
// The model drains it after every message, so a notice is always visible by
// the time the completion message of its operation is handled.
type noticeQueue struct {
	items []resource.Notice
	mu    sync.Mutex
}

func (q *noticeQueue) Notify(n resource.Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

func (q *noticeQueue) drain() []resource.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// pushToast shows n and schedules its dismissal.
func (m *Model) pushToast(n resource.Notice) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toasts = append(m.toasts, toast{id: id, notice: n})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}

	if !m.config.Animations {
		return nil
	}
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m *Model) dismissToast(id int) {
	kept := m.toasts[:0:0]
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m *Model) drainNotices() tea.Cmd {
	var cmds []tea.Cmd
	for _, n := range m.notices.drain() {
		cmds = append(cmds, m.pushToast(n))
	}
	return tea.Batch(cmds...)
}
