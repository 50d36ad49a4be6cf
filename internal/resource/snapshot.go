package resource

import (
	"context"
	"sync"
)

// Snapshot holds a single server-computed value with the same load
// semantics as Controller.Mount.
type Snapshot[T any] struct {
	load    func(ctx context.Context, auth string) (T, error)
	report  *reporter
	value   T
	message string
	seq     uint64
	mu      sync.RWMutex
	loaded  bool
	loading bool
}

// NewSnapshot creates a snapshot that fetches with load.
func NewSnapshot[T any](name string, load func(ctx context.Context, auth string) (T, error),
	loadFailed string, notifier Notifier, session Authorizer) *Snapshot[T] {
	return &Snapshot[T]{
		load:    load,
		message: loadFailed,
		report:  newReporter(name, notifier, session, false),
	}
}

// Mount fetches the value. On failure the previous value is dropped.
func (s *Snapshot[T]) Mount(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.mu.Unlock()

	auth := s.report.auth()
	value, err := s.load(ctx, auth)

	s.mu.Lock()
	current := seq == s.seq
	if current {
		s.loading = false
		var zero T
		s.value, s.loaded = zero, false
		if err == nil {
			s.value, s.loaded = value, true
		}
	}
	s.mu.Unlock()

	if !current {
		return err
	}
	if err != nil {
		s.report.fail(ctx, "load", auth, err, s.message)
		return err
	}
	s.report.succeed("")
	return nil
}

// Value returns the loaded value and whether one is present.
func (s *Snapshot[T]) Value() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.loaded
}

// Loading reports whether a load is in flight.
func (s *Snapshot[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the most recent failure.
func (s *Snapshot[T]) LastError() error {
	return s.report.last()
}
