// Package credentials persists the current session between runs.
package credentials

import (
	"context"
	"fmt"

	"github.com/Veraticus/marketpulse/internal/config"
	"github.com/Veraticus/marketpulse/internal/model"
)

// Store holds at most one session. Load returns nil, nil when nothing usable is
// stored: a missing, malformed or tampered value is treated as absent.
type Store interface {
	Load(ctx context.Context) (*model.Session, error)
	Save(ctx context.Context, session model.Session) error
	Clear(ctx context.Context) error
	Close() error
}

// Open returns the store selected by settings.
func Open(settings config.Settings) (Store, error) {
	switch settings.CredentialBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		store, err := NewSQLiteStore(settings.CredentialPath)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(context.Background()); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.BackendFile, "":
		return NewFileStore(settings.CredentialPath, settings.CredentialSecret)
	default:
		return nil, fmt.Errorf("unknown credential backend %q", settings.CredentialBackend)
	}
}

// usable filters out sessions that break the token/profile invariant.
func usable(s *model.Session) *model.Session {
	if s == nil || !s.Valid() {
		return nil
	}
	out := s.Clone()
	return &out
}
