package credentials

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/gorilla/securecookie"
)

const sealName = "pulse-session"

// FileStore keeps the session in a JSON file readable by the owner only.
// With a secret the payload is sealed (signed and encrypted) so a copied or
// edited file loads as absent.
type FileStore struct {
	codec *securecookie.SecureCookie
	path  string
}

// NewFileStore creates a store at path. An empty secret stores plain JSON.
func NewFileStore(path, secret string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("credential file path cannot be empty")
	}

	store := &FileStore{path: path}
	if secret != "" {
		store.codec = newCodec(secret)
	}
	return store, nil
}

func newCodec(secret string) *securecookie.SecureCookie {
	hashKey := sha256.Sum256([]byte("hash:" + secret))
	blockKey := sha256.Sum256([]byte("block:" + secret))

	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(0)
	codec.MaxLength(0)
	return codec
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the session file. Missing or unreadable content is absent.
func (f *FileStore) Load(_ context.Context) (*model.Session, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		slog.Warn("Ignoring unreadable session file", "path", f.path, "error", err)
		return nil, nil
	}

	var session model.Session
	if f.codec != nil {
		if err := f.codec.Decode(sealName, strings.TrimSpace(string(data)), &session); err != nil {
			slog.Warn("Ignoring session file with invalid seal", "path", f.path, "error", err)
			return nil, nil
		}
	} else if err := json.Unmarshal(data, &session); err != nil {
		slog.Warn("Ignoring malformed session file", "path", f.path, "error", err)
		return nil, nil
	}

	return usable(&session), nil
}

// Save writes the session with 0600 permissions.
func (f *FileStore) Save(_ context.Context, session model.Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	var data []byte
	if f.codec != nil {
		sealed, err := f.codec.Encode(sealName, session)
		if err != nil {
			return fmt.Errorf("failed to seal session: %w", err)
		}
		data = []byte(sealed)
	} else {
		encoded, err := json.MarshalIndent(session, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		data = encoded
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing an absent session is not an error.
func (f *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}
