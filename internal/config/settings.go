package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/spf13/viper"
)

// Credential store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultBaseURL is used when no API URL is configured anywhere.
const DefaultBaseURL = "http://localhost:8000"

// Settings is the resolved client configuration.
type Settings struct {
	BaseURL           string
	CredentialBackend string
	CredentialPath    string
	CredentialSecret  string
	LogLevel          string
	LogFormat         string
	LogFile           string
	Timeout           time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", 60*time.Second)
	v.SetDefault("credentials.backend", BackendFile)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads Settings from v. It follows this precedence:
// 1. Viper configuration (config file or PULSE_ env vars)
// 2. Direct environment variables (MARKETPULSE_API_URL)
// 3. Default values
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		BaseURL:           strings.TrimRight(v.GetString("api.base_url"), "/"),
		Timeout:           v.GetDuration("api.timeout"),
		CredentialBackend: strings.ToLower(v.GetString("credentials.backend")),
		CredentialPath:    ExpandPath(v.GetString("credentials.path")),
		CredentialSecret:  v.GetString("credentials.secret"),
		LogLevel:          v.GetString("logging.level"),
		LogFormat:         v.GetString("logging.format"),
		LogFile:           ExpandPath(v.GetString("logging.file")),
	}

	if s.BaseURL == "" {
		s.BaseURL = strings.TrimRight(os.Getenv("MARKETPULSE_API_URL"), "/")
	}
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}

	if s.CredentialPath == "" {
		path, err := DefaultCredentialPath(s.CredentialBackend)
		if err != nil {
			return Settings{}, err
		}
		s.CredentialPath = path
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url", common.ErrMissingConfig)
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api.base_url %q must be an http(s) URL", common.ErrInvalidConfig, s.BaseURL)
	}
	if s.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout must not be negative", common.ErrInvalidConfig)
	}
	switch s.CredentialBackend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: credentials.backend %q", common.ErrInvalidConfig, s.CredentialBackend)
	}
	return nil
}

// DataDir returns $XDG_DATA_HOME/pulse, falling back to ~/.local/share/pulse.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "pulse"), nil
}

// DefaultCredentialPath returns where a backend keeps the session by default.
func DefaultCredentialPath(backend string) (string, error) {
	switch backend {
	case BackendMemory:
		return "", nil
	case BackendSQLite:
		dir, err := DataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "session.db"), nil
	default:
		dir, err := DataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "session.json"), nil
	}
}
