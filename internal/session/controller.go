// Package session owns sign-in state: restoring it at startup, signing in
// and out, and producing the Authorization header for API requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/credentials"
	"github.com/Veraticus/marketpulse/internal/model"
	"golang.org/x/oauth2"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// Fallback messages when the backend gives no detail.
const (
	LoginFailedMessage    = "Sign-in failed"
	RegisterFailedMessage = "Registration failed"
)

var (
	// ErrNotInitialized is returned when sign-in is attempted before the
	// stored session has been restored.
	ErrNotInitialized = errors.New("session is still initializing")
	// ErrNoSession is returned by operations that need a signed-in user.
	ErrNoSession = errors.New("not signed in")
)

// State is the sign-in state.
type State int

const (
	// Initializing is the start state; the stored session is being restored.
	Initializing State = iota
	// Anonymous means nobody is signed in.
	Anonymous
	// Authenticated means a session token is held.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Backend is the part of the API the controller needs.
type Backend interface {
	Login(ctx context.Context, creds model.Credentials) (model.Session, error)
	Register(ctx context.Context, reg model.Registration) (model.Session, error)
	Me(ctx context.Context, auth string) (model.UserProfile, error)
}

// Controller is the single owner of the current session. It is safe for
// concurrent use.
type Controller struct {
	store     credentials.Store
	backend   Backend
	session   *model.Session
	token     *oauth2.Token
	listeners []func(State)
	state     State
	initMu    sync.Mutex
	// persistMu orders store writes with the in-memory change they follow.
	persistMu sync.Mutex
	mu        sync.RWMutex
}

// New creates a controller in the Initializing state.
func New(store credentials.Store, backend Backend) *Controller {
	return &Controller{
		store:   store,
		backend: backend,
		state:   Initializing,
	}
}

// OnChange registers fn to be called after every state transition.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Loading reports whether the stored session is still being restored.
func (c *Controller) Loading() bool {
	return c.State() == Initializing
}

// Session returns a copy of the current session.
func (c *Controller) Session() (model.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return model.Session{}, false
	}
	return c.session.Clone(), true
}

// User returns a copy of the signed-in profile, or nil.
func (c *Controller) User() *model.UserProfile {
	s, ok := c.Session()
	if !ok {
		return nil
	}
	return s.User
}

// AuthorizationHeader returns the bearer header for the current token. With
// no session it returns a header the backend rejects; it never fails.
func (c *Controller) AuthorizationHeader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return header(c.token)
}

// Initialize restores the stored session. It leaves Initializing exactly
// once; later calls are no-ops.
func (c *Controller) Initialize(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.State() != Initializing {
		return nil
	}

	stored, err := c.store.Load(ctx)
	if err != nil {
		common.LogError(err, "Failed to read stored session", nil)
		c.transition(nil, Anonymous)
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if stored == nil || !stored.Valid() {
		c.transition(nil, Anonymous)
		return nil
	}

	if !bearerToken(stored.Token).Valid() {
		slog.Info("Stored session has expired", "user_id", stored.User.ID)
		if err := c.store.Clear(ctx); err != nil {
			common.LogError(err, "Failed to clear expired session", nil)
		}
		c.transition(nil, Anonymous)
		return nil
	}

	slog.Debug("Restored session", "user_id", stored.User.ID)
	c.transition(stored, Authenticated)
	return nil
}

// Login signs in with email and password. On failure the previous state is
// left untouched.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	creds := model.Credentials{Email: strings.TrimSpace(email), Password: password}
	if creds.Email == "" {
		return common.NewValidationError("email", "Please fill in all fields")
	}
	if creds.Password == "" {
		return common.NewValidationError("password", "Please fill in all fields")
	}
	if c.State() == Initializing {
		return ErrNotInitialized
	}

	s, err := c.backend.Login(ctx, creds)
	if err != nil {
		return withFallback(err, LoginFailedMessage)
	}

	c.establish(ctx, s)
	slog.Info("Signed in", "user_id", s.User.ID)
	return nil
}

// Register creates an account and signs in with it.
func (c *Controller) Register(ctx context.Context, reg model.Registration) error {
	reg.FullName = strings.TrimSpace(reg.FullName)
	reg.CompanyName = strings.TrimSpace(reg.CompanyName)
	reg.Email = strings.TrimSpace(reg.Email)

	if err := ValidateRegistration(reg); err != nil {
		return err
	}
	if c.State() == Initializing {
		return ErrNotInitialized
	}

	s, err := c.backend.Register(ctx, reg)
	if err != nil {
		return withFallback(err, RegisterFailedMessage)
	}

	c.establish(ctx, s)
	slog.Info("Registered", "user_id", s.User.ID)
	return nil
}

// ValidateRegistration checks the registration form without a network call.
func ValidateRegistration(reg model.Registration) error {
	fields := []struct {
		name  string
		value string
	}{
		{"full_name", reg.FullName},
		{"company_name", reg.CompanyName},
		{"email", reg.Email},
		{"password", reg.Password},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return common.NewValidationError(f.name, "Please fill in all fields")
		}
	}
	if len([]rune(reg.Password)) < MinPasswordLength {
		return common.NewValidationError("password",
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// Logout forgets the session locally. No request is made.
func (c *Controller) Logout(ctx context.Context) error {
	c.persistMu.Lock()
	err := c.store.Clear(ctx)
	if err != nil {
		common.LogError(err, "Failed to clear stored session", nil)
	}
	var listeners []func(State)
	c.mu.Lock()
	if c.state != Initializing {
		listeners = c.swapLocked(nil, Anonymous)
	}
	c.mu.Unlock()
	c.persistMu.Unlock()

	notify(listeners, Anonymous)
	return err
}

// Invalidate forces a logout after the backend refused usedHeader and reports
// whether it did. Failures of requests made with an older token are ignored so
// a fresh sign-in is not undone by a stale response. Of several concurrent
// refusals of the same token exactly one returns true.
func (c *Controller) Invalidate(ctx context.Context, usedHeader string) bool {
	c.persistMu.Lock()

	c.mu.Lock()
	if c.state != Authenticated || header(c.token) != usedHeader {
		c.mu.Unlock()
		c.persistMu.Unlock()
		return false
	}
	listeners := c.swapLocked(nil, Anonymous)
	c.mu.Unlock()

	slog.Warn("Session rejected by the backend, signing out")
	if err := c.store.Clear(ctx); err != nil {
		common.LogError(err, "Failed to clear stored session", nil)
	}
	c.persistMu.Unlock()

	notify(listeners, Anonymous)
	return true
}

// Refresh re-fetches the profile. A rejected token signs the user out.
func (c *Controller) Refresh(ctx context.Context) error {
	s, ok := c.Session()
	if !ok {
		return ErrNoSession
	}

	auth := c.AuthorizationHeader()
	user, err := c.backend.Me(ctx, auth)
	if err != nil {
		if errors.Is(err, common.ErrAuthorization) {
			c.Invalidate(ctx, auth)
		}
		return err
	}

	s.User = &user

	// The session may have ended or changed while the profile was in flight.
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	c.mu.Lock()
	current := c.session != nil && c.session.Token == s.Token
	if current {
		c.session = &s
	}
	c.mu.Unlock()

	if current {
		if err := c.store.Save(ctx, s); err != nil {
			common.LogError(err, "Failed to persist refreshed profile", nil)
		}
	}
	return nil
}

func (c *Controller) establish(ctx context.Context, s model.Session) {
	c.persistMu.Lock()
	if err := c.store.Save(ctx, s); err != nil {
		// The session still works for this run; it just won't survive a restart.
		common.LogError(err, "Failed to persist session", nil)
	}
	c.mu.Lock()
	listeners := c.swapLocked(&s, Authenticated)
	c.mu.Unlock()
	c.persistMu.Unlock()

	notify(listeners, Authenticated)
}

func (c *Controller) transition(s *model.Session, next State) {
	c.mu.Lock()
	listeners := c.swapLocked(s, next)
	c.mu.Unlock()
	notify(listeners, next)
}

// swapLocked replaces the session and state. It returns the listeners to
// call, or nil when the state did not change. c.mu must be held.
func (c *Controller) swapLocked(s *model.Session, next State) []func(State) {
	if s != nil {
		clone := s.Clone()
		c.session = &clone
		c.token = bearerToken(clone.Token)
	} else {
		c.session = nil
		c.token = nil
	}
	if c.state == next {
		return nil
	}
	c.state = next
	return append([]func(State){}, c.listeners...)
}

func notify(listeners []func(State), next State) {
	for _, fn := range listeners {
		fn(next)
	}
}

// withFallback makes sure an authentication error carries a message.
func withFallback(err error, fallback string) error {
	var authErr *common.AuthenticationError
	if errors.As(err, &authErr) && authErr.Message == "" {
		return &common.AuthenticationError{Message: fallback, Status: authErr.Status}
	}
	return err
}
