package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/marketpulse/internal/api"
	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/credentials"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/testutil"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	backend *testutil.FakeBackend
	store   *credentials.MemoryStore
	ctrl    *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	client, err := api.New(backend.URL(), api.WithTimeout(5*time.Second))
	require.NoError(t, err)

	store := credentials.NewMemoryStore()
	return &harness{backend: backend, store: store, ctrl: New(store, client)}
}

func signedJWT(t *testing.T, expires time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestController_StartsInitializing(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, Initializing, h.ctrl.State())
	assert.True(t, h.ctrl.Loading())
	assert.Nil(t, h.ctrl.User())
	assert.Equal(t, "Bearer ", h.ctrl.AuthorizationHeader())
}

func TestController_Initialize(t *testing.T) {
	profile := &model.UserProfile{ID: "u1", Email: "a@b.com"}

	tests := []struct {
		stored *model.Session
		name   string
		want   State
	}{
		{name: "nothing stored", want: Anonymous},
		{name: "opaque token", stored: &model.Session{Token: "tok-1", User: profile}, want: Authenticated},
		{name: "token without profile", stored: &model.Session{Token: "tok-1"}, want: Anonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := credentials.NewMemoryStore()
			if tt.stored != nil {
				require.NoError(t, store.Save(context.Background(), *tt.stored))
			}
			ctrl := New(store, nil)

			require.NoError(t, ctrl.Initialize(context.Background()))
			assert.Equal(t, tt.want, ctrl.State())
			assert.False(t, ctrl.Loading())
		})
	}
}

func TestController_InitializeExpiredJWT(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewMemoryStore()
	expired := signedJWT(t, time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(ctx, model.Session{Token: expired, User: &model.UserProfile{ID: "u1"}}))

	ctrl := New(store, nil)
	require.NoError(t, ctrl.Initialize(ctx))

	assert.Equal(t, Anonymous, ctrl.State())
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored, "expired session should be cleared")
}

func TestController_InitializeFreshJWT(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewMemoryStore()
	fresh := signedJWT(t, time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, model.Session{Token: fresh, User: &model.UserProfile{ID: "u1"}}))

	ctrl := New(store, nil)
	require.NoError(t, ctrl.Initialize(ctx))

	assert.Equal(t, Authenticated, ctrl.State())
	assert.Equal(t, "Bearer "+fresh, ctrl.AuthorizationHeader())
}

func TestController_InitializeIsOneShot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var transitions []State
	var mu sync.Mutex
	h.ctrl.OnChange(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, s)
	})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, h.ctrl.Initialize(ctx))
		}()
	}
	wg.Wait()

	require.NoError(t, h.ctrl.Logout(ctx))
	require.NoError(t, h.ctrl.Initialize(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Anonymous}, transitions)
	assert.Equal(t, Anonymous, h.ctrl.State())
}

func TestController_LoginBeforeInitialize(t *testing.T) {
	h := newHarness(t)
	err := h.ctrl.Login(context.Background(), "a@b.com", "secret1")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Zero(t, h.backend.TotalRequests())
}

func TestController_Login(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.AddUser("u1", "a@b.com", "secret1")
	require.NoError(t, h.ctrl.Initialize(ctx))

	require.NoError(t, h.ctrl.Login(ctx, " a@b.com ", "secret1"))

	assert.Equal(t, Authenticated, h.ctrl.State())
	user := h.ctrl.User()
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Regexp(t, `^Bearer tok-\d+$`, h.ctrl.AuthorizationHeader())

	stored, err := h.store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", stored.User.ID)

	// A restarted controller over the same store picks the session back up.
	restarted := New(h.store, nil)
	require.NoError(t, restarted.Initialize(ctx))
	assert.Equal(t, Authenticated, restarted.State())
	assert.Equal(t, h.ctrl.AuthorizationHeader(), restarted.AuthorizationHeader())
}

func TestController_LoginFailures(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		password    string
		wantMessage string
		wantCalls   int
	}{
		{name: "empty email", email: "  ", password: "secret1", wantMessage: "Please fill in all fields"},
		{name: "empty password", email: "a@b.com", wantMessage: "Please fill in all fields"},
		{name: "wrong password", email: "a@b.com", password: "bad", wantMessage: "Incorrect email or password", wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			h.backend.AddUser("u1", "a@b.com", "secret1")
			require.NoError(t, h.ctrl.Initialize(ctx))

			err := h.ctrl.Login(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.wantMessage, common.Message(err, "unexpected"))
			assert.Equal(t, Anonymous, h.ctrl.State())
			assert.Equal(t, tt.wantCalls, h.backend.TotalRequests())
		})
	}
}

func TestController_LoginFallbackMessage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ctrl.Initialize(ctx))
	h.backend.FailNext("POST", "/api/auth/login", 400, "")

	err := h.ctrl.Login(ctx, "a@b.com", "secret1")
	require.Error(t, err)
	assert.Equal(t, LoginFailedMessage, common.Message(err, "unexpected"))
}

func TestController_Register(t *testing.T) {
	valid := model.Registration{
		FullName:    "Ada Lovelace",
		CompanyName: "Engines Ltd",
		Email:       "ada@example.com",
		Password:    "secret1",
	}

	tests := []struct {
		mutate    func(*model.Registration)
		name      string
		wantField string
	}{
		{name: "missing name", mutate: func(r *model.Registration) { r.FullName = " " }, wantField: "full_name"},
		{name: "missing company", mutate: func(r *model.Registration) { r.CompanyName = "" }, wantField: "company_name"},
		{name: "missing email", mutate: func(r *model.Registration) { r.Email = "" }, wantField: "email"},
		{name: "short password", mutate: func(r *model.Registration) { r.Password = "12345" }, wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			require.NoError(t, h.ctrl.Initialize(ctx))

			reg := valid
			tt.mutate(&reg)
			err := h.ctrl.Register(ctx, reg)

			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Zero(t, h.backend.TotalRequests())
			assert.Equal(t, Anonymous, h.ctrl.State())
		})
	}

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		require.NoError(t, h.ctrl.Initialize(ctx))

		require.NoError(t, h.ctrl.Register(ctx, valid))
		assert.Equal(t, Authenticated, h.ctrl.State())
		assert.Equal(t, "Ada Lovelace", h.ctrl.User().FullName)
	})

	t.Run("duplicate email", func(t *testing.T) {
		h := newHarness(t)
		ctx := context.Background()
		h.backend.AddUser("u1", valid.Email, "whatever")
		require.NoError(t, h.ctrl.Initialize(ctx))

		err := h.ctrl.Register(ctx, valid)
		require.Error(t, err)
		assert.Equal(t, "Email already in use", common.Message(err, RegisterFailedMessage))
		assert.Equal(t, Anonymous, h.ctrl.State())
	})
}

func TestController_Logout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.AddUser("u1", "a@b.com", "secret1")
	require.NoError(t, h.ctrl.Initialize(ctx))
	require.NoError(t, h.ctrl.Login(ctx, "a@b.com", "secret1"))
	calls := h.backend.TotalRequests()

	require.NoError(t, h.ctrl.Logout(ctx))

	assert.Equal(t, Anonymous, h.ctrl.State())
	assert.Nil(t, h.ctrl.User())
	assert.Equal(t, "Bearer ", h.ctrl.AuthorizationHeader())
	assert.Equal(t, calls, h.backend.TotalRequests(), "logout is local only")

	stored, err := h.store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestController_Invalidate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.AddUser("u1", "a@b.com", "secret1")
	require.NoError(t, h.ctrl.Initialize(ctx))
	require.NoError(t, h.ctrl.Login(ctx, "a@b.com", "secret1"))

	stale := h.ctrl.AuthorizationHeader()
	require.NoError(t, h.ctrl.Login(ctx, "a@b.com", "secret1"))

	assert.False(t, h.ctrl.Invalidate(ctx, stale))
	assert.Equal(t, Authenticated, h.ctrl.State(), "stale rejection must not undo a newer sign-in")

	assert.True(t, h.ctrl.Invalidate(ctx, h.ctrl.AuthorizationHeader()))
	assert.Equal(t, Anonymous, h.ctrl.State())
	assert.False(t, h.ctrl.Invalidate(ctx, "Bearer "), "already signed out")

	stored, err := h.store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

// slowClearStore holds Clear open long enough for concurrent callers to
// overlap with it.
type slowClearStore struct {
	*credentials.MemoryStore
	entered chan struct{}
	delay   time.Duration
}

func (s *slowClearStore) Clear(ctx context.Context) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	time.Sleep(s.delay)
	return s.MemoryStore.Clear(ctx)
}

func newSlowHarness(t *testing.T) (*harness, *slowClearStore) {
	t.Helper()
	h := newHarness(t)
	slow := &slowClearStore{MemoryStore: h.store, entered: make(chan struct{}, 1), delay: 50 * time.Millisecond}
	client, err := api.New(h.backend.URL(), api.WithTimeout(5*time.Second))
	require.NoError(t, err)
	h.ctrl = New(slow, client)

	h.backend.AddUser("u1", "a@b.com", "secret1")
	require.NoError(t, h.ctrl.Initialize(context.Background()))
	require.NoError(t, h.ctrl.Login(context.Background(), "a@b.com", "secret1"))
	return h, slow
}

func TestController_ConcurrentInvalidateSignsOutOnce(t *testing.T) {
	h, _ := newSlowHarness(t)
	ctx := context.Background()
	auth := h.ctrl.AuthorizationHeader()

	var changes int
	var mu sync.Mutex
	h.ctrl.OnChange(func(State) {
		mu.Lock()
		defer mu.Unlock()
		changes++
	})

	start := make(chan struct{})
	results := make(chan bool, 8)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- h.ctrl.Invalidate(ctx, auth)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	signedOut := 0
	for ok := range results {
		if ok {
			signedOut++
		}
	}
	assert.Equal(t, 1, signedOut)
	assert.Equal(t, Anonymous, h.ctrl.State())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, changes)
}

func TestController_InvalidateDoesNotClearNewerSignIn(t *testing.T) {
	h, slow := newSlowHarness(t)
	ctx := context.Background()
	old := h.ctrl.AuthorizationHeader()

	done := make(chan bool, 1)
	go func() { done <- h.ctrl.Invalidate(ctx, old) }()
	<-slow.entered

	require.NoError(t, h.ctrl.Login(ctx, "a@b.com", "secret1"))
	assert.True(t, <-done)

	assert.Equal(t, Authenticated, h.ctrl.State())
	stored, err := h.store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored, "the newer sign-in must stay persisted")
	assert.Equal(t, "Bearer "+stored.Token, h.ctrl.AuthorizationHeader())
}

func TestController_Refresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.AddUser("u1", "a@b.com", "secret1")
	require.NoError(t, h.ctrl.Initialize(ctx))

	assert.ErrorIs(t, h.ctrl.Refresh(ctx), ErrNoSession)

	require.NoError(t, h.ctrl.Login(ctx, "a@b.com", "secret1"))
	require.NoError(t, h.ctrl.Refresh(ctx))
	assert.Equal(t, 1, h.backend.Requests("GET", "/api/auth/me"))

	h.backend.RevokeTokens()
	err := h.ctrl.Refresh(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAuthorization))
	assert.Equal(t, Anonymous, h.ctrl.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "initializing", Initializing.String())
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "State(9)", State(9).String())
}
