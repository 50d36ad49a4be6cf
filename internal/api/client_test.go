package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *testutil.FakeBackend) {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	client, err := New(backend.URL(), WithTimeout(5*time.Second))
	require.NoError(t, err)
	return client, backend
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "://nope"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}

func TestClient_Login(t *testing.T) {
	client, backend := newTestClient(t)
	backend.AddUser("u1", "a@b.com", "secret1")

	t.Run("valid credentials", func(t *testing.T) {
		session, err := client.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "secret1"})
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
		require.NotNil(t, session.User)
		assert.Equal(t, "u1", session.User.ID)
	})

	t.Run("wrong password carries backend detail", func(t *testing.T) {
		_, err := client.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "nope"})
		require.Error(t, err)

		var authErr *common.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Incorrect email or password", authErr.Message)
		assert.Equal(t, http.StatusUnauthorized, authErr.Status)
		assert.ErrorIs(t, err, common.ErrAuthentication)
		assert.NotErrorIs(t, err, common.ErrAuthorization)
	})
}

func TestClient_LoginAcceptsLegacyTokenField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"t1","user":{"id":"u1","email":"a@b.com"}}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	session, err := client.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "t1", session.Token)
	assert.Equal(t, "u1", session.User.ID)
}

func TestClient_LoginIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"t1"}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrTransient)
}

func TestClient_Register(t *testing.T) {
	client, backend := newTestClient(t)
	backend.AddUser("u1", "taken@b.com", "secret1")

	reg := model.Registration{FullName: "Ada", CompanyName: "AE", Email: "new@b.com", Password: "secret1"}
	session, err := client.Register(context.Background(), reg)
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", session.User.Email)

	reg.Email = "taken@b.com"
	_, err = client.Register(context.Background(), reg)
	var authErr *common.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Email already in use", authErr.Message)
}

func TestClient_AuthorizationFailures(t *testing.T) {
	client, backend := newTestClient(t)

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{name: "unknown token", auth: "Bearer bogus", status: http.StatusUnauthorized},
		{name: "empty bearer", auth: "Bearer ", status: http.StatusForbidden},
		{name: "no header", auth: "", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ListAnalyses(context.Background(), tt.auth)
			var authzErr *common.AuthorizationError
			require.ErrorAs(t, err, &authzErr)
			assert.Equal(t, tt.status, authzErr.Status)
			assert.ErrorIs(t, err, common.ErrAuthorization)
		})
	}
	assert.Equal(t, 3, backend.Requests(http.MethodGet, "/api/analyses"))
}

func TestClient_TransientFailures(t *testing.T) {
	client, backend := newTestClient(t)
	backend.IssueToken("t1", "u1")

	backend.FailNext(http.MethodGet, "/api/reports", http.StatusInternalServerError, "boom")
	_, err := client.ListReports(context.Background(), "Bearer t1")

	var transient *common.TransientRequestError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, http.StatusInternalServerError, transient.Status)
	assert.Equal(t, "boom", transient.Detail)
	assert.Equal(t, "list reports", transient.Op)

	reports, err := client.ListReports(context.Background(), "Bearer t1")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestClient_RejectedInputIsValidation(t *testing.T) {
	client, backend := newTestClient(t)
	backend.IssueToken("t1", "u1")

	for _, status := range []int{http.StatusBadRequest, http.StatusUnprocessableEntity} {
		backend.FailNext(http.MethodPost, "/api/analyses", status, "Title is too long")
		_, err := client.CreateAnalysis(context.Background(), "Bearer t1", model.NewAnalysis{Title: "x"})

		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr, status)
		assert.Equal(t, "Title is too long", verr.Message)
		assert.False(t, common.IsRetryable(err))
	}
}

func TestClient_NetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := New(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = client.ListOpportunities(context.Background(), "Bearer t1")
	assert.ErrorIs(t, err, common.ErrTransient)
}

func TestClient_ContextCancelled(t *testing.T) {
	client, backend := newTestClient(t)
	backend.IssueToken("t1", "u1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListAnalyses(ctx, "Bearer t1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_AnalysisLifecycle(t *testing.T) {
	client, backend := newTestClient(t)
	backend.IssueToken("t1", "u1")
	ctx := context.Background()
	auth := "Bearer t1"

	created, err := client.CreateAnalysis(ctx, auth, model.NewAnalysis{
		Title:        "SaaS B2B",
		Industry:     "SaaS",
		TargetMarket: "SMBs",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisCompleted, created.Status)
	assert.Empty(t, created.Competitors)
	assert.NotEmpty(t, created.Insights())

	got, err := client.GetAnalysis(ctx, auth, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	opportunities, err := client.ListOpportunities(ctx, auth)
	require.NoError(t, err)
	require.Len(t, opportunities, 1)
	assert.Equal(t, created.ID, opportunities[0].AnalysisID)

	stats, err := client.DashboardStats(ctx, auth)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalAnalyses)
	assert.Equal(t, 1, stats.HighPriorityOpportunities)

	report, err := client.CreateReport(ctx, auth, model.NewReport{AnalysisID: created.ID, ReportType: model.ReportMarketOverview})
	require.NoError(t, err)
	assert.Equal(t, "Market Overview - SaaS B2B", report.Title)

	fetched, err := client.GetReport(ctx, auth, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Content, fetched.Content)

	require.NoError(t, client.DeleteAnalysis(ctx, auth, created.ID))
	_, err = client.GetAnalysis(ctx, auth, created.ID)
	var transient *common.TransientRequestError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, http.StatusNotFound, transient.Status)
}

func TestClient_SendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := New(srv.URL, WithUserAgent("pulse-test"))
	require.NoError(t, err)

	_, err = client.DashboardStats(context.Background(), "Bearer t1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", got.Get("Authorization"))
	assert.Equal(t, "pulse-test", got.Get("User-Agent"))
	assert.Len(t, got.Get(RequestIDHeader), 26)
}

func TestClient_Me(t *testing.T) {
	client, backend := newTestClient(t)
	backend.AddUser("u1", "a@b.com", "secret1")
	backend.IssueToken("t1", "u1")

	user, err := client.Me(context.Background(), "Bearer t1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestClient_Health(t *testing.T) {
	client, _ := newTestClient(t)
	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "string detail", body: `{"detail":"Email already in use"}`, want: "Email already in use"},
		{name: "validation list", body: `{"detail":[{"msg":"field required"},{"msg":"not an email"}]}`, want: "field required; not an email"},
		{name: "no detail", body: `{"error":"x"}`, want: ""},
		{name: "not json", body: `<html>`, want: ""},
		{name: "empty", body: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseDetail([]byte(tt.body)))
		})
	}
}
