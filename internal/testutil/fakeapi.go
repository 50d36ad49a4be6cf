// Package testutil provides a fake MarketPulse backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/go-chi/chi/v5"
)

type fakeUser struct {
	profile  model.UserProfile
	password string
}

type injectedFailure struct {
	detail string
	status int
}

// FakeBackend is an in-memory implementation of the backend contract served
// over httptest. It records every request so tests can assert that nothing
// reached the network.
type FakeBackend struct {
	server        *httptest.Server
	users         map[string]fakeUser
	tokens        map[string]string
	failures      map[string][]injectedFailure
	requests      map[string]int
	reportTitles  map[model.ReportType]string
	analyses      []model.Analysis
	reports       []model.Report
	seq           int
	totalRequests int
	mu            sync.Mutex
}

// NewFakeBackend starts a fake backend that is shut down with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{
		users:    make(map[string]fakeUser),
		tokens:   make(map[string]string),
		failures: make(map[string][]injectedFailure),
		requests: make(map[string]int),
		reportTitles: map[model.ReportType]string{
			model.ReportMarketOverview:     "Market Overview",
			model.ReportCompetitorAnalysis: "Competitor Analysis",
			model.ReportOpportunity:        "Opportunity Report",
		},
	}
	f.server = httptest.NewServer(f.routes())
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the backend root (without the /api prefix).
func (f *FakeBackend) URL() string {
	return f.server.URL
}

// AddUser registers an account and returns its profile.
func (f *FakeBackend) AddUser(id, email, password string) model.UserProfile {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile := model.UserProfile{
		ID:               id,
		FullName:         "Test User",
		CompanyName:      "Test Co",
		Email:            email,
		SubscriptionTier: "free",
	}
	f.users[email] = fakeUser{profile: profile, password: password}
	return profile
}

// IssueToken makes token valid for the user with userID.
func (f *FakeBackend) IssueToken(token, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = userID
}

// RevokeTokens invalidates every issued token.
func (f *FakeBackend) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]string)
}

// SeedAnalyses replaces the stored analyses (most recent first).
func (f *FakeBackend) SeedAnalyses(analyses ...model.Analysis) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyses = append([]model.Analysis(nil), analyses...)
}

// SeedReports replaces the stored reports (most recent first).
func (f *FakeBackend) SeedReports(reports ...model.Report) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append([]model.Report(nil), reports...)
}

// FailNext makes the next request to method+path answer status with detail.
func (f *FakeBackend) FailNext(method, path string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.failures[key] = append(f.failures[key], injectedFailure{status: status, detail: detail})
}

// Requests returns how many times method+path was called.
func (f *FakeBackend) Requests(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method+" "+path]
}

// TotalRequests returns the number of requests received so far.
func (f *FakeBackend) TotalRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalRequests
}

func (f *FakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		})
		r.Post("/auth/login", f.login)
		r.Post("/auth/register", f.register)

		r.Group(func(r chi.Router) {
			r.Use(f.requireToken)
			r.Get("/auth/me", f.me)
			r.Get("/dashboard/stats", f.stats)
			r.Get("/analyses", f.listAnalyses)
			r.Post("/analyses", f.createAnalysis)
			r.Get("/analyses/{id}", f.getAnalysis)
			r.Delete("/analyses/{id}", f.deleteAnalysis)
			r.Get("/opportunities", f.listOpportunities)
			r.Get("/reports", f.listReports)
			r.Post("/reports", f.createReport)
			r.Get("/reports/{id}", f.getReport)
		})
	})
	return r
}

func (f *FakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		f.mu.Lock()
		f.requests[key]++
		f.totalRequests++
		var failure *injectedFailure
		if queued := f.failures[key]; len(queued) > 0 {
			failure = &queued[0]
			f.failures[key] = queued[1:]
		}
		f.mu.Unlock()

		if failure != nil {
			writeDetail(w, failure.status, failure.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxUserKey struct{}

func (f *FakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, _ := strings.Cut(r.Header.Get("Authorization"), " ")
		if !strings.EqualFold(scheme, "bearer") || token == "" {
			writeDetail(w, http.StatusForbidden, "Not authenticated")
			return
		}

		f.mu.Lock()
		userID, ok := f.tokens[token]
		f.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), userID)))
	})
}

func (f *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	user, ok := f.users[creds.Email]
	var token string
	if ok && user.password == creds.Password {
		token = f.tokenForLocked(user.profile.ID)
	}
	f.mu.Unlock()

	if token == "" {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user.profile,
	})
}

func (f *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	if _, exists := f.users[reg.Email]; exists {
		f.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already in use")
		return
	}
	f.seq++
	profile := model.UserProfile{
		ID:               fmt.Sprintf("u-%d", f.seq),
		FullName:         reg.FullName,
		CompanyName:      reg.CompanyName,
		Email:            reg.Email,
		SubscriptionTier: "free",
		CreatedAt:        time.Now().UTC(),
	}
	f.users[reg.Email] = fakeUser{profile: profile, password: reg.Password}
	token := f.tokenForLocked(profile.ID)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         profile,
	})
}

func (f *FakeBackend) tokenForLocked(userID string) string {
	f.seq++
	token := fmt.Sprintf("tok-%d", f.seq)
	f.tokens[token] = userID
	return token
}

func (f *FakeBackend) me(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r.Context())

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.profile.ID == userID {
			writeJSON(w, http.StatusOK, u.profile)
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "User not found")
}

func (f *FakeBackend) stats(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats := model.DashboardStats{
		TotalAnalyses: len(f.analyses),
		TotalReports:  len(f.reports),
	}
	for _, a := range f.analyses {
		for _, o := range a.Opportunities {
			o.AnalysisTitle = a.Title
			stats.TotalOpportunities++
			if o.Priority == model.LevelHigh {
				stats.HighPriorityOpportunities++
			}
			if len(stats.TopOpportunities) < 5 {
				stats.TopOpportunities = append(stats.TopOpportunities, o)
			}
		}
		if len(stats.RecentAnalyses) < 5 {
			stats.RecentAnalyses = append(stats.RecentAnalyses, a)
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (f *FakeBackend) listAnalyses(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(f.analyses))
}

func (f *FakeBackend) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.analyses {
		if a.ID == id {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Analysis not found")
}

func (f *FakeBackend) createAnalysis(w http.ResponseWriter, r *http.Request) {
	var in model.NewAnalysis
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	f.seq++
	now := time.Now().UTC()
	insights := "Market summary for " + in.Title
	analysis := model.Analysis{
		ID:           fmt.Sprintf("a-%d", f.seq),
		Title:        in.Title,
		Industry:     in.Industry,
		TargetMarket: in.TargetMarket,
		Competitors:  in.Competitors,
		Description:  in.Description,
		Status:       model.AnalysisCompleted,
		AIInsights:   &insights,
		Opportunities: []model.Opportunity{{
			ID:               fmt.Sprintf("o-%d", f.seq),
			Title:            "Market opportunity " + in.TargetMarket,
			Description:      "Opportunity identified by the analysis",
			PotentialRevenue: "50K - 200K €",
			RiskLevel:        model.LevelMedium,
			Priority:         model.LevelHigh,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.analyses = append([]model.Analysis{analysis}, f.analyses...)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, analysis)
}

func (f *FakeBackend) deleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, a := range f.analyses {
		if a.ID == id {
			f.analyses = append(f.analyses[:i:i], f.analyses[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Analysis deleted"})
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Analysis not found")
}

func (f *FakeBackend) listOpportunities(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.Opportunity{}
	for _, a := range f.analyses {
		for _, o := range a.Opportunities {
			o.AnalysisID = a.ID
			o.AnalysisTitle = a.Title
			out = append(out, o)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) listReports(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, nonNil(f.reports))
}

func (f *FakeBackend) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rep := range f.reports {
		if rep.ID == id {
			writeJSON(w, http.StatusOK, rep)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Report not found")
}

func (f *FakeBackend) createReport(w http.ResponseWriter, r *http.Request) {
	var in model.NewReport
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var source *model.Analysis
	for i := range f.analyses {
		if f.analyses[i].ID == in.AnalysisID {
			source = &f.analyses[i]
			break
		}
	}
	if source == nil {
		writeDetail(w, http.StatusNotFound, "Analysis not found")
		return
	}

	f.seq++
	title, ok := f.reportTitles[in.ReportType]
	if !ok {
		title = "Report"
	}
	report := model.Report{
		ID:         fmt.Sprintf("r-%d", f.seq),
		AnalysisID: in.AnalysisID,
		ReportType: in.ReportType,
		Title:      title + " - " + source.Title,
		Content:    "# " + title + "\n\nGenerated for " + source.Title + ".",
		Status:     "completed",
		CreatedAt:  time.Now().UTC(),
	}
	f.reports = append([]model.Report{report}, f.reports...)
	writeJSON(w, http.StatusOK, report)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if detail == "" {
		writeJSON(w, status, map[string]any{})
		return
	}
	writeJSON(w, status, map[string]string{"detail": detail})
}
