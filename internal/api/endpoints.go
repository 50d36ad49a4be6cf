package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/model"
)

// authResponse is the login/register payload. Older deployments send "token"
// instead of "access_token".
type authResponse struct {
	User        *model.UserProfile `json:"user"`
	AccessToken string             `json:"access_token"`
	Token       string             `json:"token"`
	TokenType   string             `json:"token_type"`
}

func (r authResponse) session(op string) (model.Session, error) {
	token := r.AccessToken
	if token == "" {
		token = r.Token
	}
	s := model.Session{Token: token, User: r.User}
	if !s.Valid() {
		return model.Session{}, &common.TransientRequestError{
			Op:  op,
			Err: errors.New("response is missing token or user"),
		}
	}
	return s, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.Session, error) {
	var resp authResponse
	err := c.do(ctx, call{
		op:           "login",
		method:       http.MethodPost,
		path:         "/auth/login",
		body:         creds,
		out:          &resp,
		credentialed: true,
	})
	if err != nil {
		return model.Session{}, err
	}
	return resp.session("login")
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.Session, error) {
	var resp authResponse
	err := c.do(ctx, call{
		op:           "register",
		method:       http.MethodPost,
		path:         "/auth/register",
		body:         reg,
		out:          &resp,
		credentialed: true,
	})
	if err != nil {
		return model.Session{}, err
	}
	return resp.session("register")
}

// Me returns the profile the token belongs to.
func (c *Client) Me(ctx context.Context, auth string) (model.UserProfile, error) {
	var user model.UserProfile
	err := c.do(ctx, call{op: "fetch profile", method: http.MethodGet, path: "/auth/me", auth: auth, out: &user})
	return user, err
}

// DashboardStats fetches the aggregate dashboard snapshot.
func (c *Client) DashboardStats(ctx context.Context, auth string) (model.DashboardStats, error) {
	var stats model.DashboardStats
	err := c.do(ctx, call{op: "load dashboard", method: http.MethodGet, path: "/dashboard/stats", auth: auth, out: &stats})
	return stats, err
}

// ListAnalyses returns the user's analyses, most recent first.
func (c *Client) ListAnalyses(ctx context.Context, auth string) ([]model.Analysis, error) {
	var analyses []model.Analysis
	err := c.do(ctx, call{op: "list analyses", method: http.MethodGet, path: "/analyses", auth: auth, out: &analyses})
	return analyses, err
}

// GetAnalysis returns a single analysis.
func (c *Client) GetAnalysis(ctx context.Context, auth, id string) (model.Analysis, error) {
	var analysis model.Analysis
	err := c.do(ctx, call{op: "get analysis", method: http.MethodGet, path: "/analyses/" + url.PathEscape(id), auth: auth, out: &analysis})
	return analysis, err
}

// CreateAnalysis submits a new analysis. The backend generates insights
// before answering, so this can take a while.
func (c *Client) CreateAnalysis(ctx context.Context, auth string, in model.NewAnalysis) (model.Analysis, error) {
	if in.Competitors == nil {
		in.Competitors = []string{}
	}
	var analysis model.Analysis
	err := c.do(ctx, call{op: "create analysis", method: http.MethodPost, path: "/analyses", auth: auth, body: in, out: &analysis})
	return analysis, err
}

// DeleteAnalysis removes an analysis.
func (c *Client) DeleteAnalysis(ctx context.Context, auth, id string) error {
	return c.do(ctx, call{op: "delete analysis", method: http.MethodDelete, path: "/analyses/" + url.PathEscape(id), auth: auth})
}

// ListOpportunities returns the opportunities across all analyses.
func (c *Client) ListOpportunities(ctx context.Context, auth string) ([]model.Opportunity, error) {
	var opportunities []model.Opportunity
	err := c.do(ctx, call{op: "list opportunities", method: http.MethodGet, path: "/opportunities", auth: auth, out: &opportunities})
	return opportunities, err
}

// ListReports returns the user's reports, most recent first.
func (c *Client) ListReports(ctx context.Context, auth string) ([]model.Report, error) {
	var reports []model.Report
	err := c.do(ctx, call{op: "list reports", method: http.MethodGet, path: "/reports", auth: auth, out: &reports})
	return reports, err
}

// GetReport returns a single report.
func (c *Client) GetReport(ctx context.Context, auth, id string) (model.Report, error) {
	var report model.Report
	err := c.do(ctx, call{op: "get report", method: http.MethodGet, path: "/reports/" + url.PathEscape(id), auth: auth, out: &report})
	return report, err
}

// CreateReport generates a report from an existing analysis.
func (c *Client) CreateReport(ctx context.Context, auth string, in model.NewReport) (model.Report, error) {
	var report model.Report
	err := c.do(ctx, call{op: "create report", method: http.MethodPost, path: "/reports", auth: auth, body: in, out: &report})
	return report, err
}

// Health probes the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health", out: &resp}); err != nil {
		return "", err
	}
	return resp.Status, nil
}
