// Package views binds the generic resource controllers to the MarketPulse
// collections and adds the per-screen derivations.
package views

import (
	"context"

	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
)

// Backend is the API surface the views use.
type Backend interface {
	DashboardStats(ctx context.Context, auth string) (model.DashboardStats, error)
	ListAnalyses(ctx context.Context, auth string) ([]model.Analysis, error)
	GetAnalysis(ctx context.Context, auth, id string) (model.Analysis, error)
	CreateAnalysis(ctx context.Context, auth string, in model.NewAnalysis) (model.Analysis, error)
	DeleteAnalysis(ctx context.Context, auth, id string) error
	ListOpportunities(ctx context.Context, auth string) ([]model.Opportunity, error)
	ListReports(ctx context.Context, auth string) ([]model.Report, error)
	GetReport(ctx context.Context, auth, id string) (model.Report, error)
	CreateReport(ctx context.Context, auth string, in model.NewReport) (model.Report, error)
}

// Deps are shared by every view.
type Deps struct {
	Backend  Backend
	Session  resource.Authorizer
	Notifier resource.Notifier
}

// Dashboard shows the server-computed summary.
type Dashboard struct {
	*resource.Snapshot[model.DashboardStats]
}

// NewDashboard creates the dashboard view.
func NewDashboard(d Deps) *Dashboard {
	return &Dashboard{
		Snapshot: resource.NewSnapshot("dashboard", d.Backend.DashboardStats,
			"Failed to load dashboard", d.Notifier, d.Session),
	}
}
