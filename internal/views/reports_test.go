package views

import (
	"context"
	"testing"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/Veraticus/marketpulse/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportInput_Validate(t *testing.T) {
	tests := []struct {
		name  string
		in    ReportInput
		field string
	}{
		{"missing analysis", ReportInput{ReportType: model.ReportMarketOverview}, "analysis_id"},
		{"missing type", ReportInput{AnalysisID: "a-1"}, "analysis_id"},
		{"unknown type", ReportInput{AnalysisID: "a-1", ReportType: "weekly"}, "report_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var verr *common.ValidationError
			require.ErrorAs(t, tt.in.Validate(), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	assert.NoError(t, ReportInput{AnalysisID: "a-1", ReportType: model.ReportOpportunity}.Validate())
}

func TestReports_RequiresAnAnalysis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := NewReports(f.deps)
	require.NoError(t, r.Mount(ctx))

	_, err := r.Create(ctx, ReportInput{AnalysisID: "a-1", ReportType: model.ReportMarketOverview})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, f.backend.Requests("POST", "/api/reports"))
	assert.Equal(t, []resource.Notice{{
		Level:   resource.LevelError,
		Message: "Create an analysis before generating a report",
	}}, f.notices.Notices())
}

func TestReports_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.backend.SeedAnalyses(model.Analysis{ID: "a-1", Title: "Coffee"})

	r := NewReports(f.deps)
	require.NoError(t, r.Mount(ctx))
	require.Equal(t, 1, r.Analyses.Len())
	assert.Equal(t, 1, f.backend.Requests("GET", "/api/reports"))
	assert.Equal(t, 1, f.backend.Requests("GET", "/api/analyses"))

	rep, err := r.Create(ctx, ReportInput{AnalysisID: " a-1 ", ReportType: model.ReportCompetitorAnalysis})
	require.NoError(t, err)

	assert.Equal(t, "Competitor Analysis - Coffee", rep.Title)
	assert.Equal(t, "Coffee", r.AnalysisTitle(rep))
	assert.Equal(t, []model.Report{rep}, r.Items())

	got, err := r.Get(ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.Content, got.Content)
}

func TestReports_OneFailedLoadDoesNotCancelTheOther(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedAnalyses(model.Analysis{ID: "a-1"})
	f.backend.FailNext("GET", "/api/reports", 500, "boom")

	r := NewReports(f.deps)
	require.Error(t, r.Mount(context.Background()))

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, r.Analyses.Len())
	assert.Equal(t, []resource.Notice{{Level: resource.LevelError, Message: "Failed to load reports"}},
		f.notices.Notices())
}

func TestReports_MountShowsOneNotice(t *testing.T) {
	tests := []struct {
		name string
		fail []string
	}{
		{name: "both fail", fail: []string{"/api/reports", "/api/analyses"}},
		{name: "reports fail", fail: []string{"/api/reports"}},
		{name: "analyses fail", fail: []string{"/api/analyses"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for _, path := range tt.fail {
				f.backend.FailNext("GET", path, 500, "boom")
			}

			r := NewReports(f.deps)
			require.Error(t, r.Mount(context.Background()))

			assert.Equal(t, []resource.Notice{{Level: resource.LevelError, Message: "Failed to load reports"}},
				f.notices.Notices())
		})
	}
}

func TestReports_ExpiredTokenShowsOneNotice(t *testing.T) {
	f := newFixture(t)
	f.backend.RevokeTokens()

	r := NewReports(f.deps)
	require.Error(t, r.Mount(context.Background()))

	assert.Equal(t, []resource.Notice{{Level: resource.LevelError, Message: resource.SessionExpiredMessage}},
		f.notices.Notices())
	assert.Equal(t, session.Anonymous, f.session.State())
}
