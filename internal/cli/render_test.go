package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAnalyses(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderAnalyses(&out, nil))
	assert.Contains(t, out.String(), "No analyses yet")

	out.Reset()
	require.NoError(t, RenderAnalyses(&out, []model.Analysis{{
		ID:           "a-1",
		Title:        "Coffee shops",
		Industry:     "Technology",
		TargetMarket: "Paris",
		Status:       model.AnalysisCompleted,
		CreatedAt:    time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC),
	}}))
	text := out.String()
	assert.Contains(t, text, "a-1")
	assert.Contains(t, text, "Coffee shops")
	assert.Contains(t, text, "DONE")
}

func TestRenderAnalysis(t *testing.T) {
	insights := "Strong demand"
	var out bytes.Buffer
	require.NoError(t, RenderAnalysis(&out, model.Analysis{
		Title:       "Coffee shops",
		Competitors: []string{"Acme", "Globex"},
		AIInsights:  &insights,
		Status:      model.AnalysisProcessing,
		Opportunities: []model.Opportunity{
			{Title: "Drive-through", PotentialRevenue: "50K - 200K €", Priority: model.LevelHigh},
		},
	}))

	text := out.String()
	assert.Contains(t, text, "Acme, Globex")
	assert.Contains(t, text, "Strong demand")
	assert.Contains(t, text, "IN PROGRESS")
	assert.Contains(t, text, "Drive-through")
	assert.Contains(t, text, "HIGH")
}

func TestRenderReports(t *testing.T) {
	var out bytes.Buffer
	reports := []model.Report{{ID: "r-1", Title: "Market Overview - Coffee", ReportType: model.ReportMarketOverview}}

	require.NoError(t, RenderReports(&out, reports, func(model.Report) string { return "Coffee" }))
	assert.Contains(t, out.String(), "Market Overview")
	assert.Contains(t, out.String(), "Coffee")
}

func TestRenderDashboard(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RenderDashboard(&out, model.DashboardStats{
		TotalAnalyses:             3,
		TotalOpportunities:        5,
		HighPriorityOpportunities: 2,
		TotalReports:              1,
	}))
	assert.Contains(t, out.String(), "Opportunities: 5 (2 high priority)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
