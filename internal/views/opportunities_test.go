package views

import (
	"context"
	"testing"

	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRevenue(t *testing.T) {
	tests := []struct {
		in       string
		low      float64
		high     float64
		currency string
		ok       bool
	}{
		{"50K - 200K €", 50e3, 200e3, "€", true},
		{"$1.5M", 1.5e6, 1.5e6, "$", true},
		{"1M-5M EUR", 1e6, 5e6, "EUR", true},
		{"200k - 50k", 50e3, 200e3, "", true},
		{"2,5M €", 2.5e6, 2.5e6, "€", true},
		{"€50,000 - €200,000", 50e3, 200e3, "€", true},
		{"$1,250,000.50", 1_250_000.5, 1_250_000.5, "$", true},
		{"500K in 12 months", 500e3, 500e3, "", true},
		{"10 markets", 10, 10, "", true},
		{"2M to 3 million USD", 2e6, 3e6, "USD", true},
		{"1.5bn €", 1.5e9, 1.5e9, "€", true},
		{"Q3 launch", 0, 0, "", false},
		{"unknown", 0, 0, "", false},
		{"", 0, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			low, high, currency, ok := ParseRevenue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.low, low, 0.001)
			assert.InDelta(t, tt.high, high, 0.001)
			assert.Equal(t, tt.currency, currency)
		})
	}
}

func TestSummarizeRevenue(t *testing.T) {
	opps := []model.Opportunity{
		{PotentialRevenue: "50K - 200K €"},
		{PotentialRevenue: "100K - 300K €"},
		{PotentialRevenue: "1M €"},
		{PotentialRevenue: "to be defined"},
	}

	sum := SummarizeRevenue(opps)
	assert.Equal(t, 3, sum.Parsed)
	assert.Equal(t, 1, sum.Unparsed)
	assert.Equal(t, "€", sum.Currency)
	assert.InDelta(t, 1_150_000, sum.TotalLow, 0.001)
	assert.InDelta(t, 1_500_000, sum.TotalHigh, 0.001)
	assert.InDelta(t, 200_000, sum.MedianMiddle, 0.001)

	assert.Equal(t, RevenueSummary{}, SummarizeRevenue(nil))
}

func TestFilterByPriority(t *testing.T) {
	opps := []model.Opportunity{
		{ID: "1", Priority: model.LevelHigh},
		{ID: "2", Priority: model.LevelLow},
		{ID: "3", Priority: model.LevelHigh},
	}

	assert.Len(t, FilterByPriority(opps, PriorityAll), 3)
	assert.Len(t, FilterByPriority(opps, ""), 3)
	assert.Len(t, FilterByPriority(opps, "HIGH"), 2)
	assert.Empty(t, FilterByPriority(opps, "medium"))
}

func TestOpportunities(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedAnalyses(model.Analysis{
		ID:    "a-1",
		Title: "Coffee",
		Opportunities: []model.Opportunity{
			{ID: "o-1", Priority: model.LevelHigh, PotentialRevenue: "50K - 200K €"},
			{ID: "o-2", Priority: model.LevelMedium, PotentialRevenue: "10K - 20K €"},
		},
	})

	o := NewOpportunities(f.deps)
	require.NoError(t, o.Mount(context.Background()))

	assert.Equal(t, map[model.Level]int{
		model.LevelHigh:   1,
		model.LevelMedium: 1,
		model.LevelLow:    0,
	}, o.CountByPriority())

	high := o.FilterByPriority("high")
	require.Len(t, high, 1)
	assert.Equal(t, "Coffee", high[0].AnalysisTitle)

	assert.InDelta(t, 220_000, o.RevenueSummary().TotalHigh, 0.001)
}
