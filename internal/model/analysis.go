package model

import "time"

// AnalysisStatus tracks backend-side generation of an analysis.
type AnalysisStatus string

const (
	// AnalysisPending means the analysis is queued.
	AnalysisPending AnalysisStatus = "pending"
	// AnalysisProcessing means AI insights are being generated.
	AnalysisProcessing AnalysisStatus = "processing"
	// AnalysisCompleted means insights and opportunities are available.
	AnalysisCompleted AnalysisStatus = "completed"
)

// IsCompleted reports whether the backend has finished the analysis.
func (s AnalysisStatus) IsCompleted() bool {
	return s == AnalysisCompleted
}

// Label returns the short badge shown next to an analysis.
func (s AnalysisStatus) Label() string {
	if s.IsCompleted() {
		return "DONE"
	}
	return "IN PROGRESS"
}

// Industries is the fixed list offered by the analysis form.
var Industries = []string{
	"Technology",
	"E-commerce",
	"SaaS",
	"Fintech",
	"Healthcare",
	"Real Estate",
	"Education",
	"Marketing",
	"Logistics",
	"Other",
}

// Analysis is a market analysis owned by the current user.
type Analysis struct {
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
	AIInsights    *string        `json:"ai_insights,omitempty"`
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Industry      string         `json:"industry"`
	TargetMarket  string         `json:"target_market"`
	Description   string         `json:"description"`
	Status        AnalysisStatus `json:"status"`
	Competitors   []string       `json:"competitors"`
	Opportunities []Opportunity  `json:"opportunities"`
}

// Insights returns the AI insights or an empty string.
func (a Analysis) Insights() string {
	if a.AIInsights == nil {
		return ""
	}
	return *a.AIInsights
}

// NewAnalysis is the create-analysis request body.
type NewAnalysis struct {
	Title        string   `json:"title"`
	Industry     string   `json:"industry"`
	TargetMarket string   `json:"target_market"`
	Description  string   `json:"description"`
	Competitors  []string `json:"competitors"`
}
