package model

import "time"

// ReportType selects the kind of generated report.
type ReportType string

const (
	// ReportMarketOverview covers size, trends and key players.
	ReportMarketOverview ReportType = "market_overview"
	// ReportCompetitorAnalysis covers competitor strengths and positioning.
	ReportCompetitorAnalysis ReportType = "competitor_analysis"
	// ReportOpportunity covers opportunities and an action plan.
	ReportOpportunity ReportType = "opportunity_report"
)

// ReportTypes lists the report kinds in menu order.
var ReportTypes = []ReportType{ReportMarketOverview, ReportCompetitorAnalysis, ReportOpportunity}

// Valid reports whether t is a known report kind.
func (t ReportType) Valid() bool {
	switch t {
	case ReportMarketOverview, ReportCompetitorAnalysis, ReportOpportunity:
		return true
	}
	return false
}

// Label returns the display name of the report kind.
func (t ReportType) Label() string {
	switch t {
	case ReportMarketOverview:
		return "Market Overview"
	case ReportCompetitorAnalysis:
		return "Competitor Analysis"
	case ReportOpportunity:
		return "Opportunity Report"
	default:
		return "Report"
	}
}

// Report is an immutable generated document.
type Report struct {
	CreatedAt  time.Time  `json:"created_at"`
	ID         string     `json:"id"`
	AnalysisID string     `json:"analysis_id"`
	Title      string     `json:"title"`
	ReportType ReportType `json:"report_type"`
	Content    string     `json:"content"`
	Status     string     `json:"status,omitempty"`
}

// NewReport is the create-report request body.
type NewReport struct {
	AnalysisID string     `json:"analysis_id"`
	ReportType ReportType `json:"report_type"`
}
