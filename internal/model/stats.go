package model

// DashboardStats is the server-computed aggregate shown on the dashboard.
type DashboardStats struct {
	RecentAnalyses            []Analysis    `json:"recent_analyses"`
	TopOpportunities          []Opportunity `json:"top_opportunities"`
	TotalAnalyses             int           `json:"total_analyses"`
	TotalOpportunities        int           `json:"total_opportunities"`
	TotalReports              int           `json:"total_reports"`
	HighPriorityOpportunities int           `json:"high_priority_opportunities"`
}
