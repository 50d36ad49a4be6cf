package model

import "time"

// Level grades priority and risk.
type Level string

const (
	// LevelLow is the lowest grade.
	LevelLow Level = "low"
	// LevelMedium is the middle grade.
	LevelMedium Level = "medium"
	// LevelHigh is the highest grade.
	LevelHigh Level = "high"
)

// Levels lists every grade from highest to lowest.
var Levels = []Level{LevelHigh, LevelMedium, LevelLow}

// Valid reports whether l is a known grade.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Opportunity is produced by the backend when an analysis completes.
type Opportunity struct {
	CreatedAt        time.Time `json:"created_at,omitempty"`
	ID               string    `json:"id"`
	AnalysisID       string    `json:"analysis_id,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PotentialRevenue string    `json:"potential_revenue"`
	Priority         Level     `json:"priority"`
	RiskLevel        Level     `json:"risk_level"`
	AnalysisTitle    string    `json:"analysis_title,omitempty"`
}
