package views

import (
	"context"
	"strings"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
)

// AnalysisInput is the analysis form as typed by the user.
type AnalysisInput struct {
	Title        string
	Industry     string
	TargetMarket string
	Competitors  string
	Description  string
}

// Validate checks the required fields.
func (in AnalysisInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return common.NewValidationError("title", "Please fill in the required fields")
	case strings.TrimSpace(in.Industry) == "":
		return common.NewValidationError("industry", "Please fill in the required fields")
	case strings.TrimSpace(in.TargetMarket) == "":
		return common.NewValidationError("target_market", "Please fill in the required fields")
	}
	return nil
}

// Normalize trims every field.
func (in AnalysisInput) Normalize() AnalysisInput {
	return AnalysisInput{
		Title:        strings.TrimSpace(in.Title),
		Industry:     strings.TrimSpace(in.Industry),
		TargetMarket: strings.TrimSpace(in.TargetMarket),
		Competitors:  strings.TrimSpace(in.Competitors),
		Description:  strings.TrimSpace(in.Description),
	}
}

// Request converts the form into the request body.
func (in AnalysisInput) Request() model.NewAnalysis {
	return model.NewAnalysis{
		Title:        in.Title,
		Industry:     in.Industry,
		TargetMarket: in.TargetMarket,
		Description:  in.Description,
		Competitors:  SplitList(in.Competitors),
	}
}

// SplitList splits a comma-separated list, trimming entries and dropping
// empty ones. It never returns nil.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Analyses is the analyses screen.
type Analyses struct {
	*resource.Controller[model.Analysis, AnalysisInput]
}

// NewAnalyses creates the analyses view.
func NewAnalyses(d Deps) *Analyses {
	return &Analyses{Controller: resource.New(resource.Spec[model.Analysis, AnalysisInput]{
		Name: "analyses",
		List: d.Backend.ListAnalyses,
		Get:  d.Backend.GetAnalysis,
		Create: func(ctx context.Context, auth string, in AnalysisInput) (model.Analysis, error) {
			return d.Backend.CreateAnalysis(ctx, auth, in.Request())
		},
		Delete:    d.Backend.DeleteAnalysis,
		ID:        func(a model.Analysis) string { return a.ID },
		Validate:  AnalysisInput.Validate,
		Normalize: AnalysisInput.Normalize,
		Messages: resource.Messages{
			LoadFailed:      "Failed to load analyses",
			GetFailed:       "Failed to load analysis",
			CreateSucceeded: "Analysis created successfully",
			CreateFailed:    "Failed to create analysis",
			RemovePrompt:    "Are you sure you want to delete this analysis?",
			RemoveSucceeded: "Analysis deleted",
			RemoveFailed:    "Failed to delete analysis",
		},
		Notifier: d.Notifier,
		Session:  d.Session,
	})}
}

// CountByStatus tallies the listed analyses by status.
func (a *Analyses) CountByStatus() map[model.AnalysisStatus]int {
	counts := make(map[model.AnalysisStatus]int)
	for _, an := range a.Items() {
		counts[an.Status]++
	}
	return counts
}
