package views

import (
	"context"
	"strings"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"golang.org/x/sync/errgroup"
)

// ReportInput is the report form.
type ReportInput struct {
	AnalysisID string
	ReportType model.ReportType
}

// Validate checks that both fields are set and the type is known.
func (in ReportInput) Validate() error {
	if strings.TrimSpace(in.AnalysisID) == "" || in.ReportType == "" {
		return common.NewValidationError("analysis_id", "Please select an analysis and a report type")
	}
	if !in.ReportType.Valid() {
		return common.NewValidationError("report_type", "Unknown report type: "+string(in.ReportType))
	}
	return nil
}

// Reports is the reports screen. The create form needs the analyses list, so
// it is loaded alongside.
type Reports struct {
	*resource.Controller[model.Report, ReportInput]
	Analyses *resource.Controller[model.Analysis, struct{}]
	notifier resource.Notifier
}

// NewReports creates the reports view.
func NewReports(d Deps) *Reports {
	notifier := d.Notifier
	if notifier == nil {
		notifier = resource.Discard
	}
	r := &Reports{
		Analyses: resource.New(resource.Spec[model.Analysis, struct{}]{
			Name:     "report-analyses",
			List:     d.Backend.ListAnalyses,
			ID:       func(a model.Analysis) string { return a.ID },
			Notifier: d.Notifier,
			Session:  d.Session,
			Quiet:    true,
		}),
		notifier: notifier,
	}

	r.Controller = resource.New(resource.Spec[model.Report, ReportInput]{
		Name: "reports",
		List: d.Backend.ListReports,
		Get:  d.Backend.GetReport,
		Create: func(ctx context.Context, auth string, in ReportInput) (model.Report, error) {
			return d.Backend.CreateReport(ctx, auth, model.NewReport{
				AnalysisID: in.AnalysisID,
				ReportType: in.ReportType,
			})
		},
		ID:       func(rep model.Report) string { return rep.ID },
		Validate: r.validate,
		Normalize: func(in ReportInput) ReportInput {
			in.AnalysisID = strings.TrimSpace(in.AnalysisID)
			return in
		},
		Messages: resource.Messages{
			LoadFailed:      reportsLoadFailed,
			GetFailed:       "Failed to load report",
			CreateSucceeded: "Report generated successfully",
			CreateFailed:    "Failed to generate report",
		},
		Notifier: d.Notifier,
		Session:  d.Session,
	})
	return r
}

func (r *Reports) validate(in ReportInput) error {
	if r.Analyses.Len() == 0 {
		return common.NewValidationError("analysis_id", "Create an analysis before generating a report")
	}
	return in.Validate()
}

const reportsLoadFailed = "Failed to load reports"

// Mount loads reports and analyses concurrently. One failing load does not
// cancel the other, and the screen shows a single load notice whichever
// side failed.
func (r *Reports) Mount(ctx context.Context) error {
	var g errgroup.Group
	var reportsErr, analysesErr error
	g.Go(func() error {
		reportsErr = r.Controller.Mount(ctx)
		return reportsErr
	})
	g.Go(func() error {
		analysesErr = r.Analyses.Mount(ctx)
		return analysesErr
	})
	err := g.Wait()

	// The reports controller already spoke for its own failure.
	if reportsErr == nil && resource.Notable(analysesErr) {
		r.notifier.Notify(resource.Notice{Level: resource.LevelError, Message: reportsLoadFailed})
	}
	return err
}

// AnalysisTitle returns the title of the analysis a report was built from.
func (r *Reports) AnalysisTitle(rep model.Report) string {
	if a, ok := r.Analyses.Find(rep.AnalysisID); ok {
		return a.Title
	}
	return ""
}
