package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/marketpulse/internal/model"
)

const dateLayout = "2006-01-02"

// table writes tab-separated rows with a styled header and a rule line.
type table struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(w io.Writer, headers ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}

	styled := make([]string, len(headers))
	rules := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
		rules[i] = strings.Repeat("─", max(len(h), 4))
	}
	t.row(styled...)
	t.row(rules...)
	return t
}

func (t *table) row(cells ...string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	if t.err != nil {
		return fmt.Errorf("failed to write table: %w", t.err)
	}
	if err := t.tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}
	return nil
}

// StatusBadge renders an analysis status.
func StatusBadge(s model.AnalysisStatus) string {
	if s.IsCompleted() {
		return SuccessStyle.Render(s.Label())
	}
	return WarningStyle.Render(s.Label())
}

// LevelBadge renders a priority or risk grade.
func LevelBadge(l model.Level) string {
	label := strings.ToUpper(string(l))
	switch l {
	case model.LevelHigh:
		return ErrorStyle.Render(label)
	case model.LevelMedium:
		return WarningStyle.Render(label)
	case model.LevelLow:
		return SuccessStyle.Render(label)
	default:
		return SubtleStyle.Render("-")
	}
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RenderProfile prints the signed-in user.
func RenderProfile(w io.Writer, u model.UserProfile) error {
	lines := []string{
		BoldStyle.Render(u.FullName) + " <" + u.Email + ">",
		"Company: " + u.CompanyName,
	}
	if u.SubscriptionTier != "" {
		lines = append(lines, "Plan:    "+u.SubscriptionTier)
	}
	lines = append(lines, SubtleStyle.Render("ID: "+u.ID))
	_, err := fmt.Fprintln(w, RenderBox("Account", strings.Join(lines, "\n")))
	return err
}

// RenderDashboard prints the dashboard summary.
func RenderDashboard(w io.Writer, s model.DashboardStats) error {
	summary := fmt.Sprintf("Analyses: %d   Opportunities: %d (%d high priority)   Reports: %d",
		s.TotalAnalyses, s.TotalOpportunities, s.HighPriorityOpportunities, s.TotalReports)
	if _, err := fmt.Fprintln(w, RenderBox("Dashboard", summary)); err != nil {
		return err
	}

	if len(s.RecentAnalyses) > 0 {
		if _, err := fmt.Fprintln(w, TitleStyle.Render("Recent analyses")); err != nil {
			return err
		}
		if err := RenderAnalyses(w, s.RecentAnalyses); err != nil {
			return err
		}
	}
	if len(s.TopOpportunities) > 0 {
		if _, err := fmt.Fprintln(w, "\n"+TitleStyle.Render("Top opportunities")); err != nil {
			return err
		}
		return RenderOpportunities(w, s.TopOpportunities)
	}
	return nil
}

// RenderAnalyses prints analyses as a table.
func RenderAnalyses(w io.Writer, analyses []model.Analysis) error {
	if len(analyses) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No analyses yet. Create one with 'pulse analyses create'."))
		return err
	}

	t := newTable(w, "ID", "Title", "Industry", "Market", "Status", "Created")
	for _, a := range analyses {
		t.row(a.ID, truncate(a.Title, 40), a.Industry, truncate(a.TargetMarket, 24), StatusBadge(a.Status), date(a.CreatedAt))
	}
	return t.flush()
}

// RenderAnalysis prints one analysis with its insights and opportunities.
func RenderAnalysis(w io.Writer, a model.Analysis) error {
	lines := []string{
		"Industry:    " + a.Industry,
		"Market:      " + a.TargetMarket,
		"Status:      " + StatusBadge(a.Status),
		"Created:     " + date(a.CreatedAt),
	}
	if len(a.Competitors) > 0 {
		lines = append(lines, "Competitors: "+strings.Join(a.Competitors, ", "))
	}
	if a.Description != "" {
		lines = append(lines, "", a.Description)
	}
	if insights := a.Insights(); insights != "" {
		lines = append(lines, "", BoldStyle.Render("AI insights"), insights)
	}
	if _, err := fmt.Fprintln(w, RenderBox(a.Title, strings.Join(lines, "\n"))); err != nil {
		return err
	}

	if len(a.Opportunities) == 0 {
		return nil
	}
	return RenderOpportunities(w, a.Opportunities)
}

// RenderOpportunities prints opportunities as a table.
func RenderOpportunities(w io.Writer, opps []model.Opportunity) error {
	if len(opps) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No opportunities found."))
		return err
	}

	t := newTable(w, "Title", "Analysis", "Revenue", "Priority", "Risk")
	for _, o := range opps {
		t.row(truncate(o.Title, 40), truncate(o.AnalysisTitle, 24), o.PotentialRevenue, LevelBadge(o.Priority), LevelBadge(o.RiskLevel))
	}
	return t.flush()
}

// RenderReports prints reports as a table. analysisTitle may be nil.
func RenderReports(w io.Writer, reports []model.Report, analysisTitle func(model.Report) string) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, InfoStyle.Render("No reports yet. Generate one with 'pulse reports create'."))
		return err
	}

	t := newTable(w, "ID", "Title", "Type", "Analysis", "Created")
	for _, r := range reports {
		source := ""
		if analysisTitle != nil {
			source = analysisTitle(r)
		}
		t.row(r.ID, truncate(r.Title, 48), r.ReportType.Label(), truncate(source, 24), date(r.CreatedAt))
	}
	return t.flush()
}

// RenderReport prints one report's content.
func RenderReport(w io.Writer, r model.Report) error {
	header := fmt.Sprintf("%s %s\n%s · %s", ReportIcon, r.Title, r.ReportType.Label(), date(r.CreatedAt))
	if _, err := fmt.Fprintln(w, TitleStyle.Render(header)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, r.Content)
	return err
}
