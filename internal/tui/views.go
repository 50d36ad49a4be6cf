package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/marketpulse/internal/gate"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/Veraticus/marketpulse/internal/session"
	"github.com/Veraticus/marketpulse/internal/tui/themes"
	"github.com/Veraticus/marketpulse/internal/views"
	"github.com/charmbracelet/lipgloss"
)

var tabs = []struct {
	route gate.Route
	label string
}{
	{gate.RouteDashboard, "1 Dashboard"},
	{gate.RouteAnalyses, "2 Analyses"},
	{gate.RouteOpportunities, "3 Opportunities"},
	{gate.RouteReports, "4 Reports"},
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.route == "" || m.outcome != gate.Allow:
		body = m.renderLoading("Checking your session…")
	case m.detail != nil:
		body = m.renderDetail()
	default:
		body = m.renderRoute()
	}
	if m.confirm != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.renderConfirm())
	}

	parts := []string{m.renderHeader(), body}
	if t := m.renderToasts(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, m.help.View(m.helpKeys()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderRoute() string {
	switch m.route {
	case gate.RouteLanding:
		return m.renderLanding()
	case gate.RouteLogin, gate.RouteRegister:
		if m.form == nil {
			return ""
		}
		return m.form.view(m.config.Theme, m.busy, m.spinner.View())
	case gate.RouteDashboard:
		return m.renderDashboard()
	case gate.RouteAnalyses:
		if m.form != nil {
			return m.form.view(m.config.Theme, m.analyses.Submitting(), m.spinner.View())
		}
		return m.renderAnalyses()
	case gate.RouteOpportunities:
		return m.renderOpportunities()
	case gate.RouteReports:
		if m.form != nil {
			return m.form.view(m.config.Theme, m.reports.Submitting(), m.spinner.View())
		}
		return m.renderReports()
	}
	return ""
}

func (m Model) renderHeader() string {
	th := m.config.Theme
	brand := th.Title.Render("📈 MarketPulse")
	if m.state != session.Authenticated {
		return brand + "\n"
	}

	rendered := make([]string, 0, len(tabs))
	for _, t := range tabs {
		style := th.Tab
		if t.route == m.route {
			style = th.ActiveTab
		}
		rendered = append(rendered, style.Render(t.label))
	}

	right := th.Muted.Render(m.userLabel())
	row := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	gap := max(m.width-lipgloss.Width(brand)-lipgloss.Width(right)-2, 1)
	return brand + strings.Repeat(" ", gap) + right + "\n" + row + "\n"
}

func (m Model) renderLoading(text string) string {
	th := m.config.Theme
	return lipgloss.Place(m.contentWidth(), m.contentHeight(), lipgloss.Center, lipgloss.Center,
		m.spinner.View()+" "+th.Muted.Render(text))
}

func (m Model) renderLanding() string {
	th := m.config.Theme
	content := lipgloss.JoinVertical(lipgloss.Center,
		th.Title.Render("Market intelligence for your next move"),
		"",
		th.Normal.Render("Analyze markets, track opportunities and generate reports."),
		"",
		th.Bold.Render("Press enter to get started"),
	)
	return lipgloss.Place(m.contentWidth(), m.contentHeight(), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderDashboard() string {
	th := m.config.Theme
	stats, ok := m.dashboard.Value()
	if m.dashboard.Loading() && !ok {
		return m.renderLoading("Loading dashboard…")
	}
	if !ok {
		return th.Muted.Render("No data yet. Press r to retry.")
	}

	card := func(label string, n int) string {
		return th.RoundedBox.Render(th.Muted.Render(label) + "\n" + th.Bold.Render(fmt.Sprint(n)))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Analyses", stats.TotalAnalyses),
		card("Opportunities", stats.TotalOpportunities),
		card("High priority", stats.HighPriorityOpportunities),
		card("Reports", stats.TotalReports),
	)

	var b strings.Builder
	b.WriteString(cards + "\n\n")
	b.WriteString(th.Subtitle.Render("Recent analyses") + "\n")
	if len(stats.RecentAnalyses) == 0 {
		b.WriteString(th.Muted.Render("  No analyses yet. Press 2 then n to create one.") + "\n")
	}
	for _, an := range stats.RecentAnalyses {
		fmt.Fprintf(&b, "  %s %s %s\n", statusBadge(th, an.Status), th.Normal.Render(an.Title), th.Muted.Render(an.Industry))
	}

	b.WriteString("\n" + th.Subtitle.Render("Top opportunities") + "\n")
	if len(stats.TopOpportunities) == 0 {
		b.WriteString(th.Muted.Render("  Opportunities appear once an analysis completes.") + "\n")
	}
	for _, o := range stats.TopOpportunities {
		fmt.Fprintf(&b, "  %s %s %s\n", levelBadge(th, o.Priority), th.Normal.Render(o.Title), th.Muted.Render(o.PotentialRevenue))
	}
	return b.String()
}

func (m Model) renderAnalyses() string {
	th := m.config.Theme
	items := m.analyses.Items()
	if m.analyses.Loading() && len(items) == 0 {
		return m.renderLoading("Loading analyses…")
	}

	var b strings.Builder
	counts := m.analyses.CountByStatus()
	b.WriteString(th.Subtitle.Render(fmt.Sprintf("Analyses (%d)", len(items))))
	b.WriteString(th.Muted.Render(fmt.Sprintf("  %d done · %d in progress",
		counts[model.AnalysisCompleted], len(items)-counts[model.AnalysisCompleted])))
	b.WriteString("\n\n")

	if len(items) == 0 {
		b.WriteString(th.Muted.Render("No analyses yet. Press n to create your first one."))
		return b.String()
	}
	for i, an := range items {
		line := fmt.Sprintf("%-40s %-14s %s", truncate(an.Title, 40), truncate(an.Industry, 14), an.CreatedAt.Format(time.DateOnly))
		b.WriteString(m.row(i, statusBadge(th, an.Status)+" "+line) + "\n")
	}
	return b.String()
}

func (m Model) renderOpportunities() string {
	th := m.config.Theme
	if m.opps.Loading() && m.opps.Len() == 0 {
		return m.renderLoading("Loading opportunities…")
	}

	filter := priorityFilters[m.priority]
	opps := m.filteredOpportunities()
	counts := m.opps.CountByPriority()

	var b strings.Builder
	b.WriteString(th.Subtitle.Render("Opportunities"))
	fmt.Fprintf(&b, "  %s  %s %d  %s %d  %s %d\n",
		th.Muted.Render("filter: "+filter),
		levelBadge(th, model.LevelHigh), counts[model.LevelHigh],
		levelBadge(th, model.LevelMedium), counts[model.LevelMedium],
		levelBadge(th, model.LevelLow), counts[model.LevelLow])

	if sum := views.SummarizeRevenue(opps); sum.Parsed > 0 {
		b.WriteString(th.Muted.Render(fmt.Sprintf("Potential revenue %s %s – %s · median %s",
			sum.Currency, compact(sum.TotalLow), compact(sum.TotalHigh), compact(sum.MedianMiddle))))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(opps) == 0 {
		b.WriteString(th.Muted.Render("No opportunities match this filter."))
		return b.String()
	}
	for i, o := range opps {
		line := fmt.Sprintf("%-36s %-18s risk %-6s %s",
			truncate(o.Title, 36), truncate(o.PotentialRevenue, 18), o.RiskLevel, truncate(o.AnalysisTitle, 24))
		b.WriteString(m.row(i, levelBadge(th, o.Priority)+" "+line) + "\n")
	}
	return b.String()
}

func (m Model) renderReports() string {
	th := m.config.Theme
	items := m.reports.Items()
	if m.reports.Loading() && len(items) == 0 {
		return m.renderLoading("Loading reports…")
	}

	var b strings.Builder
	b.WriteString(th.Subtitle.Render(fmt.Sprintf("Reports (%d)", len(items))) + "\n\n")
	if len(items) == 0 {
		if m.reports.Analyses.Len() == 0 {
			b.WriteString(th.Muted.Render("Create an analysis first, then generate a report from it."))
		} else {
			b.WriteString(th.Muted.Render("No reports yet. Press n to generate one."))
		}
		return b.String()
	}
	for i, r := range items {
		line := fmt.Sprintf("%-44s %-22s %s", truncate(r.Title, 44), r.ReportType.Label(), r.CreatedAt.Format(time.DateOnly))
		b.WriteString(m.row(i, line) + "\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	th := m.config.Theme
	return th.Title.Render(m.detail.title) + "\n" + th.Box.Render(m.detail.viewport.View())
}

func (m Model) renderConfirm() string {
	th := m.config.Theme
	return th.RoundedBox.
		BorderForeground(th.Warning).
		Render(th.StatusWarning.Render(m.confirm.prompt) + "\n\n" + th.Muted.Render("y confirm · n cancel"))
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	th := m.config.Theme
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := th.StatusInfo
		icon := "ℹ"
		switch t.notice.Level {
		case resource.LevelSuccess:
			style, icon = th.StatusSuccess, "✓"
		case resource.LevelError:
			style, icon = th.StatusError, "✗"
		}
		lines = append(lines, style.Render(icon+" "+t.notice.Message))
	}
	return strings.Join(lines, "\n")
}

// row renders one list line, highlighted under the cursor.
func (m Model) row(i int, line string) string {
	if i == m.cursor {
		return m.config.Theme.Selected.Render("▸ " + line)
	}
	return "  " + line
}

func renderAnalysisDetail(th themes.Theme, an model.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusBadge(th, an.Status), th.Muted.Render(an.Industry+" · "+an.TargetMarket))
	if len(an.Competitors) > 0 {
		b.WriteString(th.Muted.Render("Competitors: "+strings.Join(an.Competitors, ", ")) + "\n")
	}
	if an.Description != "" {
		b.WriteString("\n" + an.Description + "\n")
	}

	b.WriteString("\n" + th.Subtitle.Render("Insights") + "\n")
	if in := an.Insights(); in != "" {
		b.WriteString(in + "\n")
	} else {
		b.WriteString(th.Muted.Render("The analysis is still running.") + "\n")
	}

	if len(an.Opportunities) > 0 {
		b.WriteString("\n" + th.Subtitle.Render("Opportunities") + "\n")
		for _, o := range an.Opportunities {
			fmt.Fprintf(&b, "%s %s  %s\n", levelBadge(th, o.Priority), th.Bold.Render(o.Title), th.Muted.Render(o.PotentialRevenue))
			if o.Description != "" {
				b.WriteString("   " + o.Description + "\n")
			}
		}
	}
	return b.String()
}

func renderReportDetail(th themes.Theme, r model.Report) string {
	header := th.Muted.Render(r.ReportType.Label() + " · " + r.CreatedAt.Format(time.DateOnly))
	return header + "\n\n" + r.Content
}

func statusBadge(th themes.Theme, s model.AnalysisStatus) string {
	if s.IsCompleted() {
		return th.StatusSuccess.Render("[" + s.Label() + "]")
	}
	return th.StatusPending.Render("[" + s.Label() + "]")
}

func levelBadge(th themes.Theme, l model.Level) string {
	switch l {
	case model.LevelHigh:
		return th.StatusError.Render("●")
	case model.LevelMedium:
		return th.StatusWarning.Render("●")
	default:
		return th.StatusSuccess.Render("●")
	}
}

// compact formats an amount as 1.2K, 3.4M.
func compact(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.0fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
