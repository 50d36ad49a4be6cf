package tui

import (
	"context"

	"github.com/Veraticus/marketpulse/internal/export"
	"github.com/Veraticus/marketpulse/internal/gate"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/Veraticus/marketpulse/internal/session"
	"github.com/Veraticus/marketpulse/internal/views"
	tea "github.com/charmbracelet/bubbletea"
)

func initSession(ctx context.Context, sess *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return sessionInitializedMsg{err: sess.Initialize(ctx)}
	}
}

func login(ctx context.Context, sess *session.Controller, email, password string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{err: sess.Login(ctx, email, password)}
	}
}

func register(ctx context.Context, sess *session.Controller, reg model.Registration) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{err: sess.Register(ctx, reg), register: true}
	}
}

// mount loads the data behind route.
func mount(ctx context.Context, route gate.Route, load func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{route: route, err: load(ctx)}
	}
}

func createAnalysis(ctx context.Context, a *views.Analyses, in views.AnalysisInput) tea.Cmd {
	return func() tea.Msg {
		_, err := a.Create(ctx, in)
		return createdMsg{route: gate.RouteAnalyses, err: err}
	}
}

func createReport(ctx context.Context, r *views.Reports, in views.ReportInput) tea.Cmd {
	return func() tea.Msg {
		_, err := r.Create(ctx, in)
		return createdMsg{route: gate.RouteReports, err: err}
	}
}

// removeAnalysis runs after the user confirmed in the modal.
func removeAnalysis(ctx context.Context, a *views.Analyses, id string) tea.Cmd {
	return func() tea.Msg {
		return removedMsg{id: id, err: a.Remove(ctx, id, resource.Confirmed)}
	}
}

func fetchAnalysis(ctx context.Context, a *views.Analyses, id string) tea.Cmd {
	return func() tea.Msg {
		an, err := a.Get(ctx, id)
		return analysisDetailMsg{analysis: an, err: err}
	}
}

func exportReport(dir string, report model.Report, format export.Format) tea.Cmd {
	return func() tea.Msg {
		path, err := export.Write(dir, report, format)
		return exportedMsg{path: path, err: err}
	}
}
