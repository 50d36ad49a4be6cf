package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/marketpulse/internal/common"
	"github.com/Veraticus/marketpulse/internal/gate"
	"github.com/Veraticus/marketpulse/internal/model"
	"github.com/Veraticus/marketpulse/internal/resource"
	"github.com/Veraticus/marketpulse/internal/session"
	"github.com/Veraticus/marketpulse/internal/views"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// priorityFilters is the cycle order of the opportunities filter.
var priorityFilters = []string{
	views.PriorityAll,
	string(model.LevelHigh),
	string(model.LevelMedium),
	string(model.LevelLow),
}

// confirmation is a pending removal waiting for y/n.
type confirmation struct {
	prompt string
	id     string
}

// detail is a full-screen viewer over an analysis or a report.
type detail struct {
	report   *model.Report
	title    string
	viewport viewport.Model
}

// Model is the root bubbletea model. The route gate is evaluated again after
// every message, so a session change from any source shows up immediately.
type Model struct {
	ctx        context.Context
	viewCtx    context.Context
	cancelView context.CancelFunc

	session *session.Controller
	router  *gate.Router
	notices *noticeQueue

	dashboard *views.Dashboard
	analyses  *views.Analyses
	opps      *views.Opportunities
	reports   *views.Reports

	form    *form
	confirm *confirmation
	detail  *detail
	toasts  []toast

	spinner spinner.Model
	help    help.Model
	keymap  KeyMap
	config  Config

	requested gate.Route
	route     gate.Route
	outcome   gate.Outcome
	state     session.State

	cursor   int
	priority int
	toastSeq int
	width    int
	height   int

	busy     bool
	quitting bool
}

// New creates the root model. The session is initialized by Init.
func New(ctx context.Context, sess *session.Controller, backend views.Backend, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	queue := &noticeQueue{}
	deps := views.Deps{Backend: backend, Session: sess, Notifier: queue}
	router := gate.NewRouter()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(cfg.Theme.Primary)),
	)

	viewCtx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:        ctx,
		viewCtx:    viewCtx,
		cancelView: cancel,
		session:    sess,
		router:     router,
		notices:    queue,
		dashboard:  views.NewDashboard(deps),
		analyses:   views.NewAnalyses(deps),
		opps:       views.NewOpportunities(deps),
		reports:    views.NewReports(deps),
		spinner:    sp,
		help:       help.New(),
		keymap:     DefaultKeyMap(),
		config:     cfg,
		requested:  router.Normalize(string(cfg.StartRoute)),
		state:      sess.State(),
		width:      cfg.Width,
		height:     cfg.Height,
	}
}

// Init restores the stored session.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{initSession(m.ctx, m.session)}
	if m.config.Animations {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.handle(msg)
	if m.quitting {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.drainNotices(), m.syncGate())
}

func (m *Model) handle(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.detail != nil {
			m.detail.viewport.Width = m.contentWidth()
			m.detail.viewport.Height = m.contentHeight()
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.config.Animations {
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case sessionInitializedMsg:
		if msg.err != nil {
			return m.pushToast(resource.Notice{
				Level:   resource.LevelError,
				Message: common.Message(msg.err, "Could not restore your session"),
			})
		}
		return nil

	case authResultMsg:
		m.busy = false
		if msg.err == nil {
			return nil
		}
		fallback := session.LoginFailedMessage
		if msg.register {
			fallback = session.RegisterFailedMessage
		}
		return m.pushToast(resource.Notice{Level: resource.LevelError, Message: common.Message(msg.err, fallback)})

	case loadedMsg:
		if msg.route == m.route {
			m.clampCursor()
		}
		return nil

	case createdMsg:
		if msg.err == nil && msg.route == m.route {
			m.form = nil
			m.cursor = 0
		}
		return nil

	case removedMsg:
		m.clampCursor()
		return nil

	case analysisDetailMsg:
		if msg.err != nil || m.route != gate.RouteAnalyses {
			return nil
		}
		m.openDetail(msg.analysis.Title, renderAnalysisDetail(m.config.Theme, msg.analysis), nil)
		return nil

	case exportedMsg:
		if msg.err != nil {
			return m.pushToast(resource.Notice{
				Level:   resource.LevelError,
				Message: common.Message(msg.err, "Failed to export report"),
			})
		}
		return m.pushToast(resource.Notice{Level: resource.LevelSuccess, Message: "Report saved to " + msg.path})

	case toastExpiredMsg:
		m.dismissToast(msg.id)
		return nil
	}

	if m.detail != nil {
		var cmd tea.Cmd
		m.detail.viewport, cmd = m.detail.viewport.Update(msg)
		return cmd
	}
	if m.form != nil {
		return m.form.passthrough(msg)
	}
	return nil
}

// syncGate resolves the requested route against the current session state
// and enters the result when it differs from what is shown.
func (m *Model) syncGate() tea.Cmd {
	state := m.session.State()
	res := m.router.Navigate(m.requested, state)
	if res.Redirect {
		m.requested = res.Route
	}
	m.state = state

	if res.Route == m.route && res.Outcome == m.outcome {
		return nil
	}
	m.route, m.outcome = res.Route, res.Outcome
	return m.enter()
}

// enter resets per-screen state and starts whatever the new screen needs.
func (m *Model) enter() tea.Cmd {
	m.cancelView()
	m.viewCtx, m.cancelView = context.WithCancel(m.ctx)

	m.form, m.confirm, m.detail = nil, nil, nil
	m.cursor, m.busy = 0, false
	m.analyses.CloseForm()
	m.reports.CloseForm()

	if m.outcome != gate.Allow {
		return nil
	}

	switch m.route {
	case gate.RouteLogin:
		return m.openForm(loginForm(m.keymap))
	case gate.RouteRegister:
		return m.openForm(registerForm(m.keymap))
	case gate.RouteLanding:
		return nil
	default:
		return m.mountCurrent()
	}
}

func (m *Model) mountCurrent() tea.Cmd {
	switch m.route {
	case gate.RouteDashboard:
		return mount(m.viewCtx, m.route, m.dashboard.Mount)
	case gate.RouteAnalyses:
		return mount(m.viewCtx, m.route, m.analyses.Mount)
	case gate.RouteOpportunities:
		return mount(m.viewCtx, m.route, m.opps.Mount)
	case gate.RouteReports:
		return mount(m.viewCtx, m.route, m.reports.Mount)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keymap.ForceQuit) {
		return m.quit()
	}

	switch {
	case m.confirm != nil:
		return m.handleConfirmKey(msg)
	case m.form != nil:
		return m.handleFormKey(msg)
	case m.detail != nil:
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}

	if m.outcome != gate.Allow {
		return nil
	}
	if m.route == gate.RouteLanding {
		if key.Matches(msg, m.keymap.Open) {
			m.requested = gate.RouteDashboard
		}
		return nil
	}
	if !m.router.Protected(m.route) {
		return nil
	}

	switch {
	case key.Matches(msg, m.keymap.Dashboard):
		m.requested = gate.RouteDashboard
		return nil
	case key.Matches(msg, m.keymap.Analyses):
		m.requested = gate.RouteAnalyses
		return nil
	case key.Matches(msg, m.keymap.Opportunities):
		m.requested = gate.RouteOpportunities
		return nil
	case key.Matches(msg, m.keymap.Reports):
		m.requested = gate.RouteReports
		return nil
	case key.Matches(msg, m.keymap.Refresh):
		return m.mountCurrent()
	case key.Matches(msg, m.keymap.Logout):
		if err := m.session.Logout(m.ctx); err != nil {
			return m.pushToast(resource.Notice{Level: resource.LevelError, Message: common.Message(err, "Logout failed")})
		}
		return m.pushToast(resource.Notice{Level: resource.LevelInfo, Message: "Signed out"})
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1)
		return nil
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1)
		return nil
	}

	switch m.route {
	case gate.RouteAnalyses:
		return m.handleAnalysesKey(msg)
	case gate.RouteOpportunities:
		if key.Matches(msg, m.keymap.Filter) {
			m.priority = (m.priority + 1) % len(priorityFilters)
			m.cursor = 0
		}
	case gate.RouteReports:
		return m.handleReportsKey(msg)
	}
	return nil
}

func (m *Model) handleAnalysesKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.New):
		m.analyses.OpenForm()
		return m.openForm(analysisForm(m.keymap))
	case key.Matches(msg, m.keymap.Delete):
		if an, ok := m.selectedAnalysis(); ok {
			m.confirm = &confirmation{prompt: m.analyses.RemovePrompt(), id: an.ID}
		}
	case key.Matches(msg, m.keymap.Open):
		if an, ok := m.selectedAnalysis(); ok {
			return fetchAnalysis(m.viewCtx, m.analyses, an.ID)
		}
	}
	return nil
}

func (m *Model) handleReportsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.New):
		m.reports.OpenForm()
		return m.openForm(reportForm(m.keymap, m.reports.Analyses.Items()))
	case key.Matches(msg, m.keymap.Open):
		if rep, ok := m.selectedReport(); ok {
			m.openDetail(rep.Title, renderReportDetail(m.config.Theme, rep), &rep)
		}
	case key.Matches(msg, m.keymap.Export):
		if rep, ok := m.selectedReport(); ok {
			return exportReport(m.config.ExportDir, rep, m.config.Export)
		}
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		id := m.confirm.id
		m.confirm = nil
		return removeAnalysis(m.viewCtx, m.analyses, id)
	case key.Matches(msg, m.keymap.Cancel):
		m.confirm = nil
	}
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	auth := m.route == gate.RouteLogin || m.route == gate.RouteRegister
	if auth && key.Matches(msg, m.keymap.SwitchAuth) {
		if m.route == gate.RouteLogin {
			m.requested = gate.RouteRegister
		} else {
			m.requested = gate.RouteLogin
		}
		return nil
	}
	if m.submitting() {
		return nil
	}

	action, cmd := m.form.update(msg)
	switch action {
	case formCancel:
		if auth {
			m.requested = gate.RouteLanding
			return nil
		}
		m.closeForm()
		return nil
	case formSubmit:
		return m.submitForm()
	}
	return cmd
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Back), key.Matches(msg, m.keymap.Quit):
		m.detail = nil
		return nil
	case key.Matches(msg, m.keymap.Export) && m.detail.report != nil:
		return exportReport(m.config.ExportDir, *m.detail.report, m.config.Export)
	}
	var cmd tea.Cmd
	m.detail.viewport, cmd = m.detail.viewport.Update(msg)
	return cmd
}

func (m *Model) submitForm() tea.Cmd {
	f := m.form
	switch m.route {
	case gate.RouteLogin:
		m.busy = true
		return login(m.viewCtx, m.session, f.value("email"), f.value("password"))
	case gate.RouteRegister:
		m.busy = true
		return register(m.viewCtx, m.session, model.Registration{
			FullName:    f.value("full_name"),
			CompanyName: f.value("company_name"),
			Email:       f.value("email"),
			Password:    f.value("password"),
		})
	case gate.RouteAnalyses:
		return createAnalysis(m.viewCtx, m.analyses, views.AnalysisInput{
			Title:        f.value("title"),
			Industry:     f.value("industry"),
			TargetMarket: f.value("target_market"),
			Competitors:  f.value("competitors"),
			Description:  f.value("description"),
		})
	case gate.RouteReports:
		return createReport(m.viewCtx, m.reports, views.ReportInput{
			AnalysisID: f.value("analysis_id"),
			ReportType: model.ReportType(f.value("report_type")),
		})
	}
	return nil
}

// submitting reports whether the open form has a request in flight.
func (m *Model) submitting() bool {
	switch m.route {
	case gate.RouteAnalyses:
		return m.analyses.Submitting()
	case gate.RouteReports:
		return m.reports.Submitting()
	}
	return m.busy
}

func (m *Model) openForm(f *form) tea.Cmd {
	if !m.config.Animations {
		f.staticCursor()
	}
	m.form = f
	return f.start()
}

func (m *Model) closeForm() {
	m.form = nil
	m.analyses.CloseForm()
	m.reports.CloseForm()
}

func (m *Model) openDetail(title, body string, rep *model.Report) {
	vp := viewport.New(m.contentWidth(), m.contentHeight())
	vp.SetContent(body)
	m.detail = &detail{title: title, viewport: vp, report: rep}
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	m.cancelView()
	return tea.Quit
}

// listLen is the number of selectable rows on the current screen.
func (m *Model) listLen() int {
	switch m.route {
	case gate.RouteAnalyses:
		return m.analyses.Len()
	case gate.RouteOpportunities:
		return len(m.filteredOpportunities())
	case gate.RouteReports:
		return m.reports.Len()
	}
	return 0
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.listLen()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selectedAnalysis() (model.Analysis, bool) {
	items := m.analyses.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.Analysis{}, false
	}
	return items[m.cursor], true
}

func (m *Model) selectedReport() (model.Report, bool) {
	items := m.reports.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.Report{}, false
	}
	return items[m.cursor], true
}

func (m *Model) filteredOpportunities() []model.Opportunity {
	return m.opps.FilterByPriority(priorityFilters[m.priority])
}

func (m *Model) contentWidth() int {
	return max(m.width-4, 20)
}

func (m *Model) contentHeight() int {
	return max(m.height-8, 5)
}

// Route is the screen currently shown.
func (m Model) Route() gate.Route {
	return m.route
}

func loginForm(km KeyMap) *form {
	return newForm("Sign in to MarketPulse", "Sign in", km).
		text("email", "Email", "you@company.com", true).
		secret("password", "Password")
}

func registerForm(km KeyMap) *form {
	return newForm("Create your account", "Create account", km).
		text("full_name", "Full name", "Jane Doe", true).
		text("company_name", "Company", "Acme Inc.", true).
		text("email", "Email", "you@company.com", true).
		secret("password", "Password")
}

func analysisForm(km KeyMap) *form {
	return newForm("New market analysis", "Create analysis", km).
		text("title", "Title", "EU e-bike market", true).
		choice("industry", "Industry", model.Industries, model.Industries).
		text("target_market", "Target market", "Urban commuters in Germany", true).
		text("competitors", "Competitors", "Comma separated", false).
		text("description", "Description", "What should the analysis focus on?", false)
}

func reportForm(km KeyMap, analyses []model.Analysis) *form {
	ids := make([]string, 0, len(analyses))
	titles := make([]string, 0, len(analyses))
	for _, an := range analyses {
		ids = append(ids, an.ID)
		titles = append(titles, an.Title)
	}

	types := make([]string, 0, len(model.ReportTypes))
	labels := make([]string, 0, len(model.ReportTypes))
	for _, t := range model.ReportTypes {
		types = append(types, string(t))
		labels = append(labels, t.Label())
	}

	return newForm("Generate report", "Generate", km).
		choice("analysis_id", "Analysis", ids, titles).
		choice("report_type", "Report type", types, labels)
}

// helpKeys returns the bindings relevant to what is on screen.
func (m Model) helpKeys() contextKeys {
	km := m.keymap
	app := []key.Binding{km.Help, km.Quit}
	nav := []key.Binding{km.Dashboard, km.Analyses, km.Opportunities, km.Reports}

	switch {
	case m.confirm != nil:
		return contextKeys{short: []key.Binding{km.Confirm, km.Cancel}}
	case m.form != nil && (m.route == gate.RouteLogin || m.route == gate.RouteRegister):
		return contextKeys{short: []key.Binding{km.Next, km.Open, km.SwitchAuth, km.ForceQuit}}
	case m.form != nil:
		return contextKeys{short: []key.Binding{km.Next, km.Choice, km.Open, km.Back}}
	case m.detail != nil:
		keys := []key.Binding{km.Up, km.Down, km.Back}
		if m.detail.report != nil {
			keys = append(keys, km.Export)
		}
		return contextKeys{short: keys}
	case m.route == gate.RouteLanding:
		return contextKeys{short: append([]key.Binding{km.Open}, app...)}
	case !m.router.Protected(m.route):
		return contextKeys{short: app}
	}

	var actions []key.Binding
	switch m.route {
	case gate.RouteAnalyses:
		actions = []key.Binding{km.Up, km.Down, km.Open, km.New, km.Delete}
	case gate.RouteOpportunities:
		actions = []key.Binding{km.Up, km.Down, km.Filter}
	case gate.RouteReports:
		actions = []key.Binding{km.Up, km.Down, km.Open, km.New, km.Export}
	}
	actions = append(actions, km.Refresh)

	return contextKeys{
		short: append(append([]key.Binding{}, actions...), app...),
		full:  [][]key.Binding{actions, nav, {km.Logout, km.Help, km.Quit}},
	}
}

func (m Model) userLabel() string {
	u := m.session.User()
	if u == nil {
		return ""
	}
	if u.CompanyName != "" {
		return fmt.Sprintf("%s · %s", u.FullName, u.CompanyName)
	}
	return u.FullName
}
