package gate

import (
	"strings"

	"github.com/Veraticus/marketpulse/internal/session"
)

// Route is an application path.
type Route string

// Application routes.
const (
	RouteLanding       Route = "/"
	RouteLogin         Route = "/login"
	RouteRegister      Route = "/register"
	RouteDashboard     Route = "/dashboard"
	RouteAnalyses      Route = "/analyses"
	RouteOpportunities Route = "/opportunities"
	RouteReports       Route = "/reports"
)

// maxHops bounds redirect chains so a misconfigured table cannot loop.
const maxHops = 4

// Resolution is where a navigation ended up.
type Resolution struct {
	Route    Route
	Outcome  Outcome
	Redirect bool
}

// Router maps routes to gates.
type Router struct {
	gates map[Route]Gate
}

// NewRouter returns the application's route table.
func NewRouter() *Router {
	protected := Protected{SignIn: RouteLogin}
	publicOnly := PublicOnly{Home: RouteDashboard}

	return &Router{gates: map[Route]Gate{
		RouteLanding:       Open,
		RouteLogin:         publicOnly,
		RouteRegister:      publicOnly,
		RouteDashboard:     protected,
		RouteAnalyses:      protected,
		RouteOpportunities: protected,
		RouteReports:       protected,
	}}
}

// Normalize cleans a user-typed route. Unknown routes map to the landing page.
func (r *Router) Normalize(raw string) Route {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RouteLanding
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	if len(raw) > 1 {
		raw = strings.TrimRight(raw, "/")
	}
	route := Route(strings.ToLower(raw))
	if _, ok := r.gates[route]; !ok {
		return RouteLanding
	}
	return route
}

// Gate returns the gate guarding route.
func (r *Router) Gate(route Route) Gate {
	if g, ok := r.gates[route]; ok {
		return g
	}
	return Open
}

// Protected reports whether route requires a signed-in user.
func (r *Router) Protected(route Route) bool {
	_, ok := r.Gate(route).(Protected)
	return ok
}

// Navigate follows redirects from route until a gate allows or defers.
func (r *Router) Navigate(route Route, state session.State) Resolution {
	route = r.Normalize(string(route))
	redirected := false

	for range maxHops {
		d := r.Gate(route).Evaluate(state)
		if d.Outcome != Redirect {
			return Resolution{Route: route, Outcome: d.Outcome, Redirect: redirected}
		}
		route = d.RedirectTo
		redirected = true
	}
	return Resolution{Route: RouteLanding, Outcome: Allow, Redirect: true}
}

// Routes lists every known route.
func (r *Router) Routes() []Route {
	return []Route{
		RouteLanding, RouteLogin, RouteRegister,
		RouteDashboard, RouteAnalyses, RouteOpportunities, RouteReports,
	}
}
