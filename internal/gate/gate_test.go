package gate

import (
	"math/rand/v2"
	"testing"

	"github.com/Veraticus/marketpulse/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStates = []session.State{session.Initializing, session.Anonymous, session.Authenticated}

func TestProtected(t *testing.T) {
	g := Protected{SignIn: RouteLogin}

	tests := []struct {
		state session.State
		want  Decision
	}{
		{session.Initializing, Decision{Outcome: Defer}},
		{session.Anonymous, Decision{Outcome: Redirect, RedirectTo: RouteLogin}},
		{session.Authenticated, Decision{Outcome: Allow}},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, g.Evaluate(tt.state))
		})
	}
}

func TestPublicOnly(t *testing.T) {
	g := PublicOnly{Home: RouteDashboard}

	tests := []struct {
		state session.State
		want  Decision
	}{
		{session.Initializing, Decision{Outcome: Defer}},
		{session.Anonymous, Decision{Outcome: Allow}},
		{session.Authenticated, Decision{Outcome: Redirect, RedirectTo: RouteDashboard}},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, g.Evaluate(tt.state))
		})
	}
}

func TestGates_NeverRedirectWhileInitializing(t *testing.T) {
	r := NewRouter()
	for _, route := range r.Routes() {
		d := r.Gate(route).Evaluate(session.Initializing)
		assert.NotEqual(t, Redirect, d.Outcome, route)
	}
}

func TestRouter_Navigate(t *testing.T) {
	r := NewRouter()

	tests := []struct {
		name  string
		route Route
		state session.State
		want  Resolution
	}{
		{"dashboard signed in", RouteDashboard, session.Authenticated, Resolution{Route: RouteDashboard, Outcome: Allow}},
		{"dashboard signed out", RouteDashboard, session.Anonymous, Resolution{Route: RouteLogin, Outcome: Allow, Redirect: true}},
		{"dashboard loading", RouteDashboard, session.Initializing, Resolution{Route: RouteDashboard, Outcome: Defer}},
		{"login signed in", RouteLogin, session.Authenticated, Resolution{Route: RouteDashboard, Outcome: Allow, Redirect: true}},
		{"register signed out", RouteRegister, session.Anonymous, Resolution{Route: RouteRegister, Outcome: Allow}},
		{"landing loading", RouteLanding, session.Initializing, Resolution{Route: RouteLanding, Outcome: Allow}},
		{"unknown route", Route("/nowhere"), session.Authenticated, Resolution{Route: RouteLanding, Outcome: Allow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Navigate(tt.route, tt.state))
		})
	}
}

func TestRouter_Normalize(t *testing.T) {
	r := NewRouter()
	assert.Equal(t, RouteReports, r.Normalize("reports"))
	assert.Equal(t, RouteReports, r.Normalize(" /Reports/ "))
	assert.Equal(t, RouteLanding, r.Normalize(""))
	assert.Equal(t, RouteLanding, r.Normalize("/admin"))
	assert.True(t, r.Protected(RouteAnalyses))
	assert.False(t, r.Protected(RouteLogin))
}

func TestRouter_CyclicTableFallsBackToLanding(t *testing.T) {
	r := &Router{gates: map[Route]Gate{
		RouteLogin:     PublicOnly{Home: RouteDashboard},
		RouteDashboard: PublicOnly{Home: RouteLogin},
		RouteLanding:   Open,
	}}

	res := r.Navigate(RouteLogin, session.Authenticated)
	assert.Equal(t, RouteLanding, res.Route)
	assert.True(t, res.Redirect)
}

// Over any sequence of sign-ins and sign-outs, a resolved view is never a
// protected view while signed out nor a public-only view while signed in.
func TestRouter_NeverRendersWrongView(t *testing.T) {
	r := NewRouter()
	rng := rand.New(rand.NewPCG(1, 2))
	routes := r.Routes()

	state := session.Initializing
	for range 500 {
		switch rng.IntN(4) {
		case 0:
			state = session.Anonymous
		case 1:
			state = session.Authenticated
		}

		route := routes[rng.IntN(len(routes))]
		res := r.Navigate(route, state)
		require.LessOrEqual(t, int(res.Outcome), int(Defer))

		if res.Outcome != Allow {
			continue
		}
		switch r.Gate(res.Route).(type) {
		case Protected:
			assert.Equal(t, session.Authenticated, state, "protected %s rendered while %s", res.Route, state)
		case PublicOnly:
			assert.Equal(t, session.Anonymous, state, "public %s rendered while %s", res.Route, state)
		}
	}
}

func TestOutcome_String(t *testing.T) {
	for _, s := range allStates {
		assert.NotEmpty(t, s.String())
	}
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "defer", Defer.String())
	assert.Equal(t, "redirect", Redirect.String())
}
