// Package gate decides whether a route may render for the current sign-in
// state.
package gate

import (
	"fmt"

	"github.com/Veraticus/marketpulse/internal/session"
)

// Outcome is what a gate decided.
type Outcome int

const (
	// Allow renders the guarded view.
	Allow Outcome = iota
	// Defer renders a neutral loading view; the state is not known yet.
	Defer
	// Redirect navigates to Decision.RedirectTo.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Defer:
		return "defer"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Decision is the result of evaluating a gate.
type Decision struct {
	RedirectTo Route
	Outcome    Outcome
}

// Gate evaluates a sign-in state. Implementations must be pure.
type Gate interface {
	Evaluate(state session.State) Decision
}

// Protected admits authenticated users and sends everyone else to SignIn.
type Protected struct {
	SignIn Route
}

// Evaluate implements Gate.
func (g Protected) Evaluate(state session.State) Decision {
	switch state {
	case session.Authenticated:
		return Decision{Outcome: Allow}
	case session.Anonymous:
		return Decision{Outcome: Redirect, RedirectTo: g.SignIn}
	default:
		return Decision{Outcome: Defer}
	}
}

// PublicOnly admits anonymous users and sends signed-in users Home.
type PublicOnly struct {
	Home Route
}

// Evaluate implements Gate.
func (g PublicOnly) Evaluate(state session.State) Decision {
	switch state {
	case session.Anonymous:
		return Decision{Outcome: Allow}
	case session.Authenticated:
		return Decision{Outcome: Redirect, RedirectTo: g.Home}
	default:
		return Decision{Outcome: Defer}
	}
}

type open struct{}

func (open) Evaluate(session.State) Decision {
	return Decision{Outcome: Allow}
}

// Open admits every state, including Initializing.
var Open Gate = open{}
