package tui

import (
	"github.com/Veraticus/marketpulse/internal/gate"
	"github.com/Veraticus/marketpulse/internal/model"
)

// Session messages.
type sessionInitializedMsg struct {
	err error
}

type authResultMsg struct {
	err      error
	register bool
}

// Resource messages. The controllers hold the data; these only report
// completion.
type loadedMsg struct {
	err   error
	route gate.Route
}

type createdMsg struct {
	err   error
	route gate.Route
}

type removedMsg struct {
	err error
	id  string
}

type analysisDetailMsg struct {
	err      error
	analysis model.Analysis
}

type exportedMsg struct {
	err  error
	path string
}

// UI messages.
type toastExpiredMsg struct {
	id int
}
