package resource

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

var (
	// Confirmed approves without asking, for callers that already asked.
	Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })
	// Declined refuses everything.
	Declined Confirmer = ConfirmFunc(func(string) bool { return false })
)
