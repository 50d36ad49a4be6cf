package tui

import (
	"strings"

	"github.com/Veraticus/marketpulse/internal/tui/themes"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSecret
	fieldChoice
)

// formField is one input of a form. Choice fields cycle through options
// instead of accepting text.
type formField struct {
	input   textinput.Model
	key     string
	label   string
	values  []string
	labels  []string
	choice  int
	kind    fieldKind
	require bool
}

func (f formField) value() string {
	if f.kind == fieldChoice {
		if len(f.values) == 0 {
			return ""
		}
		return f.values[f.choice]
	}
	return f.input.Value()
}

// formAction is what a key press did to the form.
type formAction int

const (
	formEditing formAction = iota
	formSubmit
	formCancel
)

// form is a vertical list of fields with one focused at a time.
type form struct {
	title  string
	submit string
	fields []formField
	focus  int
	keymap KeyMap
}

func newForm(title, submit string, keymap KeyMap) *form {
	return &form{title: title, submit: submit, keymap: keymap}
}

func (f *form) text(key, label, placeholder string, required bool) *form {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 200
	in.Width = 40
	in.Prompt = ""
	f.fields = append(f.fields, formField{key: key, label: label, input: in, kind: fieldText, require: required})
	return f
}

func (f *form) secret(key, label string) *form {
	f.text(key, label, "", true)
	last := &f.fields[len(f.fields)-1]
	last.kind = fieldSecret
	last.input.EchoMode = textinput.EchoPassword
	last.input.EchoCharacter = '•'
	return f
}

func (f *form) choice(key, label string, values, labels []string) *form {
	f.fields = append(f.fields, formField{key: key, label: label, kind: fieldChoice, values: values, labels: labels, require: true})
	return f
}

// staticCursor stops the inputs from blinking.
func (f *form) staticCursor() {
	for i := range f.fields {
		if f.fields[i].kind != fieldChoice {
			f.fields[i].input.Cursor.SetMode(cursor.CursorStatic)
		}
	}
}

// start focuses the first field.
func (f *form) start() tea.Cmd {
	f.focus = 0
	return f.refocus()
}

func (f *form) refocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.fields {
		if f.fields[i].kind == fieldChoice {
			continue
		}
		if i == f.focus {
			cmd = f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
	return cmd
}

// value returns the current value of the field with key.
func (f *form) value(key string) string {
	for _, fld := range f.fields {
		if fld.key == key {
			return fld.value()
		}
	}
	return ""
}

// set fills a text field, used to prefill and in tests.
func (f *form) set(key, value string) {
	for i := range f.fields {
		if f.fields[i].key == key && f.fields[i].kind != fieldChoice {
			f.fields[i].input.SetValue(value)
		}
	}
}

func (f *form) update(msg tea.KeyMsg) (formAction, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keymap.Back):
		return formCancel, nil
	case msg.Type == tea.KeyEnter:
		if f.focus == len(f.fields)-1 {
			return formSubmit, nil
		}
		f.focus++
		return formEditing, f.refocus()
	case key.Matches(msg, f.keymap.Next):
		f.focus = (f.focus + 1) % len(f.fields)
		return formEditing, f.refocus()
	case key.Matches(msg, f.keymap.Prev):
		f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
		return formEditing, f.refocus()
	}

	field := &f.fields[f.focus]
	if field.kind == fieldChoice {
		if n := len(field.values); n > 0 {
			switch msg.Type {
			case tea.KeyLeft:
				field.choice = (field.choice - 1 + n) % n
			case tea.KeyRight, tea.KeySpace:
				field.choice = (field.choice + 1) % n
			}
		}
		return formEditing, nil
	}

	var cmd tea.Cmd
	field.input, cmd = field.input.Update(msg)
	return formEditing, cmd
}

// passthrough hands non-key messages such as cursor blinks to the focused input.
func (f *form) passthrough(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 || f.fields[f.focus].kind == fieldChoice {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view(theme themes.Theme, busy bool, spinner string) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(f.title))
	b.WriteString("\n")

	for i, fld := range f.fields {
		label := fld.label
		if fld.require {
			label += " *"
		}
		style := theme.Muted
		if i == f.focus {
			style = theme.FocusedInput
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")

		if fld.kind == fieldChoice {
			b.WriteString(renderChoice(theme, fld, i == f.focus))
		} else {
			b.WriteString("  " + fld.input.View())
		}
		b.WriteString("\n\n")
	}

	if busy {
		b.WriteString(spinner + " " + theme.StatusPending.Render("Please wait…"))
	} else {
		b.WriteString(theme.Bold.Render("[ " + f.submit + " ]"))
	}
	return theme.RoundedBox.Render(b.String())
}

func renderChoice(theme themes.Theme, fld formField, focused bool) string {
	if len(fld.values) == 0 {
		return "  " + theme.StatusPending.Render("(none available)")
	}
	text := fld.labels[fld.choice]
	if focused {
		return "  ‹ " + theme.Selected.Render(" "+text+" ") + " ›"
	}
	return "  " + theme.Normal.Render(text)
}
