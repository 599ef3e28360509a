package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/protodo/internal/model"
)

type field struct {
	name  string
	label string
}

// form is a column of text inputs with per-field error messages.
type form struct {
	fields []field
	inputs []textinput.Model
	focus  int
	errs   model.FieldErrors
	// err is the form-level error shown under the fields
	err string
	// note is an informational line, e.g. after signup
	note string
}

func newForm(fields ...field) form {
	f := form{fields: fields, errs: model.FieldErrors{}}
	for range fields {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		f.inputs = append(f.inputs, ti)
	}
	f.setFocus(0)
	return f
}

func newLoginForm() form {
	f := newForm(
		field{name: "email", label: "Email"},
		field{name: "password", label: "Password"},
	)
	f.inputs[0].Placeholder = "you@example.com"
	f.secret("password")
	return f
}

func newSignupForm() form {
	f := newForm(
		field{name: "first_name", label: "First name"},
		field{name: "last_name", label: "Last name"},
		field{name: "email", label: "Email"},
		field{name: "password", label: "Password"},
		field{name: "confirm_password", label: "Confirm password"},
	)
	f.secret("password")
	f.secret("confirm_password")
	return f
}

func newTaskForm() form {
	f := newForm(
		field{name: "title", label: "Title"},
		field{name: "description", label: "Description"},
		field{name: "priority", label: "Priority (low/medium/high)"},
		field{name: "due_date", label: "Due date (YYYY-MM-DD)"},
	)
	f.inputs[0].Placeholder = "What needs doing?"
	f.inputs[3].Placeholder = "today"
	return f
}

func (f *form) index(name string) int {
	for i, fl := range f.fields {
		if fl.name == name {
			return i
		}
	}
	return -1
}

func (f *form) secret(name string) {
	if i := f.index(name); i >= 0 {
		f.inputs[i].EchoMode = textinput.EchoPassword
		f.inputs[i].EchoCharacter = '•'
	}
}

func (f *form) value(name string) string {
	if i := f.index(name); i >= 0 {
		return f.inputs[i].Value()
	}
	return ""
}

func (f *form) set(name, v string) {
	if i := f.index(name); i >= 0 {
		f.inputs[i].SetValue(v)
	}
}

func (f *form) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) onLast() bool {
	return f.focus == len(f.inputs)-1
}

// reset clears values and messages and focuses the first field.
func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.errs = model.FieldErrors{}
	f.err = ""
	f.note = ""
	f.setFocus(0)
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) view() string {
	var b strings.Builder
	for i, fl := range f.fields {
		label := LabelStyle.Render(fl.label)
		if i == f.focus {
			label = LabelFocusedStyle.Render(fl.label)
		}
		b.WriteString(label + "\n")
		b.WriteString(f.inputs[i].View() + "\n")
		if msg, ok := f.errs[fl.name]; ok {
			b.WriteString(ErrorStyle.Render(msg) + "\n")
		}
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString(ErrorStyle.Render(f.err) + "\n")
	}
	if f.note != "" {
		b.WriteString(NoteStyle.Render(f.note) + "\n")
	}
	return b.String()
}
