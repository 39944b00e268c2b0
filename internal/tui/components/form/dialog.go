package form

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

// DialogKeys are the keys a Dialog handles itself.
type DialogKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Enter  key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func defaultDialogKeys() DialogKeys {
	return DialogKeys{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Enter:  key.NewBinding(key.WithKeys("enter")),
		Submit: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// Dialog is a form container that manages focus cycling, submission, and
// cancellation across a set of form fields. Field values survive a cancel;
// callers decide whether to reopen or Reset.
type Dialog struct {
	Title string
	Keys  DialogKeys

	fields       []Field
	variables    []string // parallel slice: variable name for each field
	focusedField int
	submitted    bool
	cancelled    bool
	err          string
}

// NewDialog creates a form dialog with the given fields and variable names.
// The first field is focused automatically.
func NewDialog(title string, fields []Field, variables []string) *Dialog {
	d := &Dialog{
		Title:     title,
		Keys:      defaultDialogKeys(),
		fields:    fields,
		variables: variables,
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return d
}

// Update handles key input for the dialog, managing focus cycling and
// submit/cancel.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d.updateFocusedField(msg)
	}

	switch {
	case key.Matches(keyMsg, d.Keys.Submit):
		d.submitted = true
		return d, nil
	case key.Matches(keyMsg, d.Keys.Cancel):
		d.cancelled = true
		return d, nil
	case key.Matches(keyMsg, d.Keys.Next):
		return d.moveFocus(1)
	case key.Matches(keyMsg, d.Keys.Prev):
		return d.moveFocus(-1)
	case key.Matches(keyMsg, d.Keys.Enter):
		if d.isTextAreaFocused() {
			return d.updateFocusedField(msg)
		}
		return d.moveFocus(1)
	}

	return d.updateFocusedField(msg)
}

// View renders all fields vertically with the last error and help text.
func (d *Dialog) View() string {
	parts := []string{styles.ModalTitleStyle.Render(d.Title)}
	for _, field := range d.fields {
		parts = append(parts, field.View())
	}

	if d.err != "" {
		parts = append(parts, styles.FormErrorStyle.Render(d.err))
	}

	help := styles.HelpStyle.Render("tab: next  shift+tab: prev  ctrl+s: submit  esc: cancel")
	parts = append(parts, help)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Field returns the field bound to a variable name.
func (d *Dialog) Field(variable string) Field {
	for i, v := range d.variables {
		if v == variable {
			return d.fields[i]
		}
	}
	return nil
}

// FormValues returns a map of variable names to field values.
func (d *Dialog) FormValues() map[string]string {
	result := make(map[string]string, len(d.fields))
	for i, field := range d.fields {
		result[d.variables[i]] = field.Value()
	}
	return result
}

// SetError shows an error under the fields until the next Reopen.
func (d *Dialog) SetError(msg string) { d.err = msg }

func (d *Dialog) Error() string { return d.err }

// Submitted returns whether the form was submitted.
func (d *Dialog) Submitted() bool { return d.submitted }

// Cancelled returns whether the form was cancelled.
func (d *Dialog) Cancelled() bool { return d.cancelled }

// Reopen clears the submitted and cancelled flags so the dialog can be
// shown again with its current values.
func (d *Dialog) Reopen() tea.Cmd {
	d.submitted = false
	d.cancelled = false
	d.err = ""
	if len(d.fields) == 0 {
		return nil
	}
	return d.fields[d.focusedField].Focus()
}

// SetWidth resizes the text fields.
func (d *Dialog) SetWidth(w int) {
	for _, f := range d.fields {
		if s, ok := f.(interface{ SetWidth(int) }); ok {
			s.SetWidth(w)
		}
	}
}

func (d *Dialog) moveFocus(dir int) (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	d.fields[d.focusedField].Blur()
	d.focusedField = (d.focusedField + dir + len(d.fields)) % len(d.fields)
	cmd := d.fields[d.focusedField].Focus()
	return d, cmd
}

func (d *Dialog) updateFocusedField(msg tea.Msg) (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	var cmd tea.Cmd
	d.fields[d.focusedField], cmd = d.fields[d.focusedField].Update(msg)
	return d, cmd
}

func (d *Dialog) isTextAreaFocused() bool {
	if len(d.fields) == 0 {
		return false
	}
	_, ok := d.fields[d.focusedField].(*TextAreaField)
	return ok
}
