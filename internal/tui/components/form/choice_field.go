package form

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

var (
	choiceNext = key.NewBinding(key.WithKeys("right", "l", " "))
	choicePrev = key.NewBinding(key.WithKeys("left", "h"))
)

// ChoiceField picks one of a fixed set of options, cycling with the
// arrow keys. All options are shown on one line.
type ChoiceField struct {
	options  []string
	selected int
	label    string
	focused  bool
}

// NewChoiceField creates a choice field. defaultVal pre-selects the matching
// option if found, otherwise the first option is selected.
func NewChoiceField(label string, options []string, defaultVal string) *ChoiceField {
	f := &ChoiceField{options: options, label: label}
	f.SetValue(defaultVal)
	return f
}

func (f *ChoiceField) Update(msg tea.Msg) (Field, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !f.focused || !ok || len(f.options) == 0 {
		return f, nil
	}

	switch {
	case key.Matches(keyMsg, choiceNext):
		f.Next()
	case key.Matches(keyMsg, choicePrev):
		f.selected = (f.selected - 1 + len(f.options)) % len(f.options)
	}
	return f, nil
}

// Next selects the following option, wrapping at the end.
func (f *ChoiceField) Next() {
	if len(f.options) > 0 {
		f.selected = (f.selected + 1) % len(f.options)
	}
}

func (f *ChoiceField) View() string {
	parts := make([]string, len(f.options))
	for i, opt := range f.options {
		if i == f.selected {
			parts[i] = styles.ModalButtonSelectedStyle.Render(opt)
		} else {
			parts[i] = styles.ModalButtonStyle.Render(opt)
		}
	}
	return fieldFrame(f.label, f.focused, strings.Join(parts, " "))
}

func (f *ChoiceField) Focus() tea.Cmd {
	f.focused = true
	return nil
}

func (f *ChoiceField) Blur() { f.focused = false }

func (f *ChoiceField) Focused() bool { return f.focused }

func (f *ChoiceField) Value() string {
	if len(f.options) == 0 {
		return ""
	}
	return f.options[f.selected]
}

func (f *ChoiceField) SetValue(v string) {
	for i, opt := range f.options {
		if opt == v {
			f.selected = i
			return
		}
	}
}

func (f *ChoiceField) Label() string { return f.label }
