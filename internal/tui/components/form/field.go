// Package form provides the small field set the comment editor is built
// from, with focus cycling handled by Dialog.
package form

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

// Field is the interface implemented by all form field types.
type Field interface {
	Update(msg tea.Msg) (Field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Value() string
	SetValue(string)
	Label() string
}

func fieldFrame(label string, focused bool, body string) string {
	title := styles.MutedStyle.Render(label)
	border := styles.FormFieldStyle
	if focused {
		title = styles.TitleStyle.Render(label)
		border = styles.FormFieldFocusedStyle
	}
	return border.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}
