package components

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

const confirmWidth = 50

var (
	confirmYes    = key.NewBinding(key.WithKeys("y", "Y"))
	confirmNo     = key.NewBinding(key.WithKeys("n", "N", "esc", "q"))
	confirmToggle = key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab"))
	confirmEnter  = key.NewBinding(key.WithKeys("enter"))
)

// ConfirmModal is a yes/no confirmation dialog. No is selected initially.
type ConfirmModal struct {
	message   string
	yes       bool
	confirmed bool
	cancelled bool
}

// NewConfirmModal creates a new confirmation modal.
func NewConfirmModal(message string) ConfirmModal {
	return ConfirmModal{message: message}
}

// Update handles input for the confirmation modal.
func (m ConfirmModal) Update(msg tea.Msg) (ConfirmModal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmYes):
		m.confirmed = true
	case key.Matches(keyMsg, confirmNo):
		m.cancelled = true
	case key.Matches(keyMsg, confirmToggle):
		m.yes = !m.yes
	case key.Matches(keyMsg, confirmEnter):
		if m.yes {
			m.confirmed = true
		} else {
			m.cancelled = true
		}
	}

	return m, nil
}

// View renders the modal box.
func (m ConfirmModal) View() string {
	yes, no := styles.ModalButtonStyle, styles.ModalButtonSelectedStyle
	if m.yes {
		yes, no = no, yes
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Yes"), "  ", no.Render("No"))
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render(wordwrap.String(m.message, confirmWidth)),
		"",
		buttons,
		styles.ModalHelpStyle.Render("y/n  ←/→ choose  enter confirm"),
	)
	return styles.ModalStyle.Render(body)
}

// Overlay renders the modal centered over background.
func (m ConfirmModal) Overlay(background string, width, height int) string {
	return Overlay(background, m.View(), width, height)
}

// Confirmed returns true if user confirmed.
func (m ConfirmModal) Confirmed() bool {
	return m.confirmed
}

// Cancelled returns true if user cancelled.
func (m ConfirmModal) Cancelled() bool {
	return m.cancelled
}

// Done reports whether the user answered either way.
func (m ConfirmModal) Done() bool {
	return m.confirmed || m.cancelled
}
