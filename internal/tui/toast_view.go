package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/hay-kot/reviewdesk/internal/core/notify"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders toast notifications below a view's content.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders the toast stack with the oldest toast on top.
func (v *ToastView) View() string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}

	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.notification.Level {
	case notify.LevelError:
		icon = styles.IconError
		style = styles.ToastErrorStyle
	case notify.LevelWarning:
		icon = styles.IconWarn
		style = styles.ToastWarningStyle
	default:
		icon = styles.IconInfo
		style = styles.ToastInfoStyle
	}

	content := wordwrap.String(icon+" "+t.notification.Message, toastWidth-4)
	return style.Width(toastWidth).Render(content)
}

// Attach appends the toast stack to background, right aligned to width.
func (v *ToastView) Attach(background string, width int) string {
	toastContent := v.View()
	if toastContent == "" {
		return background
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		background,
		lipgloss.PlaceHorizontal(max(width, toastWidth), lipgloss.Right, toastContent),
	)
}
