// Package timer is the standalone countdown popup a candidate keeps next to
// their editor: remaining time, a ready action, and an expired state.
package timer

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/internal/tui"
)

type sessionLoadedMsg struct {
	sess review.Session
	err  error
}

type readyDoneMsg struct {
	res review.ReadyResult
	err error
}

type refreshTickMsg struct{}

// Model is the timer popup.
type Model struct {
	app   *desk.App
	host  *tui.Host
	token string
	keys  keyMap
	help  help.Model

	sess    *review.Session
	loadErr error
	marking bool
	expired bool

	width int
}

// New returns a timer for the session with the given access token.
func New(app *desk.App, token string, opts tui.HostOptions) *Model {
	return &Model{
		app:   app,
		host:  tui.NewHost(app, "timer", opts),
		token: token,
		keys:  defaultKeys(),
		help:  help.New(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.host.Init(), m.loadSession(), m.scheduleRefresh())
}

func (m *Model) loadSession() tea.Cmd {
	sessions, token := m.app.Sessions, m.token
	return func() tea.Msg {
		sess, err := sessions.Fetch(context.Background(), review.ByToken(token))
		return sessionLoadedMsg{sess: sess, err: err}
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.app.Config.UI.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m *Model) markReady() tea.Cmd {
	sessions, token := m.app.Sessions, m.token
	return func() tea.Msg {
		res, err := sessions.MarkReady(context.Background(), token)
		return readyDoneMsg{res: res, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.host.Update(msg)
	m.checkExit()
	if handled {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case sessionLoadedMsg:
		if msg.err != nil {
			m.loadErr = msg.err
			if m.sess == nil {
				return m, nil
			}
			return m, m.host.Errorf("refresh failed: %v", msg.err)
		}
		first := m.sess == nil || m.sess.ID != msg.sess.ID
		m.sess = &msg.sess
		m.loadErr = nil
		if first {
			m.host.Bind(msg.sess.ID)
		} else {
			m.host.Countdown.Refresh()
		}
		m.checkExit()
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.loadSession(), m.scheduleRefresh())

	case readyDoneMsg:
		m.marking = false
		if msg.err != nil {
			return m, m.host.Errorf("mark ready failed: %v", msg.err)
		}
		if m.sess != nil && m.sess.CandidateReadyAt == nil {
			now := time.Now()
			if msg.res.ReadyAt != nil {
				now = *msg.res.ReadyAt
			}
			m.sess.CandidateReadyAt = &now
		}
		if msg.res.AlreadyReady {
			return m, m.host.Infof("Already marked ready")
		}
		return m, m.host.Infof("Marked ready. Your reviewer has been notified.")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Ready):
		if m.sess == nil || m.marking || m.sess.IsReady() || m.expired {
			return m, nil
		}
		m.marking = true
		return m, m.markReady()
	}
	return m, nil
}

// checkExit moves into or out of the expired state. A countdown that
// revives after a late extend leaves it again.
func (m *Model) checkExit() {
	if m.host.TakeExit() {
		m.expired = true
		return
	}
	if m.expired {
		if s := m.host.Header.Snapshot(); s.Known && s.Remaining > 0 {
			m.expired = false
		}
	}
}

func (m *Model) quit() tea.Cmd {
	if err := m.app.Companion().TimerClosed(context.Background(), m.token); err != nil {
		m.host.Errorf("release timer flag: %v", err)
	}
	m.host.Close()
	return tea.Quit
}

// Expired reports whether the session ended while the timer was open.
func (m *Model) Expired() bool { return m.expired }

func (m *Model) View() string {
	if m.sess == nil {
		if m.loadErr != nil {
			msg := "Could not load session: " + m.loadErr.Error()
			if errors.Is(m.loadErr, review.ErrNotFound) {
				msg = "Session not found. Check your access token."
			}
			return styles.ErrorStyle.Render(msg) + "\n" + m.help.View(m.keys)
		}
		return styles.MutedStyle.Render(styles.IconClock + " Loading session...")
	}

	rows := []string{
		styles.TitleStyle.Render("Code Review Session") + styles.MutedStyle.Render(" · "+m.sess.CandidateName),
		"",
		m.host.Header.Clock(),
		m.host.Header.Bar(),
		"",
		m.status(),
		"",
		m.help.View(m.keys),
	}

	return m.host.Frame(lipgloss.JoinVertical(lipgloss.Left, rows...), m.width)
}

func (m *Model) status() string {
	switch {
	case m.expired:
		return styles.ExpiredStyle.Render("Session expired. Please contact your reviewer.")
	case m.sess.IsReady():
		return styles.ReadyBadgeStyle.Render(styles.IconCheck + " Ready")
	case m.marking:
		return styles.MutedStyle.Render("Marking ready...")
	}
	return styles.MutedStyle.Render("Press r when you have finished your review.")
}
