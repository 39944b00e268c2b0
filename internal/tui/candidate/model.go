// Package candidate is the candidate's review surface: the session diff with
// a line cursor, the comment editor, the comment list and the ready action.
// Sessions reviewed through an external pull request show the pull request
// link in place of the diff.
package candidate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/rs/zerolog"

	"github.com/hay-kot/reviewdesk/internal/core/logging"
	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
	"github.com/hay-kot/reviewdesk/internal/core/validate"
	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/internal/effects"
	"github.com/hay-kot/reviewdesk/internal/tui"
	"github.com/hay-kot/reviewdesk/internal/tui/components"
	"github.com/hay-kot/reviewdesk/internal/tui/diff"
)

type mode int

const (
	modeBrowse mode = iota
	modeComment
	modeConfirmReady
	modeComments
)

// chrome is the number of lines around the body: title, countdown,
// status line and help.
const chrome = 5

type (
	sessionLoadedMsg struct {
		sess review.Session
		err  error
	}
	diffLoadedMsg struct {
		raw string
		err error
	}
	commentAddedMsg struct {
		comment review.Comment
		err     error
	}
	readyDoneMsg struct {
		res review.ReadyResult
		err error
	}
	companionMsg struct {
		what   string
		opened bool
		err    error
	}
	refreshTickMsg struct{}
)

// Model is the candidate view.
type Model struct {
	app   *desk.App
	host  *tui.Host
	token string
	keys  keyMap
	help  help.Model
	log   zerolog.Logger

	sess    *review.Session
	loadErr error

	viewer  diff.Viewer
	diffErr error

	mode     mode
	form     *commentForm
	confirm  components.ConfirmModal
	comments viewport.Model

	submitting bool
	marking    bool
	expired    bool

	width  int
	height int
}

// New returns the candidate view for the session with the given token.
func New(app *desk.App, token string, opts tui.HostOptions) *Model {
	return &Model{
		app:      app,
		host:     tui.NewHost(app, "candidate", opts),
		token:    token,
		keys:     defaultKeys(),
		help:     help.New(),
		log:      logging.Component("candidate"),
		viewer:   diff.NewViewer(),
		form:     newCommentForm(),
		comments: viewport.New(80, 10),
		width:    80,
		height:   24,
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

func (m *Model) loadDiff() tea.Cmd {
	sessions, token := m.app.Sessions, m.token
	return func() tea.Msg {
		raw, err := sessions.Diff(context.Background(), review.ByToken(token))
		return diffLoadedMsg{raw: raw, err: err}
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.app.Config.UI.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func (m *Model) submitComment(c review.Comment) tea.Cmd {
	sessions, token := m.app.Sessions, m.token
	return func() tea.Msg {
		added, err := sessions.AddComment(context.Background(), review.ByToken(token), c)
		return commentAddedMsg{comment: added, err: err}
	}
}

func (m *Model) markReady() tea.Cmd {
	sessions, token := m.app.Sessions, m.token
	return func() tea.Msg {
		res, err := sessions.MarkReady(context.Background(), token)
		return readyDoneMsg{res: res, err: err}
	}
}

// openCompanions opens the pull request page and the timer pane, each at
// most once per token across every process on this machine.
func (m *Model) openCompanions() tea.Cmd {
	cfg := m.app.Config.Candidate
	companion := m.app.Companion()
	token, prURL := m.token, m.sess.Gitea.URL()

	var cmds []tea.Cmd
	if cfg.AutoOpenPR && prURL != "" {
		cmds = append(cmds, func() tea.Msg {
			opened, err := companion.OpenPR(context.Background(), token, prURL)
			return companionMsg{what: "pull request", opened: opened, err: err}
		})
	}
	if cfg.AutoOpenTimer {
		cmds = append(cmds, func() tea.Msg {
			opened, err := companion.OpenTimer(context.Background(), token)
			return companionMsg{what: "timer", opened: opened, err: err}
		})
	}
	return tea.Batch(cmds...)
}

func (m *Model) giteaMode() bool {
	return m.sess != nil && m.sess.Gitea != nil && m.sess.Gitea.Enabled
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.host.Update(msg)
	m.checkExit()
	if handled {
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case sessionLoadedMsg:
		return m, m.onSession(msg)

	case diffLoadedMsg:
		if msg.err != nil {
			m.diffErr = msg.err
			return m, m.host.Errorf("load diff: %v", msg.err)
		}
		doc, err := diff.Parse(msg.raw, diff.Options{
			Hide:         m.app.Config.Diff.Hide,
			FallbackFile: m.app.Config.Candidate.DefaultFile,
		})
		if err != nil {
			m.diffErr = err
			return m, m.host.Errorf("parse diff: %v", err)
		}
		m.diffErr = nil
		m.viewer.SetDocument(doc)
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.loadSession(), m.scheduleRefresh())

	case commentAddedMsg:
		m.submitting = false
		if msg.err != nil {
			m.form.Reopen()
			m.form.SetError(submitError(msg.err))
			m.mode = modeComment
			return m, nil
		}
		m.form.clearText()
		m.viewer.ClearSelection()
		m.mode = modeBrowse
		return m, tea.Batch(m.host.Infof("Comment added"), m.loadSession())

	case readyDoneMsg:
		m.marking = false
		if msg.err != nil {
			return m, m.host.Errorf("mark ready failed: %v", msg.err)
		}
		if m.mode == modeComment {
			m.mode = modeBrowse
		}
		note := m.host.Infof("Marked ready. Your reviewer has been notified.")
		if msg.res.AlreadyReady {
			note = m.host.Infof("Already marked ready")
		}
		return m, tea.Batch(note, m.loadSession())

	case companionMsg:
		switch {
		case errors.Is(msg.err, effects.ErrNoMultiplexer):
			m.log.Debug().Str("companion", msg.what).Msg("not inside tmux, skipping")
		case msg.err != nil:
			return m, m.host.Warnf("open %s: %v", msg.what, msg.err)
		case msg.opened:
			m.log.Info().Str("companion", msg.what).Msg("companion opened")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) onSession(msg sessionLoadedMsg) tea.Cmd {
	if msg.err != nil {
		if m.sess == nil {
			m.loadErr = msg.err
			return nil
		}
		return m.host.Errorf("refresh failed: %v", msg.err)
	}

	first := m.sess == nil
	m.sess = &msg.sess
	m.loadErr = nil
	m.viewer.SetComments(msg.sess.Comments)
	m.comments.SetContent(m.renderComments())

	if !first {
		m.host.Countdown.Refresh()
		return nil
	}

	m.host.Bind(msg.sess.ID)
	m.checkExit()
	if m.giteaMode() {
		return m.openCompanions()
	}
	return m.loadDiff()
}

// checkExit moves into or out of the expired state. An open comment draft
// stays as it is.
func (m *Model) checkExit() {
	if m.host.TakeExit() {
		m.expired = true
		if m.mode == modeConfirmReady {
			m.mode = modeBrowse
		}
		return
	}
	if m.expired {
		if s := m.host.Header.Snapshot(); s.Known && s.Remaining > 0 {
			m.expired = false
		}
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.help.Width = w
	body := max(h-chrome, 3)
	m.viewer.SetSize(w, body)
	m.comments.Width = w
	m.comments.Height = body
	m.form.SetWidth(min(w-8, 72))
	if m.sess != nil {
		m.comments.SetContent(m.renderComments())
	}
}

func (m *Model) canComment() bool {
	return m.sess != nil && !m.expired && m.sess.AcceptsComments(time.Now())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeComment:
		return m.updateForm(msg)
	case modeConfirmReady:
		return m.updateConfirm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.host.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Comments):
		if m.mode == modeComments {
			m.mode = modeBrowse
		} else {
			m.mode = modeComments
			m.comments.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Ready):
		if m.sess == nil || m.sess.IsReady() || m.expired || m.marking {
			return m, nil
		}
		m.confirm = components.NewConfirmModal("Mark your review as ready? You will not be able to add more comments.")
		m.mode = modeConfirmReady
		return m, nil

	case key.Matches(msg, m.keys.OpenPR):
		if url := m.prURL(); url != "" {
			if err := m.app.Opener().Open(url); err != nil {
				return m, m.host.Errorf("%v", err)
			}
		}
		return m, nil
	}

	if m.mode == modeComments {
		var cmd tea.Cmd
		m.comments, cmd = m.comments.Update(msg)
		return m, cmd
	}

	if m.giteaMode() {
		return m, nil
	}

	if key.Matches(msg, m.keys.Comment) {
		return m, m.openForm()
	}

	var cmd tea.Cmd
	m.viewer, cmd = m.viewer.Update(msg)
	return m, cmd
}

func (m *Model) prURL() string {
	if m.sess == nil {
		return ""
	}
	return m.sess.Gitea.URL()
}

func (m *Model) openForm() tea.Cmd {
	if !m.canComment() {
		if m.sess != nil && m.sess.IsReady() {
			return m.host.Warnf("Comments are locked after marking ready")
		}
		return nil
	}

	if file, lines, ok := m.viewer.Selection(); ok {
		m.form.target(file, lines)
	}
	m.mode = modeComment
	return m.form.Reopen()
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.CycleType):
		m.form.cycleType()
		return m, nil
	case key.Matches(msg, m.keys.CycleSeverity):
		m.form.cycleSeverity()
		return m, nil
	}

	var cmd tea.Cmd
	_, cmd = m.form.Update(msg)

	switch {
	case m.form.Cancelled():
		m.mode = modeBrowse
		return m, cmd

	case m.form.Submitted():
		m.form.Reopen()
		if m.expired {
			m.form.SetError("The session has expired. Your draft is kept but can no longer be sent.")
			return m, nil
		}
		c, err := m.form.comment()
		if err != nil {
			m.form.SetError(err.Error())
			return m, nil
		}
		m.submitting = true
		return m, m.submitComment(c)
	}

	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirm, _ = m.confirm.Update(msg)

	switch {
	case m.confirm.Confirmed():
		m.mode = modeBrowse
		m.marking = true
		return m, m.markReady()
	case m.confirm.Cancelled():
		m.mode = modeBrowse
	}
	return m, nil
}

func submitError(err error) string {
	if validate.IsInvalid(err) {
		return strings.TrimPrefix(err.Error(), validate.ErrInvalid.Error()+": ")
	}
	return err.Error()
}

// Draft returns the comment currently in the editor.
func (m *Model) Draft() (review.Comment, error) {
	return m.form.comment()
}

// Expired reports whether the session ended while the view was open.
func (m *Model) Expired() bool { return m.expired }

func (m *Model) View() string {
	if m.sess == nil {
		if m.loadErr != nil {
			msg := "Could not load session: " + m.loadErr.Error()
			if errors.Is(m.loadErr, review.ErrNotFound) {
				msg = "Session not found. Check your access token."
			}
			return styles.ErrorStyle.Render(msg)
		}
		return styles.MutedStyle.Render(styles.IconClock + " Loading session...")
	}

	title := styles.TitleStyle.Render("Code Review") +
		styles.MutedStyle.Render(fmt.Sprintf(" · %s · reviewer %s", m.sess.CandidateName, m.sess.ReviewerName))

	body := m.body()
	switch m.mode {
	case modeComment:
		body = components.Overlay(body, styles.ModalStyle.Render(m.form.View()), m.width, max(m.height-chrome, 3))
	case modeConfirmReady:
		body = m.confirm.Overlay(body, m.width, max(m.height-chrome, 3))
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.host.Header.View(),
		m.statusLine(),
		body,
		m.help.View(m.keys),
	)
	return m.host.Frame(view, m.width)
}

func (m *Model) body() string {
	switch {
	case m.mode == modeComments:
		return m.comments.View()
	case m.giteaMode():
		return m.giteaPanel()
	case m.diffErr != nil:
		return styles.ErrorStyle.Render("Could not load the diff: " + m.diffErr.Error())
	}
	return m.viewer.View()
}

func (m *Model) statusLine() string {
	switch {
	case m.expired:
		return styles.ExpiredStyle.Render("Session expired. Your draft is kept; contact your reviewer.")
	case m.sess.IsReady():
		return styles.ReadyBadgeStyle.Render(styles.IconCheck+" Ready") +
			styles.MutedStyle.Render("  Comments are locked.")
	case m.marking:
		return styles.MutedStyle.Render("Marking ready...")
	case m.submitting:
		return styles.MutedStyle.Render("Sending comment...")
	}

	n := len(m.sess.Comments)
	label := fmt.Sprintf("%s %d comment", styles.IconComment, n)
	if n != 1 {
		label += "s"
	}
	if file, lines, ok := m.viewer.Selection(); ok && !m.giteaMode() {
		label += styles.MutedStyle.Render(fmt.Sprintf("  %s:%s", file, lines))
	}
	return styles.StatusBarStyle.Render(label)
}

func (m *Model) giteaPanel() string {
	url := m.prURL()
	lines := []string{
		"",
		styles.TitleStyle.Render(styles.IconGitPR + " Review the pull request"),
		"",
		"Leave your comments on the pull request page.",
		"Your reviewer syncs them into this session.",
		"",
		styles.ValueStyle.Render(url),
		"",
		styles.MutedStyle.Render("o: open in browser  R: mark ready when done"),
	}
	return indent.String(strings.Join(lines, "\n"), 2)
}

func (m *Model) renderComments() string {
	return tui.RenderComments(m.sess.Comments, m.width)
}
