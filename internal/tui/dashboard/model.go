// Package dashboard is the reviewer's session dashboard: a session list, a
// detail view with the live countdown and comments, and the evaluation
// report.
package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hay-kot/reviewdesk/internal/core/logging"
	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/internal/tui"
	"github.com/hay-kot/reviewdesk/internal/tui/components"
)

type viewState int

const (
	viewList viewState = iota
	viewDetail
	viewReport
)

// chrome is the number of lines outside the body: title, countdown or
// status line, and help.
const chrome = 4

type (
	sessionsLoadedMsg struct {
		sessions []review.Session
		err      error
	}
	detailLoadedMsg struct {
		sess review.Session
		err  error
	}
	actionDoneMsg struct {
		action     Action
		note       string
		extendedTo time.Time
		err        error
	}
	reportLoadedMsg struct {
		id   int64
		text string
		err  error
	}
	jobUpdateMsg struct {
		job review.Job
		ch  <-chan review.Job
	}
	refreshTickMsg struct{}
	clockTickMsg   struct{}
)

// Model is the reviewer dashboard.
type Model struct {
	app     *desk.App
	host    *tui.Host
	handler *KeybindingHandler
	keys    navKeys
	help    help.Model
	log     zerolog.Logger
	now     func() time.Time

	view     viewState
	list     list.Model
	selected *review.Session
	detail   viewport.Model
	report   viewport.Model
	reportID int64

	confirm *components.ConfirmModal
	pending Action
	info    *components.InfoDialog

	spinner spinner.Model
	busy    string

	createRequested bool

	width  int
	height int
}

// New builds the dashboard.
func New(app *desk.App, opts tui.HostOptions) *Model {
	handler := NewKeybindingHandler(app.Config.Keybindings, app.Config.API.BaseURL, app.Exec)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.TitleStyle

	m := &Model{
		app:     app,
		host:    tui.NewHost(app, "dashboard", opts),
		handler: handler,
		keys:    defaultNavKeys(handler.KeyBindings()),
		help:    help.New(),
		log:     logging.Component("dashboard"),
		now:     time.Now,
		detail:  viewport.New(80, 10),
		report:  viewport.New(80, 10),
		spinner: s,
		width:   80,
		height:  24,
	}
	m.list = newSessionList(SessionDelegate{Now: m.clock, Window: app.Config.Session.NominalWindow})
	m.resize(m.width, m.height)
	return m
}

func (m *Model) clock() time.Time { return m.now() }

// CreateRequested reports whether the dashboard quit so a new session can
// be created. The caller runs the create form and starts a new dashboard.
func (m *Model) CreateRequested() bool { return m.createRequested }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.host.Init(), m.loadSessions(), m.scheduleRefresh(), scheduleClock())
}

func (m *Model) loadSessions() tea.Cmd {
	sessions := m.app.Sessions
	return func() tea.Msg {
		list, err := sessions.List(context.Background())
		return sessionsLoadedMsg{sessions: list, err: err}
	}
}

func (m *Model) loadDetail(id int64) tea.Cmd {
	sessions := m.app.Sessions
	return func() tea.Msg {
		sess, err := sessions.Fetch(context.Background(), review.ByID(id))
		return detailLoadedMsg{sess: sess, err: err}
	}
}

func (m *Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.app.Config.UI.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func scheduleClock() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return clockTickMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, handled := m.host.Update(msg)
	exitCmd := m.checkExit()
	if handled {
		return m, tea.Batch(cmd, exitCmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case sessionsLoadedMsg:
		if msg.err != nil {
			return m, m.host.Errorf("load sessions: %v", msg.err)
		}
		return m, m.list.SetItems(sessionItems(msg.sessions))

	case detailLoadedMsg:
		if msg.err != nil {
			return m, m.host.Errorf("%v", msg.err)
		}
		if m.view == viewList || (m.selected != nil && m.selected.ID != msg.sess.ID) {
			return m, nil
		}
		first := m.selected == nil
		m.selected = &msg.sess
		m.detail.SetContent(m.renderDetail())
		if first || m.host.Countdown.SessionID() != msg.sess.IDString() {
			m.host.Bind(msg.sess.ID)
		} else {
			m.host.Countdown.Refresh()
		}
		return m, m.checkExit()

	case actionDoneMsg:
		return m, m.onActionDone(msg)

	case reportLoadedMsg:
		m.busy = ""
		if msg.err != nil {
			return m, m.host.Errorf("%v", msg.err)
		}
		m.showReport(msg.id, msg.text)
		return m, nil

	case jobUpdateMsg:
		if m.busy != "" {
			m.busy = fmt.Sprintf("Evaluating (%s)", msg.job.Status)
		}
		return m, waitForJob(msg.ch)

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshTickMsg:
		cmds := []tea.Cmd{m.loadSessions(), m.scheduleRefresh()}
		if m.selected != nil {
			cmds = append(cmds, m.loadDetail(m.selected.ID))
		}
		return m, tea.Batch(cmds...)

	case clockTickMsg:
		return m, scheduleClock()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var lcmd tea.Cmd
	m.list, lcmd = m.list.Update(msg)
	return m, lcmd
}

// checkExit returns to the list when the bound session's forced exit fired.
func (m *Model) checkExit() tea.Cmd {
	if !m.host.TakeExit() || m.selected == nil {
		return nil
	}

	name := m.selected.CandidateName
	m.backToList()
	return tea.Batch(m.host.Warnf("Session for %s has expired", name), m.loadSessions())
}

func (m *Model) backToList() {
	m.view = viewList
	m.selected = nil
	m.info = nil
	m.confirm = nil
	m.host.Unbind()
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.help.Width = w
	body := max(h-chrome, 3)
	m.list.SetSize(w, body)
	m.detail.Width, m.detail.Height = w, body
	m.report.Width, m.report.Height = w, body
	if m.info != nil {
		m.info.SetSize(w, h)
	}
	if m.selected != nil {
		m.detail.SetContent(m.renderDetail())
	}
}

// target is the session keybindings act on: the open session in the
// detail and report views, the highlighted row in the list.
func (m *Model) target() *review.Session {
	if m.view != viewList {
		return m.selected
	}
	if it, ok := m.list.SelectedItem().(sessionItem); ok {
		return &it.sess
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		c, _ := m.confirm.Update(msg)
		m.confirm = &c
		switch {
		case c.Confirmed():
			m.confirm = nil
			return m, m.execute(m.pending)
		case c.Cancelled():
			m.confirm = nil
		}
		return m, nil
	}

	if m.info != nil {
		switch msg.String() {
		case "j", "down":
			m.info.ScrollDown()
		case "k", "up":
			m.info.ScrollUp()
		case "esc", "q", "i", "enter":
			m.info = nil
		}
		return m, nil
	}

	filtering := m.view == viewList && m.list.FilterState() == list.Filtering
	if filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.host.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Info):
		if sess := m.target(); sess != nil {
			m.info = components.NewInfoDialog(
				fmt.Sprintf("Session #%d", sess.ID),
				m.infoSections(sess),
				"",
				"j/k scroll  esc close",
				m.width, m.height,
			)
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.view == viewReport && m.selected != nil {
			m.view = viewDetail
			return m, nil
		}
		if m.view != viewList {
			m.backToList()
			return m, nil
		}
	case key.Matches(msg, m.keys.Open) && m.view == viewList:
		if it, ok := m.list.SelectedItem().(sessionItem); ok {
			m.view = viewDetail
			m.selected = nil
			m.detail.SetContent(styles.MutedStyle.Render("Loading..."))
			return m, m.loadDetail(it.sess.ID)
		}
		return m, nil
	}

	if action, ok := m.handler.Resolve(msg.String(), m.target(), m.now()); ok {
		if action.NeedsConfirm() {
			c := components.NewConfirmModal(action.Confirm)
			m.confirm = &c
			m.pending = action
			return m, nil
		}
		return m, m.execute(action)
	}

	var cmd tea.Cmd
	switch m.view {
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewReport:
		m.report, cmd = m.report.Update(msg)
	}
	return m, cmd
}

func (m *Model) View() string {
	var body string
	switch m.view {
	case viewList:
		body = m.list.View()
	case viewDetail:
		body = m.detail.View()
	case viewReport:
		body = m.report.View()
	}

	switch {
	case m.confirm != nil:
		body = m.confirm.Overlay(body, m.width, max(m.height-chrome, 3))
	case m.info != nil:
		body = m.info.Overlay(body, m.width, max(m.height-chrome, 3))
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.titleLine(),
		m.statusLine(),
		body,
		m.help.View(m.keys),
	)
	return m.host.Frame(view, m.width)
}

func (m *Model) titleLine() string {
	title := styles.TitleStyle.Render("reviewdesk")
	switch {
	case m.view == viewReport && m.selected != nil:
		title += styles.MutedStyle.Render(fmt.Sprintf(" · report · %s", m.selected.CandidateName))
	case m.view == viewReport:
		title += styles.MutedStyle.Render(fmt.Sprintf(" · report · session %d", m.reportID))
	case m.selected != nil:
		title += styles.MutedStyle.Render(" · " + m.selected.CandidateName)
	}
	return title
}

func (m *Model) statusLine() string {
	if m.busy != "" {
		return m.spinner.View() + " " + styles.MutedStyle.Render(m.busy)
	}
	if m.view != viewList && m.selected != nil {
		return m.host.Header.View()
	}
	return styles.StatusBarStyle.Render(fmt.Sprintf("%d sessions", len(m.list.Items())))
}

func (m *Model) renderDetail() string {
	sess := m.selected
	now := m.now()

	rows := []string{
		styles.LabelStyle.Render("Status") + styles.StatusStyle(sess.EffectiveStatus(now)).Render(string(sess.EffectiveStatus(now))),
		styles.LabelStyle.Render("Reviewer") + styles.ValueStyle.Render(sess.ReviewerName),
		styles.LabelStyle.Render("Package") + styles.ValueStyle.Render(sess.MRPackage),
	}
	if sess.MergeRequest != nil {
		rows = append(rows, styles.LabelStyle.Render("MR")+styles.ValueStyle.Render(sess.MergeRequest.Title))
	}
	if sess.IsReady() {
		rows = append(rows, styles.LabelStyle.Render("Ready")+styles.SuccessStyle.Render(sess.CandidateReadyAt.Local().Format("15:04:05")))
	}
	if url := sess.Gitea.URL(); url != "" {
		rows = append(rows, styles.LabelStyle.Render("Pull request")+styles.ValueStyle.Render(url))
	}

	rows = append(rows, "", styles.TitleStyle.Render(fmt.Sprintf("Comments (%d)", len(sess.Comments))))
	rows = append(rows, tui.RenderComments(sess.Comments, m.width))

	return strings.Join(rows, "\n")
}

func (m *Model) infoSections(sess *review.Session) []components.InfoSection {
	now := m.now()
	expires := "unknown"
	if sess.ExpiresAt != nil {
		expires = sess.ExpiresAt.Local().Format(time.DateTime)
	}

	sections := []components.InfoSection{
		{
			Title: "Session",
			Items: []components.InfoItem{
				{Label: "ID", Value: strconv.FormatInt(sess.ID, 10)},
				{Label: "Candidate", Value: sess.CandidateName},
				{Label: "Reviewer", Value: sess.ReviewerName},
				{Label: "Status", Value: string(sess.EffectiveStatus(now)), Status: statusInfo(sess.EffectiveStatus(now))},
				{Label: "Created", Value: sess.CreatedAt.Local().Format(time.DateTime)},
				{Label: "Expires", Value: expires},
			},
		},
		{
			Title: "Access",
			Items: []components.InfoItem{
				{Label: "Token", Value: sess.AccessToken},
				{Label: "Candidate", Value: "reviewdesk candidate " + sess.AccessToken},
				{Label: "PDF", Value: m.app.Sessions.ReportPDFURL(sess.ID)},
			},
		},
	}

	if mr := sess.MergeRequest; mr != nil {
		sections = append(sections, components.InfoSection{
			Title: "Merge request",
			Items: []components.InfoItem{
				{Label: "Title", Value: mr.Title},
				{Label: "Type", Value: mr.Type},
				{Label: "Points", Value: strconv.Itoa(mr.ComplexityPoints)},
				{Label: "Stack", Value: strings.Join(mr.StackTags, ", ")},
			},
		})
	}
	return sections
}

func statusInfo(s review.Status) components.InfoStatus {
	switch s {
	case review.StatusActive:
		return components.InfoStatusPass
	case review.StatusFinished:
		return components.InfoStatusWarn
	default:
		return components.InfoStatusFail
	}
}
