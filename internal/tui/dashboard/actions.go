package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

// execute runs a resolved action. Slow actions run as commands and report
// back through actionDoneMsg or reportLoadedMsg.
func (m *Model) execute(action Action) tea.Cmd {
	sessions := m.app.Sessions
	id := action.SessionID

	done := func(fn func(ctx context.Context) (actionDoneMsg, error)) tea.Cmd {
		return func() tea.Msg {
			msg, err := fn(context.Background())
			msg.action = action
			msg.err = err
			return msg
		}
	}

	switch action.Type {
	case ActionTypeExtend:
		return done(func(ctx context.Context) (actionDoneMsg, error) {
			exp, err := sessions.Extend(ctx, id)
			return actionDoneMsg{extendedTo: exp}, err
		})

	case ActionTypeFinish:
		return done(func(ctx context.Context) (actionDoneMsg, error) {
			_, err := sessions.Finish(ctx, id)
			return actionDoneMsg{note: "Session finished"}, err
		})

	case ActionTypeDelete:
		return done(func(ctx context.Context) (actionDoneMsg, error) {
			err := sessions.Delete(ctx, id)
			return actionDoneMsg{note: "Session deleted"}, err
		})

	case ActionTypeReport:
		m.busy = "Loading report"
		return tea.Batch(m.spinner.Tick, func() tea.Msg {
			text, err := sessions.Report(context.Background(), id)
			return reportLoadedMsg{id: id, text: text, err: err}
		})

	case ActionTypeEvaluate:
		m.busy = "Evaluating"
		ch := make(chan review.Job, 8)
		run := func() tea.Msg {
			defer close(ch)
			text, err := sessions.EvaluateReport(context.Background(), id, func(j review.Job) {
				select {
				case ch <- j:
				default:
				}
			})
			return reportLoadedMsg{id: id, text: text, err: err}
		}
		return tea.Batch(m.spinner.Tick, run, waitForJob(ch))

	case ActionTypePDF:
		if err := m.app.Opener().Open(sessions.ReportPDFURL(id)); err != nil {
			return m.host.Errorf("%v", err)
		}
		return m.host.Infof("Opening PDF report")

	case ActionTypeOpenPR:
		sess := m.target()
		if sess == nil || sess.Gitea.URL() == "" {
			return m.host.Warnf("No pull request for this session")
		}
		if err := m.app.Opener().Open(sess.Gitea.URL()); err != nil {
			return m.host.Errorf("%v", err)
		}
		return nil

	case ActionTypeRefresh:
		cmds := []tea.Cmd{m.loadSessions()}
		if m.selected != nil {
			cmds = append(cmds, m.loadDetail(m.selected.ID))
		}
		return tea.Batch(cmds...)

	case ActionTypeNew:
		m.createRequested = true
		m.host.Close()
		return tea.Quit

	case ActionTypeShell:
		handler := m.handler
		return done(func(ctx context.Context) (actionDoneMsg, error) {
			out, err := handler.ExecuteShell(ctx, action)
			if out == "" {
				out = action.Help + " done"
			}
			return actionDoneMsg{note: out}, err
		})
	}

	return nil
}

func (m *Model) onActionDone(msg actionDoneMsg) tea.Cmd {
	a := msg.action
	if msg.err != nil {
		return m.host.Errorf("%s failed: %v", a.Help, msg.err)
	}

	var note tea.Cmd
	switch a.Type {
	case ActionTypeExtend:
		if m.host.Countdown.SessionID() == fmt.Sprint(a.SessionID) {
			m.host.Countdown.ExtendAcknowledged()
		}
		note = m.host.Infof("Extended until %s", msg.extendedTo.Local().Format("15:04:05"))
	case ActionTypeDelete:
		if m.selected != nil && m.selected.ID == a.SessionID {
			m.backToList()
		}
		note = m.host.Infof("%s", msg.note)
	default:
		note = m.host.Infof("%s", msg.note)
	}

	cmds := []tea.Cmd{note, m.loadSessions()}
	if m.selected != nil {
		cmds = append(cmds, m.loadDetail(m.selected.ID))
	}
	return tea.Batch(cmds...)
}

func waitForJob(ch <-chan review.Job) tea.Cmd {
	return func() tea.Msg {
		j, ok := <-ch
		if !ok {
			return nil
		}
		return jobUpdateMsg{job: j, ch: ch}
	}
}

func (m *Model) showReport(id int64, text string) {
	m.reportID = id
	m.view = viewReport
	m.report.SetContent(renderMarkdown(text, m.width))
	m.report.GotoTop()
}

// renderMarkdown renders a report with glamour, falling back to the raw
// text when rendering fails.
func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
