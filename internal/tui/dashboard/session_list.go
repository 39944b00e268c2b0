package dashboard

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

// sessionItem is a list row.
type sessionItem struct {
	sess review.Session
}

func (i sessionItem) FilterValue() string {
	return i.sess.CandidateName + " " + i.sess.MRPackage
}

// SessionDelegate renders one session per line: candidate, status,
// remaining time and comment count.
type SessionDelegate struct {
	Now    func() time.Time
	Window time.Duration
}

func (d SessionDelegate) Height() int                             { return 1 }
func (d SessionDelegate) Spacing() int                            { return 0 }
func (d SessionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d SessionDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(sessionItem)
	if !ok {
		return
	}
	sess := it.sess
	now := d.Now()
	status := sess.EffectiveStatus(now)

	var prefix string
	nameStyle := styles.ValueStyle
	if index == m.Index() {
		prefix = styles.TitleStyle.Render("┃") + " "
		nameStyle = styles.SelectedStyle
	} else {
		prefix = "  "
	}

	name := nameStyle.Render(fmt.Sprintf("%-20s", truncate.StringWithTail(sess.CandidateName, 20, "…")))
	statusCol := styles.StatusStyle(status).Render(fmt.Sprintf("%-9s", status))

	remaining := styles.MutedStyle.Render(fmt.Sprintf("%-9s", "--:--:--"))
	if status == review.StatusActive && sess.ExpiresAt != nil {
		snap := sessionclock.At(*sess.ExpiresAt, now, d.Window)
		remaining = styles.BandStyle(snap.Band).Render(fmt.Sprintf("%-9s", snap.Format()))
	}

	extra := fmt.Sprintf("%s %d", styles.IconComment, len(sess.Comments))
	if sess.IsReady() {
		extra += "  " + styles.SuccessStyle.Render(styles.IconCheck+" ready")
	}
	if sess.Gitea != nil && sess.Gitea.Enabled {
		extra += "  " + styles.MutedStyle.Render(styles.IconGitPR)
	}

	line := fmt.Sprintf("%s%s %s %s %s  %s",
		prefix,
		styles.MutedStyle.Render(fmt.Sprintf("#%-4d", sess.ID)),
		name, statusCol, remaining, extra,
	)
	_, _ = io.WriteString(w, truncate.String(line, uint(max(m.Width(), 1))))
}

func newSessionList(delegate SessionDelegate) list.Model {
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Sessions"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.Styles.Title = styles.TitleStyle
	l.SetStatusBarItemName("session", "sessions")
	return l
}

func sessionItems(sessions []review.Session) []list.Item {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = sessionItem{sess: s}
	}
	return items
}
