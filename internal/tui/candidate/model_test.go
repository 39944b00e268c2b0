package candidate

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/desk/desktest"
	"github.com/hay-kot/reviewdesk/internal/platform/platformtest"
	"github.com/hay-kot/reviewdesk/internal/tui"
	"github.com/hay-kot/reviewdesk/pkg/tuitest"
)

func typeText(m *Model, s string) {
	for _, r := range s {
		_, _ = m.Update(tuitest.KeyRunes(string(r)))
	}
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	_, _ = m.Update(cmd())
}

// deliverLoaded runs cmd and feeds back only the session reloads it
// produces, skipping toast ticks.
func deliverLoaded(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			deliverLoaded(m, c)
		}
	case sessionLoadedMsg:
		_, _ = m.Update(msg)
	}
}

func open(t *testing.T, env *desktest.Env, token string) *Model {
	t.Helper()
	m := New(env.App, token, tui.HostOptions{})
	t.Cleanup(m.host.Close)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	msg := m.loadSession()()
	_, cmd := m.Update(msg)
	if m.sess != nil && !m.giteaMode() {
		run(t, m, cmd)
	}
	return m
}

func TestCandidate_LoadsSessionAndDiff(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})

	m := open(t, env, sess.AccessToken)

	require.NotNil(t, m.sess)
	assert.True(t, m.host.Header.Snapshot().Known)
	assert.NotEmpty(t, m.viewer.Document().Rows)

	row, ok := m.viewer.Cursor()
	require.True(t, ok)
	assert.Equal(t, "main.py", row.File)

	view := m.View()
	assert.Contains(t, view, "Alex")
	assert.Contains(t, view, "main.py")
	assert.Contains(t, view, "0 comments")
}

func TestCandidate_AddComment(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := open(t, env, sess.AccessToken)

	// Select the three added lines (new-file lines 2-4).
	_, _ = m.Update(tuitest.KeyRunes("j"))
	_, _ = m.Update(tuitest.KeyRunes("j"))
	_, _ = m.Update(tuitest.KeyRunes("v"))
	_, _ = m.Update(tuitest.KeyRunes("j"))
	_, _ = m.Update(tuitest.KeyRunes("j"))

	_, _ = m.Update(tuitest.KeyRunes("c"))
	require.Equal(t, modeComment, m.mode)

	typeText(m, "off by one")
	_, _ = m.Update(tuitest.Key(tea.KeyCtrlE))
	_, _ = m.Update(tuitest.Key(tea.KeyCtrlT))

	draft, err := m.Draft()
	require.NoError(t, err)
	assert.Equal(t, "main.py", draft.File)
	assert.Equal(t, review.LineRange{Start: 2, End: 4}, draft.Lines)
	assert.Equal(t, review.SeverityLow, draft.Severity)
	assert.Equal(t, review.TypeSecurity, draft.Type)

	_, cmd := m.Update(tuitest.Key(tea.KeyCtrlS))
	require.True(t, m.submitting)
	run(t, m, cmd)

	assert.Equal(t, modeBrowse, m.mode)
	assert.False(t, m.submitting)

	draft, _ = m.Draft()
	assert.Empty(t, draft.Text, "text is cleared after a successful submit")
	assert.Equal(t, review.TypeSecurity, draft.Type, "type sticks")

	stored, ok := env.Server.Session(sess.ID)
	require.True(t, ok)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, platformtest.Comment{
		File:      "main.py",
		LineRange: "2-4",
		Type:      "security",
		Severity:  "low",
		Text:      "off by one",
	}, stored.Comments[0])
}

func TestCandidate_BlankCommentKeepsForm(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := open(t, env, sess.AccessToken)

	_, _ = m.Update(tuitest.KeyRunes("c"))
	typeText(m, "   ")

	_, cmd := m.Update(tuitest.Key(tea.KeyCtrlS))
	run(t, m, cmd)

	assert.Equal(t, modeComment, m.mode)
	assert.Contains(t, m.form.Error(), "text")
	assert.Zero(t, env.Server.Count("POST", "/api/candidate/sessions/"+sess.AccessToken+"/comments"))
}

func TestCandidate_CancelKeepsDraft(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := open(t, env, sess.AccessToken)

	_, _ = m.Update(tuitest.KeyRunes("c"))
	typeText(m, "half a thought")
	_, _ = m.Update(tuitest.Key(tea.KeyEsc))
	assert.Equal(t, modeBrowse, m.mode)

	_, _ = m.Update(tuitest.KeyRunes("c"))
	draft, err := m.Draft()
	require.NoError(t, err)
	assert.Equal(t, "half a thought", draft.Text)
}

func TestCandidate_ReadyNeedsConfirmationAndLocksComments(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := open(t, env, sess.AccessToken)

	_, _ = m.Update(tuitest.KeyRunes("R"))
	require.Equal(t, modeConfirmReady, m.mode)
	assert.Contains(t, m.View(), "Mark your review as ready?")

	_, cmd := m.Update(tuitest.KeyRunes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)

	_, _ = m.Update(tuitest.KeyRunes("R"))
	_, cmd = m.Update(tuitest.KeyRunes("y"))
	require.True(t, m.marking)

	_, cmd = m.Update(cmd())
	deliverLoaded(m, cmd)

	assert.True(t, m.sess.IsReady())
	assert.Contains(t, m.View(), "Comments are locked")

	_, _ = m.Update(tuitest.KeyRunes("c"))
	assert.Equal(t, modeBrowse, m.mode, "comments are locked after ready")
}

func TestCandidate_ExpiryKeepsDraft(t *testing.T) {
	env := desktest.New(t, desktest.WithConfig(func(c *config.Config) {
		c.Session.ExitGrace = 5 * time.Millisecond
	}))
	sess := env.Server.Seed(platformtest.Session{
		CandidateName: "Alex",
		ExpiresAt:     time.Now().Add(2 * time.Second),
	})
	m := open(t, env, sess.AccessToken)

	_, _ = m.Update(tuitest.KeyRunes("c"))
	typeText(m, "almost done")

	// Expire the session under the open form.
	env.Server.SetExpiry(sess.ID, time.Now().Add(-time.Second))
	run(t, m, m.loadSession())
	for i := 0; i < 5 && !m.Expired(); i++ {
		_, _ = m.Update(m.host.Sched.Listen()())
	}
	require.True(t, m.Expired())

	assert.Equal(t, modeComment, m.mode)
	assert.Contains(t, m.View(), "Session expired")

	_, cmd := m.Update(tuitest.Key(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	assert.Contains(t, m.form.Error(), "expired")

	draft, err := m.Draft()
	require.NoError(t, err)
	assert.Equal(t, "almost done", draft.Text)
}

func TestCandidate_GiteaModeOpensCompanionsOnce(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,1,0")

	env := desktest.New(t)
	env.Server.GiteaEnabled = true
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})

	m := New(env.App, sess.AccessToken, tui.HostOptions{})
	t.Cleanup(m.host.Close)
	_, cmd := m.Update(m.loadSession()())
	require.True(t, m.giteaMode())
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		_, _ = m.Update(c())
	}

	var opened, panes int
	for _, rec := range env.Exec.Recorded() {
		switch rec.Cmd {
		case "xdg-open", "open":
			opened++
		case "tmux":
			if len(rec.Args) > 0 && rec.Args[0] == "split-window" {
				panes++
			}
		}
	}
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, panes)
	assert.Contains(t, m.View(), "Review the pull request")
	assert.Zero(t, env.Server.Count("GET", "/api/candidate/sessions/"+sess.AccessToken+"/diff"), "diff is not loaded")

	// A second view for the same token does not reopen anything.
	again := New(env.App, sess.AccessToken, tui.HostOptions{})
	t.Cleanup(again.host.Close)
	env.Exec.Reset()
	_, cmd = again.Update(again.loadSession()())
	for _, c := range cmd().(tea.BatchMsg) {
		_, _ = again.Update(c())
	}
	assert.Empty(t, env.Exec.Recorded())
}

func TestCandidate_CommentsList(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{
		CandidateName: "Alex",
		Comments: []platformtest.Comment{
			{File: "main.py", LineRange: "2-2", Type: "bug", Severity: "high", Text: "index goes past the end"},
		},
	})
	m := open(t, env, sess.AccessToken)

	_, _ = m.Update(tuitest.KeyRunes("l"))
	view := m.View()
	assert.Contains(t, view, "index goes past the end")
	assert.Contains(t, view, "main.py:2-2")

	_, _ = m.Update(tuitest.KeyRunes("l"))
	assert.Equal(t, modeBrowse, m.mode)
}
