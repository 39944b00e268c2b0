package dashboard

import (
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/desk/desktest"
	"github.com/hay-kot/reviewdesk/internal/platform/platformtest"
	"github.com/hay-kot/reviewdesk/internal/tui"
	"github.com/hay-kot/reviewdesk/pkg/tuitest"
)

// deliver runs cmd, flattening batches, and feeds every resulting message
// back into the model once.
func deliver(m *Model, cmd tea.Cmd) {
	for _, msg := range tuitest.Messages(cmd) {
		_, _ = m.Update(msg)
	}
}

func press(m *Model, k tea.KeyMsg) tea.Cmd {
	_, cmd := m.Update(k)
	return cmd
}

func newDashboard(t *testing.T, env *desktest.Env) *Model {
	t.Helper()
	m := New(env.App, tui.HostOptions{})
	t.Cleanup(m.host.Close)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	deliver(m, m.loadSessions())
	return m
}

func TestDashboard_ListsSessions(t *testing.T) {
	env := desktest.New(t)
	env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	env.Server.Seed(platformtest.Session{CandidateName: "Sam", Status: "finished"})

	m := newDashboard(t, env)

	assert.Len(t, m.list.Items(), 2)
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Alex")
	assert.Contains(t, view, "Sam")
	assert.Contains(t, view, "finished")
}

func TestDashboard_OpenDetailBindsCountdown(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{
		CandidateName: "Alex",
		Comments: []platformtest.Comment{
			{File: "main.py", LineRange: "3-3", Type: "bug", Severity: "high", Text: "range goes one past the end"},
		},
	})
	m := newDashboard(t, env)

	deliver(m, press(m, tuitest.Key(tea.KeyEnter)))

	require.NotNil(t, m.selected)
	assert.Equal(t, viewDetail, m.view)
	assert.Equal(t, strconv.FormatInt(sess.ID, 10), m.host.Countdown.SessionID())
	assert.True(t, m.host.Header.Snapshot().Known)
	assert.Contains(t, m.View(), "range goes one past the end")

	_ = press(m, tuitest.Key(tea.KeyEsc))
	assert.Equal(t, viewList, m.view)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.host.Countdown.SessionID())
}

func TestDashboard_ExtendAcknowledges(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{
		CandidateName: "Alex",
		ExpiresAt:     time.Now().Add(3 * time.Minute),
	})
	m := newDashboard(t, env)
	deliver(m, press(m, tuitest.Key(tea.KeyEnter)))
	require.True(t, m.host.Countdown.ControllerState().NotifiedUnderWarn)

	deliver(m, press(m, tuitest.KeyRunes("e")))

	stored, _ := env.Server.Session(sess.ID)
	assert.WithinDuration(t, time.Now().Add(33*time.Minute), stored.ExpiresAt, 5*time.Second)
	assert.False(t, m.host.Countdown.ControllerState().NotifiedUnderWarn, "extend resets the warning")
	assert.InDelta(t, 33*time.Minute, m.host.Header.Snapshot().Remaining, float64(5*time.Second))

	history, err := m.host.Notify.History()
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Contains(t, history[0].Message, "Extended until")
}

func TestDashboard_FinishNeedsConfirm(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := newDashboard(t, env)

	cmd := press(m, tuitest.KeyRunes("f"))
	assert.Nil(t, cmd)
	require.NotNil(t, m.confirm)
	assert.Contains(t, ansi.Strip(m.View()), "Finish this")

	_ = press(m, tuitest.KeyRunes("n"))
	assert.Nil(t, m.confirm)
	stored, _ := env.Server.Session(sess.ID)
	assert.Equal(t, "active", stored.Status)

	_ = press(m, tuitest.KeyRunes("f"))
	deliver(m, press(m, tuitest.KeyRunes("y")))

	stored, _ = env.Server.Session(sess.ID)
	assert.Equal(t, "finished", stored.Status)
	deliver(m, m.loadSessions())

	// Finished sessions cannot be extended.
	assert.Nil(t, press(m, tuitest.KeyRunes("e")))
}

func TestDashboard_DeleteFromDetailReturnsToList(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := newDashboard(t, env)
	deliver(m, press(m, tuitest.Key(tea.KeyEnter)))
	require.Equal(t, viewDetail, m.view)

	_ = press(m, tuitest.KeyRunes("d"))
	deliver(m, press(m, tuitest.KeyRunes("y")))

	assert.Equal(t, viewList, m.view)
	stored, _ := env.Server.Session(sess.ID)
	assert.NotNil(t, stored.DeletedAt)
}

func TestDashboard_ForcedExitReturnsToList(t *testing.T) {
	env := desktest.New(t, desktest.WithConfig(func(c *config.Config) {
		c.Session.ExitGrace = 5 * time.Millisecond
	}))
	env.Server.Seed(platformtest.Session{
		CandidateName: "Alex",
		ExpiresAt:     time.Now().Add(-time.Minute),
	})
	m := newDashboard(t, env)
	deliver(m, press(m, tuitest.Key(tea.KeyEnter)))
	require.Equal(t, viewDetail, m.view)

	for i := 0; i < 5 && m.view != viewList; i++ {
		_, _ = m.Update(m.host.Sched.Listen()())
	}

	assert.Equal(t, viewList, m.view)
	assert.Nil(t, m.selected)
	history, err := m.host.Notify.History()
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Contains(t, history[0].Message, "has expired")
}

func TestDashboard_ReportAndEvaluate(t *testing.T) {
	env := desktest.New(t)
	sess := env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := newDashboard(t, env)

	// No report yet.
	deliver(m, press(m, tuitest.KeyRunes("o")))
	assert.Equal(t, viewList, m.view)
	assert.Empty(t, m.busy)

	deliver(m, press(m, tuitest.KeyRunes("v")))
	assert.Equal(t, viewReport, m.view)
	assert.Equal(t, sess.ID, m.reportID)
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Review report")
	assert.Contains(t, view, "Candidate: Alex")

	_ = press(m, tuitest.Key(tea.KeyEsc))
	assert.Equal(t, viewList, m.view)
}

func TestDashboard_NewRequestsCreate(t *testing.T) {
	env := desktest.New(t)
	m := newDashboard(t, env)

	cmd := press(m, tuitest.KeyRunes("n"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.CreateRequested())
}

func TestDashboard_ShellKeybinding(t *testing.T) {
	env := desktest.New(t, desktest.WithConfig(func(c *config.Config) {
		c.Keybindings["x"] = config.Keybinding{Sh: "echo {{ .Token }} {{ .CandidateName | shq }}", Help: "echo"}
	}))
	env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := newDashboard(t, env)

	deliver(m, press(m, tuitest.KeyRunes("x")))

	var found bool
	for _, rec := range env.Exec.Recorded() {
		if rec.Cmd == "sh" {
			found = true
			assert.Equal(t, []string{"-c", "echo tok-1 'Alex'"}, rec.Args)
		}
	}
	assert.True(t, found)
}

func TestDashboard_InfoDialog(t *testing.T) {
	env := desktest.New(t)
	env.Server.Seed(platformtest.Session{CandidateName: "Alex"})
	m := newDashboard(t, env)

	_ = press(m, tuitest.KeyRunes("i"))
	require.NotNil(t, m.info)
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Session #1")
	assert.Contains(t, view, "tok-1")

	_ = press(m, tuitest.Key(tea.KeyEsc))
	assert.Nil(t, m.info)
}
