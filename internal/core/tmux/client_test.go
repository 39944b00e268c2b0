package tmux

import (
	"context"
	"fmt"
	"testing"

	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withInside(t *testing.T, inside bool) {
	t.Helper()
	prev := insideTmux
	insideTmux = func() bool { return inside }
	t.Cleanup(func() { insideTmux = prev })
}

func TestClient_Inside(t *testing.T) {
	tests := []struct {
		name    string
		inside  bool
		missing bool
		want    bool
	}{
		{"inside with tmux", true, false, true},
		{"outside", false, false, false},
		{"inside but binary missing", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withInside(t, tt.inside)
			rec := &executil.RecordingExecutor{Missing: map[string]bool{"tmux": tt.missing}}
			assert.Equal(t, tt.want, New(rec).Inside())
		})
	}
}

func TestClient_SplitWindow(t *testing.T) {
	t.Run("below, unfocused, titled", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"tmux": []byte("%7\n")}}
		c := New(rec)

		id, err := c.SplitWindow(context.Background(), Pane{Command: "reviewdesk timer abc", Title: "timer", Size: 8})
		require.NoError(t, err)
		assert.Equal(t, "%7", id)

		require.Len(t, rec.Commands, 2)
		assert.Equal(t, []string{
			"split-window", "-P", "-F", "#{pane_id}", "-v", "-d", "-l", "8",
			"--", "sh", "-c", "reviewdesk timer abc",
		}, rec.Commands[0].Args)
		assert.Equal(t, []string{"select-pane", "-t", "%7", "-T", "timer"}, rec.Commands[1].Args)
	})

	t.Run("beside and focused", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"tmux": []byte("%3")}}
		c := New(rec)

		_, err := c.SplitWindow(context.Background(), Pane{Command: "top", Beside: true, Focus: true})
		require.NoError(t, err)

		require.Len(t, rec.Commands, 1)
		assert.Equal(t, []string{"split-window", "-P", "-F", "#{pane_id}", "-h", "--", "sh", "-c", "top"}, rec.Commands[0].Args)
	})

	t.Run("empty command", func(t *testing.T) {
		rec := &executil.RecordingExecutor{}
		_, err := New(rec).SplitWindow(context.Background(), Pane{})
		require.Error(t, err)
		assert.Empty(t, rec.Commands)
	})

	t.Run("tmux error", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Errors: map[string]error{"tmux": fmt.Errorf("no space for new pane")}}
		_, err := New(rec).SplitWindow(context.Background(), Pane{Command: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "split-window")
	})
}

func TestClient_PaneAlive(t *testing.T) {
	rec := &executil.RecordingExecutor{Outputs: map[string][]byte{"tmux": []byte("%7\n")}}
	c := New(rec)

	assert.True(t, c.PaneAlive(context.Background(), "%7"))
	assert.False(t, c.PaneAlive(context.Background(), "%8"))
	assert.False(t, c.PaneAlive(context.Background(), ""))
}

func TestClient_KillPaneAndMessage(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	c := New(rec)

	require.NoError(t, c.KillPane(context.Background(), "%2"))
	require.NoError(t, c.DisplayMessage(context.Background(), "Less than 10 minutes left"))

	cmds := rec.Recorded()
	require.Len(t, cmds, 2)
	assert.Equal(t, []string{"kill-pane", "-t", "%2"}, cmds[0].Args)
	assert.Equal(t, []string{"display-message", "Less than 10 minutes left"}, cmds[1].Args)
}
