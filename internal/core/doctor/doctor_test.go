package doctor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLookPath(t *testing.T, missing ...string) {
	t.Helper()
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		for _, m := range missing {
			if m == file {
				return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
			}
		}
		return "/usr/bin/" + file, nil
	}
}

func TestToolsCheck(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		missing    []string
		wantLabels []string
		wantWarn   []string
	}{
		{
			name:       "linux all present",
			goos:       "linux",
			wantLabels: []string{"tmux", "notify-send", "xdg-open"},
		},
		{
			name:       "darwin all present",
			goos:       "darwin",
			wantLabels: []string{"tmux", "osascript", "open"},
		},
		{
			name:       "missing tools warn",
			goos:       "linux",
			missing:    []string{"tmux", "notify-send"},
			wantLabels: []string{"tmux", "notify-send", "xdg-open"},
			wantWarn:   []string{"tmux", "notify-send"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLookPath(t, tt.missing...)

			check := &ToolsCheck{goos: tt.goos}
			result := check.Run(context.Background())

			assert.Equal(t, "Tools", result.Name)
			require.Len(t, result.Items, len(tt.wantLabels))

			var warned []string
			for i, item := range result.Items {
				assert.Equal(t, tt.wantLabels[i], item.Label)
				assert.NotEqual(t, StatusFail, item.Status, "tools are optional")
				if item.Status == StatusWarn {
					warned = append(warned, item.Label)
				} else {
					assert.Equal(t, "/usr/bin/"+item.Label, item.Detail)
				}
			}
			assert.Equal(t, tt.wantWarn, warned)
		})
	}
}

func TestPlatformCheck(t *testing.T) {
	ok := NewPlatformCheck("http://localhost:8000", func(context.Context) error { return nil }, 0).Run(context.Background())
	require.Len(t, ok.Items, 1)
	assert.Equal(t, StatusPass, ok.Items[0].Status)

	down := NewPlatformCheck("http://localhost:8000", func(context.Context) error {
		return errors.New("connection refused")
	}, 0).Run(context.Background())
	require.Len(t, down.Items, 1)
	assert.Equal(t, StatusFail, down.Items[0].Status)
	assert.Contains(t, down.Items[0].Detail, "connection refused")
}

type fakeKeys struct {
	keys []string
	err  error
}

func (f fakeKeys) ListKeys(context.Context) ([]string, error) { return f.keys, f.err }

func TestStorageCheck(t *testing.T) {
	t.Run("counts namespaces", func(t *testing.T) {
		store := fakeKeys{keys: []string{"session:1", "session:2", "companion:timer-opened-abc"}}
		result := NewStorageCheck(t.TempDir(), "reviewdesk.db", store).Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, StatusPass, result.Items[1].Status)
		assert.Equal(t, "2 cached sessions, 1 companion flags", result.Items[1].Detail)
	})

	t.Run("store error fails", func(t *testing.T) {
		store := fakeKeys{err: errors.New("database is locked")}
		result := NewStorageCheck(t.TempDir(), "reviewdesk.db", store).Run(context.Background())

		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusFail, result.Items[1].Status)
	})

	t.Run("missing data dir fails", func(t *testing.T) {
		result := NewStorageCheck("/nonexistent/reviewdesk", "reviewdesk.db", fakeKeys{}).Run(context.Background())

		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})
}

func TestConfigCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	result := NewConfigCheck(&cfg, "").Run(context.Background())
	require.NotEmpty(t, result.Items)
	assert.Equal(t, StatusPass, result.Items[0].Status)
}

func TestSummary(t *testing.T) {
	results := []Result{
		{Items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn}}},
		{Items: []CheckItem{{Status: StatusFail}, {Status: StatusPass}}},
	}

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
}
