package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Keybindings = mergeKeybindings(defaultKeybindings, nil)
	return cfg
}

func TestValidateDeep(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "base url without scheme",
			mutate:  func(c *Config) { c.API.BaseURL = "localhost:8000" },
			wantErr: "api.base_url",
		},
		{
			name:    "bad glob",
			mutate:  func(c *Config) { c.Diff.Hide = []string{"vendor/**", "[unclosed"} },
			wantErr: "diff.hide[1]",
		},
		{
			name:    "notify template syntax",
			mutate:  func(c *Config) { c.Effects.NotifyCommand = "notify-send {{ .Title" },
			wantErr: "effects.notify_command",
		},
		{
			name:    "open template unknown field",
			mutate:  func(c *Config) { c.Effects.OpenCommand = "firefox {{ .Link }}" },
			wantErr: "effects.open_command",
		},
		{
			name: "valid templates",
			mutate: func(c *Config) {
				c.Effects.NotifyCommand = "notify-send {{ shq .Title }} {{ shq .Message }}"
				c.Effects.OpenCommand = "firefox {{ shq .URL }}"
			},
		},
		{
			name: "keybinding template",
			mutate: func(c *Config) {
				c.Keybindings["x"] = Keybinding{Sh: "echo {{ .Nope }}", Help: "x"}
			},
			wantErr: "keybindings[\"x\"].sh",
		},
		{
			name: "data dir is a file",
			mutate: func(c *Config) {
				path := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(path, nil, 0o644))
				c.DataDir = path
			},
			wantErr: "data_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.ValidateDeep("")
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)
	err := cfg.ValidateDeep(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config_file")
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Effects.DesktopNotifications = false
	assert.Empty(t, cfg.Warnings())

	cfg.Session.WarnBefore = cfg.Session.NominalWindow * 2
	cfg.Keybindings["z"] = Keybinding{Action: ActionRefresh}
	cfg.UI.Theme = "solarized"

	warnings := cfg.Warnings()
	require.Len(t, warnings, 3)

	categories := make([]string, 0, len(warnings))
	for _, w := range warnings {
		categories = append(categories, w.Category)
	}
	assert.ElementsMatch(t, []string{"Session", "Keybindings", "UI"}, categories)
}
