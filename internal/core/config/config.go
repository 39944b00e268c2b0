// Package config handles configuration loading and validation for reviewdesk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in dashboard actions that keybindings can refer to.
const (
	ActionExtend   = "extend"
	ActionFinish   = "finish"
	ActionDelete   = "delete"
	ActionEvaluate = "evaluate"
	ActionReport   = "report"
	ActionPDF      = "pdf"
	ActionRefresh  = "refresh"
	ActionNew      = "new"
	ActionOpenPR   = "open-pr"
)

var actions = []string{
	ActionExtend, ActionFinish, ActionDelete, ActionEvaluate, ActionReport,
	ActionPDF, ActionRefresh, ActionNew, ActionOpenPR,
}

// defaultKeybindings provides built-in dashboard keybindings that users can override.
var defaultKeybindings = map[string]Keybinding{
	"e": {Action: ActionExtend, Help: "extend"},
	"f": {
		Action:  ActionFinish,
		Help:    "finish",
		Confirm: "Finish this session? The candidate will no longer be able to comment.",
	},
	"d": {
		Action:  ActionDelete,
		Help:    "delete",
		Confirm: "Delete this session?",
	},
	"v": {Action: ActionEvaluate, Help: "evaluate"},
	"o": {Action: ActionReport, Help: "report"},
	"p": {Action: ActionPDF, Help: "pdf"},
	"g": {Action: ActionOpenPR, Help: "open pr"},
	"r": {Action: ActionRefresh, Help: "refresh"},
	"n": {Action: ActionNew, Help: "new"},
}

// Config holds the application configuration.
type Config struct {
	API         APIConfig             `yaml:"api"`
	Reviewer    ReviewerConfig        `yaml:"reviewer"`
	Session     SessionConfig         `yaml:"session"`
	Jobs        JobsConfig            `yaml:"jobs"`
	Effects     EffectsConfig         `yaml:"effects"`
	Candidate   CandidateConfig       `yaml:"candidate"`
	Diff        DiffConfig            `yaml:"diff"`
	Database    DatabaseConfig        `yaml:"database"`
	UI          UIConfig              `yaml:"ui"`
	Keybindings map[string]Keybinding `yaml:"keybindings"`
	DataDir     string                `yaml:"-"` // set by caller, not from config file
}

// APIConfig points the client at the platform.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ReviewerConfig holds defaults for sessions created from this machine.
type ReviewerConfig struct {
	Name      string `yaml:"name"`
	MRPackage string `yaml:"mr_package"`
}

// SessionConfig tunes the countdown shown for a session.
type SessionConfig struct {
	NominalWindow time.Duration `yaml:"nominal_window"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	ExitGrace     time.Duration `yaml:"exit_grace"`
	WarnBefore    time.Duration `yaml:"warn_before"`
	BlinkBelow    time.Duration `yaml:"blink_below"`
	TickBelow     time.Duration `yaml:"tick_below"`
	// RebaseWindow restarts progress from the remaining time after an
	// extension. By default progress stays measured against NominalWindow.
	RebaseWindow bool `yaml:"rebase_window"`
}

// JobsConfig controls evaluation job polling.
type JobsConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"` // 0 polls until the job is terminal
}

// EffectsConfig controls the side effects of the countdown.
type EffectsConfig struct {
	Sound                bool   `yaml:"sound"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`
	NotifyCommand        string `yaml:"notify_command"` // template, see NotifyTemplateData
	OpenCommand          string `yaml:"open_command"`   // template, see OpenTemplateData
}

// CandidateConfig controls the candidate view.
type CandidateConfig struct {
	AutoOpenPR    bool          `yaml:"auto_open_pr"`
	AutoOpenTimer bool          `yaml:"auto_open_timer"`
	CompanionTTL  time.Duration `yaml:"companion_ttl"`
	DefaultFile   string        `yaml:"default_file"`
}

// DiffConfig controls how session diffs are displayed.
type DiffConfig struct {
	// Hide lists doublestar globs of paths left out of the diff view.
	Hide []string `yaml:"hide"`
}

// DatabaseConfig tunes the shared SQLite store.
type DatabaseConfig struct {
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme           string        `yaml:"theme"`
	StatusTTL       time.Duration `yaml:"status_ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	History         int           `yaml:"history"` // notifications kept in the store
}

// Keybinding defines a dashboard keybinding.
type Keybinding struct {
	Action  string `yaml:"action"`  // built-in action name
	Help    string `yaml:"help"`    // help text shown in TUI
	Sh      string `yaml:"sh"`      // shell command template, see KeybindingTemplateData
	Confirm string `yaml:"confirm"` // confirmation prompt (empty = no confirm)
}

// NotifyTemplateData defines the fields available to effects.notify_command.
type NotifyTemplateData struct {
	Title   string
	Message string
	Level   string
}

// OpenTemplateData defines the fields available to effects.open_command.
type OpenTemplateData struct {
	URL string
}

// KeybindingTemplateData defines the fields available to keybinding sh templates.
type KeybindingTemplateData struct {
	ID            int64
	Token         string
	CandidateName string
	Status        string
	PRURL         string
	BaseURL       string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 15 * time.Second,
		},
		Reviewer: ReviewerConfig{
			Name:      "Reviewer",
			MRPackage: "default",
		},
		Session: SessionConfig{
			NominalWindow: 2 * time.Hour,
			TickInterval:  time.Second,
			ExitGrace:     time.Second,
			WarnBefore:    10 * time.Minute,
			BlinkBelow:    5 * time.Minute,
			TickBelow:     time.Minute,
		},
		Jobs: JobsConfig{
			PollInterval: 2 * time.Second,
		},
		Effects: EffectsConfig{
			Sound:                true,
			DesktopNotifications: true,
		},
		Candidate: CandidateConfig{
			AutoOpenPR:    true,
			AutoOpenTimer: true,
			CompanionTTL:  12 * time.Hour,
			DefaultFile:   "main.py",
		},
		Diff: DiffConfig{
			Hide: []string{},
		},
		Database: DatabaseConfig{
			BusyTimeout:  5 * time.Second,
			MaxOpenConns: 10,
		},
		UI: UIConfig{
			Theme:           "tokyo-night",
			StatusTTL:       3 * time.Second,
			RefreshInterval: 30 * time.Second,
			History:         200,
		},
		Keybindings: map[string]Keybinding{},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	setIfZero(&c.API.BaseURL, d.API.BaseURL)
	setIfZero(&c.API.Timeout, d.API.Timeout)
	setIfZero(&c.Reviewer.Name, d.Reviewer.Name)
	setIfZero(&c.Reviewer.MRPackage, d.Reviewer.MRPackage)
	setIfZero(&c.Session.NominalWindow, d.Session.NominalWindow)
	setIfZero(&c.Session.TickInterval, d.Session.TickInterval)
	setIfZero(&c.Session.ExitGrace, d.Session.ExitGrace)
	setIfZero(&c.Session.WarnBefore, d.Session.WarnBefore)
	setIfZero(&c.Session.BlinkBelow, d.Session.BlinkBelow)
	setIfZero(&c.Session.TickBelow, d.Session.TickBelow)
	setIfZero(&c.Jobs.PollInterval, d.Jobs.PollInterval)
	setIfZero(&c.Candidate.CompanionTTL, d.Candidate.CompanionTTL)
	setIfZero(&c.Candidate.DefaultFile, d.Candidate.DefaultFile)
	setIfZero(&c.Database.BusyTimeout, d.Database.BusyTimeout)
	setIfZero(&c.Database.MaxOpenConns, d.Database.MaxOpenConns)
	setIfZero(&c.UI.Theme, d.UI.Theme)
	setIfZero(&c.UI.StatusTTL, d.UI.StatusTTL)
	setIfZero(&c.UI.RefreshInterval, d.UI.RefreshInterval)
	setIfZero(&c.UI.History, d.UI.History)
}

func setIfZero[T comparable](dst *T, def T) {
	var zero T
	if *dst == zero {
		*dst = def
	}
}

// DefaultKeybindings returns a copy of the built-in dashboard keybindings.
func DefaultKeybindings() map[string]Keybinding {
	return mergeKeybindings(defaultKeybindings, nil)
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings override defaults for the same key.
func mergeKeybindings(defaults, user map[string]Keybinding) map[string]Keybinding {
	result := make(map[string]Keybinding, len(defaults)+len(user))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"api.timeout":            c.API.Timeout,
		"session.nominal_window": c.Session.NominalWindow,
		"session.tick_interval":  c.Session.TickInterval,
		"session.exit_grace":     c.Session.ExitGrace,
		"jobs.poll_interval":     c.Jobs.PollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if c.Session.TickBelow > c.Session.WarnBefore {
		return fmt.Errorf("session.tick_below (%s) cannot exceed session.warn_before (%s)", c.Session.TickBelow, c.Session.WarnBefore)
	}

	if c.Jobs.MaxAttempts < 0 {
		return fmt.Errorf("jobs.max_attempts cannot be negative")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	for key, kb := range c.Keybindings {
		if kb.Action == "" && kb.Sh == "" {
			return fmt.Errorf("keybinding %q must have either action or sh", key)
		}
		if kb.Action != "" && kb.Sh != "" {
			return fmt.Errorf("keybinding %q cannot have both action and sh", key)
		}
		if kb.Action != "" && !isValidAction(kb.Action) {
			return fmt.Errorf("keybinding %q has invalid action %q", key, kb.Action)
		}
	}

	return nil
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "reviewdesk.log")
}

// RebaseOnExtend reports whether progress restarts from the remaining time
// after an extension.
func (c *Config) RebaseOnExtend() bool {
	return c.Session.RebaseWindow
}

func isValidAction(action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
