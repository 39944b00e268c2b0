// Package desktest builds a desk.App wired to an in-process fake platform
// and a temporary data directory.
package desktest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/core/eventbus"
	"github.com/hay-kot/reviewdesk/internal/data/db"
	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/internal/platform"
	"github.com/hay-kot/reviewdesk/internal/platform/platformtest"
	"github.com/hay-kot/reviewdesk/pkg/executil"
)

// Env is a ready App and the fake platform behind it.
type Env struct {
	App    *desk.App
	Server *platformtest.Server
	Exec   *executil.RecordingExecutor
	Config *config.Config
}

type options struct {
	mutate []func(*config.Config)
	bus    *eventbus.EventBus
}

// Option customizes New.
type Option func(*options)

// WithConfig adjusts the config before the App is built.
func WithConfig(fn func(*config.Config)) Option {
	return func(o *options) { o.mutate = append(o.mutate, fn) }
}

// WithBus attaches an event bus to the App's services.
func WithBus(bus *eventbus.EventBus) Option {
	return func(o *options) { o.bus = bus }
}

// New builds an Env. Sound and desktop notifications are off, and jobs
// poll every millisecond.
func New(t testing.TB, opts ...Option) *Env {
	t.Helper()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	srv := platformtest.New(t)
	client, err := platform.New(platform.Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.BaseURL = srv.URL
	cfg.Jobs.PollInterval = time.Millisecond
	cfg.Effects.Sound = false
	cfg.Effects.DesktopNotifications = false
	cfg.Keybindings = config.DefaultKeybindings()
	for _, fn := range o.mutate {
		fn(&cfg)
	}

	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	rec := &executil.RecordingExecutor{}
	return &Env{
		App:    desk.NewApp(client, &cfg, database, o.bus, rec),
		Server: srv,
		Exec:   rec,
		Config: &cfg,
	}
}
