package desk

import (
	"context"
	"io"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/core/countdown"
	"github.com/hay-kot/reviewdesk/internal/core/doctor"
	"github.com/hay-kot/reviewdesk/internal/core/eventbus"
	"github.com/hay-kot/reviewdesk/internal/core/expiry"
	"github.com/hay-kot/reviewdesk/internal/core/logging"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/core/tmux"
	"github.com/hay-kot/reviewdesk/internal/data/db"
	"github.com/hay-kot/reviewdesk/internal/data/stores"
	"github.com/hay-kot/reviewdesk/internal/effects"
	"github.com/hay-kot/reviewdesk/pkg/executil"
)

// App is the central entry point for all reviewdesk operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Sessions *SessionService
	MRs      *MRService
	Gitea    *GiteaService

	API           API
	Bus           *eventbus.EventBus
	Config        *config.Config
	DB            *db.DB
	KV            *stores.KVStore
	Cache         *expiry.Cache
	Companions    *expiry.Companions
	Notifications *stores.NotifyStore
	Exec          executil.Executor
}

// NewApp constructs an App from explicit dependencies.
func NewApp(api API, cfg *config.Config, database *db.DB, bus *eventbus.EventBus, exec executil.Executor) *App {
	kvStore := stores.NewKVStore(database)
	cache := expiry.NewCache(kvStore)

	return &App{
		Sessions:      NewSessionService(api, cache, bus, cfg, logging.Component("sessions")),
		MRs:           NewMRService(api),
		Gitea:         NewGiteaService(api, logging.Component("gitea")),
		API:           api,
		Bus:           bus,
		Config:        cfg,
		DB:            database,
		KV:            kvStore,
		Cache:         cache,
		Companions:    expiry.NewCompanions(kvStore, cfg.Candidate.CompanionTTL),
		Notifications: stores.NewNotifyStore(database),
		Exec:          exec,
	}
}

// CountdownOptions maps the session config onto countdown options.
func (a *App) CountdownOptions() countdown.Options {
	s := a.Config.Session
	return countdown.Options{
		Interval: s.TickInterval,
		Window:   s.NominalWindow,
		Thresholds: countdown.Thresholds{
			WarnBefore:   s.WarnBefore,
			TickBelow:    s.TickBelow,
			TickInterval: s.TickInterval,
			ExitGrace:    s.ExitGrace,
		},
		RebaseOnExtend: a.Config.RebaseOnExtend(),
	}
}

// NewCountdown builds a countdown reading the shared expiry cache.
func (a *App) NewCountdown(sched countdown.Scheduler, fx countdown.Effects, render func(sessionclock.Snapshot)) *countdown.Countdown {
	return countdown.New(a.Cache, sched, fx, a.CountdownOptions(), render)
}

// Desktop builds the notification and audio effects of one view. bell is
// where the terminal bell fallback is written.
func (a *App) Desktop(bell io.Writer) *effects.Desktop {
	var beeper effects.Beeper
	if a.Config.Effects.Sound {
		beeper = effects.NewToneBeeper()
	}
	return effects.NewDesktop(a.Exec, a.Config.Effects, beeper,
		effects.WithBellWriter(bell),
		effects.WithTmux(tmux.New(a.Exec)),
	)
}

// Opener opens links with the configured command.
func (a *App) Opener() *effects.Opener {
	return effects.NewOpener(a.Exec, a.Config.Effects.OpenCommand)
}

// Companion spawns the candidate view's timer pane and PR page.
func (a *App) Companion() *effects.Companion {
	return effects.NewCompanion(tmux.New(a.Exec), a.Opener(), a.Companions, "")
}

// Doctor runs every health check.
func (a *App) Doctor(ctx context.Context, configPath string) []doctor.Result {
	checks := []doctor.Check{
		doctor.NewConfigCheck(a.Config, configPath),
		doctor.NewPlatformCheck(a.Config.API.BaseURL, a.API.Health, a.Config.API.Timeout),
		doctor.NewStorageCheck(a.Config.DataDir, db.FileName, a.KV),
		doctor.NewToolsCheck(),
	}
	return doctor.RunAll(ctx, checks)
}
