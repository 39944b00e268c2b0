// Package effects performs the user-facing side effects of a countdown:
// desktop notifications, audio ticks, opening links and spawning companion
// panes.
package effects

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hay-kot/reviewdesk/internal/core/config"
	"github.com/hay-kot/reviewdesk/internal/core/countdown"
	"github.com/hay-kot/reviewdesk/internal/core/logging"
	"github.com/hay-kot/reviewdesk/internal/core/tmux"
	"github.com/hay-kot/reviewdesk/pkg/executil"
	"github.com/hay-kot/reviewdesk/pkg/tmpl"
	"github.com/rs/zerolog"
)

// NotifyTitle is the title of every desktop notification.
const NotifyTitle = "Code Review Session"

const bell = "\a"

// Desktop delivers notifications and audio ticks for one view. Methods never
// block on the spawned processes so they are safe to call from an event loop.
type Desktop struct {
	exec    executil.Executor
	cfg     config.EffectsConfig
	beeper  Beeper
	tmux    *tmux.Client
	bellOut io.Writer
	goos    string
	log     zerolog.Logger
}

// DesktopOption customizes a Desktop.
type DesktopOption func(*Desktop)

// WithBellWriter sets where the terminal bell fallback is written.
func WithBellWriter(w io.Writer) DesktopOption {
	return func(d *Desktop) { d.bellOut = w }
}

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) DesktopOption {
	return func(d *Desktop) { d.goos = goos }
}

// WithTmux lets notifications fall back to the tmux status line.
func WithTmux(c *tmux.Client) DesktopOption {
	return func(d *Desktop) { d.tmux = c }
}

// NewDesktop creates a Desktop. A nil beeper always uses the terminal bell.
func NewDesktop(exec executil.Executor, cfg config.EffectsConfig, beeper Beeper, opts ...DesktopOption) *Desktop {
	d := &Desktop{
		exec:    exec,
		cfg:     cfg,
		beeper:  beeper,
		bellOut: os.Stderr,
		goos:    runtime.GOOS,
		log:     logging.Component("effects"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify shows msg as a desktop notification.
func (d *Desktop) Notify(msg string) {
	if !d.cfg.DesktopNotifications {
		return
	}

	if err := d.notify(msg); err != nil {
		d.log.Debug().Err(err).Msg("desktop notification failed")
		if d.tmux != nil && d.tmux.Inside() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := d.tmux.DisplayMessage(ctx, msg); err == nil {
				return
			}
		}
		d.ring()
	}
}

func (d *Desktop) notify(msg string) error {
	if d.cfg.NotifyCommand != "" {
		cmd, err := tmpl.Render(d.cfg.NotifyCommand, config.NotifyTemplateData{
			Title:   NotifyTitle,
			Message: msg,
			Level:   "warning",
		})
		if err != nil {
			return fmt.Errorf("render notify_command: %w", err)
		}
		return d.exec.Start("sh", "-c", cmd)
	}

	switch d.goos {
	case "linux", "freebsd", "openbsd":
		if !d.exec.LookPath("notify-send") {
			return fmt.Errorf("notify-send not found")
		}
		return d.exec.Start("notify-send", "--app-name=reviewdesk", NotifyTitle, msg)
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleScriptQuote(msg), appleScriptQuote(NotifyTitle))
		return d.exec.Start("osascript", "-e", script)
	}
	return fmt.Errorf("no desktop notifier for %s", d.goos)
}

// Tick plays one short audio cue.
func (d *Desktop) Tick() {
	if !d.cfg.Sound {
		return
	}
	if d.beeper != nil {
		err := d.beeper.Beep()
		if err == nil {
			return
		}
		d.log.Debug().Err(err).Msg("audio tick failed, using terminal bell")
	}
	d.ring()
}

func (d *Desktop) ring() {
	if d.bellOut != nil {
		_, _ = io.WriteString(d.bellOut, bell)
	}
}

// WithExit pairs the desktop effects with a view specific forced exit.
func (d *Desktop) WithExit(exit func()) countdown.Effects {
	return viewEffects{Desktop: d, exit: exit}
}

type viewEffects struct {
	*Desktop
	exit func()
}

func (v viewEffects) ForceExit() {
	if v.exit != nil {
		v.exit()
	}
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
