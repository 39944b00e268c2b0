package tui

import (
	"context"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hay-kot/reviewdesk/internal/core/countdown"
	"github.com/hay-kot/reviewdesk/internal/core/eventbus"
	"github.com/hay-kot/reviewdesk/internal/core/expiry"
	"github.com/hay-kot/reviewdesk/internal/core/logging"
	corenotify "github.com/hay-kot/reviewdesk/internal/core/notify"
	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/data/db"
	"github.com/hay-kot/reviewdesk/internal/desk"
	"github.com/hay-kot/reviewdesk/internal/tui/notify"
)

// cacheChangedMsg is sent when another process wrote the shared store.
type cacheChangedMsg struct{}

// noticeMsg carries a bus notification into the Update loop.
type noticeMsg corenotify.Notification

// HostOptions configures a Host.
type HostOptions struct {
	// Bell receives the terminal bell fallback. Nil disables it.
	Bell io.Writer
	// Watch enables the fsnotify push refresh on top of the per-tick read.
	Watch bool
}

// Host is the plumbing every surface shares: a Scheduler bridging timers
// into Update, a countdown over the shared expiry cache, the countdown
// header, toasts and the notification bus.
//
// All methods must be called from the Bubble Tea Update loop.
type Host struct {
	App       *desk.App
	Sched     *Scheduler
	Countdown *countdown.Countdown
	Header    Header
	Toasts    *ToastController
	Notify    *notify.Bus

	toastView *ToastView
	log       zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	watcher *expiry.Watcher
	changes <-chan struct{}
	notices chan corenotify.Notification
	unsub   func()

	exited bool
}

// NewHost builds the shared plumbing for one surface.
func NewHost(app *desk.App, name string, opts HostOptions) *Host {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Host{
		App:     app,
		Sched:   NewScheduler(),
		Header:  NewHeader(app.Config.Session.BlinkBelow),
		Toasts:  NewToastController(app.Config.UI.StatusTTL),
		Notify:  notify.NewBus(app.Notifications, app.Config.UI.History),
		log:     logging.Component(name),
		ctx:     ctx,
		cancel:  cancel,
		notices: make(chan corenotify.Notification, 16),
	}
	h.toastView = NewToastView(h.Toasts)
	h.Notify.Subscribe(h.Toasts.Push)

	fx := app.Desktop(opts.Bell).WithExit(func() { h.exited = true })
	h.Countdown = app.NewCountdown(h.Sched, fx, h.render)

	if opts.Watch {
		w, err := expiry.NewWatcher(app.Config.DataDir, db.FileName)
		if err != nil {
			h.log.Warn().Err(err).Msg("file watcher unavailable, relying on polling")
		} else {
			h.watcher = w
			h.changes = w.Subscribe(ctx)
		}
	}

	if app.Bus != nil {
		h.unsub = app.Bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
			select {
			case h.notices <- corenotify.Notification{Level: p.Level, Message: p.Message}:
			default:
			}
		})
	}

	return h
}

func (h *Host) render(s sessionclock.Snapshot) {
	h.Header.SetSnapshot(s)
}

// Init starts the host's listeners.
func (h *Host) Init() tea.Cmd {
	return tea.Batch(h.Sched.Listen(), h.waitForChange(), h.waitForNotice())
}

// Bind starts the countdown for a session.
func (h *Host) Bind(id int64) {
	h.exited = false
	h.Countdown.Bind(strconv.FormatInt(id, 10))
	h.log.Debug().Int64("session_id", id).Msg("countdown bound")
}

// Unbind stops the countdown.
func (h *Host) Unbind() {
	h.Countdown.Unbind()
	h.Header.SetSnapshot(sessionclock.Snapshot{})
}

// TakeExit reports a forced exit fired since the last call and clears it.
func (h *Host) TakeExit() bool {
	if !h.exited {
		return false
	}
	h.exited = false
	return true
}

// Update handles host messages. ok is false when msg belongs to the view.
func (h *Host) Update(msg tea.Msg) (tea.Cmd, bool) {
	if cmd, ok := h.Sched.Handle(msg); ok {
		return cmd, true
	}

	switch msg := msg.(type) {
	case cacheChangedMsg:
		h.Countdown.Refresh()
		return h.waitForChange(), true
	case noticeMsg:
		h.Notify.Publish(corenotify.Notification(msg))
		return tea.Batch(h.waitForNotice(), h.startToastTicks()), true
	case toastTickMsg:
		h.Toasts.Tick(toastTickInterval)
		if h.Toasts.HasToasts() {
			return scheduleToastTick(), true
		}
		h.Toasts.SetTicking(false)
		return nil, true
	case tea.WindowSizeMsg:
		h.Header.SetWidth(msg.Width)
		return nil, false
	}

	return nil, false
}

// Infof shows an info toast and records it.
func (h *Host) Infof(format string, args ...any) tea.Cmd {
	h.Notify.Infof(format, args...)
	return h.startToastTicks()
}

// Errorf shows an error toast and records it.
func (h *Host) Errorf(format string, args ...any) tea.Cmd {
	h.Notify.Errorf(format, args...)
	return h.startToastTicks()
}

// Warnf shows a warning toast and records it.
func (h *Host) Warnf(format string, args ...any) tea.Cmd {
	h.Notify.Warnf(format, args...)
	return h.startToastTicks()
}

func (h *Host) startToastTicks() tea.Cmd {
	if h.Toasts.Ticking() || !h.Toasts.HasToasts() {
		return nil
	}
	h.Toasts.SetTicking(true)
	return scheduleToastTick()
}

// Frame appends the toast stack to a rendered view.
func (h *Host) Frame(body string, width int) string {
	return h.toastView.Attach(body, width)
}

// Close stops all timers and listeners.
func (h *Host) Close() {
	h.Countdown.Unbind()
	h.Sched.Close()
	h.cancel()
	if h.unsub != nil {
		h.unsub()
	}
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

func (h *Host) waitForChange() tea.Cmd {
	if h.changes == nil {
		return nil
	}
	ch := h.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return cacheChangedMsg{}
	}
}

func (h *Host) waitForNotice() tea.Cmd {
	if h.unsub == nil {
		return nil
	}
	ch, done := h.notices, h.ctx.Done()
	return func() tea.Msg {
		select {
		case n := <-ch:
			return noticeMsg(n)
		case <-done:
			return nil
		}
	}
}
