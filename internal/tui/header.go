package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

const defaultBarWidth = 30

// Header renders a session countdown: remaining time, a progress bar
// colored by band, and a title. Under BlinkBelow the time blinks, one
// phase per snapshot.
type Header struct {
	Title      string
	BlinkBelow time.Duration

	bar   progress.Model
	snap  sessionclock.Snapshot
	blink bool
}

func NewHeader(blinkBelow time.Duration) Header {
	bar := progress.New(
		progress.WithSolidFill(string(styles.BandColor(sessionclock.BandGreen))),
		progress.WithoutPercentage(),
		progress.WithWidth(defaultBarWidth),
	)
	bar.EmptyColor = string(styles.CurrentPalette.Surface)

	return Header{BlinkBelow: blinkBelow, bar: bar}
}

// SetSnapshot stores the latest reading.
func (h *Header) SetSnapshot(s sessionclock.Snapshot) {
	h.snap = s
	h.bar.FullColor = string(styles.BandColor(s.Band))
	if h.Blinking() {
		h.blink = !h.blink
	} else {
		h.blink = false
	}
}

func (h Header) Snapshot() sessionclock.Snapshot { return h.snap }

// Blinking reports whether the remaining time is under BlinkBelow.
func (h Header) Blinking() bool {
	return h.snap.Known && h.snap.Remaining > 0 && h.snap.Remaining < h.BlinkBelow
}

func (h *Header) SetWidth(w int) {
	h.bar.Width = min(max(w/3, 10), 60)
}

// Clock renders the remaining time alone.
func (h Header) Clock() string {
	if !h.snap.Known {
		return styles.MutedStyle.Render(h.snap.Format())
	}
	if h.snap.Expired() {
		return styles.ExpiredStyle.Render(h.snap.Format())
	}

	style := styles.BandStyle(h.snap.Band)
	if h.blink {
		style = style.Reverse(true)
	}
	return style.Render(styles.IconClock + " " + h.snap.Format())
}

// Bar renders the progress bar alone.
func (h Header) Bar() string {
	return h.bar.ViewAs(h.snap.Percent / 100)
}

func (h Header) View() string {
	parts := []string{h.Clock(), h.Bar()}
	if h.Title != "" {
		parts = append(parts, styles.TitleStyle.Render(h.Title))
	}
	return strings.Join(parts, "  ")
}
