package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/reviewdesk/internal/core/sessionclock"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

var t0 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func TestHeader_Blinking(t *testing.T) {
	h := NewHeader(5 * time.Minute)

	h.SetSnapshot(sessionclock.At(t0.Add(30*time.Minute), t0, 2*time.Hour))
	assert.False(t, h.Blinking())
	assert.False(t, h.blink)

	h.SetSnapshot(sessionclock.At(t0.Add(4*time.Minute), t0, 2*time.Hour))
	assert.True(t, h.Blinking())
	assert.True(t, h.blink)

	h.SetSnapshot(sessionclock.At(t0.Add(4*time.Minute), t0.Add(time.Second), 2*time.Hour))
	assert.False(t, h.blink, "alternates each snapshot")

	h.SetSnapshot(sessionclock.At(t0, t0, 2*time.Hour))
	assert.False(t, h.Blinking(), "expired does not blink")
}

func TestHeader_BarFollowsBand(t *testing.T) {
	h := NewHeader(5 * time.Minute)

	h.SetSnapshot(sessionclock.At(t0.Add(10*time.Minute), t0, 2*time.Hour))
	assert.Equal(t, sessionclock.BandRed, h.Snapshot().Band)
	assert.Equal(t, string(styles.BandColor(sessionclock.BandRed)), h.bar.FullColor)
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(5 * time.Minute)
	h.Title = "Alex"

	assert.Contains(t, h.View(), "--:--:--")

	h.SetSnapshot(sessionclock.At(t0.Add(90*time.Minute), t0, 2*time.Hour))
	out := h.View()
	assert.Contains(t, out, "01:30:00")
	assert.Contains(t, out, "Alex")

	h.SetSnapshot(sessionclock.At(t0, t0.Add(time.Minute), 2*time.Hour))
	assert.Contains(t, h.View(), "time is up")
}
