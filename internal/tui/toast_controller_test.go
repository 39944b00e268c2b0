package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/reviewdesk/internal/core/notify"
	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

func TestToastController_Push(t *testing.T) {
	c := NewToastController(4 * time.Second)

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "Extended"})

	assert.True(t, c.HasToasts())
	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "Extended", c.Toasts()[0].notification.Message)
	assert.Equal(t, 4*time.Second, c.Toasts()[0].remaining)
}

func TestToastController_DefaultTTL(t *testing.T) {
	c := NewToastController(0)
	c.Push(notify.Notification{Message: "x"})
	assert.Equal(t, defaultToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_Push_evicts_oldest_at_max(t *testing.T) {
	c := NewToastController(0)

	for i := range defaultMaxToasts + 2 {
		c.Push(notify.Notification{
			Level:   notify.LevelInfo,
			Message: time.Duration(i).String(),
		})
	}

	assert.Len(t, c.Toasts(), defaultMaxToasts)
	assert.Equal(t, "2ns", c.Toasts()[0].notification.Message)
}

func TestToastController_Tick_removes_expired(t *testing.T) {
	c := NewToastController(0)
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "expires"})
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "survives"})

	c.toasts[0].remaining = 50 * time.Millisecond
	c.Tick(100 * time.Millisecond)

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "survives", c.Toasts()[0].notification.Message)
	assert.Equal(t, defaultToastTTL-100*time.Millisecond, c.Toasts()[0].remaining)
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController(0)
	c.Dismiss()
	assert.False(t, c.HasToasts())

	c.Push(notify.Notification{Message: "first"})
	c.Push(notify.Notification{Message: "second"})

	c.Dismiss()
	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "first", c.Toasts()[0].notification.Message)

	c.DismissAll()
	assert.Empty(t, c.Toasts())
}

func TestToastView(t *testing.T) {
	tests := []struct {
		level notify.Level
		icon  string
	}{
		{notify.LevelError, styles.IconError},
		{notify.LevelWarning, styles.IconWarn},
		{notify.LevelInfo, styles.IconInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			c := NewToastController(0)
			v := NewToastView(c)
			assert.Empty(t, v.View())

			c.Push(notify.Notification{Level: tt.level, Message: "test msg"})

			out := v.View()
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "test msg")
		})
	}
}

func TestToastView_Attach(t *testing.T) {
	c := NewToastController(0)
	v := NewToastView(c)

	assert.Equal(t, "body", v.Attach("body", 80))

	c.Push(notify.Notification{Message: "first"})
	c.Push(notify.Notification{Message: "second"})

	out := v.Attach("body", 80)
	assert.True(t, strings.HasPrefix(out, "body"))
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
}
