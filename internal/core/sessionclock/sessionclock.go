// Package sessionclock converts a server supplied session expiry into the
// remaining time and progress shown by every countdown surface.
//
// Everything here is pure: callers pass "now" explicitly so results are
// deterministic.
package sessionclock

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWindow is the nominal session length. Callers that rebase after an
// extension pass the remaining time at that moment as the window instead.
const DefaultWindow = 2 * time.Hour

// Band thresholds, in percent of the nominal window.
const (
	redBelow   = 15.0
	amberBelow = 40.0
)

// Band is the color band of a countdown.
type Band string

const (
	BandGreen Band = "green"
	BandAmber Band = "amber"
	BandRed   Band = "red"
)

// BandFor returns the band for a percent value.
func BandFor(percent float64) Band {
	switch {
	case percent < redBelow:
		return BandRed
	case percent < amberBelow:
		return BandAmber
	default:
		return BandGreen
	}
}

// Snapshot is a single countdown reading. It is recomputed on every tick and
// never persisted.
type Snapshot struct {
	// Known is false when no usable expiry was available. All other fields
	// are zero in that case and no thresholds apply.
	Known     bool
	ExpiresAt time.Time
	Remaining time.Duration
	Percent   float64
	Band      Band

	UnderOneMinute   bool
	UnderFiveMinutes bool
	UnderTenMinutes  bool
}

// Expired reports whether the snapshot observed a known expiry that has passed.
func (s Snapshot) Expired() bool {
	return s.Known && s.Remaining == 0
}

// Format renders the remaining time as HH:MM:SS.
func (s Snapshot) Format() string {
	if !s.Known {
		return "--:--:--"
	}
	if s.Remaining == 0 {
		return "time is up"
	}

	total := int64(s.Remaining / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// Compute derives a snapshot from a raw expiry timestamp. An empty or
// unparseable timestamp yields an unknown snapshot. A non-positive window
// falls back to DefaultWindow.
func Compute(expiresAt string, now time.Time, window time.Duration) Snapshot {
	if strings.TrimSpace(expiresAt) == "" {
		return Snapshot{}
	}

	exp, err := ParseExpiry(expiresAt)
	if err != nil {
		return Snapshot{}
	}

	return At(exp, now, window)
}

// At derives a snapshot from an already parsed expiry.
func At(exp, now time.Time, window time.Duration) Snapshot {
	if window <= 0 {
		window = DefaultWindow
	}

	remaining := exp.Sub(now)
	if remaining < 0 {
		remaining = 0
	}

	percent := 100 * float64(remaining) / float64(window)
	percent = min(max(percent, 0), 100)

	return Snapshot{
		Known:            true,
		ExpiresAt:        exp,
		Remaining:        remaining,
		Percent:          percent,
		Band:             BandFor(percent),
		UnderOneMinute:   remaining < time.Minute,
		UnderFiveMinutes: remaining < 5*time.Minute,
		UnderTenMinutes:  remaining < 10*time.Minute,
	}
}

// ParseExpiry parses an ISO-8601 timestamp. Timestamps without a UTC
// designator are treated as UTC: the API emits naive timestamps that are
// already UTC, and reading them as local time skews the countdown by the
// local offset.
func ParseExpiry(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse expiry: empty timestamp")
	}

	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}

	if !hasZone(s) {
		s += "Z"
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse expiry %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// hasZone reports whether an ISO timestamp carries a Z suffix or a numeric
// offset after its time component. Dashes inside the date part do not count.
func hasZone(s string) bool {
	if strings.HasSuffix(s, "Z") || strings.HasSuffix(s, "z") {
		return true
	}

	t := strings.IndexAny(s, "Tt")
	if t < 0 {
		return false
	}
	return strings.ContainsAny(s[t+1:], "+-")
}
