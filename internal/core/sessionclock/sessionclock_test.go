package sessionclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"utc suffix", "2025-01-01T10:00:00Z", base},
		{"naive treated as utc", "2025-01-01T10:00:00", base},
		{"naive with micros", "2025-01-01T10:00:00.250000", base.Add(250 * time.Millisecond)},
		{"positive offset", "2025-01-01T13:00:00+03:00", base},
		{"negative offset", "2025-01-01T05:00:00-05:00", base},
		{"space separator", "2025-01-01 10:00:00", base},
		{"surrounding whitespace", "  2025-01-01T10:00:00Z\n", base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpiry(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseExpiry_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "tomorrow", "2025-13-01T10:00:00"} {
		_, err := ParseExpiry(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestCompute_NaiveAndUTCAreIdentical(t *testing.T) {
	now := base.Add(-90 * time.Minute)

	naive := Compute("2025-01-01T10:00:00", now, DefaultWindow)
	utc := Compute("2025-01-01T10:00:00Z", now, DefaultWindow)

	assert.Equal(t, utc, naive)
	assert.Equal(t, 90*time.Minute, naive.Remaining)
}

func TestCompute_UnknownExpiry(t *testing.T) {
	for _, input := range []string{"", "garbage"} {
		s := Compute(input, base, DefaultWindow)
		assert.False(t, s.Known)
		assert.False(t, s.Expired())
		assert.False(t, s.UnderTenMinutes)
		assert.Equal(t, "--:--:--", s.Format())
	}
}

func TestCompute_NeverNegative(t *testing.T) {
	for _, past := range []time.Duration{0, time.Millisecond, time.Second, 5 * time.Hour} {
		s := Compute("2025-01-01T10:00:00Z", base.Add(past), DefaultWindow)
		assert.Equal(t, time.Duration(0), s.Remaining)
		assert.Equal(t, 0.0, s.Percent)
		assert.Equal(t, BandRed, s.Band)
		assert.True(t, s.Expired())
		assert.Equal(t, "time is up", s.Format())
	}
}

func TestCompute_MonotonicAsTimeAdvances(t *testing.T) {
	exp := "2025-01-01T10:00:00Z"
	prev := Compute(exp, base.Add(-3*time.Hour), DefaultWindow)
	for step := -3 * time.Hour; step <= time.Hour; step += 7 * time.Second {
		cur := Compute(exp, base.Add(step), DefaultWindow)
		assert.LessOrEqual(t, cur.Remaining, prev.Remaining)
		assert.LessOrEqual(t, cur.Percent, prev.Percent)
		prev = cur
	}
}

func TestCompute_PercentClamped(t *testing.T) {
	s := Compute("2025-01-01T10:00:00Z", base.Add(-3*time.Hour), DefaultWindow)
	assert.Equal(t, 100.0, s.Percent)
	assert.Equal(t, BandGreen, s.Band)
}

func TestCompute_FreshSessionIsFullAndGreen(t *testing.T) {
	s := Compute(base.Add(DefaultWindow).Format(time.RFC3339), base, DefaultWindow)
	assert.InDelta(t, 100.0, s.Percent, 0.001)
	assert.Equal(t, BandGreen, s.Band)
	assert.Equal(t, "02:00:00", s.Format())
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		percent float64
		want    Band
	}{
		{100, BandGreen},
		{40, BandGreen},
		{39.999, BandAmber},
		{15, BandAmber},
		{14.999, BandRed},
		{0, BandRed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.percent), "percent %v", tt.percent)
	}
}

func TestCompute_ThresholdFlags(t *testing.T) {
	exp := "2025-01-01T10:00:00Z"

	tests := []struct {
		name           string
		remaining      time.Duration
		one, five, ten bool
	}{
		{"eleven minutes", 11 * time.Minute, false, false, false},
		{"exactly ten minutes", 10 * time.Minute, false, false, false},
		{"just under ten", 10*time.Minute - time.Second, false, false, true},
		{"four minutes", 4 * time.Minute, false, true, true},
		{"exactly one minute", time.Minute, false, true, true},
		{"thirty seconds", 30 * time.Second, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Compute(exp, base.Add(-tt.remaining), DefaultWindow)
			assert.Equal(t, tt.one, s.UnderOneMinute)
			assert.Equal(t, tt.five, s.UnderFiveMinutes)
			assert.Equal(t, tt.ten, s.UnderTenMinutes)
		})
	}
}

func TestCompute_ZeroWindowFallsBack(t *testing.T) {
	s := Compute("2025-01-01T10:00:00Z", base.Add(-time.Hour), 0)
	assert.InDelta(t, 50.0, s.Percent, 0.001)
}

func TestSnapshot_Format(t *testing.T) {
	s := At(base.Add(time.Hour+2*time.Minute+3*time.Second+400*time.Millisecond), base, DefaultWindow)
	assert.Equal(t, "01:02:03", s.Format())
}
