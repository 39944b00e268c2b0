package effects

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a short audio cue.
type Beeper interface {
	Beep() error
}

const (
	sampleRate   = 44100
	toneHz       = 800
	toneDuration = 100 * time.Millisecond
	toneGain     = 0.1
	toneFloor    = 0.01
)

// oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func audioContext() (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// ToneBeeper plays an 800 Hz sine blip through the default audio device.
// The device is opened on the first Beep.
type ToneBeeper struct {
	tone []byte
}

// NewToneBeeper renders the tone once so each Beep only starts a player.
func NewToneBeeper() *ToneBeeper {
	return &ToneBeeper{tone: Tone(toneHz, toneDuration, sampleRate)}
}

func (b *ToneBeeper) Beep() error {
	ctx, err := audioContext()
	if err != nil {
		return err
	}

	player := ctx.NewPlayer(bytes.NewReader(b.tone))
	player.Play()
	go func() {
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		_ = player.Close()
	}()
	return nil
}

// Tone renders a mono signed 16-bit little endian sine wave whose gain decays
// exponentially from toneGain to toneFloor over its duration.
func Tone(hz float64, d time.Duration, rate int) []byte {
	n := int(float64(rate) * d.Seconds())
	if n <= 0 {
		return nil
	}

	buf := make([]byte, 2*n)
	decay := math.Log(toneFloor / toneGain)
	for i := range n {
		t := float64(i) / float64(rate)
		progress := float64(i) / float64(n)
		gain := toneGain * math.Exp(decay*progress)
		v := gain * math.Sin(2*math.Pi*hz*t)
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(int16(v*math.MaxInt16)))
	}
	return buf
}
