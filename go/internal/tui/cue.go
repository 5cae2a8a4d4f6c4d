package tui

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog/log"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneFreq   = 880
	toneLength = 60 * time.Millisecond
)

// ToneCue plays a short sine tone on every tick. Without an audio device it
// stays silent.
type ToneCue struct {
	mu      sync.Mutex
	enabled bool
}

// NewToneCue initialises the speaker
func NewToneCue() *ToneCue {
	c := &ToneCue{}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Warn().Err(err).Msg("audio unavailable, tick cue disabled")
		return c
	}
	c.enabled = true
	return c
}

func (c *ToneCue) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}

	sine, err := generators.SineTone(sampleRate, toneFreq)
	if err != nil {
		log.Warn().Err(err).Msg("failed to build tick tone")
		return
	}
	speaker.Play(beep.Take(sampleRate.N(toneLength), sine))
}

// Stop silences any tone still playing
func (c *ToneCue) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		speaker.Clear()
	}
}

// Close releases the audio device
func (c *ToneCue) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.enabled {
		speaker.Clear()
		speaker.Close()
		c.enabled = false
	}
}
