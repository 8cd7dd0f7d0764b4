package audio

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// OneShot names a fire-and-forget sound.
type OneShot int

const (
	// OneShotCreature is a marine-life call on the creature bus.
	OneShotCreature OneShot = iota
	// OneShotChime is the checkpoint chime, routed straight to master.
	OneShotChime
)

func (o OneShot) String() string {
	if o == OneShotChime {
		return "chime"
	}
	return "creature"
}

// Creature call: sine sweeping up an octave, short attack, exponential tail.
const (
	creatureF0     = 400.0
	creatureF1     = 800.0
	creatureSweep  = 0.1
	creatureAttack = 0.05
	creatureTotal  = 0.5
	creaturePeak   = 0.5
)

// Chime: triangle sweeping up an octave, bright and slightly longer.
const (
	chimeF0     = 300.0
	chimeF1     = 600.0
	chimeSweep  = 0.2
	chimeAttack = 0.02
	chimeTotal  = 0.6
	chimePeak   = 0.3
)

// voice is one in-flight one-shot. It owns its streamer and is dropped once
// the streamer drains.
type voice struct {
	s    beep.Streamer
	bus  int
	done bool
}

// toneVoice renders a swept oscillator through a pluck envelope.
func toneVoice(sampleRate int, wave func(float64) float64, f0, f1, sweep, attack, total, peak float64) beep.Streamer {
	dt := 1 / float64(sampleRate)
	t, phase := 0.0, 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			if t >= total {
				return i, false
			}
			v := wave(phase) * pluckEnvelope(t, attack, total, peak)
			samples[i][0] = v
			samples[i][1] = v
			phase += 2 * math.Pi * sweepFreq(t, f0, f1, sweep) * dt
			t += dt
		}
		return len(samples), true
	})
}

func newCreatureCall(sampleRate int) beep.Streamer {
	return toneVoice(sampleRate, math.Sin, creatureF0, creatureF1, creatureSweep, creatureAttack, creatureTotal, creaturePeak)
}

func newChime(sampleRate int) beep.Streamer {
	return toneVoice(sampleRate, triWave, chimeF0, chimeF1, chimeSweep, chimeAttack, chimeTotal, chimePeak)
}
