// Package sim advances a bubble's journey one fixed tick at a time. Tick is a
// pure function: it returns the next state plus the events the host should
// dispatch to audio and the UI.
package sim

import (
	"fmt"
	"slices"
)

// EventKind classifies tick output.
type EventKind int

const (
	EventWeatherChanged EventKind = iota
	EventCheckpointHit
	EventBiomeCrossed
	EventJourneyCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventWeatherChanged:
		return "weather_changed"
	case EventCheckpointHit:
		return "checkpoint_hit"
	case EventBiomeCrossed:
		return "biome_crossed"
	case EventJourneyCompleted:
		return "journey_completed"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one side effect of a tick. Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	Progress  float64
	Weather   Weather
	Threshold float64
	Biome     int
	Quiz      *Quiz
}

// Tick advances s by one tick. Ticks outside the running phase change nothing.
func Tick(s State, route Route, set Settings, cfg Config, rng RNG) (State, []Event) {
	if s.Phase != PhaseRunning {
		return s, nil
	}
	next := s.clone()
	var events []Event

	next.Ticks++
	next.Progress = min(float64(next.Ticks)*cfg.Delta, 100)
	p := next.Progress

	for next.BiomesFired < len(route.Biomes) && p >= route.Biomes[next.BiomesFired] {
		events = append(events, Event{
			Kind:      EventBiomeCrossed,
			Progress:  p,
			Threshold: route.Biomes[next.BiomesFired],
			Biome:     next.BiomesFired,
		})
		next.BiomesFired++
	}

	paused := false
	if cp, ok := firstPending(route.Checkpoints, next.Triggered, p); ok && len(route.Quizzes) > 0 {
		q := SelectQuiz(route.Quizzes, next.Shown, rng)
		next.Triggered = append(next.Triggered, cp)
		next.Shown = append(next.Shown, q.ID)
		next.ActiveQuiz = &q
		next.Phase = PhasePaused
		events = append(events, Event{Kind: EventCheckpointHit, Progress: p, Threshold: cp, Quiz: &q})
		paused = true
	}

	if !paused && p >= 100 {
		next.Phase = PhaseCompleted
		if next.Weather.Kind != WeatherNone {
			next.Weather.Kind = WeatherNone
			events = append(events, Event{Kind: EventWeatherChanged, Progress: p, Weather: next.Weather})
		}
		events = append(events, Event{Kind: EventJourneyCompleted, Progress: p})
		return next, events
	}

	before := next.Weather.Kind
	next.Weather = stepWeather(next.Weather, set, cfg, rng)
	if next.Weather.Kind != before {
		events = append(events, Event{Kind: EventWeatherChanged, Progress: p, Weather: next.Weather})
	}
	return next, events
}

// firstPending returns the lowest checkpoint reached by p that has not fired.
func firstPending(checkpoints, triggered []float64, p float64) (float64, bool) {
	for _, cp := range checkpoints {
		if p >= cp && !slices.Contains(triggered, cp) {
			return cp, true
		}
	}
	return 0, false
}
