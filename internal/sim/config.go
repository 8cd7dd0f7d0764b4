package sim

import "time"

// Config holds the simulation's tunables. Thresholds live on the Route since
// they differ per current.
type Config struct {
	// Delta is the progress added per running tick.
	Delta float64
	// Interval is the wall-clock tick cadence.
	Interval time.Duration

	// RerollChance is the per-tick probability of picking a new weather kind.
	RerollChance float64
	// ClearWeight and RainWeight split a reroll; fog takes the remainder.
	ClearWeight float64
	RainWeight  float64
	// RainBand and FogBand are the intensity ranges a reroll reseeds into.
	RainBand [2]float64
	FogBand  [2]float64

	// DriftSpan is the width of the per-tick intensity random walk.
	DriftSpan    float64
	MinIntensity float64
	MaxIntensity float64
	// StartIntensity is the intensity of a fresh session.
	StartIntensity float64
}

// DefaultConfig returns the tuned values: 0.08% every 20 ms, so a journey
// with no stops takes 25 seconds.
func DefaultConfig() Config {
	return Config{
		Delta:          0.08,
		Interval:       20 * time.Millisecond,
		RerollChance:   0.005,
		ClearWeight:    0.6,
		RainWeight:     0.2,
		RainBand:       [2]float64{0.5, 1.0},
		FogBand:        [2]float64{0.4, 1.0},
		DriftSpan:      0.02,
		MinIntensity:   0.2,
		MaxIntensity:   1.0,
		StartIntensity: 0.5,
	}
}

// Settings is the slice of user settings the tick reads.
type Settings struct {
	WeatherEnabled bool
}
