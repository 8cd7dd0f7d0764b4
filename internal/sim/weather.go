package sim

type WeatherKind uint8

const (
	WeatherNone WeatherKind = iota
	WeatherRain
	WeatherFog
)

func (k WeatherKind) String() string {
	switch k {
	case WeatherRain:
		return "RAIN"
	case WeatherFog:
		return "FOG"
	}
	return "NONE"
}

// ParseWeatherKind accepts the names String produces.
func ParseWeatherKind(s string) (WeatherKind, bool) {
	switch s {
	case "NONE":
		return WeatherNone, true
	case "RAIN":
		return WeatherRain, true
	case "FOG":
		return WeatherFog, true
	}
	return WeatherNone, false
}

// Weather is the sky over the bubble. Intensity keeps drifting even while the
// kind is None so it is ready when weather returns.
type Weather struct {
	Kind      WeatherKind
	Intensity float64
}

// pickWeather maps a uniform roll onto the reroll weights and reseeds the
// intensity for the chosen kind.
func pickWeather(cur Weather, cfg Config, rng RNG) Weather {
	roll := rng.Float64()
	switch {
	case roll < cfg.ClearWeight:
		return Weather{Kind: WeatherNone, Intensity: cur.Intensity}
	case roll < cfg.ClearWeight+cfg.RainWeight:
		return Weather{Kind: WeatherRain, Intensity: bandValue(cfg.RainBand, rng)}
	default:
		return Weather{Kind: WeatherFog, Intensity: bandValue(cfg.FogBand, rng)}
	}
}

func bandValue(band [2]float64, rng RNG) float64 {
	return band[0] + rng.Float64()*(band[1]-band[0])
}

// stepWeather runs one tick of the weather machine: an occasional reroll when
// enabled, a forced clear when disabled, then the intensity drift.
func stepWeather(cur Weather, set Settings, cfg Config, rng RNG) Weather {
	next := cur
	if set.WeatherEnabled {
		if rng.Float64() < cfg.RerollChance {
			next = pickWeather(cur, cfg, rng)
		}
	} else {
		next.Kind = WeatherNone
	}
	drift := (rng.Float64() - 0.5) * cfg.DriftSpan
	next.Intensity = clampF(next.Intensity+drift, cfg.MinIntensity, cfg.MaxIntensity)
	return next
}
