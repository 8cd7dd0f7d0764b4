package game

import (
	"context"

	"bubblevoyage/internal/audio"
	"bubblevoyage/internal/settings"
	"bubblevoyage/internal/sim"
)

// Mixer is the slice of the audio engine the session drives.
type Mixer interface {
	Initialize()
	SetMasterVolume(target, tau float64)
	SetChannelVolume(ch audio.ChannelKind, target, tau float64)
	ReserveSource(ch audio.ChannelKind) uint64
	LoadSource(ctx context.Context, ch audio.ChannelKind, url string, id uint64) error
	TriggerOneShot(ch audio.ChannelKind, variant audio.OneShot)
	SetWeatherTimbre(t audio.WeatherTimbre)
	SuspendOrResume()
}

// Smoothing time constants, in seconds.
const (
	masterTau  = 0.5
	channelTau = 0.5
	rainTau    = 1.0
	fogTau     = 2.5
	// fogBoost lifts the thinner fog bed to sit level with rain.
	fogBoost = 1.5
)

// mixTargets is the gain plan for one moment of the game.
type mixTargets struct {
	master     float64
	ambient    float64
	stream     float64
	creature   float64
	weather    float64
	weatherTau float64
}

// planMix derives every bus target from phase, weather and settings. Only an
// active journey is audible. lastKind is the weather kind heard before this
// one, so a fog bed fades out as slowly as it faded in.
func planMix(traveling bool, w sim.Weather, lastKind sim.WeatherKind, set settings.Settings) mixTargets {
	m := mixTargets{
		ambient:    set.AmbientVolume,
		stream:     set.StreamVolume,
		creature:   set.CreatureVolume,
		weatherTau: rainTau,
	}
	if traveling {
		m.master = set.MasterVolume
	}
	kind := w.Kind
	if !traveling {
		kind = sim.WeatherNone
	}
	switch kind {
	case sim.WeatherRain:
		m.weather = max(0, w.Intensity*set.WeatherVolume)
	case sim.WeatherFog:
		m.weather = min(1, max(0, w.Intensity*set.WeatherVolume*fogBoost))
		m.weatherTau = fogTau
	default:
		if lastKind == sim.WeatherFog {
			m.weatherTau = fogTau
		}
	}
	return m
}

func (m mixTargets) apply(mx Mixer) {
	mx.SetMasterVolume(m.master, masterTau)
	mx.SetChannelVolume(audio.ChannelAmbient, m.ambient, channelTau)
	mx.SetChannelVolume(audio.ChannelStream, m.stream, channelTau)
	mx.SetChannelVolume(audio.ChannelCreature, m.creature, channelTau)
	mx.SetChannelVolume(audio.ChannelWeather, m.weather, m.weatherTau)
}

func timbreFor(k sim.WeatherKind) (audio.WeatherTimbre, bool) {
	switch k {
	case sim.WeatherRain:
		return audio.TimbreRain, true
	case sim.WeatherFog:
		return audio.TimbreFog, true
	}
	return 0, false
}
