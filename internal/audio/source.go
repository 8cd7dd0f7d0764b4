package audio

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// ChannelKind identifies one independently mixed bus.
type ChannelKind int

const (
	ChannelAmbient ChannelKind = iota
	ChannelStream
	ChannelWeather
	ChannelCreature
	channelCount
)

// Channels lists every bus in mixing order.
var Channels = [channelCount]ChannelKind{ChannelAmbient, ChannelStream, ChannelWeather, ChannelCreature}

func (c ChannelKind) String() string {
	switch c {
	case ChannelAmbient:
		return "ambient"
	case ChannelStream:
		return "stream"
	case ChannelWeather:
		return "weather"
	case ChannelCreature:
		return "creature"
	}
	return "unknown"
}

// ParseChannel maps a channel name back to its kind.
func ParseChannel(name string) (ChannelKind, bool) {
	for _, c := range Channels {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}

// SourceKind tags which variant feeds a channel.
type SourceKind int

const (
	SourceSynthetic SourceKind = iota
	SourceDecodedAsset
)

func (k SourceKind) String() string {
	if k == SourceDecodedAsset {
		return "decoded-asset"
	}
	return "synthetic"
}

// Source feeds a channel bus. Sources are built whole by BuildSynthetic or
// NewAssetSource and replaced whole; a live source is never rewired.
type Source interface {
	beep.Streamer
	Kind() SourceKind
	// Bed reports whether the channel streams the source continuously.
	// Non-bed sources only serve as one-shot templates.
	Bed() bool
	// URL is the asset the source was decoded from, empty for synthetic ones.
	URL() string
}

// WeatherTimbre picks which filter chain the synthetic weather bed voices.
type WeatherTimbre int

const (
	TimbreRain WeatherTimbre = iota
	TimbreFog
)

// timbreFade is the time constant of the rain/fog crossfade.
const timbreFade = 0.5

type synthLayer struct {
	noise []float64
	pos   int
	chain []*Biquad
	gain  float64
	mix   Param
}

func (l *synthLayer) next() float64 {
	x := l.noise[l.pos]
	l.pos++
	if l.pos >= len(l.noise) {
		l.pos = 0
	}
	for _, f := range l.chain {
		x = f.Process(x)
	}
	return x * l.gain * l.mix.Next()
}

// SyntheticSource voices filtered noise from the shared bank.
type SyntheticSource struct {
	channel    ChannelKind
	sampleRate int
	layers     []*synthLayer
}

// BuildSynthetic assembles the procedural generator for a channel. Filter
// state is per source; the noise buffers are shared.
func BuildSynthetic(ch ChannelKind, bank *NoiseBank, sampleRate int) *SyntheticSource {
	s := &SyntheticSource{channel: ch, sampleRate: sampleRate}
	switch ch {
	case ChannelAmbient:
		s.layers = []*synthLayer{{
			noise: bank.Brown,
			chain: []*Biquad{NewBiquad(LowPass, 400, math.Sqrt2/2, sampleRate)},
			gain:  1.0,
			mix:   NewParam(1),
		}}
	case ChannelStream:
		s.layers = []*synthLayer{{
			noise: bank.White,
			chain: []*Biquad{NewBiquad(BandPass, 500, 0.5, sampleRate)},
			gain:  0.8,
			mix:   NewParam(1),
		}}
	case ChannelWeather:
		rain := &synthLayer{
			noise: bank.White,
			chain: []*Biquad{
				NewBiquad(HighPass, 800, math.Sqrt2/2, sampleRate),
				NewBiquad(LowPass, 8000, math.Sqrt2/2, sampleRate),
			},
			gain: 0.6,
			mix:  NewParam(1),
		}
		fog := &synthLayer{
			noise: bank.White,
			pos:   len(bank.White) / 2,
			chain: []*Biquad{NewBiquad(BandPass, 300, 1.5, sampleRate)},
			gain:  1.0,
			mix:   NewParam(0),
		}
		s.layers = []*synthLayer{rain, fog}
	}
	return s
}

// SetTimbre crossfades the weather bed. Other channels ignore it.
func (s *SyntheticSource) SetTimbre(t WeatherTimbre) {
	if s.channel != ChannelWeather || len(s.layers) != 2 {
		return
	}
	rain, fog := 1.0, 0.0
	if t == TimbreFog {
		rain, fog = 0, 1
	}
	s.layers[0].mix.SetTarget(rain, timbreFade, s.sampleRate)
	s.layers[1].mix.SetTarget(fog, timbreFade, s.sampleRate)
}

// presetTimbre sets the weather layers without a fade, for freshly built beds.
func (s *SyntheticSource) presetTimbre(t WeatherTimbre) {
	if s.channel != ChannelWeather || len(s.layers) != 2 {
		return
	}
	if t == TimbreFog {
		s.layers[0].mix, s.layers[1].mix = NewParam(0), NewParam(1)
		return
	}
	s.layers[0].mix, s.layers[1].mix = NewParam(1), NewParam(0)
}

// Stream fills samples with mono noise on both sides.
func (s *SyntheticSource) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := 0.0
		for _, l := range s.layers {
			v += l.next()
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (s *SyntheticSource) Err() error       { return nil }
func (s *SyntheticSource) Kind() SourceKind { return SourceSynthetic }
func (s *SyntheticSource) Bed() bool        { return len(s.layers) > 0 }
func (s *SyntheticSource) URL() string      { return "" }

// Clip is a decoded stereo asset at the engine sample rate.
type Clip struct {
	Samples [][2]float64
}

// Len is the number of frames.
func (c *Clip) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Samples)
}

// AssetSource plays a decoded clip, looping when it is a channel bed.
type AssetSource struct {
	url  string
	clip *Clip
	pos  int
	bed  bool
}

// NewAssetSource binds a decoded clip to a new source.
func NewAssetSource(url string, clip *Clip, bed bool) *AssetSource {
	return &AssetSource{url: url, clip: clip, bed: bed}
}

// Stream copies clip frames, wrapping for beds and draining otherwise.
func (a *AssetSource) Stream(samples [][2]float64) (int, bool) {
	n := a.clip.Len()
	if n == 0 {
		return 0, false
	}
	for i := range samples {
		if a.pos >= n {
			if !a.bed {
				return i, false
			}
			a.pos = 0
		}
		samples[i] = a.clip.Samples[a.pos]
		a.pos++
	}
	return len(samples), true
}

func (a *AssetSource) Err() error       { return nil }
func (a *AssetSource) Kind() SourceKind { return SourceDecodedAsset }
func (a *AssetSource) Bed() bool        { return a.bed }
func (a *AssetSource) URL() string      { return a.url }

// Clip exposes the decoded buffer so one-shots can replay it.
func (a *AssetSource) Clip() *Clip { return a.clip }
