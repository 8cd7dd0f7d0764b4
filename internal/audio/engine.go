// Package audio renders the game's procedural soundscape: four channel buses
// of filtered noise or decoded assets, one-shot voices, and a master bus, all
// mixed in software and pulled by the output device.
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"bubblevoyage/internal/logger"

	"github.com/dustin/go-humanize"
)

// ErrSuperseded is returned by SetCustomSource when a newer request for the
// same channel arrived before this one finished.
var ErrSuperseded = errors.New("audio: source request superseded")

const (
	// declickTau is the crossfade time constant used when sources are swapped.
	declickTau = 0.01
	// silenceFloor is the gain below which a retiring source is dropped.
	silenceFloor = 1e-4
	// blockFrames bounds one render pass.
	blockFrames = 1024
	// busMaster routes a voice straight to the master bus.
	busMaster = -1
)

type retiring struct {
	src  Source
	gain Param
}

type channel struct {
	kind     ChannelKind
	gain     Param
	src      Source
	fadeIn   Param
	retiring []*retiring
	requests uint64
}

// Level is one gain's current value and where it is heading.
type Level struct {
	Value  float64
	Target float64
}

// Levels is a snapshot of every gain in the graph.
type Levels struct {
	Master   Level
	Channels [channelCount]Level
}

// Engine owns the audio graph. All graph state is guarded by mu because the
// device pulls samples from its own goroutine.
type Engine struct {
	mu         sync.Mutex
	log        *logger.Logger
	sampleRate int
	seed       uint64
	fetcher    Fetcher
	newDevice  func(sampleRate int) (Device, error)

	device       Device
	initialized  bool
	silent       bool
	suspended    bool
	suspendTimer *time.Timer

	bank     *NoiseBank
	master   Param
	channels [channelCount]*channel
	voices   []*voice
	timbre   WeatherTimbre

	mix, bus, tmp [][2]float64
	readBuf       [][2]float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithFetcher replaces the asset fetcher.
func WithFetcher(f Fetcher) Option { return func(e *Engine) { e.fetcher = f } }

// WithDevice replaces the output device factory.
func WithDevice(newDevice func(sampleRate int) (Device, error)) Option {
	return func(e *Engine) { e.newDevice = newDevice }
}

// WithSampleRate overrides the render rate.
func WithSampleRate(sr int) Option { return func(e *Engine) { e.sampleRate = sr } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(e *Engine) { e.log = l } }

// WithSeed fixes the noise bank seed.
func WithSeed(seed uint64) Option { return func(e *Engine) { e.seed = seed } }

// NewEngine builds an engine with every gain at rest. Nothing is audible until
// Initialize is called and the master is raised.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		log:        logger.Discard(),
		sampleRate: SampleRate,
		seed:       uint64(time.Now().UnixNano()),
		fetcher:    DefaultFetcher(),
		newDevice: func(sr int) (Device, error) {
			return NewOtoDevice(sr)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, ch := range Channels {
		e.channels[ch] = &channel{kind: ch, gain: NewParam(0), fadeIn: NewParam(1)}
	}
	e.mix = make([][2]float64, blockFrames)
	e.bus = make([][2]float64, blockFrames)
	e.tmp = make([][2]float64, blockFrames)
	e.readBuf = make([][2]float64, blockFrames)
	return e
}

// Initialize opens the device and installs a synthetic source on every channel
// that has none yet. Calling it again is a no-op. A device that cannot be
// opened leaves the engine running silently.
func (e *Engine) Initialize() {
	e.mu.Lock()
	if e.initialized {
		e.mu.Unlock()
		return
	}
	dev, err := e.newDevice(e.sampleRate)
	if err != nil {
		e.log.Warn("audio output unavailable, running silent: %v", err)
		dev = &SilentDevice{}
		e.silent = true
	}
	e.device = dev
	e.bank = NewNoiseBank(e.sampleRate, e.seed)
	for _, c := range e.channels {
		if c.src == nil {
			c.src = e.buildSynthetic(c.kind)
		}
	}
	e.initialized = true
	e.mu.Unlock()

	if err := dev.Start(e); err != nil {
		e.log.Warn("audio output failed to start, running silent: %v", err)
		e.mu.Lock()
		e.device = &SilentDevice{}
		e.silent = true
		e.mu.Unlock()
	}
	e.log.Info("audio engine ready at %d Hz", e.sampleRate)
}

// Initialized reports whether Initialize has run.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// Silent reports whether the engine fell back to the no-op device.
func (e *Engine) Silent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.silent
}

// Close stops the output.
func (e *Engine) Close() error {
	e.mu.Lock()
	dev := e.device
	if e.suspendTimer != nil {
		e.suspendTimer.Stop()
	}
	e.mu.Unlock()
	if dev == nil {
		return nil
	}
	return dev.Close()
}

// SetMasterVolume ramps the master bus toward target with time constant tau.
func (e *Engine) SetMasterVolume(target, tau float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master.SetTarget(clampF(target, 0, 1), tau, e.sampleRate)
}

// SetChannelVolume ramps one channel bus toward target with time constant tau.
func (e *Engine) SetChannelVolume(ch ChannelKind, target, tau float64) {
	if ch < 0 || ch >= channelCount {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.channels[ch].gain.SetTarget(clampF(target, 0, 1), tau, e.sampleRate)
}

// Volumes snapshots the master and channel gains.
func (e *Engine) Volumes() Levels {
	e.mu.Lock()
	defer e.mu.Unlock()
	lv := Levels{Master: Level{Value: e.master.Value(), Target: e.master.Target()}}
	for i, c := range e.channels {
		lv.Channels[i] = Level{Value: c.gain.Value(), Target: c.gain.Target()}
	}
	return lv
}

// ActiveSource reports which variant currently feeds ch and, for decoded
// assets, its URL.
func (e *Engine) ActiveSource(ch ChannelKind) (SourceKind, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	src := e.channels[ch].src
	if src == nil {
		return SourceSynthetic, ""
	}
	return src.Kind(), src.URL()
}

// SetCustomSource replaces the source on ch. An empty url restores the
// synthetic generator. Fetch and decode happen without holding the graph
// lock; if a newer request for ch lands first, this one returns
// ErrSuperseded and changes nothing. On failure the old source stays.
func (e *Engine) SetCustomSource(ctx context.Context, ch ChannelKind, url string) error {
	return e.LoadSource(ctx, ch, url, e.ReserveSource(ch))
}

// ReserveSource takes the next request number for ch. Only the most recent
// reservation may install a source, so callers that load in the background
// reserve first, in request order.
func (e *Engine) ReserveSource(ch ChannelKind) uint64 {
	if ch < 0 || ch >= channelCount {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	c := e.channels[ch]
	c.requests++
	return c.requests
}

// LoadSource is SetCustomSource for a request number already taken with
// ReserveSource.
func (e *Engine) LoadSource(ctx context.Context, ch ChannelKind, url string, id uint64) error {
	if ch < 0 || ch >= channelCount {
		return fmt.Errorf("audio: unknown channel %d", ch)
	}
	e.mu.Lock()
	c := e.channels[ch]
	stale := id != c.requests
	e.mu.Unlock()
	if stale {
		return ErrSuperseded
	}

	if url == "" {
		e.mu.Lock()
		defer e.mu.Unlock()
		if id != c.requests {
			return ErrSuperseded
		}
		if c.src != nil && c.src.Kind() == SourceSynthetic {
			return nil
		}
		if e.bank == nil {
			// Not initialized yet; Initialize installs the synthetic source.
			c.src = nil
			return nil
		}
		e.splice(c, e.buildSynthetic(ch))
		e.log.Info("%s channel back on synthetic source", ch)
		return nil
	}

	data, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.log.Warn("%s asset fetch failed, keeping current source: %v", ch, err)
		return fmt.Errorf("load %s asset: %w", ch, err)
	}
	clip, err := DecodeClip(data, e.sampleRate)
	if err != nil {
		e.log.Warn("%s asset decode failed, keeping current source: %v", ch, err)
		return fmt.Errorf("load %s asset: %w", ch, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if id != c.requests {
		return ErrSuperseded
	}
	e.splice(c, NewAssetSource(url, clip, ch != ChannelCreature))
	e.log.Info("%s channel now on %s (%s, %d frames)", ch, url, humanize.Bytes(uint64(len(data))), clip.Len())
	return nil
}

// splice installs src on c and fades the previous source out. Caller holds mu.
func (e *Engine) splice(c *channel, src Source) {
	if c.src != nil {
		if e.initialized && c.src.Bed() {
			r := &retiring{src: c.src, gain: NewParam(c.fadeIn.Value())}
			r.gain.SetTarget(0, declickTau, e.sampleRate)
			c.retiring = append(c.retiring, r)
		}
	}
	c.src = src
	if e.initialized {
		c.fadeIn = NewParam(0)
		c.fadeIn.SetTarget(1, declickTau, e.sampleRate)
	} else {
		c.fadeIn = NewParam(1)
	}
}

// buildSynthetic is the per-channel factory for procedural sources.
func (e *Engine) buildSynthetic(ch ChannelKind) Source {
	s := BuildSynthetic(ch, e.bank, e.sampleRate)
	s.presetTimbre(e.timbre)
	return s
}

// SetWeatherTimbre steers the synthetic weather bed toward rain or fog.
func (e *Engine) SetWeatherTimbre(t WeatherTimbre) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timbre = t
	if s, ok := e.channels[ChannelWeather].src.(*SyntheticSource); ok {
		s.SetTimbre(t)
	}
}

// TriggerOneShot starts an independent voice. The chime goes to the master
// bus; creature calls go to ch, replaying ch's custom asset when it has one.
// Overlapping triggers all play.
func (e *Engine) TriggerOneShot(ch ChannelKind, variant OneShot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return
	}
	if variant == OneShotChime {
		e.voices = append(e.voices, &voice{s: newChime(e.sampleRate), bus: busMaster})
		return
	}
	if ch < 0 || ch >= channelCount {
		return
	}
	if a, ok := e.channels[ch].src.(*AssetSource); ok {
		e.voices = append(e.voices, &voice{s: NewAssetSource(a.URL(), a.Clip(), false), bus: int(ch)})
		return
	}
	e.voices = append(e.voices, &voice{s: newCreatureCall(e.sampleRate), bus: int(ch)})
}

// ActiveVoices is the number of one-shots still sounding.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

// SuspendOrResume keeps the device state in line with the master target:
// a raised master resumes a suspended device at once, a zeroed master
// suspends it after the fade-out has had time to finish.
func (e *Engine) SuspendOrResume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return
	}
	if e.master.Target() > 0 {
		if e.suspendTimer != nil {
			e.suspendTimer.Stop()
			e.suspendTimer = nil
		}
		if e.suspended {
			if err := e.device.Resume(); err != nil {
				e.log.Warn("resume audio: %v", err)
				return
			}
			e.suspended = false
		}
		return
	}
	if e.suspended || e.suspendTimer != nil {
		return
	}
	e.suspendTimer = time.AfterFunc(e.settleTime(), e.suspendIfSilent)
}

// settleTime is how long the master needs to decay below the silence floor.
func (e *Engine) settleTime() time.Duration {
	if e.master.coeff <= 0 {
		return 0
	}
	// Five time constants leave under 1% of the starting level.
	tau := 1 / (e.master.coeff * float64(e.sampleRate))
	return time.Duration(5 * tau * float64(time.Second))
}

func (e *Engine) suspendIfSilent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspendTimer = nil
	if e.master.Target() > 0 || e.suspended {
		return
	}
	if err := e.device.Suspend(); err != nil {
		e.log.Warn("suspend audio: %v", err)
		return
	}
	e.suspended = true
}

// Suspended reports whether the device is currently suspended.
func (e *Engine) Suspended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suspended
}

// Read renders float32 stereo frames for the device.
func (e *Engine) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	out := e.readBuf
	done := 0
	for done < frames {
		n := min(frames-done, blockFrames)
		e.Render(out[:n])
		for i := 0; i < n; i++ {
			putStereoF32(p, done+i, out[i][0], out[i][1])
		}
		done += n
	}
	return frames * 8, nil
}

// Render mixes len(out) frames: each channel's source and voices through its
// gain, then the master gain, then soft saturation.
func (e *Engine) Render(out [][2]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for start := 0; start < len(out); start += blockFrames {
		end := min(start+blockFrames, len(out))
		e.renderBlock(out[start:end])
	}
}

func (e *Engine) renderBlock(out [][2]float64) {
	n := len(out)
	mix := e.mix[:n]
	clear(mix)
	if !e.initialized {
		clear(out)
		return
	}
	for _, c := range e.channels {
		bus := e.bus[:n]
		clear(bus)
		if c.src != nil && c.src.Bed() {
			got, _ := c.src.Stream(e.tmp[:n])
			for i := 0; i < got; i++ {
				g := c.fadeIn.Next()
				bus[i][0] += e.tmp[i][0] * g
				bus[i][1] += e.tmp[i][1] * g
			}
		}
		live := c.retiring[:0]
		for _, r := range c.retiring {
			got, ok := r.src.Stream(e.tmp[:n])
			for i := 0; i < got; i++ {
				g := r.gain.Next()
				bus[i][0] += e.tmp[i][0] * g
				bus[i][1] += e.tmp[i][1] * g
			}
			if ok && r.gain.Value() > silenceFloor {
				live = append(live, r)
			}
		}
		clear(c.retiring[len(live):])
		c.retiring = live
		e.streamVoices(int(c.kind), bus)
		for i := range mix {
			g := c.gain.Next()
			mix[i][0] += bus[i][0] * g
			mix[i][1] += bus[i][1] * g
		}
	}
	e.streamVoices(busMaster, mix)
	for i := range out {
		m := e.master.Next()
		out[i][0] = softSat(mix[i][0] * m)
		out[i][1] = softSat(mix[i][1] * m)
	}
	e.reapVoices()
}

func (e *Engine) streamVoices(bus int, dst [][2]float64) {
	for _, v := range e.voices {
		if v.bus != bus || v.done {
			continue
		}
		got, ok := v.s.Stream(e.tmp[:len(dst)])
		for i := 0; i < got; i++ {
			dst[i][0] += e.tmp[i][0]
			dst[i][1] += e.tmp[i][1]
		}
		if !ok || got < len(dst) {
			v.done = true
		}
	}
}

func (e *Engine) reapVoices() {
	live := e.voices[:0]
	for _, v := range e.voices {
		if !v.done {
			live = append(live, v)
		}
	}
	clear(e.voices[len(live):])
	e.voices = live
}
