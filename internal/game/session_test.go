package game

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"bubblevoyage/internal/audio"
	"bubblevoyage/internal/journal"
	"bubblevoyage/internal/ocean"
	"bubblevoyage/internal/reply"
	"bubblevoyage/internal/settings"
	"bubblevoyage/internal/sim"
)

type target struct {
	value, tau float64
}

type fakeMixer struct {
	mu          sync.Mutex
	initialized int
	master      target
	channels    [4]target
	oneShots    []audio.OneShot
	timbres     []audio.WeatherTimbre
	toggles     int
	sources     map[audio.ChannelKind]string
	requests    [4]uint64
}

func newFakeMixer() *fakeMixer {
	return &fakeMixer{sources: make(map[audio.ChannelKind]string)}
}

func (m *fakeMixer) Initialize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized++
}

func (m *fakeMixer) SetMasterVolume(v, tau float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.master = target{v, tau}
}

func (m *fakeMixer) SetChannelVolume(ch audio.ChannelKind, v, tau float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch] = target{v, tau}
}

func (m *fakeMixer) ReserveSource(ch audio.ChannelKind) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[ch]++
	return m.requests[ch]
}

func (m *fakeMixer) LoadSource(_ context.Context, ch audio.ChannelKind, url string, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != m.requests[ch] {
		return audio.ErrSuperseded
	}
	m.sources[ch] = url
	return nil
}

func (m *fakeMixer) TriggerOneShot(_ audio.ChannelKind, v audio.OneShot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oneShots = append(m.oneShots, v)
}

func (m *fakeMixer) SetWeatherTimbre(t audio.WeatherTimbre) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timbres = append(m.timbres, t)
}

func (m *fakeMixer) SuspendOrResume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggles++
}

func (m *fakeMixer) count(v audio.OneShot) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, o := range m.oneShots {
		if o == v {
			n++
		}
	}
	return n
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (r *fakeRecorder) Record(_ context.Context, e journal.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type gatedProvider struct {
	gate chan struct{}
}

func (p gatedProvider) Name() string { return "gated" }

func (p gatedProvider) Reply(ctx context.Context, req reply.Request) (reply.Response, error) {
	select {
	case <-p.gate:
		return reply.Response{Location: "Somewhere", ReplyText: "hi " + req.SenderName, FunFact: "fish"}, nil
	case <-ctx.Done():
		return reply.Response{}, ctx.Err()
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(t EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// quickCurrent finishes in two ticks at Delta 50.
func quickCurrent(quizzes ...sim.Quiz) ocean.Current {
	return ocean.Current{
		ID:          "quick",
		Name:        "Quick Current",
		EndLocation: "Tide Harbor",
		AvgTempC:    20,
		Biodiversity: []ocean.MarineLife{
			{Name: "Crab"}, {Name: "Eel"}, {Name: "Squid"},
		},
		Quizzes: quizzes,
	}
}

func calmSettings() settings.Settings {
	s := settings.Default()
	s.WeatherEnabled = false
	return s
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *fakeMixer, *eventLog) {
	t.Helper()
	mx := newFakeMixer()
	base := []Option{
		WithRNG(sim.NewRand(7)),
		WithSettings(calmSettings()),
		WithIDGenerator(func() string { return "journey-1" }),
	}
	s := NewSession(mx, append(base, opts...)...)
	log := &eventLog{}
	s.Bus().SubscribeAll(log.record)
	t.Cleanup(s.Close)
	return s, mx, log
}

func readySession(t *testing.T, opts ...Option) (*Session, *fakeMixer, *eventLog) {
	t.Helper()
	s, mx, log := newTestSession(t, opts...)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.WriteLetter(Letter{SenderName: "Mia", Content: "Hello ocean"}); err != nil {
		t.Fatalf("WriteLetter: %v", err)
	}
	return s, mx, log
}

func TestPhaseFlow(t *testing.T) {
	s, mx, _ := newTestSession(t)

	if got := s.Snapshot().Phase; got != "INTRO" {
		t.Fatalf("initial phase = %s", got)
	}
	if err := s.WriteLetter(Letter{SenderName: "Mia", Content: "hi"}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("letter before start: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if mx.initialized != 1 {
		t.Fatalf("engine initialized %d times", mx.initialized)
	}
	if err := s.WriteLetter(Letter{SenderName: "  ", Content: "hi"}); !errors.Is(err, ErrEmptyLetter) {
		t.Fatalf("blank sender: %v", err)
	}
	if err := s.WriteLetter(Letter{SenderName: "Mia", Content: "Hello"}); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Phase; got != "SELECT_CURRENT" {
		t.Fatalf("phase = %s", got)
	}
	if _, err := s.Launch("atlantis"); !errors.Is(err, ErrUnknownCurrent) {
		t.Fatalf("unknown current: %v", err)
	}
	id, err := s.Launch("gulf_stream")
	if err != nil {
		t.Fatal(err)
	}
	if id != "journey-1" {
		t.Fatalf("journey id = %q", id)
	}
	snap := s.Snapshot()
	if snap.Phase != "TRAVEL_SIMULATION" || snap.Travel != "running" || snap.Progress != 0 {
		t.Fatalf("after launch: %+v", snap)
	}
}

func TestMasterFollowsTravel(t *testing.T) {
	s, mx, _ := readySession(t)

	if mx.master.value != 0 {
		t.Fatalf("master before travel = %v", mx.master.value)
	}
	if _, err := s.Launch("gulf_stream"); err != nil {
		t.Fatal(err)
	}
	if mx.master != (target{0.5, masterTau}) {
		t.Fatalf("master while traveling = %+v", mx.master)
	}
	if mx.toggles != 1 {
		t.Fatalf("suspend/resume toggles = %d, want 1", mx.toggles)
	}
	if err := s.ReturnToMap(); err != nil {
		t.Fatal(err)
	}
	if mx.master.value != 0 || mx.toggles != 2 {
		t.Fatalf("master after leaving = %+v, toggles %d", mx.master, mx.toggles)
	}
}

func TestCheckpointPausesJourney(t *testing.T) {
	s, mx, log := readySession(t)
	if _, err := s.Launch("gulf_stream"); err != nil {
		t.Fatal(err)
	}

	for i := 1; i < 438; i++ {
		if !s.Step() {
			t.Fatalf("stopped early at tick %d", i)
		}
	}
	if s.Step() {
		t.Fatal("tick 438 should pause for a quiz")
	}
	snap := s.Snapshot()
	if snap.Travel != "paused" || snap.Quiz == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
	if mx.count(audio.OneShotChime) != 1 {
		t.Fatalf("chimes = %d", mx.count(audio.OneShotChime))
	}
	if mx.count(audio.OneShotCreature) != 1 {
		t.Fatalf("creature calls = %d, want 1 for the 20%% biome", mx.count(audio.OneShotCreature))
	}
	if log.count(EventQuizStarted) != 1 || log.count(EventBiomeCrossed) != 1 {
		t.Fatalf("events: quiz %d biome %d", log.count(EventQuizStarted), log.count(EventBiomeCrossed))
	}
	if s.Step() {
		t.Fatal("paused journey advanced")
	}
	if got := s.Snapshot().Progress; got != snap.Progress {
		t.Fatalf("progress moved while paused: %v -> %v", snap.Progress, got)
	}
}

func TestAnswerQuizResumes(t *testing.T) {
	q := sim.Quiz{ID: "q1", Question: "Wet?", Options: []string{"yes", "no"}, Correct: 0, Fact: "Water is wet."}
	s, _, log := readySession(t,
		WithCatalog(ocean.NewCatalog([]ocean.Current{quickCurrent(q)})),
		WithConfig(quickConfig()),
	)
	if _, err := s.AnswerQuiz(0); !errors.Is(err, ErrNoQuiz) {
		t.Fatalf("answer without quiz: %v", err)
	}
	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	if s.Step() {
		t.Fatal("expected pause at the first checkpoint")
	}
	res, err := s.AnswerQuiz(1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Correct || res.CorrectOption != 0 || res.Fact != q.Fact {
		t.Fatalf("result = %+v", res)
	}
	if !s.Ticking() {
		t.Fatal("journey did not resume")
	}
	snap := s.Snapshot()
	if snap.QuizAnswered != 1 || snap.QuizCorrect != 0 || snap.LastAnswer == nil {
		t.Fatalf("snapshot = %+v", snap)
	}
	if log.count(EventQuizAnswered) != 1 {
		t.Fatal("no answer event")
	}
}

func quickConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Delta = 50
	cfg.Interval = time.Millisecond
	return cfg
}

func TestArrivalFallsBack(t *testing.T) {
	rec := &fakeRecorder{}
	s, _, log := readySession(t,
		WithCatalog(ocean.NewCatalog([]ocean.Current{quickCurrent()})),
		WithConfig(quickConfig()),
		WithRecorder(rec),
	)
	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	if !s.Step() {
		t.Fatal("first tick ended the journey")
	}
	if s.Step() {
		t.Fatal("second tick should arrive")
	}
	s.Wait()

	snap := s.Snapshot()
	if snap.Phase != "ARRIVAL" || snap.Generating {
		t.Fatalf("snapshot = %+v", snap)
	}
	want := reply.Fallback(reply.Request{CurrentName: "Quick Current", EndLocation: "Tide Harbor", SenderName: "Mia", Letter: "Hello ocean"})
	if snap.Reply == nil || *snap.Reply != want || !snap.Fallback {
		t.Fatalf("reply = %+v fallback=%v", snap.Reply, snap.Fallback)
	}
	if s.Step() {
		t.Fatal("arrived journey ticked")
	}
	if log.count(EventJourneyCompleted) != 1 || log.count(EventReplyReady) != 1 {
		t.Fatalf("completed %d ready %d", log.count(EventJourneyCompleted), log.count(EventReplyReady))
	}
	if log.count(EventBiomeCrossed) != 3 {
		t.Fatalf("biomes = %d", log.count(EventBiomeCrossed))
	}
	if rec.len() != 1 {
		t.Fatalf("journal entries = %d", rec.len())
	}
	e := rec.entries[0]
	if e.JourneyID != "journey-1" || e.CurrentID != "quick" || !e.Fallback || e.Location != "Tide Harbor" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestLateReplyIsDropped(t *testing.T) {
	rec := &fakeRecorder{}
	p := gatedProvider{gate: make(chan struct{})}
	s, _, log := readySession(t,
		WithCatalog(ocean.NewCatalog([]ocean.Current{quickCurrent()})),
		WithConfig(quickConfig()),
		WithRecorder(rec),
		WithReplyProvider(p),
	)
	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	s.Step()
	s.Step()
	if !s.Snapshot().Generating {
		t.Fatal("expected a reply in flight")
	}
	if err := s.ReturnToMap(); err != nil {
		t.Fatal(err)
	}
	close(p.gate)
	s.Wait()

	if snap := s.Snapshot(); snap.Reply != nil || snap.Generating {
		t.Fatalf("stale reply applied: %+v", snap)
	}
	if rec.len() != 0 || log.count(EventReplyReady) != 0 {
		t.Fatal("stale reply was recorded")
	}
}

func TestProviderReply(t *testing.T) {
	p := gatedProvider{gate: make(chan struct{})}
	close(p.gate)
	s, _, _ := readySession(t,
		WithCatalog(ocean.NewCatalog([]ocean.Current{quickCurrent()})),
		WithConfig(quickConfig()),
		WithReplyProvider(p),
	)
	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	s.Step()
	s.Step()
	s.Wait()
	snap := s.Snapshot()
	if snap.Reply == nil || snap.Reply.ReplyText != "hi Mia" || snap.Fallback {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestShownQuizzesSurviveReturnToMap(t *testing.T) {
	quizzes := []sim.Quiz{
		{ID: "a", Options: []string{"x"}},
		{ID: "b", Options: []string{"x"}},
	}
	s, _, _ := readySession(t,
		WithCatalog(ocean.NewCatalog([]ocean.Current{quickCurrent(quizzes...)})),
		WithConfig(quickConfig()),
	)
	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	s.Step()
	first := s.Snapshot().Quiz.ID
	if err := s.ReturnToMap(); err != nil {
		t.Fatal(err)
	}
	if got := s.Snapshot().Phase; got != "SELECT_CURRENT" {
		t.Fatalf("phase = %s", got)
	}
	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	s.Step()
	second := s.Snapshot().Quiz.ID
	if first == second {
		t.Fatalf("quiz %q repeated after returning to the map", first)
	}
}

func TestNewLetterKeepsSender(t *testing.T) {
	s, _, _ := readySession(t)
	if _, err := s.Launch("kuroshio"); err != nil {
		t.Fatal(err)
	}
	if err := s.NewLetter(); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Phase != "WRITE_LETTER" || snap.Letter.SenderName != "Mia" || snap.Letter.Content != "" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.JourneyID != "" || snap.Progress != 0 {
		t.Fatalf("journey not cleared: %+v", snap)
	}
	if err := s.ReturnToMap(); !errors.Is(err, ErrNoJourney) {
		t.Fatalf("return without journey: %v", err)
	}
}

func TestWeatherDisabledSilencesWeather(t *testing.T) {
	s, mx, _ := readySession(t)
	if _, err := s.Launch("humboldt"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 400; i++ {
		s.Step()
	}
	if got := s.Snapshot().Weather; got != "NONE" {
		t.Fatalf("weather = %s", got)
	}
	if mx.channels[audio.ChannelWeather].value != 0 {
		t.Fatalf("weather bus = %+v", mx.channels[audio.ChannelWeather])
	}
	if len(mx.timbres) != 0 {
		t.Fatalf("timbre changed %d times", len(mx.timbres))
	}
}

func TestCustomAssetsLoadOnStart(t *testing.T) {
	set := calmSettings()
	set.CustomStreamAudio = "file:///sounds/stream.ogg"
	s, mx, _ := newTestSession(t, WithSettings(set))
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.Wait()
	if got := mx.sources[audio.ChannelStream]; got != set.CustomStreamAudio {
		t.Fatalf("stream source = %q", got)
	}
	if _, ok := mx.sources[audio.ChannelAmbient]; ok {
		t.Fatal("ambient loaded without a custom asset")
	}

	set.CustomStreamAudio = ""
	s.UpdateSettings(set)
	s.Wait()
	if got, ok := mx.sources[audio.ChannelStream]; !ok || got != "" {
		t.Fatalf("clearing the asset should restore synthesis, got %q", got)
	}
}

// slowFetcher serves a short WAV for any URL; the first URL waits on
// release so it resolves after later requests.
type slowFetcher struct {
	first   string
	release chan struct{}
}

func (f slowFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == f.first {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return monoWAV(8000, 400), nil
}

func monoWAV(rate, frames int) []byte {
	var b bytes.Buffer
	le := binary.LittleEndian
	n := uint32(frames * 2)
	b.WriteString("RIFF")
	binary.Write(&b, le, 36+n)
	b.WriteString("WAVEfmt ")
	binary.Write(&b, le, []uint32{16})
	binary.Write(&b, le, []uint16{1, 1})
	binary.Write(&b, le, []uint32{uint32(rate), uint32(rate * 2)})
	binary.Write(&b, le, []uint16{2, 16})
	b.WriteString("data")
	binary.Write(&b, le, n)
	binary.Write(&b, le, make([]int16, frames))
	return b.Bytes()
}

func TestLatestAssetRequestWins(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := slowFetcher{first: "first.wav", release: make(chan struct{})}
		eng := audio.NewEngine(
			audio.WithSampleRate(8000),
			audio.WithSeed(1),
			audio.WithFetcher(f),
			audio.WithDevice(func(int) (audio.Device, error) { return &audio.SilentDevice{}, nil }),
		)
		s := NewSession(eng, WithSettings(calmSettings()), WithRNG(sim.NewRand(7)))
		if err := s.Start(); err != nil {
			t.Fatal(err)
		}
		set := s.Settings()
		set.CustomAmbientAudio = "first.wav"
		s.UpdateSettings(set)
		set.CustomAmbientAudio = "second.wav"
		s.UpdateSettings(set)
		close(f.release)
		s.Wait()

		if kind, url := eng.ActiveSource(audio.ChannelAmbient); kind != audio.SourceDecodedAsset || url != "second.wav" {
			t.Fatalf("run %d: active = %s %q, want second.wav", i, kind, url)
		}
		s.Close()
		eng.Close()
	}
}

func TestDisablingWeatherClearsDuringQuiz(t *testing.T) {
	q := sim.Quiz{ID: "q1", Question: "Wet?", Options: []string{"yes", "no"}}
	s, mx, log := readySession(t,
		WithCatalog(ocean.NewCatalog([]ocean.Current{quickCurrent(q)})),
		WithConfig(quickConfig()),
		WithSettings(settings.Default()),
	)
	if _, err := s.Launch("quick"); err != nil {
		t.Fatal(err)
	}
	if s.Step() {
		t.Fatal("expected pause at the first checkpoint")
	}
	s.mu.Lock()
	s.state.Weather = sim.Weather{Kind: sim.WeatherRain, Intensity: 0.8}
	s.applyMixLocked()
	s.mu.Unlock()
	if got := mx.channels[audio.ChannelWeather].value; got <= 0 {
		t.Fatalf("rain bus = %v before disabling", got)
	}
	before := log.count(EventWeatherChanged)

	set := s.Settings()
	set.WeatherEnabled = false
	s.UpdateSettings(set)

	snap := s.Snapshot()
	if snap.Weather != "NONE" || snap.Travel != "paused" {
		t.Fatalf("weather %s travel %s", snap.Weather, snap.Travel)
	}
	if got := mx.channels[audio.ChannelWeather]; got.value != 0 || got.tau != rainTau {
		t.Fatalf("weather bus = %+v", got)
	}
	if log.count(EventWeatherChanged) != before+1 {
		t.Fatal("no weather event for the forced clear")
	}
}

func TestUpdateSettingsRemixes(t *testing.T) {
	s, mx, _ := readySession(t)
	if _, err := s.Launch("eac"); err != nil {
		t.Fatal(err)
	}
	set := s.Settings()
	set.MasterVolume = 2
	set.AmbientVolume = 0.1
	got := s.UpdateSettings(set)
	if got.MasterVolume != 1 {
		t.Fatalf("master not clamped: %v", got.MasterVolume)
	}
	if mx.master.value != 1 || mx.channels[audio.ChannelAmbient].value != 0.1 {
		t.Fatalf("mix not applied: master %+v ambient %+v", mx.master, mx.channels[audio.ChannelAmbient])
	}
}

func TestPlanMix(t *testing.T) {
	set := settings.Default()
	tests := []struct {
		name      string
		traveling bool
		w         sim.Weather
		last      sim.WeatherKind
		master    float64
		weather   float64
		tau       float64
	}{
		{"idle", false, sim.Weather{Kind: sim.WeatherRain, Intensity: 1}, sim.WeatherNone, 0, 0, rainTau},
		{"clear", true, sim.Weather{Kind: sim.WeatherNone, Intensity: 0.5}, sim.WeatherNone, 0.5, 0, rainTau},
		{"rain", true, sim.Weather{Kind: sim.WeatherRain, Intensity: 0.5}, sim.WeatherNone, 0.5, 0.3, rainTau},
		{"fog", true, sim.Weather{Kind: sim.WeatherFog, Intensity: 0.5}, sim.WeatherNone, 0.5, 0.45, fogTau},
		{"fog clamps", true, sim.Weather{Kind: sim.WeatherFog, Intensity: 1}, sim.WeatherNone, 0.5, 0.9, fogTau},
		{"after fog", true, sim.Weather{Kind: sim.WeatherNone, Intensity: 0.5}, sim.WeatherFog, 0.5, 0, fogTau},
		{"after rain", true, sim.Weather{Kind: sim.WeatherNone, Intensity: 0.5}, sim.WeatherRain, 0.5, 0, rainTau},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := planMix(tt.traveling, tt.w, tt.last, set)
			if m.master != tt.master {
				t.Errorf("master = %v, want %v", m.master, tt.master)
			}
			if diff := m.weather - tt.weather; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("weather = %v, want %v", m.weather, tt.weather)
			}
			if m.weatherTau != tt.tau {
				t.Errorf("tau = %v, want %v", m.weatherTau, tt.tau)
			}
			if m.ambient != set.AmbientVolume || m.creature != set.CreatureVolume {
				t.Errorf("beds = %+v", m)
			}
		})
	}

	set.WeatherVolume = 1
	if m := planMix(true, sim.Weather{Kind: sim.WeatherFog, Intensity: 1}, sim.WeatherNone, set); m.weather != 1 {
		t.Errorf("fog should clamp to 1, got %v", m.weather)
	}
}
