package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bubblevoyage/internal/audio"
	"bubblevoyage/internal/journal"
	"bubblevoyage/internal/logger"
	"bubblevoyage/internal/ocean"
	"bubblevoyage/internal/reply"
	"bubblevoyage/internal/settings"
	"bubblevoyage/internal/sim"

	"github.com/google/uuid"
)

var (
	ErrNoJourney      = errors.New("game: no journey in progress")
	ErrUnknownCurrent = errors.New("game: unknown current")
	ErrNoQuiz         = errors.New("game: no quiz is active")
	ErrWrongPhase     = errors.New("game: action not allowed in this phase")
	ErrEmptyLetter    = errors.New("game: letter needs a name and a message")
)

// replyTimeout bounds the wait for a generated reply.
const replyTimeout = 45 * time.Second

type Phase int

const (
	PhaseIntro Phase = iota
	PhaseWriteLetter
	PhaseSelectCurrent
	PhaseTravel
	PhaseArrival
)

func (p Phase) String() string {
	switch p {
	case PhaseWriteLetter:
		return "WRITE_LETTER"
	case PhaseSelectCurrent:
		return "SELECT_CURRENT"
	case PhaseTravel:
		return "TRAVEL_SIMULATION"
	case PhaseArrival:
		return "ARRIVAL"
	}
	return "INTRO"
}

// Letter is the message sealed in the bubble.
type Letter struct {
	SenderName string `json:"senderName"`
	Content    string `json:"content"`
}

// AnswerResult tells the player how a quiz went.
type AnswerResult struct {
	QuizID        string `json:"quizId"`
	Option        int    `json:"option"`
	Correct       bool   `json:"correct"`
	CorrectOption int    `json:"correctOption"`
	Fact          string `json:"fact"`
}

// Recorder stores finished journeys.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Session is one player's game: letter, current choice, the journey in
// flight and the arrival. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	log      *logger.Logger
	cfg      sim.Config
	catalog  *ocean.Catalog
	mixer    Mixer
	replies  reply.Provider
	recorder Recorder
	bus      *EventBus
	rng      sim.RNG
	newID    func() string
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	wake   chan struct{}

	phase     Phase
	letter    Letter
	settings  settings.Settings
	current   *ocean.Current
	journeyID string
	state     sim.State

	heardKind     sim.WeatherKind
	prevKind      sim.WeatherKind
	masterAudible bool
	lastAnswer    *AnswerResult
	quizAnswered  int
	quizCorrect   int
	generating    bool
	arrival       *reply.Response
	fallback      bool
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *logger.Logger) Option        { return func(s *Session) { s.log = l } }
func WithConfig(cfg sim.Config) Option          { return func(s *Session) { s.cfg = cfg } }
func WithCatalog(c *ocean.Catalog) Option       { return func(s *Session) { s.catalog = c } }
func WithReplyProvider(p reply.Provider) Option { return func(s *Session) { s.replies = p } }
func WithRecorder(r Recorder) Option            { return func(s *Session) { s.recorder = r } }
func WithRNG(r sim.RNG) Option                  { return func(s *Session) { s.rng = r } }
func WithIDGenerator(f func() string) Option    { return func(s *Session) { s.newID = f } }
func WithSettings(set settings.Settings) Option {
	return func(s *Session) { s.settings = set.Normalize() }
}

// NewSession creates a session at the intro screen.
func NewSession(mixer Mixer, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		log:      logger.Discard(),
		cfg:      sim.DefaultConfig(),
		catalog:  ocean.DefaultCatalog(),
		mixer:    mixer,
		replies:  reply.Offline{},
		bus:      NewEventBus(),
		rng:      sim.NewRand(uint64(time.Now().UnixNano())),
		newID:    uuid.NewString,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		settings: settings.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = sim.NewSession(s.cfg)
	return s
}

// Bus exposes the event bus for subscribers.
func (s *Session) Bus() *EventBus { return s.bus }

// Catalog lists the currents on offer.
func (s *Session) Catalog() *ocean.Catalog { return s.catalog }

// Close cancels background work and waits for it.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until in-flight background work (replies, asset loads) ends.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Start leaves the intro. It is the first player gesture, so it also brings
// up the audio engine and loads any custom assets.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.phase != PhaseIntro {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	s.mixer.Initialize()
	for i, url := range s.settings.CustomAssets() {
		if url != "" {
			s.loadSourceLocked(audio.Channels[i], url)
		}
	}
	evs := s.setPhaseLocked(PhaseWriteLetter)
	s.mu.Unlock()
	s.emit(evs)
	return nil
}

// WriteLetter seals the letter and moves on to picking a current.
func (s *Session) WriteLetter(l Letter) error {
	l.SenderName = strings.TrimSpace(l.SenderName)
	l.Content = strings.TrimSpace(l.Content)
	if l.SenderName == "" || l.Content == "" {
		return ErrEmptyLetter
	}
	s.mu.Lock()
	if s.phase != PhaseWriteLetter && s.phase != PhaseSelectCurrent {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	s.letter = l
	evs := s.setPhaseLocked(PhaseSelectCurrent)
	s.mu.Unlock()
	s.emit(evs)
	return nil
}

// Launch sends the bubble down currentID and returns the new journey's id.
func (s *Session) Launch(currentID string) (string, error) {
	cur, ok := s.catalog.Lookup(currentID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrent, currentID)
	}
	s.mu.Lock()
	if s.phase != PhaseSelectCurrent {
		s.mu.Unlock()
		return "", ErrWrongPhase
	}
	s.current = &cur
	s.journeyID = s.newID()
	s.state = s.state.Launch()
	s.lastAnswer = nil
	s.quizAnswered, s.quizCorrect = 0, 0
	s.arrival, s.fallback, s.generating = nil, false, false
	id := s.journeyID
	s.log.Event("launch", id, fmt.Sprintf("current=%s sender=%s", cur.ID, s.letter.SenderName))
	evs := s.setPhaseLocked(PhaseTravel)
	s.mu.Unlock()
	s.emit(evs)
	s.notify()
	return id, nil
}

// Step runs one simulation tick and dispatches its events. It reports
// whether the journey still wants ticks.
func (s *Session) Step() bool {
	s.mu.Lock()
	if s.phase != PhaseTravel || !s.state.Running() {
		s.mu.Unlock()
		return false
	}
	set := sim.Settings{WeatherEnabled: s.settings.WeatherEnabled}
	next, simEvents := sim.Tick(s.state, s.current.Route(), set, s.cfg, s.rng)
	s.state = next

	var evs []Event
	for _, e := range simEvents {
		evs = append(evs, s.dispatchLocked(e)...)
	}
	s.applyMixLocked()
	ticking := s.phase == PhaseTravel && s.state.Running()
	s.mu.Unlock()
	s.emit(evs)
	return ticking
}

// dispatchLocked turns a tick event into audio cues and listener events.
func (s *Session) dispatchLocked(e sim.Event) []Event {
	base := Event{JourneyID: s.journeyID, Phase: s.phase, Progress: e.Progress}
	switch e.Kind {
	case sim.EventBiomeCrossed:
		s.mixer.TriggerOneShot(audio.ChannelCreature, audio.OneShotCreature)
		base.Type = EventBiomeCrossed
		if e.Biome < len(s.current.Biodiversity) {
			life := s.current.Biodiversity[e.Biome]
			base.Life = &life
		}
		return []Event{base}
	case sim.EventCheckpointHit:
		s.mixer.TriggerOneShot(audio.ChannelCreature, audio.OneShotChime)
		s.log.Event("checkpoint", s.journeyID, fmt.Sprintf("at=%.0f quiz=%s", e.Threshold, e.Quiz.ID))
		base.Type = EventQuizStarted
		base.Quiz = e.Quiz
		return []Event{base}
	case sim.EventWeatherChanged:
		if t, ok := timbreFor(e.Weather.Kind); ok {
			s.mixer.SetWeatherTimbre(t)
		}
		base.Type = EventWeatherChanged
		base.Weather = e.Weather
		return []Event{base}
	case sim.EventJourneyCompleted:
		base.Type = EventJourneyCompleted
		s.log.Event("arrived", s.journeyID, fmt.Sprintf("current=%s answered=%d correct=%d", s.current.ID, s.quizAnswered, s.quizCorrect))
		evs := []Event{base}
		evs = append(evs, s.setPhaseLocked(PhaseArrival)...)
		s.requestReplyLocked()
		return evs
	}
	return nil
}

// AnswerQuiz grades the active quiz and resumes the journey.
func (s *Session) AnswerQuiz(option int) (AnswerResult, error) {
	s.mu.Lock()
	if s.phase != PhaseTravel || !s.state.QuizActive() {
		s.mu.Unlock()
		return AnswerResult{}, ErrNoQuiz
	}
	q := s.state.ActiveQuiz
	res := AnswerResult{
		QuizID:        q.ID,
		Option:        option,
		Correct:       q.IsCorrect(option),
		CorrectOption: q.Correct,
		Fact:          q.Fact,
	}
	s.quizAnswered++
	if res.Correct {
		s.quizCorrect++
	}
	s.lastAnswer = &res
	s.state = s.state.CompleteQuiz()
	ev := Event{Type: EventQuizAnswered, JourneyID: s.journeyID, Phase: s.phase, Progress: s.state.Progress, Answer: &res}
	s.mu.Unlock()
	s.emit([]Event{ev})
	s.notify()
	return res, nil
}

// ReturnToMap abandons the journey but keeps the letter.
func (s *Session) ReturnToMap() error {
	s.mu.Lock()
	if s.phase != PhaseTravel && s.phase != PhaseArrival {
		s.mu.Unlock()
		return ErrNoJourney
	}
	s.resetJourneyLocked()
	evs := s.setPhaseLocked(PhaseSelectCurrent)
	s.mu.Unlock()
	s.emit(evs)
	return nil
}

// NewLetter starts over with a blank message from the same sender.
func (s *Session) NewLetter() error {
	s.mu.Lock()
	if s.phase == PhaseIntro {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	s.resetJourneyLocked()
	s.letter.Content = ""
	evs := s.setPhaseLocked(PhaseWriteLetter)
	s.mu.Unlock()
	s.emit(evs)
	return nil
}

func (s *Session) resetJourneyLocked() {
	s.state = s.state.Reset()
	s.current = nil
	s.journeyID = ""
	s.lastAnswer = nil
	s.arrival, s.fallback, s.generating = nil, false, false
}

// UpdateSettings applies new settings. Changed custom assets are loaded in
// the background; the mix follows immediately. Disabling weather clears the
// sky at once, even while a quiz holds the journey.
func (s *Session) UpdateSettings(next settings.Settings) settings.Settings {
	next = next.Normalize()
	s.mu.Lock()
	prev := s.settings.CustomAssets()
	s.settings = next
	if s.phase != PhaseIntro {
		for i, url := range next.CustomAssets() {
			if url != prev[i] {
				s.loadSourceLocked(audio.Channels[i], url)
			}
		}
	}
	var evs []Event
	if !next.WeatherEnabled && s.state.Weather.Kind != sim.WeatherNone {
		s.state.Weather.Kind = sim.WeatherNone
		evs = append(evs, Event{
			Type:      EventWeatherChanged,
			JourneyID: s.journeyID,
			Phase:     s.phase,
			Progress:  s.state.Progress,
			Weather:   s.state.Weather,
		})
	}
	s.applyMixLocked()
	s.mu.Unlock()
	s.emit(evs)
	return next
}

// Settings returns the settings in force.
func (s *Session) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// loadSourceLocked reserves the channel's next request before going to the
// background, so a later call always supersedes an earlier one.
func (s *Session) loadSourceLocked(ch audio.ChannelKind, url string) {
	id := s.mixer.ReserveSource(ch)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.mixer.LoadSource(s.ctx, ch, url, id)
		switch {
		case errors.Is(err, audio.ErrSuperseded):
		case err != nil:
			s.log.Warn("custom %s sound not loaded: %v", ch, err)
		}
	}()
}

// requestReplyLocked asks for the arrival reply once; the answer is dropped
// if the player has left the arrival screen by the time it lands.
func (s *Session) requestReplyLocked() {
	s.generating = true
	id := s.journeyID
	cur := *s.current
	letter := s.letter
	answered, correct := s.quizAnswered, s.quizCorrect
	req := reply.Request{
		CurrentName: cur.Name,
		EndLocation: cur.EndLocation,
		SenderName:  letter.SenderName,
		Letter:      letter.Content,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, replyTimeout)
		defer cancel()
		resp, err := s.replies.Reply(ctx, req)
		fallback := false
		if err != nil {
			s.log.Warn("reply from %s failed, using fallback: %v", s.replies.Name(), err)
			resp = reply.Fallback(req)
			fallback = true
		}

		s.mu.Lock()
		if s.journeyID != id || s.phase != PhaseArrival {
			s.mu.Unlock()
			return
		}
		s.arrival = &resp
		s.fallback = fallback
		s.generating = false
		ev := Event{Type: EventReplyReady, JourneyID: id, Phase: s.phase, Progress: s.state.Progress, Reply: &resp}
		s.mu.Unlock()

		if s.recorder != nil {
			entry := journal.Entry{
				JourneyID:    id,
				CurrentID:    cur.ID,
				SenderName:   letter.SenderName,
				Letter:       letter.Content,
				Location:     resp.Location,
				ReplyText:    resp.ReplyText,
				FunFact:      resp.FunFact,
				QuizAnswered: answered,
				QuizCorrect:  correct,
				Fallback:     fallback,
				ArrivedAt:    s.now(),
			}
			if err := s.recorder.Record(ctx, entry); err != nil {
				s.log.Error("journal: %v", err)
			}
		}
		s.emit([]Event{ev})
	}()
}

// setPhaseLocked switches phase, remixes, and returns the change event.
func (s *Session) setPhaseLocked(p Phase) []Event {
	if s.phase == p {
		return nil
	}
	s.phase = p
	s.applyMixLocked()
	return []Event{{Type: EventPhaseChanged, JourneyID: s.journeyID, Phase: p, Progress: s.state.Progress}}
}

// applyMixLocked pushes the current gain plan to the mixer and wakes or
// parks the output when the master crosses zero.
func (s *Session) applyMixLocked() {
	traveling := s.phase == PhaseTravel
	kind := s.state.Weather.Kind
	if !traveling {
		kind = sim.WeatherNone
	}
	if kind != s.heardKind {
		s.prevKind, s.heardKind = s.heardKind, kind
	}
	plan := planMix(traveling, s.state.Weather, s.prevKind, s.settings)
	plan.apply(s.mixer)
	if audible := plan.master > 0; audible != s.masterAudible {
		s.masterAudible = audible
		s.mixer.SuspendOrResume()
	}
}

func (s *Session) emit(evs []Event) {
	for _, e := range evs {
		s.bus.Emit(e)
	}
}

// notify wakes a runner parked between journeys or quizzes.
func (s *Session) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Ticking reports whether the runner should be ticking now.
func (s *Session) Ticking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseTravel && s.state.Running()
}
