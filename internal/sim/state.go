package sim

import "slices"

// Phase is where a journey sits in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseCompleted:
		return "completed"
	}
	return "idle"
}

// Route is the per-current geometry a journey follows.
type Route struct {
	// Checkpoints and Biomes are ascending progress thresholds.
	Checkpoints []float64
	Biomes      []float64
	Quizzes     []Quiz
}

// State is one journey plus the session memory that outlives it. Values are
// treated as immutable; Tick and the transition methods return new ones.
type State struct {
	Phase Phase
	// Ticks counts running ticks; progress is derived from it.
	Ticks    int
	Progress float64
	Weather  Weather

	Triggered   []float64
	BiomesFired int
	ActiveQuiz  *Quiz

	// Shown persists across journeys in one session.
	Shown []string
}

// NewSession returns an idle state with no quiz history.
func NewSession(cfg Config) State {
	return State{Weather: Weather{Kind: WeatherNone, Intensity: cfg.StartIntensity}}
}

// Launch starts a fresh journey, keeping the shown-quiz memory and the
// current weather intensity.
func (s State) Launch() State {
	r := s.Reset()
	r.Phase = PhaseRunning
	return r
}

// Reset tears the journey down: progress, checkpoint memory and weather are
// cleared, the shown-quiz memory survives.
func (s State) Reset() State {
	return State{
		Phase:   PhaseIdle,
		Weather: Weather{Kind: WeatherNone, Intensity: s.Weather.Intensity},
		Shown:   slices.Clone(s.Shown),
	}
}

// CompleteQuiz resumes a paused journey from the preserved progress.
func (s State) CompleteQuiz() State {
	if s.Phase != PhasePaused {
		return s
	}
	next := s.clone()
	next.Phase = PhaseRunning
	next.ActiveQuiz = nil
	return next
}

// QuizActive mirrors ActiveQuiz != nil; both only hold while paused.
func (s State) QuizActive() bool {
	return s.ActiveQuiz != nil
}

// Running reports whether ticks advance the journey.
func (s State) Running() bool {
	return s.Phase == PhaseRunning
}

func (s State) clone() State {
	c := s
	c.Triggered = slices.Clone(s.Triggered)
	c.Shown = slices.Clone(s.Shown)
	if s.ActiveQuiz != nil {
		q := *s.ActiveQuiz
		c.ActiveQuiz = &q
	}
	return c
}
