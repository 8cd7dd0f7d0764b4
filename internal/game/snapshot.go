package game

import (
	"bubblevoyage/internal/ocean"
	"bubblevoyage/internal/reply"
	"bubblevoyage/internal/sim"
)

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	Phase      string        `json:"phase"`
	JourneyID  string        `json:"journeyId,omitempty"`
	Letter     Letter        `json:"letter"`
	CurrentID  string        `json:"currentId,omitempty"`
	Current    string        `json:"current,omitempty"`
	Travel     string        `json:"travel"`
	Progress   float64       `json:"progress"`
	Weather    string        `json:"weather"`
	Intensity  float64       `json:"intensity"`
	Quiz       *QuizView     `json:"quiz,omitempty"`
	LastAnswer *AnswerResult `json:"lastAnswer,omitempty"`

	Depth       float64           `json:"depth"`
	Temperature float64           `json:"temperature"`
	Brightness  float64           `json:"brightness"`
	Position    ocean.GeoPoint    `json:"position"`
	Life        *ocean.MarineLife `json:"life,omitempty"`

	Generating   bool            `json:"generating"`
	Reply        *reply.Response `json:"reply,omitempty"`
	Fallback     bool            `json:"fallback"`
	QuizAnswered int             `json:"quizAnswered"`
	QuizCorrect  int             `json:"quizCorrect"`
	ReduceMotion bool            `json:"reduceMotion"`
}

// QuizView hides the answer from clients.
type QuizView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func quizView(q *sim.Quiz) *QuizView {
	if q == nil {
		return nil
	}
	return &QuizView{ID: q.ID, Question: q.Question, Options: append([]string(nil), q.Options...)}
}

// Snapshot captures the session as it is now.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	snap := Snapshot{
		Phase:        s.phase.String(),
		JourneyID:    s.journeyID,
		Letter:       s.letter,
		Travel:       st.Phase.String(),
		Progress:     st.Progress,
		Weather:      st.Weather.Kind.String(),
		Intensity:    st.Weather.Intensity,
		Quiz:         quizView(st.ActiveQuiz),
		Generating:   s.generating,
		Fallback:     s.fallback,
		QuizAnswered: s.quizAnswered,
		QuizCorrect:  s.quizCorrect,
		ReduceMotion: s.settings.ReduceMotion,
	}
	if s.lastAnswer != nil {
		a := *s.lastAnswer
		snap.LastAnswer = &a
	}
	if s.arrival != nil {
		r := *s.arrival
		snap.Reply = &r
	}
	if s.current != nil {
		cur := s.current
		snap.CurrentID = cur.ID
		snap.Current = cur.Name
		snap.Depth = ocean.Depth(st.Progress)
		snap.Temperature = cur.Temperature(st.Progress)
		snap.Brightness = ocean.Brightness(st.Progress)
		snap.Position = cur.Position(st.Progress)
		if life, ok := cur.ActiveLife(st.Progress); ok {
			snap.Life = &life
		}
	}
	return snap
}
