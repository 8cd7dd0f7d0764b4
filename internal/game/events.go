package game

import (
	"sync"

	"bubblevoyage/internal/ocean"
	"bubblevoyage/internal/reply"
	"bubblevoyage/internal/sim"
)

type EventType int

const (
	EventPhaseChanged EventType = iota
	EventWeatherChanged
	EventQuizStarted
	EventQuizAnswered
	EventBiomeCrossed
	EventJourneyCompleted
	EventReplyReady
)

func (t EventType) String() string {
	switch t {
	case EventPhaseChanged:
		return "phase_changed"
	case EventWeatherChanged:
		return "weather_changed"
	case EventQuizStarted:
		return "quiz_started"
	case EventQuizAnswered:
		return "quiz_answered"
	case EventBiomeCrossed:
		return "biome_crossed"
	case EventJourneyCompleted:
		return "journey_completed"
	case EventReplyReady:
		return "reply_ready"
	}
	return "unknown"
}

// Event is what the session tells listeners. Payload fields depend on Type.
type Event struct {
	Type      EventType
	JourneyID string
	Phase     Phase
	Progress  float64
	Weather   sim.Weather
	Quiz      *sim.Quiz
	Answer    *AnswerResult
	Life      *ocean.MarineLife
	Reply     *reply.Response
}

type EventHandler func(Event)

// EventBus fans session events out to the UI surfaces. Handlers run on the
// emitting goroutine, never under the session lock.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
	all      []EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[t] = append(eb.handlers[t], fn)
}

// SubscribeAll registers fn for every event type.
func (eb *EventBus) SubscribeAll(fn EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.all = append(eb.all, fn)
}

func (eb *EventBus) Emit(e Event) {
	eb.mu.RLock()
	handlers := append([]EventHandler(nil), eb.handlers[e.Type]...)
	handlers = append(handlers, eb.all...)
	eb.mu.RUnlock()
	for _, fn := range handlers {
		fn(e)
	}
}
