package feed

import (
	"bubblevoyage/internal/game"
	"bubblevoyage/internal/ocean"
	"bubblevoyage/internal/reply"
	"bubblevoyage/internal/settings"
)

// Message is everything the feed sends to clients.
type Message struct {
	Type      string             `json:"type"`
	Event     string             `json:"event,omitempty"`
	JourneyID string             `json:"journeyId,omitempty"`
	Snapshot  *game.Snapshot     `json:"snapshot,omitempty"`
	Weather   string             `json:"weather,omitempty"`
	Quiz      *game.QuizView     `json:"quiz,omitempty"`
	Answer    *game.AnswerResult `json:"answer,omitempty"`
	Life      *ocean.MarineLife  `json:"life,omitempty"`
	Reply     *reply.Response    `json:"reply,omitempty"`
	Settings  *settings.Settings `json:"settings,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
	TypeAnswer   = "answer"
	TypeLaunched = "launched"
	TypeSettings = "settings"
	TypeError    = "error"
)

// Command is a player action sent by a client.
type Command struct {
	Type      string             `json:"type"`
	CurrentID string             `json:"currentId,omitempty"`
	Option    int                `json:"option,omitempty"`
	Letter    *game.Letter       `json:"letter,omitempty"`
	Settings  *settings.Settings `json:"settings,omitempty"`
}

// Command types.
const (
	CmdStart       = "start"
	CmdWriteLetter = "writeLetter"
	CmdLaunch      = "launch"
	CmdAnswer      = "answer"
	CmdReturnToMap = "returnToMap"
	CmdNewLetter   = "newLetter"
	CmdSettings    = "settings"
)

func eventMessage(e game.Event) Message {
	m := Message{Type: TypeEvent, Event: e.Type.String(), JourneyID: e.JourneyID}
	switch e.Type {
	case game.EventWeatherChanged:
		m.Weather = e.Weather.Kind.String()
	case game.EventQuizStarted:
		if e.Quiz != nil {
			m.Quiz = &game.QuizView{ID: e.Quiz.ID, Question: e.Quiz.Question, Options: e.Quiz.Options}
		}
	case game.EventQuizAnswered:
		m.Answer = e.Answer
	case game.EventBiomeCrossed:
		m.Life = e.Life
	case game.EventReplyReady:
		m.Reply = e.Reply
	}
	return m
}
