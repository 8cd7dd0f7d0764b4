package hud

import (
	"errors"

	"bubblevoyage/internal/game"
	"bubblevoyage/internal/logger"
	"bubblevoyage/internal/ocean"
)

// ErrUnavailable is returned by Run in builds without a display.
var ErrUnavailable = errors.New("hud: built without display support")

// Controller is the session surface the viewer drives.
type Controller interface {
	Start() error
	WriteLetter(l game.Letter) error
	Launch(currentID string) (string, error)
	AnswerQuiz(option int) (game.AnswerResult, error)
	ReturnToMap() error
	NewLetter() error
	Snapshot() game.Snapshot
}

// Viewer shows one session in a window.
type Viewer struct {
	ctrl     Controller
	currents []ocean.Current
	letter   game.Letter
	log      *logger.Logger
}

// NewViewer creates a viewer. letter is sealed when the player presses
// ENTER on the writing screen; the viewer has no text entry of its own.
func NewViewer(ctrl Controller, catalog *ocean.Catalog, letter game.Letter, log *logger.Logger) *Viewer {
	return &Viewer{ctrl: ctrl, currents: catalog.All(), letter: letter, log: log}
}

// press handles one key on the given snapshot.
func (v *Viewer) press(s game.Snapshot, key rune, digit int) error {
	action, idx := Resolve(s, key, digit, v.currents)
	switch action {
	case ActionStart:
		return v.ctrl.Start()
	case ActionSeal:
		l := v.letter
		if s.Letter.SenderName != "" {
			l.SenderName = s.Letter.SenderName
		}
		return v.ctrl.WriteLetter(l)
	case ActionLaunch:
		_, err := v.ctrl.Launch(v.currents[idx].ID)
		return err
	case ActionAnswer:
		res, err := v.ctrl.AnswerQuiz(idx)
		if err == nil {
			v.log.Info("answer %d: correct=%v %s", idx+1, res.Correct, res.Fact)
		}
		return err
	case ActionMap:
		return v.ctrl.ReturnToMap()
	case ActionNewLetter:
		return v.ctrl.NewLetter()
	}
	return nil
}
