// Package hud is a small desktop viewer for a voyage: the water darkens with
// depth, weather tints the screen and quizzes are answered from the keyboard.
package hud

import (
	"fmt"
	"strings"

	"bubblevoyage/internal/game"
	"bubblevoyage/internal/ocean"
)

// Preferred window size in screen pixels. The window keeps this aspect.
const (
	WindowWidth  = 960
	WindowHeight = 600

	minWindowWidth = 480
	// screenShare caps the window at this fraction of the monitor.
	screenShare = 0.8
)

// fitWindow sizes the window for a screenW x screenH monitor: the preferred
// size when it fits, otherwise scaled down at the same aspect, never below
// the minimum width. A zero screen means the size is unknown.
func fitWindow(screenW, screenH int) (int, int) {
	if screenW <= 0 || screenH <= 0 {
		return WindowWidth, WindowHeight
	}
	scale := min(1, screenShare*float64(screenW)/WindowWidth, screenShare*float64(screenH)/WindowHeight)
	w := max(minWindowWidth, int(WindowWidth*scale))
	return w, w * WindowHeight / WindowWidth
}

// RGBA is a colour with straight alpha, each channel 0..1.
type RGBA struct {
	R, G, B, A float32
}

// Rect is a filled rectangle in framebuffer pixels, origin top-left.
type Rect struct {
	X, Y, W, H float32
	Color      RGBA
}

// Frame is everything drawn for one snapshot.
type Frame struct {
	Clear RGBA
	Rects []Rect
	Title string
}

var (
	surfaceWater = RGBA{0.18, 0.62, 0.85, 1}
	deepWater    = RGBA{0.01, 0.05, 0.16, 1}
	rainTint     = RGBA{0.35, 0.40, 0.50, 0.30}
	fogTint      = RGBA{0.85, 0.88, 0.90, 0.45}
	barBack      = RGBA{0, 0, 0, 0.45}
	barFill      = RGBA{0.30, 0.90, 0.80, 1}
	bubble       = RGBA{0.85, 0.95, 1, 0.9}
	dim          = RGBA{0, 0, 0, 0.5}
	panel        = RGBA{0.95, 0.97, 1, 0.95}
	correct      = RGBA{0.30, 0.80, 0.40, 1}
	wrong        = RGBA{0.90, 0.35, 0.35, 1}
)

// optionColors mark the quiz answers for keys 1 to 4.
var optionColors = [4]RGBA{
	{0.95, 0.45, 0.35, 1},
	{0.35, 0.60, 0.95, 1},
	{0.95, 0.80, 0.30, 1},
	{0.55, 0.80, 0.40, 1},
}

// maxDepth is the deepest point of a journey in metres.
const maxDepth = 2050

func lerp(a, b RGBA, t float32) RGBA {
	return RGBA{a.R + (b.R-a.R)*t, a.G + (b.G-a.G)*t, a.B + (b.B-a.B)*t, 1}
}

// Layout turns a snapshot into a frame for a w by h framebuffer.
func Layout(s game.Snapshot, w, h int) Frame {
	fw, fh := float32(w), float32(h)
	f := Frame{Clear: surfaceWater, Title: title(s)}

	if s.Phase != game.PhaseTravel.String() && s.Phase != game.PhaseArrival.String() {
		return f
	}

	f.Clear = lerp(deepWater, surfaceWater, float32(s.Brightness/100))

	if s.Phase == game.PhaseTravel.String() && !s.ReduceMotion {
		switch s.Weather {
		case "RAIN":
			t := rainTint
			t.A *= float32(s.Intensity)
			f.Rects = append(f.Rects, Rect{0, 0, fw, fh, t})
		case "FOG":
			t := fogTint
			t.A *= float32(s.Intensity)
			f.Rects = append(f.Rects, Rect{0, 0, fw, fh, t})
		}
	}

	// Bubble rides left to right and sinks with depth.
	const size = 18
	bx := 40 + (fw-80-size)*float32(s.Progress/100)
	by := 40 + (fh-120-size)*float32(min(s.Depth, maxDepth)/maxDepth)
	f.Rects = append(f.Rects, Rect{bx, by, size, size, bubble})

	bar := Rect{20, fh - 36, fw - 40, 16, barBack}
	fill := bar
	fill.W = bar.W * float32(s.Progress/100)
	fill.Color = barFill
	f.Rects = append(f.Rects, bar, fill)

	if s.Quiz != nil {
		f.Rects = append(f.Rects, quizRects(len(s.Quiz.Options), fw, fh)...)
	}
	if s.Phase == game.PhaseArrival.String() {
		f.Rects = append(f.Rects, Rect{0, 0, fw, fh, dim}, Rect{fw * 0.15, fh * 0.2, fw * 0.7, fh * 0.5, panel})
		if s.Reply != nil && !s.Fallback {
			f.Rects = append(f.Rects, Rect{fw * 0.15, fh * 0.2, fw * 0.7, 8, correct})
		}
	}
	return f
}

func quizRects(n int, fw, fh float32) []Rect {
	n = min(n, len(optionColors))
	rects := []Rect{
		{0, 0, fw, fh, dim},
		{fw * 0.1, fh * 0.15, fw * 0.8, fh * 0.6, panel},
	}
	if n == 0 {
		return rects
	}
	gap := float32(12)
	bw := (fw*0.8 - gap*float32(n+1)) / float32(n)
	for i := 0; i < n; i++ {
		x := fw*0.1 + gap + float32(i)*(bw+gap)
		rects = append(rects, Rect{x, fh*0.75 - 80, bw, 60, optionColors[i]})
	}
	return rects
}

// title is the window caption: the text part of the HUD.
func title(s game.Snapshot) string {
	switch s.Phase {
	case game.PhaseIntro.String():
		return "Bubble Voyage - press SPACE to begin"
	case game.PhaseWriteLetter.String():
		if s.Letter.SenderName != "" {
			return fmt.Sprintf("Bubble Voyage - ENTER to seal a letter from %s", s.Letter.SenderName)
		}
		return "Bubble Voyage - ENTER to seal your letter"
	case game.PhaseSelectCurrent.String():
		return "Bubble Voyage - pick a current with 1-4"
	case game.PhaseArrival.String():
		if s.Reply == nil {
			return fmt.Sprintf("Arrived! Waiting for a reply... (%d/%d quizzes right)", s.QuizCorrect, s.QuizAnswered)
		}
		return fmt.Sprintf("%s: %s  [M] map  [N] new letter", s.Reply.Location, s.Reply.ReplyText)
	}
	if s.Quiz != nil {
		var b strings.Builder
		b.WriteString(s.Quiz.Question)
		for i, o := range s.Quiz.Options {
			fmt.Fprintf(&b, "  [%d] %s", i+1, o)
		}
		return b.String()
	}
	t := fmt.Sprintf("%s %.0f%%  %.0fm  %.1fC", s.Current, s.Progress, s.Depth, s.Temperature)
	if s.Life != nil {
		t += "  " + s.Life.Emoji + " " + s.Life.Name
	}
	if s.LastAnswer != nil {
		mark := "Oops"
		if s.LastAnswer.Correct {
			mark = "Correct"
		}
		t += "  " + mark + "! " + s.LastAnswer.Fact
	}
	return t
}

// KeyAction is what a key press means in the current phase.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionStart
	ActionSeal
	ActionLaunch
	ActionAnswer
	ActionMap
	ActionNewLetter
)

// Resolve maps a key to an action. digit is 1..4 for number keys, 0
// otherwise; the returned index is the zero-based option or current.
func Resolve(s game.Snapshot, key rune, digit int, currents []ocean.Current) (KeyAction, int) {
	switch s.Phase {
	case game.PhaseIntro.String():
		if key == ' ' {
			return ActionStart, 0
		}
	case game.PhaseWriteLetter.String():
		if key == '\n' {
			return ActionSeal, 0
		}
	case game.PhaseSelectCurrent.String():
		if digit >= 1 && digit <= len(currents) {
			return ActionLaunch, digit - 1
		}
	case game.PhaseTravel.String():
		if s.Quiz != nil && digit >= 1 && digit <= len(s.Quiz.Options) {
			return ActionAnswer, digit - 1
		}
		if key == 'm' {
			return ActionMap, 0
		}
	case game.PhaseArrival.String():
		switch key {
		case 'm':
			return ActionMap, 0
		case 'n':
			return ActionNewLetter, 0
		}
	}
	return ActionNone, 0
}
