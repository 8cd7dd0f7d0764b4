//go:build !nohud

package hud

import "github.com/go-gl/glfw/v3.3/glfw"

type input struct {
	prevKeys map[glfw.Key]bool
}

func newInput() *input {
	return &input{prevKeys: make(map[glfw.Key]bool)}
}

func (in *input) justPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

var digitKeys = [4]glfw.Key{glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4}

var runeKeys = map[glfw.Key]rune{
	glfw.KeySpace: ' ',
	glfw.KeyEnter: '\n',
	glfw.KeyM:     'm',
	glfw.KeyN:     'n',
}

// poll returns the first key pressed this frame as a rune or a 1..4 digit.
func (in *input) poll(window *glfw.Window) (rune, int, bool) {
	var (
		key   rune
		digit int
		hit   bool
	)
	// Every key is sampled so edge state stays current.
	for i, k := range digitKeys {
		if in.justPressed(window, k) && !hit {
			digit, hit = i+1, true
		}
	}
	for k, r := range runeKeys {
		if in.justPressed(window, k) && !hit {
			key, hit = r, true
		}
	}
	return key, digit, hit
}
