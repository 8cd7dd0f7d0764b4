//go:build !nohud

package hud

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// initWindow opens a resizable window sized for the primary monitor. The
// aspect is locked so the layout never stretches.
func initWindow() (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ScaleToMonitor, glfw.True)

	var screenW, screenH int
	if mon := glfw.GetPrimaryMonitor(); mon != nil {
		if mode := mon.GetVideoMode(); mode != nil {
			screenW, screenH = mode.Width, mode.Height
		}
	}
	w, h := fitWindow(screenW, screenH)

	window, err := glfw.CreateWindow(w, h, "Bubble Voyage", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.SetAspectRatio(WindowWidth, WindowHeight)
	window.SetSizeLimits(minWindowWidth, minWindowWidth*WindowHeight/WindowWidth, glfw.DontCare, glfw.DontCare)
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	return window, nil
}
