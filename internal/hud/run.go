//go:build !nohud

package hud

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Run opens the window and renders until it is closed or ctx ends. It must
// be called from the main goroutine.
func (v *Viewer) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	window, err := initWindow()
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	rend, err := newRenderer()
	if err != nil {
		return err
	}
	defer rend.release()

	in := newInput()
	lastTitle := ""
	for !window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		glfw.PollEvents()
		if window.GetKey(glfw.KeyEscape) == glfw.Press {
			window.SetShouldClose(true)
			continue
		}

		snap := v.ctrl.Snapshot()
		if key, digit, ok := in.poll(window); ok {
			if err := v.press(snap, key, digit); err != nil {
				v.log.Warn("%v", err)
			}
			snap = v.ctrl.Snapshot()
		}

		fbW, fbH := window.GetFramebufferSize()
		if fbW == 0 || fbH == 0 {
			// Minimized.
			glfw.WaitEventsTimeout(0.1)
			continue
		}
		frame := Layout(snap, fbW, fbH)
		if frame.Title != lastTitle {
			window.SetTitle(frame.Title)
			lastTitle = frame.Title
		}
		rend.draw(frame, fbW, fbH)
		window.SwapBuffers()
	}
	return nil
}
