//go:build !nohud

package hud

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

// floatsPerVertex is pos(2) + color(4).
const floatsPerVertex = 6

type renderer struct {
	prog uint32
	uRes int32
	vao  uint32
	vbo  uint32
	buf  []float32
}

func newRenderer() (*renderer, error) {
	prog, err := linkProgram(rectVertSrc, rectFragSrc)
	if err != nil {
		return nil, fmt.Errorf("rect program: %w", err)
	}
	r := &renderer{prog: prog}
	gl.UseProgram(prog)
	r.uRes = gl.GetUniformLocation(prog, gl.Str("uResolution\x00"))

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(floatsPerVertex * 4)
	gl.BufferData(gl.ARRAY_BUFFER, 64*6*int(stride), nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0) // aPos
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, glOffset(0))
	gl.EnableVertexAttribArray(1) // aColor
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride, glOffset(2*4))
	gl.BindVertexArray(0)
	return r, nil
}

// draw clears to the frame colour and paints its rects in order.
func (r *renderer) draw(f Frame, fbW, fbH int) {
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	gl.ClearColor(f.Clear.R, f.Clear.G, f.Clear.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	r.buf = r.buf[:0]
	for _, q := range f.Rects {
		c := q.Color
		x0, y0, x1, y1 := q.X, q.Y, q.X+q.W, q.Y+q.H
		// Two triangles: TL, TR, BL then TR, BR, BL.
		r.buf = append(r.buf,
			x0, y0, c.R, c.G, c.B, c.A,
			x1, y0, c.R, c.G, c.B, c.A,
			x0, y1, c.R, c.G, c.B, c.A,
			x1, y0, c.R, c.G, c.B, c.A,
			x1, y1, c.R, c.G, c.B, c.A,
			x0, y1, c.R, c.G, c.B, c.A,
		)
	}
	if len(r.buf) == 0 {
		return
	}

	gl.UseProgram(r.prog)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.Uniform2f(r.uRes, float32(fbW), float32(fbH))

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.buf)*4, gl.Ptr(r.buf), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(r.buf)/floatsPerVertex))
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}

func (r *renderer) release() {
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.prog)
}
