package render

import (
	"bytes"
	"sync"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// surface is the drawing target and encode buffer of a single chart render.
type surface struct {
	canvas *vgimg.Canvas
	buf    *bytes.Buffer
}

// surfacePool hands out surfaces. Canvases are sized per chart and never
// reused; encode buffers are.
type surfacePool struct {
	buffers sync.Pool
}

func newSurfacePool() *surfacePool {
	return &surfacePool{
		buffers: sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
}

func (p *surfacePool) acquire(w, h vg.Length) *surface {
	buf := p.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	return &surface{canvas: vgimg.New(w, h), buf: buf}
}

func (p *surfacePool) release(s *surface) {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Reset()
	p.buffers.Put(s.buf)
	s.buf = nil
	s.canvas = nil
}

func (s *surface) drawCanvas() draw.Canvas {
	return draw.New(s.canvas)
}

// png encodes the canvas and returns a copy of the bytes, since the buffer
// goes back to the pool.
func (s *surface) png() ([]byte, error) {
	if _, err := (vgimg.PngCanvas{Canvas: s.canvas}).WriteTo(s.buf); err != nil {
		return nil, err
	}
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	return out, nil
}
