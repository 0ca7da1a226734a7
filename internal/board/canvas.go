package board

import "github.com/dkeye/Collab/internal/domain"

type Point struct {
	X, Y float64
}

type Segment struct {
	From, To Point
	Color    string
	Width    float64
}

// Canvas is a vector drawing surface with a single pen cursor, shared by local and remote strokes.
type Canvas struct {
	segments []Segment
	cursor   *Point
}

func NewCanvas() *Canvas { return &Canvas{} }

// Line draws from the cursor to the event point and leaves the cursor there.
// With no cursor the segment degenerates to a dot.
func (c *Canvas) Line(ev domain.DrawEvent) {
	to := Point{X: ev.X, Y: ev.Y}
	from := to
	if c.cursor != nil {
		from = *c.cursor
	}
	c.segments = append(c.segments, Segment{From: from, To: to, Color: ev.Color, Width: ev.StrokeWidth})
	c.cursor = &to
}

func (c *Canvas) ResetPath() { c.cursor = nil }

func (c *Canvas) Clear() {
	c.segments = nil
	c.cursor = nil
}

func (c *Canvas) Segments() []Segment {
	out := make([]Segment, len(c.segments))
	copy(out, c.segments)
	return out
}
