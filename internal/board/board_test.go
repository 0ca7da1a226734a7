package board

import (
	"testing"

	"github.com/dkeye/Collab/internal/domain"
)

type sent struct {
	typ  string
	data any
}

type recorder struct {
	events []sent
}

func (r *recorder) Emit(typ string, data any) error {
	r.events = append(r.events, sent{typ, data})
	return nil
}

func TestStrokeRendersLocallyAndForwards(t *testing.T) {
	c := NewCanvas()
	out := &recorder{}
	b := New(c, out)

	b.PointerMove(1, 1)
	if len(out.events) != 0 || len(c.Segments()) != 0 {
		t.Fatal("move without pointer down must do nothing")
	}

	b.PointerDown()
	b.PointerMove(10, 20)
	b.PointerMove(15, 25)
	b.PointerUp()

	segs := c.Segments()
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[1].From != (Point{10, 20}) || segs[1].To != (Point{15, 25}) {
		t.Errorf("second segment %+v does not continue the stroke", segs[1])
	}
	if len(out.events) != 2 || out.events[0].typ != domain.EventDraw {
		t.Fatalf("unexpected emitted events %+v", out.events)
	}
	ev := out.events[0].data.(domain.DrawEvent)
	if ev.X != 10 || ev.Y != 20 || ev.Color != DefaultColor || ev.StrokeWidth != DefaultWidth {
		t.Errorf("unexpected draw event %+v", ev)
	}

	// a new stroke must not join the previous one
	b.PointerDown()
	b.PointerMove(100, 100)
	last := c.Segments()[2]
	if last.From != last.To {
		t.Errorf("new stroke connected to the old one: %+v", last)
	}
}

func TestRemoteDrawScenario(t *testing.T) {
	c := NewCanvas()
	b := New(c, &recorder{})

	b.ApplyRemoteDraw(domain.DrawEvent{X: 10, Y: 20, Color: "#000000", StrokeWidth: 3})
	segs := c.Segments()
	if len(segs) != 1 {
		t.Fatalf("expected one segment, got %d", len(segs))
	}
	if segs[0].To != (Point{10, 20}) || segs[0].Color != "#000000" || segs[0].Width != 3 {
		t.Errorf("unexpected segment %+v", segs[0])
	}
}

func TestEraserAndPen(t *testing.T) {
	out := &recorder{}
	b := New(NewCanvas(), out)
	if err := b.SetColor("#ff0000"); err != nil {
		t.Fatal(err)
	}
	b.UseEraser()
	b.PointerDown()
	b.PointerMove(1, 1)
	b.UsePen()
	b.PointerMove(2, 2)

	if c := out.events[0].data.(domain.DrawEvent).Color; c != EraserColor {
		t.Errorf("eraser painted %s", c)
	}
	if c := out.events[1].data.(domain.DrawEvent).Color; c != "#ff0000" {
		t.Errorf("pen painted %s", c)
	}
}

func TestPenSettingsValidation(t *testing.T) {
	b := New(NewCanvas(), &recorder{})
	if err := b.SetColor("red"); err != ErrBadColor {
		t.Errorf("expected ErrBadColor, got %v", err)
	}
	if err := b.SetWidth(0); err != ErrBadWidth {
		t.Errorf("expected ErrBadWidth, got %v", err)
	}
	if err := b.SetWidth(8); err != nil {
		t.Errorf("width 8 rejected: %v", err)
	}
}

func TestClear(t *testing.T) {
	c := NewCanvas()
	out := &recorder{}
	b := New(c, out)
	b.PointerDown()
	b.PointerMove(1, 1)

	b.Clear()
	if len(c.Segments()) != 0 {
		t.Fatal("local surface not cleared")
	}
	if got := out.events[len(out.events)-1]; got.typ != domain.EventClearBoard || got.data != nil {
		t.Fatalf("unexpected clear event %+v", got)
	}

	b.ApplyRemoteDraw(domain.DrawEvent{X: 1, Y: 1, Color: "#000000", StrokeWidth: 1})
	n := len(out.events)
	b.ApplyRemoteClear()
	if len(c.Segments()) != 0 {
		t.Fatal("remote clear did not clear")
	}
	if len(out.events) != n {
		t.Fatal("remote clear was re-broadcast")
	}
}
