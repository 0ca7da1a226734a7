// Package board turns pointer input into draw events and applies remote ones.
package board

import (
	"errors"
	"regexp"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	DefaultColor = "#000000"
	DefaultWidth = 3
	EraserColor  = "#FFFFFF"
	MaxWidth     = 50
)

var (
	ErrBadColor = errors.New("color must be #rrggbb")
	ErrBadWidth = errors.New("width out of range")
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Surface interface {
	Line(domain.DrawEvent)
	ResetPath()
	Clear()
}

// Emitter forwards an event to the relay for the current room.
type Emitter interface {
	Emit(typ string, data any) error
}

type Board struct {
	surface Surface
	out     Emitter

	color   string
	width   float64
	eraser  bool
	drawing bool
}

func New(s Surface, out Emitter) *Board {
	return &Board{surface: s, out: out, color: DefaultColor, width: DefaultWidth}
}

func (b *Board) SetColor(color string) error {
	if !hexColor.MatchString(color) {
		return ErrBadColor
	}
	b.color = color
	b.eraser = false
	return nil
}

func (b *Board) SetWidth(w float64) error {
	if w <= 0 || w > MaxWidth {
		return ErrBadWidth
	}
	b.width = w
	return nil
}

func (b *Board) UseEraser() { b.eraser = true }
func (b *Board) UsePen()    { b.eraser = false }

func (b *Board) PointerDown() { b.drawing = true }

// PointerMove renders locally first, then forwards. Moves without a pressed pointer are ignored.
func (b *Board) PointerMove(x, y float64) {
	if !b.drawing {
		return
	}
	color := b.color
	if b.eraser {
		color = EraserColor
	}
	ev := domain.DrawEvent{X: x, Y: y, Color: color, StrokeWidth: b.width}
	b.surface.Line(ev)
	if err := b.out.Emit(domain.EventDraw, ev); err != nil {
		log.Debug().Err(err).Str("module", "board").Msg("draw not sent")
	}
}

// PointerUp ends the stroke so the next one starts fresh.
func (b *Board) PointerUp() {
	b.drawing = false
	b.surface.ResetPath()
}

func (b *Board) Clear() {
	b.surface.Clear()
	if err := b.out.Emit(domain.EventClearBoard, nil); err != nil {
		log.Debug().Err(err).Str("module", "board").Msg("clear not sent")
	}
}

func (b *Board) ApplyRemoteDraw(ev domain.DrawEvent) {
	b.surface.Line(ev)
}

// ApplyRemoteClear never re-broadcasts: the relay already skipped the sender.
func (b *Board) ApplyRemoteClear() {
	b.surface.Clear()
}
