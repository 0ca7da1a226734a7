package client

import (
	"bytes"
	"context"
	"io"

	"github.com/dkeye/Collab/internal/board"
	"github.com/dkeye/Collab/internal/chat"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/dkeye/Collab/internal/peer"
)

// ShareScreen failures are reported as a notice as well as returned; the session goes on.
func (s *Session) ShareScreen(ctx context.Context) error {
	return s.call(func() error {
		if err := s.share.ShareScreen(ctx); err != nil {
			s.notify(NoticeWarn, "screen share: "+err.Error())
			return err
		}
		s.notify(NoticeInfo, "sharing screen")
		return nil
	})
}

func (s *Session) StopShare() error {
	return s.call(func() error {
		if err := s.share.StopShare(); err != nil {
			return err
		}
		s.notify(NoticeInfo, "screen share stopped")
		return nil
	})
}

func (s *Session) ToggleShare(ctx context.Context) error {
	return s.call(func() error {
		if s.share.Sharing() {
			return s.share.StopShare()
		}
		if err := s.share.ShareScreen(ctx); err != nil {
			s.notify(NoticeWarn, "screen share: "+err.Error())
			return err
		}
		return nil
	})
}

func (s *Session) ToggleAudio() (bool, error) {
	var live bool
	err := s.call(func() (err error) {
		live, err = s.local.ToggleAudio()
		return err
	})
	return live, err
}

func (s *Session) ToggleVideo() (bool, error) {
	var live bool
	err := s.call(func() (err error) {
		live, err = s.local.ToggleVideo()
		return err
	})
	return live, err
}

// Stroke draws a polyline as one pointer-down / move... / pointer-up gesture.
func (s *Session) Stroke(points ...board.Point) error {
	return s.call(func() error {
		s.board.PointerDown()
		for _, p := range points {
			s.board.PointerMove(p.X, p.Y)
		}
		s.board.PointerUp()
		return nil
	})
}

// Draw presses the pointer if needed and moves through points, leaving the stroke open.
func (s *Session) Draw(points ...board.Point) error {
	return s.call(func() error {
		s.board.PointerDown()
		for _, p := range points {
			s.board.PointerMove(p.X, p.Y)
		}
		return nil
	})
}

func (s *Session) PointerDown() error {
	return s.call(func() error { s.board.PointerDown(); return nil })
}

func (s *Session) PointerMove(x, y float64) error {
	return s.call(func() error { s.board.PointerMove(x, y); return nil })
}

func (s *Session) PointerUp() error {
	return s.call(func() error { s.board.PointerUp(); return nil })
}

func (s *Session) ClearBoard() error {
	return s.call(func() error { s.board.Clear(); return nil })
}

func (s *Session) SetColor(c string) error {
	return s.call(func() error { return s.board.SetColor(c) })
}

func (s *Session) SetWidth(w float64) error {
	return s.call(func() error { return s.board.SetWidth(w) })
}

func (s *Session) UseEraser() error {
	return s.call(func() error { s.board.UseEraser(); return nil })
}

func (s *Session) UsePen() error {
	return s.call(func() error { s.board.UsePen(); return nil })
}

func (s *Session) SendText(text string) error {
	return s.call(func() error { return s.composer.SendText(text) })
}

// SendFile reads r on the caller's goroutine; only the send runs on the loop.
func (s *Session) SendFile(name string, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, chat.DefaultMaxFile+1))
	if err != nil {
		return err
	}
	return s.call(func() error { return s.composer.SendFile(name, bytes.NewReader(data)) })
}

type Status struct {
	Self     domain.ParticipantID
	Room     domain.RoomID
	Peers    []peer.Snapshot
	Streams  []string
	Sharing  bool
	Segments int
	Chat     []chat.Entry
}

func (s *Session) Status() (Status, error) {
	var st Status
	err := s.call(func() error {
		st = Status{
			Self:     s.self,
			Room:     s.opts.Room,
			Peers:    s.peers.Snapshot(),
			Streams:  s.gallery.Streams(),
			Sharing:  s.share.Sharing(),
			Segments: len(s.canvas.Segments()),
			Chat:     s.feed.Entries(),
		}
		return nil
	})
	return st, err
}
