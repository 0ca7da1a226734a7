package chat

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dkeye/Collab/internal/domain"
)

type recorder struct {
	typ  string
	msgs []domain.ChatMessage
}

func (r *recorder) Emit(typ string, data any) error {
	r.typ = typ
	r.msgs = append(r.msgs, data.(domain.ChatMessage))
	return nil
}

// smallest valid PNG signature plus IHDR chunk start; enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestSendText(t *testing.T) {
	out := &recorder{}
	c := NewComposer("ann", out, 0)

	if err := c.SendText("  hi there "); err != nil {
		t.Fatal(err)
	}
	if out.typ != domain.EventMessage {
		t.Errorf("sent as %q", out.typ)
	}
	m := out.msgs[0]
	if m.User != "ann" || m.Type != domain.ChatText || m.Text != "hi there" {
		t.Errorf("unexpected message %+v", m)
	}
}

func TestSendTextSuppressesBlank(t *testing.T) {
	out := &recorder{}
	c := NewComposer("ann", out, 0)
	if err := c.SendText("   "); !errors.Is(err, domain.ErrEmptyChat) {
		t.Fatalf("expected ErrEmptyChat, got %v", err)
	}
	if len(out.msgs) != 0 {
		t.Fatal("blank message was sent")
	}
}

func TestSendFileAsDataURI(t *testing.T) {
	out := &recorder{}
	c := NewComposer("ann", out, 0)
	if err := c.SendFile("dot.png", bytes.NewReader(pngBytes)); err != nil {
		t.Fatal(err)
	}
	m := out.msgs[0]
	if m.Type != domain.ChatImage || !strings.HasPrefix(m.FileData, "data:image/png;base64,") {
		t.Errorf("unexpected message %+v", m)
	}
}

func TestSendFileLimits(t *testing.T) {
	out := &recorder{}
	c := NewComposer("ann", out, 8)
	if err := c.SendFile("big.png", bytes.NewReader(pngBytes)); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}

	c = NewComposer("ann", out, 0)
	if err := c.SendFile("notes.txt", strings.NewReader("just text")); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	if len(out.msgs) != 0 {
		t.Fatal("rejected file was sent")
	}
}

func TestFeedMarksOwnMessages(t *testing.T) {
	f := NewFeed("ann")
	mine, err := f.Receive(domain.ChatMessage{User: "ann", Type: domain.ChatText, Text: "a"})
	if err != nil {
		t.Fatal(err)
	}
	theirs, _ := f.Receive(domain.ChatMessage{User: "bob", Type: domain.ChatText, Text: "b"})
	if !mine.Mine || theirs.Mine {
		t.Errorf("Mine flags wrong: %v %v", mine.Mine, theirs.Mine)
	}
	if _, err := f.Receive(domain.ChatMessage{User: "bob", Type: "video"}); err == nil {
		t.Error("unknown type accepted")
	}
	if len(f.Entries()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(f.Entries()))
	}
}

func TestFeedIsBounded(t *testing.T) {
	f := NewFeed("ann")
	for i := 0; i < historySize+10; i++ {
		_, _ = f.Receive(domain.ChatMessage{User: "bob", Type: domain.ChatText, Text: "x"})
	}
	if len(f.Entries()) != historySize {
		t.Fatalf("feed grew to %d", len(f.Entries()))
	}
}
