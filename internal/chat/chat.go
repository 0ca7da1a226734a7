// Package chat composes outgoing chat messages and keeps the received feed.
package chat

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxFile = 512 << 10
	historySize    = 200
)

var (
	ErrFileTooLarge = errors.New("file too large")
	ErrNotImage     = errors.New("file is not an image")
)

type Emitter interface {
	Emit(typ string, data any) error
}

type Composer struct {
	user    string
	out     Emitter
	maxFile int64
}

func NewComposer(user string, out Emitter, maxFile int64) *Composer {
	if maxFile <= 0 {
		maxFile = DefaultMaxFile
	}
	return &Composer{user: user, out: out, maxFile: maxFile}
}

// SendText drops blank input.
func (c *Composer) SendText(text string) error {
	msg, err := domain.NewTextMessage(c.user, strings.TrimSpace(text))
	if err != nil {
		return err
	}
	return c.out.Emit(domain.EventMessage, msg)
}

// SendFile embeds r as a data URI. Only images are accepted.
func (c *Composer) SendFile(name string, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, c.maxFile+1))
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > c.maxFile {
		return fmt.Errorf("%s: %w", name, ErrFileTooLarge)
	}
	uri, err := DataURI(data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	msg, err := domain.NewImageMessage(c.user, uri)
	if err != nil {
		return err
	}
	log.Debug().Str("module", "chat").Str("file", name).Int("bytes", len(data)).Msg("sending file")
	return c.out.Emit(domain.EventMessage, msg)
}

func DataURI(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

type Entry struct {
	Message domain.ChatMessage
	Mine    bool
}

// Feed is the in-memory chat log; older entries fall off.
type Feed struct {
	user    string
	entries []Entry
}

func NewFeed(user string) *Feed { return &Feed{user: user} }

func (f *Feed) Receive(m domain.ChatMessage) (Entry, error) {
	if err := m.Validate(); err != nil {
		return Entry{}, err
	}
	e := Entry{Message: m, Mine: m.User == f.user}
	f.entries = append(f.entries, e)
	if len(f.entries) > historySize {
		f.entries = f.entries[len(f.entries)-historySize:]
	}
	return e, nil
}

func (f *Feed) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}
