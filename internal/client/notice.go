package client

import (
	"github.com/dkeye/Collab/internal/chat"
	"github.com/rs/zerolog/log"
)

type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeWarn
	NoticeChat
)

// Notice is something the user should see: a state change, a failure that did not end
// the session, or a chat line.
type Notice struct {
	Kind  NoticeKind
	Text  string
	Entry *chat.Entry
}

func (s *Session) notify(kind NoticeKind, text string) {
	s.push(Notice{Kind: kind, Text: text})
}

func (s *Session) push(n Notice) {
	if n.Kind == NoticeWarn {
		log.Warn().Str("module", "client").Msg(n.Text)
	}
	select {
	case s.notices <- n:
	default:
		log.Debug().Str("module", "client").Str("text", n.Text).Msg("notice dropped")
	}
}
