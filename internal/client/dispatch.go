package client

import (
	"fmt"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/dkeye/Collab/internal/peer"
	"github.com/rs/zerolog/log"
)

func (s *Session) dispatch(env domain.Envelope) {
	switch env.Type {
	case domain.EventWelcome:
		s.onWelcome(env)
	case domain.EventRoomState:
		var st domain.RoomState
		if err := env.Decode(&st); err == nil {
			s.notify(NoticeInfo, fmt.Sprintf("in room %s with %d others", st.Room, len(st.Members)))
		}
	case domain.EventMemberJoined:
		if env.Media != "" && env.Media != s.self {
			s.peers.Handle(peer.Event{Kind: peer.MemberJoined, Remote: env.Media})
			s.notify(NoticeInfo, fmt.Sprintf("%s joined", env.Media))
		}
	case domain.EventMemberLeft:
		if env.Media != "" {
			s.peers.Handle(peer.Event{Kind: peer.MemberLeft, Remote: env.Media})
			s.notify(NoticeInfo, fmt.Sprintf("%s left", env.Media))
		}
	case domain.EventDraw:
		var ev domain.DrawEvent
		if err := env.Decode(&ev); err != nil {
			log.Debug().Err(err).Str("module", "client").Msg("bad draw")
			return
		}
		s.board.ApplyRemoteDraw(ev)
	case domain.EventClearBoard:
		s.board.ApplyRemoteClear()
	case domain.EventCreateMessage:
		var msg domain.ChatMessage
		if err := env.Decode(&msg); err != nil {
			return
		}
		entry, err := s.feed.Receive(msg)
		if err != nil {
			log.Debug().Err(err).Str("module", "client").Msg("bad chat message")
			return
		}
		s.push(Notice{Kind: NoticeChat, Text: msg.Text, Entry: &entry})
	case domain.EventSignal:
		s.onSignal(env)
	case domain.EventError:
		s.notify(NoticeWarn, "relay: "+env.Error)
	case domain.EventPong:
	default:
		log.Debug().Str("module", "client").Str("type", env.Type).Msg("unknown frame")
	}
}

func (s *Session) onWelcome(env domain.Envelope) {
	s.self = env.From
	if err := s.relay.Send(domain.Envelope{Type: domain.EventJoinRoom, Room: s.opts.Room, Media: s.self}); err != nil {
		s.notify(NoticeWarn, "join failed: "+err.Error())
		return
	}
	s.joined = true
	log.Info().Str("module", "client").Str("self", string(s.self)).Str("room", string(s.opts.Room)).Msg("joining")
}

func (s *Session) onSignal(env domain.Envelope) {
	var p domain.SignalPayload
	if err := env.Decode(&p); err != nil || env.From == "" {
		log.Debug().Str("module", "client").Msg("bad signal frame")
		return
	}
	var err error
	switch p.Kind {
	case domain.SignalOffer:
		s.peers.Handle(peer.Event{Kind: peer.IncomingCall, Remote: env.From, SDP: p.SDP})
	case domain.SignalAnswer:
		err = s.peers.HandleAnswer(env.From, p.SDP)
	case domain.SignalCandidate:
		err = s.peers.HandleCandidate(env.From, p.Candidate)
	}
	if err != nil {
		log.Debug().Err(err).Str("module", "client").Str("remote", string(env.From)).Str("kind", string(p.Kind)).Msg("signal dropped")
	}
}
