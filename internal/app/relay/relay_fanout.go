package relay

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Collab/internal/core"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/rs/zerolog/log"
)

// RelayToRoom forwards data to every member of the sender's room except the sender.
// A sender that is gone or roomless loses the event silently.
func (o *Relay) RelayToRoom(sid core.SessionID, typ string, data json.RawMessage) PublishResult {
	if _, ok := o.Sessions.GetSignal(sid); !ok {
		return PublishResult{}
	}
	room, ok := o.Rooms.RoomOf(sid)
	if !ok {
		return PublishResult{}
	}
	env := domain.Envelope{Type: typ, Room: room, From: o.mediaOf(room, sid), Data: data}

	targets := make([]core.SessionID, 0)
	for _, m := range o.Rooms.Members(room) {
		if m.SID != sid {
			targets = append(targets, m.SID)
		}
	}
	res := o.publish(targets, env)
	log.Debug().Str("module", "app.relay").Str("sid", string(sid)).Str("type", typ).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("room fanout")
	return res
}

// BroadcastGlobal reaches every connected channel on every node, rooms ignored.
func (o *Relay) BroadcastGlobal(ctx context.Context, typ string, data json.RawMessage) error {
	f, err := encode(domain.Envelope{Type: typ, Data: data})
	if err != nil {
		return err
	}
	return o.Bus.Publish(ctx, f)
}

// Chat fans a chat message out as createMessage, scoped by ChatScope.
// The sender is included: clients render their own message from the echo.
func (o *Relay) Chat(ctx context.Context, sid core.SessionID, data json.RawMessage) {
	if _, ok := o.Sessions.GetSignal(sid); !ok {
		return
	}
	if o.ChatScope == ChatRoom {
		room, ok := o.Rooms.RoomOf(sid)
		if !ok {
			return
		}
		o.publish(sids(o.Rooms.Members(room)), domain.Envelope{Type: domain.EventCreateMessage, Room: room, Data: data})
		return
	}
	if err := o.BroadcastGlobal(ctx, domain.EventCreateMessage, data); err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("sid", string(sid)).Msg("global chat publish")
	}
}

// Signal forwards a handshake frame to one member of the sender's room.
func (o *Relay) Signal(sid core.SessionID, to domain.ParticipantID, data json.RawMessage) bool {
	room, ok := o.Rooms.RoomOf(sid)
	if !ok {
		return false
	}
	target, ok := o.Rooms.Lookup(room, to)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("sid", string(sid)).Str("to", string(to)).Msg("signal target not in room")
		return false
	}
	env := domain.Envelope{Type: domain.EventSignal, Room: room, From: o.mediaOf(room, sid), To: to, Data: data}
	return o.publish([]core.SessionID{target.SID}, env).SentTo == 1
}

func (o *Relay) mediaOf(room domain.RoomID, sid core.SessionID) domain.ParticipantID {
	for _, m := range o.Rooms.Members(room) {
		if m.SID == sid {
			return m.MediaID
		}
	}
	return sid
}
