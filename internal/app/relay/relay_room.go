package relay

import (
	"github.com/dkeye/Collab/internal/core"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join adds sid to room and tells every other member about it. The joiner gets a room-state.
func (o *Relay) Join(sid core.SessionID, room domain.RoomID, media domain.ParticipantID) error {
	if err := room.Validate(); err != nil {
		return err
	}
	if media == "" {
		media = sid
	}
	if err := media.Validate(); err != nil {
		return err
	}

	res := o.Rooms.Join(room, core.Member{SID: sid, MediaID: media})
	if res.Previous != "" {
		left := domain.Envelope{Type: domain.EventMemberLeft, Room: res.Previous, Media: media}
		o.publish(sids(res.PreviousMembers), left)
	}

	joined := domain.Envelope{Type: domain.EventMemberJoined, Room: room, Media: media}
	sent := o.publish(sids(res.Others), joined)
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("room", string(room)).Int("notified", sent.SentTo).Msg("join")

	members := make([]domain.ParticipantID, 0, len(res.Others))
	for _, m := range res.Others {
		members = append(members, m.MediaID)
	}
	state, err := domain.NewEnvelope(domain.EventRoomState, domain.RoomState{Room: room, Self: media, Members: members})
	if err == nil {
		state.Room = room
		o.sendTo(sid, state)
	}
	return nil
}

// Leave removes sid from its room and notifies the remaining members.
func (o *Relay) Leave(sid core.SessionID) {
	res, ok := o.Rooms.Leave(sid)
	if !ok {
		return
	}
	left := domain.Envelope{Type: domain.EventMemberLeft, Room: res.Room, Media: res.Left.MediaID}
	sent := o.publish(sids(res.Remaining), left)
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("room", string(res.Room)).Int("notified", sent.SentTo).Msg("leave")
}

func (o *Relay) publish(targets []core.SessionID, env domain.Envelope) PublishResult {
	f, err := encode(env)
	if err != nil {
		return PublishResult{}
	}
	return o.deliver(targets, f)
}
