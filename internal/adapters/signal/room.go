package signal

import (
	"github.com/dkeye/Collab/internal/core"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleJoin expects {"type":"join-room","room":R,"media":M}; M falls back to the channel id.
func (ctl *SignalWSController) handleJoin(sid core.SessionID, env domain.Envelope) {
	if err := ctl.Relay.Join(sid, env.Room, env.Media); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("room", string(env.Room)).Msg("join rejected")
		ctl.replyError(sid, err.Error())
	}
}

// handleLeave drops room membership; the channel stays open.
func (ctl *SignalWSController) handleLeave(sid core.SessionID) {
	ctl.Relay.Leave(sid)
}
