package signal

import (
	"context"

	"github.com/dkeye/Collab/internal/core"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleDraw(sid core.SessionID, env domain.Envelope) {
	if len(env.Data) == 0 {
		ctl.replyError(sid, "bad_payload")
		return
	}
	ctl.Relay.RelayToRoom(sid, domain.EventDraw, env.Data)
}

// handleMessage checks only the shape of the chat message; the user label is taken as sent.
func (ctl *SignalWSController) handleMessage(ctx context.Context, sid core.SessionID, env domain.Envelope) {
	var msg domain.ChatMessage
	if err := env.Decode(&msg); err != nil {
		ctl.replyError(sid, "bad_payload")
		return
	}
	if err := msg.Validate(); err != nil {
		ctl.replyError(sid, err.Error())
		return
	}
	if ctl.chat != nil && !ctl.chat.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("chat rate limited")
		ctl.replyError(sid, "rate_limited")
		return
	}
	ctl.Relay.Chat(ctx, sid, env.Data)
}

func (ctl *SignalWSController) handleHandshake(sid core.SessionID, env domain.Envelope) {
	if env.To == "" {
		ctl.replyError(sid, "missing_target")
		return
	}
	if !ctl.Relay.Signal(sid, env.To, env.Data) {
		ctl.replyError(sid, "peer_unavailable")
	}
}
