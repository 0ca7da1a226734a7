package signal

import (
	"github.com/dkeye/Collab/internal/core"
	"github.com/dkeye/Collab/internal/domain"
)

func (ctl *SignalWSController) handlePing(sid core.SessionID) {
	ctl.Relay.Reply(sid, domain.Envelope{Type: domain.EventPong})
}
