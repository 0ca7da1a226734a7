// Package relay is the server-side signaling relay: it binds event channels to room membership
// and forwards frames without interpreting their payloads.
package relay

import (
	"context"
	"encoding/json"

	"github.com/dkeye/Collab/internal/app"
	"github.com/dkeye/Collab/internal/core"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/rs/zerolog/log"
)

type ChatScope string

const (
	ChatGlobal ChatScope = "global"
	ChatRoom   ChatScope = "room"
)

// PublishResult reports delivery stats/backpressure.
type PublishResult struct {
	SentTo  int
	Dropped []core.SessionID
}

type Relay struct {
	Sessions  *app.Registry
	Rooms     *core.RoomRegistry
	Policy    app.Policy
	Bus       app.Bus
	ChatScope ChatScope
}

func New(sessions *app.Registry, rooms *core.RoomRegistry, policy app.Policy, bus app.Bus, scope ChatScope) *Relay {
	if policy == nil {
		policy = app.DropPolicy{}
	}
	if bus == nil {
		bus = app.NewLocalBus()
	}
	if scope == "" {
		scope = ChatGlobal
	}
	return &Relay{Sessions: sessions, Rooms: rooms, Policy: policy, Bus: bus, ChatScope: scope}
}

// Start subscribes this node to the global bus.
func (o *Relay) Start(ctx context.Context) error {
	return o.Bus.Subscribe(ctx, func(f core.Frame) {
		o.deliver(o.Sessions.All(), f)
	})
}

// Connect registers a fresh channel and hands the client its identity.
func (o *Relay) Connect(sid core.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	o.Sessions.BindSignal(sid, conn, cancel)
	env := domain.Envelope{Type: domain.EventWelcome, From: sid}
	o.sendTo(sid, env)
}

// OnDisconnect is the implicit leave.
func (o *Relay) OnDisconnect(sid core.SessionID) {
	o.Leave(sid)
	o.Sessions.Unbind(sid)
}

// Reply sends an envelope to a single channel, best effort.
func (o *Relay) Reply(sid core.SessionID, env domain.Envelope) {
	o.sendTo(sid, env)
}

func (o *Relay) sendTo(sid core.SessionID, env domain.Envelope) {
	f, err := encode(env)
	if err != nil {
		return
	}
	o.deliver([]core.SessionID{sid}, f)
}

func (o *Relay) deliver(targets []core.SessionID, f core.Frame) PublishResult {
	res := PublishResult{}
	for _, sid := range targets {
		conn, ok := o.Sessions.GetSignal(sid)
		if !ok {
			continue
		}
		if err := conn.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SentTo++
	}
	for _, slow := range res.Dropped {
		o.onBackPressure(slow)
	}
	return res
}

func (o *Relay) onBackPressure(sid core.SessionID) {
	switch o.Policy.OnBackPressure(sid) {
	case app.KickMember:
		log.Warn().Str("module", "app.relay").Str("sid", string(sid)).Msg("kicking slow member")
		o.Sessions.Cancel(sid)
	case app.DropFrame, app.NoAction:
		log.Debug().Str("module", "app.relay").Str("sid", string(sid)).Msg("frame dropped")
	}
}

func encode(env domain.Envelope) (core.Frame, error) {
	b, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("type", env.Type).Msg("encode envelope")
		return nil, err
	}
	return b, nil
}

func sids(members []core.Member) []core.SessionID {
	out := make([]core.SessionID, 0, len(members))
	for _, m := range members {
		out = append(out, m.SID)
	}
	return out
}
