package relay

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/Collab/internal/app"
	"github.com/dkeye/Collab/internal/core"
	"github.com/dkeye/Collab/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []domain.Envelope
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	var env domain.Envelope
	if err := json.Unmarshal(f, &env); err != nil {
		return err
	}
	c.frames = append(c.frames, env)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) ofType(typ string) []domain.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.Envelope
	for _, e := range c.frames {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	relay *Relay
	conns map[core.SessionID]*fakeConn
}

func newFixture(t *testing.T, scope ChatScope, ids ...string) *fixture {
	t.Helper()
	r := New(app.NewRegistry(), core.NewRoomRegistry(), nil, nil, scope)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	f := &fixture{relay: r, conns: make(map[core.SessionID]*fakeConn)}
	for _, id := range ids {
		c := &fakeConn{}
		f.conns[core.SessionID(id)] = c
		r.Connect(core.SessionID(id), c, nil)
	}
	return f
}

func (f *fixture) join(t *testing.T, sid, room string) {
	t.Helper()
	if err := f.relay.Join(core.SessionID(sid), domain.RoomID(room), ""); err != nil {
		t.Fatalf("Join(%s, %s) failed: %v", sid, room, err)
	}
}

func TestConnectSendsWelcome(t *testing.T) {
	f := newFixture(t, ChatGlobal, "a")
	w := f.conns["a"].ofType(domain.EventWelcome)
	if len(w) != 1 || w[0].From != "a" {
		t.Fatalf("expected welcome carrying the id, got %v", w)
	}
}

func TestJoinScenario(t *testing.T) {
	f := newFixture(t, ChatGlobal, "p1", "p2")

	f.join(t, "p1", "R")
	if got := f.conns["p1"].ofType(domain.EventMemberJoined); len(got) != 0 {
		t.Fatalf("empty room join must notify nobody, p1 got %v", got)
	}

	f.join(t, "p2", "R")
	got := f.conns["p1"].ofType(domain.EventMemberJoined)
	if len(got) != 1 || got[0].Media != "p2" {
		t.Fatalf("p1 expected member-joined(p2), got %v", got)
	}
	if own := f.conns["p2"].ofType(domain.EventMemberJoined); len(own) != 0 {
		t.Errorf("joiner must not be notified of itself, got %v", own)
	}

	state := f.conns["p2"].ofType(domain.EventRoomState)
	if len(state) != 1 {
		t.Fatalf("expected room-state for joiner, got %d", len(state))
	}
	var rs domain.RoomState
	if err := state[0].Decode(&rs); err != nil {
		t.Fatalf("decode room-state: %v", err)
	}
	if len(rs.Members) != 1 || rs.Members[0] != "p1" {
		t.Errorf("unexpected room-state members %v", rs.Members)
	}

	f.relay.OnDisconnect("p2")
	left := f.conns["p1"].ofType(domain.EventMemberLeft)
	if len(left) != 1 || left[0].Media != "p2" {
		t.Fatalf("p1 expected member-left(p2), got %v", left)
	}
}

func TestJoinUsesAnnouncedMediaID(t *testing.T) {
	f := newFixture(t, ChatGlobal, "a", "b")
	f.join(t, "a", "R")
	if err := f.relay.Join("b", "R", "peer-b"); err != nil {
		t.Fatal(err)
	}
	got := f.conns["a"].ofType(domain.EventMemberJoined)
	if len(got) != 1 || got[0].Media != "peer-b" {
		t.Fatalf("expected member-joined(peer-b), got %v", got)
	}
}

func TestJoinRejectsEmptyRoom(t *testing.T) {
	f := newFixture(t, ChatGlobal, "a")
	if err := f.relay.Join("a", " ", ""); err == nil {
		t.Fatal("expected error for blank room id")
	}
}

func TestMoveNotifiesOldRoom(t *testing.T) {
	f := newFixture(t, ChatGlobal, "a", "b")
	f.join(t, "a", "R1")
	f.join(t, "b", "R1")
	f.join(t, "b", "R2")

	left := f.conns["a"].ofType(domain.EventMemberLeft)
	if len(left) != 1 || left[0].Media != "b" {
		t.Fatalf("expected a to see b leave R1, got %v", left)
	}
}

func TestRelayExcludesSender(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A", "B", "C", "D")
	f.join(t, "A", "R")
	f.join(t, "B", "R")
	f.join(t, "C", "R")
	f.join(t, "D", "other")

	payload := json.RawMessage(`{"x":10,"y":20,"color":"#000000","width":3}`)
	res := f.relay.RelayToRoom("A", domain.EventDraw, payload)
	if res.SentTo != 2 {
		t.Errorf("expected delivery to 2 members, got %d", res.SentTo)
	}

	for _, id := range []core.SessionID{"B", "C"} {
		got := f.conns[id].ofType(domain.EventDraw)
		if len(got) != 1 {
			t.Fatalf("%s expected one draw, got %d", id, len(got))
		}
		var ev domain.DrawEvent
		if err := got[0].Decode(&ev); err != nil {
			t.Fatal(err)
		}
		if ev.X != 10 || ev.Y != 20 || ev.Color != "#000000" || ev.StrokeWidth != 3 {
			t.Errorf("%s got altered payload %+v", id, ev)
		}
		if got[0].From != "A" {
			t.Errorf("expected From=A, got %q", got[0].From)
		}
	}
	if echo := f.conns["A"].ofType(domain.EventDraw); len(echo) != 0 {
		t.Errorf("sender received its own draw")
	}
	if leak := f.conns["D"].ofType(domain.EventDraw); len(leak) != 0 {
		t.Errorf("draw leaked into another room")
	}
}

func TestClearBoardHasNoPayload(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A", "B")
	f.join(t, "A", "R")
	f.join(t, "B", "R")

	f.relay.RelayToRoom("A", domain.EventClearBoard, nil)
	got := f.conns["B"].ofType(domain.EventClearBoard)
	if len(got) != 1 || len(got[0].Data) != 0 {
		t.Fatalf("expected one empty clear-board, got %v", got)
	}
}

func TestRelayFromClosedSenderIsDropped(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A", "B")
	f.join(t, "A", "R")
	f.join(t, "B", "R")
	f.relay.Sessions.Unbind("A")

	res := f.relay.RelayToRoom("A", domain.EventDraw, json.RawMessage(`{}`))
	if res.SentTo != 0 {
		t.Errorf("expected nothing relayed for a closed sender, got %d", res.SentTo)
	}
}

func TestRelayWithoutRoomIsDropped(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A")
	res := f.relay.RelayToRoom("A", domain.EventDraw, json.RawMessage(`{}`))
	if res.SentTo != 0 || len(res.Dropped) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestGlobalChatReachesEveryRoom(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A", "B", "lobby")
	f.join(t, "A", "R1")
	f.join(t, "B", "R2")

	f.relay.Chat(context.Background(), "A", json.RawMessage(`{"user":"ann","type":"text","text":"hi"}`))

	for id, c := range f.conns {
		got := c.ofType(domain.EventCreateMessage)
		if len(got) != 1 {
			t.Fatalf("%s expected createMessage, got %d", id, len(got))
		}
		var msg domain.ChatMessage
		if err := got[0].Decode(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.Text != "hi" || msg.User != "ann" {
			t.Errorf("%s got %+v", id, msg)
		}
	}
}

func TestRoomScopedChat(t *testing.T) {
	f := newFixture(t, ChatRoom, "A", "B", "C")
	f.join(t, "A", "R1")
	f.join(t, "B", "R1")
	f.join(t, "C", "R2")

	f.relay.Chat(context.Background(), "A", json.RawMessage(`{"user":"ann","type":"text","text":"hi"}`))

	if got := f.conns["A"].ofType(domain.EventCreateMessage); len(got) != 1 {
		t.Errorf("sender should get the echo, got %d", len(got))
	}
	if got := f.conns["B"].ofType(domain.EventCreateMessage); len(got) != 1 {
		t.Errorf("room mate should get the message, got %d", len(got))
	}
	if got := f.conns["C"].ofType(domain.EventCreateMessage); len(got) != 0 {
		t.Errorf("other room must not see room-scoped chat")
	}
}

func TestSignalIsDirected(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A", "B", "C")
	f.join(t, "A", "R")
	f.join(t, "B", "R")
	f.join(t, "C", "R")

	if !f.relay.Signal("A", "B", json.RawMessage(`{"kind":"offer","sdp":"v=0"}`)) {
		t.Fatal("Signal() reported no delivery")
	}
	got := f.conns["B"].ofType(domain.EventSignal)
	if len(got) != 1 || got[0].From != "A" || got[0].To != "B" {
		t.Fatalf("unexpected signal frames %v", got)
	}
	if other := f.conns["C"].ofType(domain.EventSignal); len(other) != 0 {
		t.Errorf("signal leaked to C")
	}
}

func TestSignalOutsideRoomFails(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A", "B")
	f.join(t, "A", "R1")
	f.join(t, "B", "R2")
	if f.relay.Signal("A", "B", json.RawMessage(`{}`)) {
		t.Fatal("signal must not cross rooms")
	}
}

func TestBackpressureDropKeepsMember(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A", "B")
	f.join(t, "A", "R")
	f.join(t, "B", "R")
	f.conns["B"].full = true

	res := f.relay.RelayToRoom("A", domain.EventDraw, json.RawMessage(`{}`))
	if len(res.Dropped) != 1 || res.Dropped[0] != "B" {
		t.Fatalf("expected B dropped, got %+v", res)
	}
	if _, ok := f.relay.Rooms.RoomOf("B"); !ok {
		t.Errorf("drop policy must keep B in the room")
	}
}

func TestBackpressureKickCancelsSession(t *testing.T) {
	f := newFixture(t, ChatGlobal, "A")
	f.relay.Policy = app.KickPolicy{}
	canceled := false
	slow := &fakeConn{}
	f.relay.Connect("B", slow, func() { canceled = true })
	f.join(t, "A", "R")
	f.join(t, "B", "R")
	slow.full = true

	f.relay.RelayToRoom("A", domain.EventDraw, json.RawMessage(`{}`))
	if !canceled {
		t.Errorf("kick policy should cancel the slow session")
	}
}
