package domain

import "encoding/json"

// Event names on the relay channel.
const (
	EventWelcome       = "welcome"
	EventJoinRoom      = "join-room"
	EventLeaveRoom     = "leave-room"
	EventRoomState     = "room-state"
	EventMemberJoined  = "member-joined"
	EventMemberLeft    = "member-left"
	EventDraw          = "draw"
	EventClearBoard    = "clear-board"
	EventMessage       = "message"
	EventCreateMessage = "createMessage"
	EventSignal        = "signal"
	EventPing          = "ping"
	EventPong          = "pong"
	EventError         = "error"
)

// Envelope is the single frame shape exchanged on the relay channel.
// Data is forwarded untouched; the relay never looks inside it.
type Envelope struct {
	Type  string          `json:"type"`
	Room  RoomID          `json:"room,omitempty"`
	Media ParticipantID   `json:"media,omitempty"`
	From  ParticipantID   `json:"from,omitempty"`
	To    ParticipantID   `json:"to,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// NewEnvelope marshals v into Data. A nil v leaves Data empty.
func NewEnvelope(typ string, v any) (Envelope, error) {
	env := Envelope{Type: typ}
	if v == nil {
		return env, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return env, err
	}
	env.Data = b
	return env, nil
}

// Decode unmarshals Data into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

type SignalKind string

const (
	SignalOffer     SignalKind = "offer"
	SignalAnswer    SignalKind = "answer"
	SignalCandidate SignalKind = "candidate"
)

// SignalPayload is the media handshake body carried by EventSignal frames.
type SignalPayload struct {
	Kind      SignalKind      `json:"kind"`
	SDP       string          `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// RoomState is sent back to a joiner.
type RoomState struct {
	Room    RoomID          `json:"room"`
	Self    ParticipantID   `json:"self"`
	Members []ParticipantID `json:"members"`
}
