// Package peer keeps one media link per remote participant and decides who calls whom.
package peer

import "github.com/dkeye/Collab/internal/domain"

type State int

const (
	None State = iota
	Connecting
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	default:
		return "none"
	}
}

type EventKind int

const (
	MemberJoined EventKind = iota
	SettleElapsed
	IncomingCall
	StreamReceived
	MemberLeft
	LinkClosed
)

func (k EventKind) String() string {
	switch k {
	case MemberJoined:
		return "member-joined"
	case SettleElapsed:
		return "settle-elapsed"
	case IncomingCall:
		return "incoming-call"
	case StreamReceived:
		return "stream-received"
	case MemberLeft:
		return "member-left"
	case LinkClosed:
		return "link-closed"
	default:
		return "unknown"
	}
}

// Event is one input to the per-remote state machine.
// Gen tags timer and link callbacks so that ones from a replaced attempt are ignored.
type Event struct {
	Kind     EventKind
	Remote   domain.ParticipantID
	Gen      uint64
	StreamID string
	SDP      string
}

type Effect int

const (
	ScheduleCall Effect = iota
	CancelTimer
	PlaceCall
	AcceptCall
	CloseLink
	ShowStream
	ReleaseSurfaces
)

func (e Effect) String() string {
	return [...]string{"schedule-call", "cancel-timer", "place-call", "accept-call", "close-link", "show-stream", "release-surfaces"}[e]
}

// Transition is the whole connection policy. It has no side effects; the Manager runs the returned effects in order.
//
// Inbound calls are always accepted and replace whatever link exists (last writer wins),
// so simultaneous calls from both ends settle without relying on the settling delay.
func Transition(s State, k EventKind) (State, []Effect) {
	if s == Closed {
		s = None
	}
	switch k {
	case MemberJoined:
		if s == None {
			return Connecting, []Effect{ScheduleCall}
		}
		return s, nil
	case SettleElapsed:
		if s == Connecting {
			return Connecting, []Effect{PlaceCall}
		}
		return s, nil
	case IncomingCall:
		return Connected, []Effect{CancelTimer, AcceptCall}
	case StreamReceived:
		if s == None {
			return None, nil
		}
		return Connected, []Effect{ShowStream}
	case MemberLeft, LinkClosed:
		if s == None {
			return None, nil
		}
		return Closed, []Effect{CancelTimer, CloseLink, ReleaseSurfaces}
	}
	return s, nil
}
