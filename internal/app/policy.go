package app

import "github.com/dkeye/Collab/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose send buffer is full.
type Policy interface {
	OnBackPressure(sid core.SessionID) BackpressureAction
}

// DropPolicy loses the frame for the slow member and keeps it connected.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.SessionID) BackpressureAction { return DropFrame }

// KickPolicy disconnects members that cannot keep up.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.SessionID) BackpressureAction { return KickMember }

func PolicyByName(name string) Policy {
	if name == "kick" {
		return KickPolicy{}
	}
	return DropPolicy{}
}
