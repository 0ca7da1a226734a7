// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxParticipantIDLen = 64
	MaxUsernameLen      = 36
)

var (
	ErrParticipantIDEmpty   = errors.New("participant id empty")
	ErrParticipantIDTooLong = errors.New("participant id too long")
)

// ParticipantID is the rendezvous key other clients use to reach a participant's media endpoint.
type ParticipantID string

// Participant ties a relay channel to the room it currently sits in.
// connection and media ids usually match; the relay keeps both because clients announce the media one.
type Participant struct {
	ConnectionID ParticipantID `json:"connectionId"`
	MediaID      ParticipantID `json:"mediaConnectionId"`
	RoomID       RoomID        `json:"roomId,omitempty"`
}

// NewParticipantID is the Peer Identity Provider: unique per channel, nothing more.
func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}

func (id ParticipantID) Validate() error {
	if len(id) == 0 {
		return ErrParticipantIDEmpty
	}
	if len(id) > MaxParticipantIDLen {
		return ErrParticipantIDTooLong
	}
	return nil
}
