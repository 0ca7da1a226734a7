package core

import "github.com/dkeye/Collab/internal/domain"

type SessionID = domain.ParticipantID

// Member is a room entry: the relay channel identity plus the media id announced at join.
type Member struct {
	SID     SessionID
	MediaID domain.ParticipantID
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"users"`
}

// JoinResult lists who must learn about the join.
// Previous is set when the member was moved out of another room.
type JoinResult struct {
	Others          []Member
	Previous        domain.RoomID
	PreviousMembers []Member
}

type LeaveResult struct {
	Room      domain.RoomID
	Left      Member
	Remaining []Member
}
