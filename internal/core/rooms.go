package core

import (
	"sort"
	"sync"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomRegistry maps rooms to member sets. A session sits in at most one room.
type RoomRegistry struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]map[SessionID]Member
	memberOf map[SessionID]domain.RoomID
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[domain.RoomID]map[SessionID]Member),
		memberOf: make(map[SessionID]domain.RoomID),
	}
}

func (r *RoomRegistry) Join(room domain.RoomID, m Member) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res JoinResult
	if prev, ok := r.memberOf[m.SID]; ok {
		if prev == room {
			// rejoin of the same room only refreshes the media id
			r.rooms[room][m.SID] = m
			res.Others = r.othersLocked(room, m.SID)
			return res
		}
		r.removeLocked(prev, m.SID)
		res.Previous = prev
		res.PreviousMembers = r.othersLocked(prev, m.SID)
	}

	set, ok := r.rooms[room]
	if !ok {
		set = make(map[SessionID]Member)
		r.rooms[room] = set
	}
	res.Others = r.othersLocked(room, m.SID)
	set[m.SID] = m
	r.memberOf[m.SID] = room
	log.Info().Str("module", "core.rooms").Str("sid", string(m.SID)).Str("room", string(room)).Int("others", len(res.Others)).Msg("member joined")
	return res
}

func (r *RoomRegistry) Leave(sid SessionID) (LeaveResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.memberOf[sid]
	if !ok {
		return LeaveResult{}, false
	}
	left := r.rooms[room][sid]
	r.removeLocked(room, sid)
	log.Info().Str("module", "core.rooms").Str("sid", string(sid)).Str("room", string(room)).Msg("member left")
	return LeaveResult{Room: room, Left: left, Remaining: r.othersLocked(room, sid)}, true
}

func (r *RoomRegistry) RoomOf(sid SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.memberOf[sid]
	return room, ok
}

func (r *RoomRegistry) Members(room domain.RoomID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.othersLocked(room, "")
}

// Lookup finds the member of room that announced mediaID.
func (r *RoomRegistry) Lookup(room domain.RoomID, mediaID domain.ParticipantID) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.rooms[room] {
		if m.MediaID == mediaID {
			return m, true
		}
	}
	return Member{}, false
}

func (r *RoomRegistry) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, set := range r.rooms {
		out = append(out, RoomInfo{ID: id, MemberCount: len(set)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MemberCount == out[j].MemberCount {
			return out[i].ID < out[j].ID
		}
		return out[i].MemberCount > out[j].MemberCount
	})
	return out
}

func (r *RoomRegistry) removeLocked(room domain.RoomID, sid SessionID) {
	delete(r.memberOf, sid)
	set, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(set, sid)
	if len(set) == 0 {
		delete(r.rooms, room)
	}
}

func (r *RoomRegistry) othersLocked(room domain.RoomID, except SessionID) []Member {
	set := r.rooms[room]
	out := make([]Member, 0, len(set))
	for sid, m := range set {
		if sid == except {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SID < out[j].SID })
	return out
}
