package core

import (
	"sync"
	"testing"

	"github.com/dkeye/Collab/internal/domain"
)

func member(id string) Member {
	return Member{SID: SessionID(id), MediaID: domain.ParticipantID("m-" + id)}
}

func TestJoinEmptyRoomHasNoOthers(t *testing.T) {
	r := NewRoomRegistry()
	res := r.Join("R", member("p1"))
	if len(res.Others) != 0 {
		t.Fatalf("expected nobody to notify, got %v", res.Others)
	}
	if res.Previous != "" {
		t.Errorf("unexpected previous room %q", res.Previous)
	}
}

func TestJoinReturnsExistingMembersOnly(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("R", member("a"))
	r.Join("R", member("b"))
	res := r.Join("R", member("c"))

	if len(res.Others) != 2 {
		t.Fatalf("expected 2 others, got %d", len(res.Others))
	}
	for _, m := range res.Others {
		if m.SID == "c" {
			t.Errorf("joiner must not be in its own notification list")
		}
	}
	if got := len(r.Members("R")); got != 3 {
		t.Errorf("expected 3 members, got %d", got)
	}
}

func TestSingleRoomInvariant(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("R1", member("a"))
	r.Join("R1", member("b"))
	res := r.Join("R2", member("a"))

	if res.Previous != "R1" {
		t.Fatalf("expected previous room R1, got %q", res.Previous)
	}
	if len(res.PreviousMembers) != 1 || res.PreviousMembers[0].SID != "b" {
		t.Errorf("expected b to remain in R1, got %v", res.PreviousMembers)
	}
	if room, _ := r.RoomOf("a"); room != "R2" {
		t.Errorf("expected a in R2, got %q", room)
	}
	for _, m := range r.Members("R1") {
		if m.SID == "a" {
			t.Errorf("a still listed in R1")
		}
	}
}

func TestRejoinSameRoomRefreshesMediaID(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("R", member("a"))
	r.Join("R", Member{SID: "a", MediaID: "fresh"})

	members := r.Members("R")
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if members[0].MediaID != "fresh" {
		t.Errorf("expected media id refreshed, got %q", members[0].MediaID)
	}
}

func TestLeave(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("R", member("a"))
	r.Join("R", member("b"))

	res, ok := r.Leave("a")
	if !ok {
		t.Fatal("Leave() reported not a member")
	}
	if res.Room != "R" || res.Left.MediaID != "m-a" {
		t.Errorf("unexpected leave result %+v", res)
	}
	if len(res.Remaining) != 1 || res.Remaining[0].SID != "b" {
		t.Errorf("expected b remaining, got %v", res.Remaining)
	}
	if _, ok := r.Leave("a"); ok {
		t.Errorf("second Leave() should be a no-op")
	}
}

func TestLastLeavePrunesRoom(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("R", member("a"))
	r.Leave("a")
	if len(r.List()) != 0 {
		t.Errorf("expected no rooms listed, got %v", r.List())
	}
}

func TestLookupByMediaID(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("R", member("a"))
	r.Join("S", member("b"))

	if m, ok := r.Lookup("R", "m-a"); !ok || m.SID != "a" {
		t.Errorf("Lookup() = %v, %v", m, ok)
	}
	if _, ok := r.Lookup("R", "m-b"); ok {
		t.Errorf("Lookup() must not cross rooms")
	}
}

func TestListOrdersByMemberCount(t *testing.T) {
	r := NewRoomRegistry()
	r.Join("small", member("a"))
	r.Join("big", member("b"))
	r.Join("big", member("c"))

	list := r.List()
	if len(list) != 2 || list[0].ID != "big" || list[0].MemberCount != 2 {
		t.Errorf("unexpected list %v", list)
	}
}

func TestConcurrentJoinLeave(t *testing.T) {
	r := NewRoomRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := Member{SID: SessionID(rune('A' + i%26)), MediaID: "x"}
			r.Join("R", m)
			r.Leave(m.SID)
		}(i)
	}
	wg.Wait()
	if got := len(r.Members("R")); got != 0 {
		t.Errorf("expected empty room, got %d members", got)
	}
}
