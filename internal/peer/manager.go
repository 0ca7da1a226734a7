package peer

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var ErrNoLink = errors.New("no link for participant")

// VideoSender is the outbound video slot of a link. *webrtc.RTPSender satisfies it.
type VideoSender interface {
	ReplaceTrack(webrtc.TrackLocal) error
	Track() webrtc.TrackLocal
}

// Link is one established or in-flight media connection.
type Link interface {
	VideoSender() VideoSender
	SetRemoteAnswer(sdp string) error
	AddCandidate(raw json.RawMessage) error
	Close() error
}

// Outbound is what a new link sends. Video may be nil.
type Outbound struct {
	Audio webrtc.TrackLocal
	Video webrtc.TrackLocal
}

// Dialer opens links. Implementations report StreamReceived and LinkClosed back
// as Events tagged with the gen they were given.
type Dialer interface {
	Call(remote domain.ParticipantID, gen uint64, out Outbound) (Link, error)
	Answer(remote domain.ParticipantID, gen uint64, offerSDP string, out Outbound) (Link, error)
}

// Scheduler runs fn after d on the owner's loop. The returned func cancels it.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// Surfaces displays remote streams keyed by the stream's own id.
type Surfaces interface {
	Show(streamID string, remote domain.ParticipantID)
	Release(streamID string)
}

// TrackSource names the outbound video track currently in use.
type TrackSource interface {
	ActiveVideo() webrtc.TrackLocal
}

type entry struct {
	state       State
	link        Link
	linkGen     uint64
	timerGen    uint64
	cancelTimer func()
	streams     map[string]struct{}
}

// Manager owns the remote-participant → link table. It is not goroutine-safe:
// every method must run on the owning event loop.
type Manager struct {
	dialer   Dialer
	sched    Scheduler
	surfaces Surfaces
	video    TrackSource
	audio    webrtc.TrackLocal
	settle   time.Duration

	gen   uint64
	links map[domain.ParticipantID]*entry
}

func NewManager(d Dialer, s Scheduler, surfaces Surfaces, video TrackSource, settle time.Duration) *Manager {
	return &Manager{
		dialer:   d,
		sched:    s,
		surfaces: surfaces,
		video:    video,
		settle:   settle,
		links:    make(map[domain.ParticipantID]*entry),
	}
}

// SetAudio sets the microphone track offered to links created from now on.
func (m *Manager) SetAudio(t webrtc.TrackLocal) { m.audio = t }

func (m *Manager) Handle(ev Event) {
	e, ok := m.links[ev.Remote]
	cur := None
	if ok {
		cur = e.state
		if m.stale(e, ev) {
			log.Debug().Str("module", "peer").Str("remote", string(ev.Remote)).Str("event", ev.Kind.String()).Msg("stale event ignored")
			return
		}
	}

	next, effects := Transition(cur, ev.Kind)
	if !ok {
		if next == None {
			return
		}
		e = &entry{streams: make(map[string]struct{})}
		m.links[ev.Remote] = e
	}
	if next != cur {
		log.Info().Str("module", "peer").Str("remote", string(ev.Remote)).Str("event", ev.Kind.String()).Str("from", cur.String()).Str("to", next.String()).Msg("transition")
	}
	e.state = next

	for _, eff := range effects {
		m.apply(ev, e, eff)
	}
	if e.state == Closed {
		delete(m.links, ev.Remote)
	}
}

func (m *Manager) stale(e *entry, ev Event) bool {
	switch ev.Kind {
	case SettleElapsed:
		return ev.Gen != e.timerGen
	case StreamReceived, LinkClosed:
		return ev.Gen != e.linkGen
	}
	return false
}

func (m *Manager) apply(ev Event, e *entry, eff Effect) {
	remote := ev.Remote
	switch eff {
	case ScheduleCall:
		m.gen++
		gen := m.gen
		e.timerGen = gen
		e.cancelTimer = m.sched.After(m.settle, func() {
			m.Handle(Event{Kind: SettleElapsed, Remote: remote, Gen: gen})
		})
	case CancelTimer:
		if e.cancelTimer != nil {
			e.cancelTimer()
			e.cancelTimer = nil
		}
		e.timerGen = 0
	case PlaceCall:
		e.cancelTimer = nil
		m.open(e, remote, func(gen uint64) (Link, error) {
			return m.dialer.Call(remote, gen, m.outbound())
		})
	case AcceptCall:
		if e.link != nil {
			// the replaced link's streams go away with it
			m.closeLink(e, remote)
			m.releaseStreams(e)
		}
		m.open(e, remote, func(gen uint64) (Link, error) {
			return m.dialer.Answer(remote, gen, ev.SDP, m.outbound())
		})
	case CloseLink:
		m.closeLink(e, remote)
	case ShowStream:
		if _, seen := e.streams[ev.StreamID]; !seen {
			e.streams[ev.StreamID] = struct{}{}
			m.surfaces.Show(ev.StreamID, remote)
		}
	case ReleaseSurfaces:
		m.releaseStreams(e)
	}
}

func (m *Manager) releaseStreams(e *entry) {
	for id := range e.streams {
		m.surfaces.Release(id)
	}
	e.streams = make(map[string]struct{})
}

// open dials and stores the link. A failed dial closes the entry: nothing is retried.
func (m *Manager) open(e *entry, remote domain.ParticipantID, dial func(gen uint64) (Link, error)) {
	m.gen++
	gen := m.gen
	link, err := dial(gen)
	if err != nil {
		log.Warn().Err(err).Str("module", "peer").Str("remote", string(remote)).Msg("dial failed")
		e.state = Closed
		m.releaseStreams(e)
		return
	}
	e.link = link
	e.linkGen = gen
}

func (m *Manager) closeLink(e *entry, remote domain.ParticipantID) {
	if e.link == nil {
		return
	}
	if err := e.link.Close(); err != nil {
		log.Debug().Err(err).Str("module", "peer").Str("remote", string(remote)).Msg("close link")
	}
	e.link = nil
	e.linkGen = 0
}

func (m *Manager) outbound() Outbound {
	out := Outbound{Audio: m.audio}
	if m.video != nil {
		out.Video = m.video.ActiveVideo()
	}
	return out
}

// HandleAnswer completes an outbound call.
func (m *Manager) HandleAnswer(remote domain.ParticipantID, sdp string) error {
	e, ok := m.links[remote]
	if !ok || e.link == nil {
		return ErrNoLink
	}
	return e.link.SetRemoteAnswer(sdp)
}

func (m *Manager) HandleCandidate(remote domain.ParticipantID, raw json.RawMessage) error {
	e, ok := m.links[remote]
	if !ok || e.link == nil {
		return ErrNoLink
	}
	return e.link.AddCandidate(raw)
}

// ReplaceVideo swaps the outbound video of every open link without renegotiation.
func (m *Manager) ReplaceVideo(t webrtc.TrackLocal) error {
	var errs []error
	for remote, e := range m.links {
		if e.link == nil {
			continue
		}
		s := e.link.VideoSender()
		if s == nil {
			continue
		}
		if err := s.ReplaceTrack(t); err != nil {
			log.Warn().Err(err).Str("module", "peer").Str("remote", string(remote)).Msg("replace track")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CloseAll tears down every link and pending call.
func (m *Manager) CloseAll() {
	for remote := range m.links {
		m.Handle(Event{Kind: MemberLeft, Remote: remote})
	}
}

func (m *Manager) State(remote domain.ParticipantID) State {
	if e, ok := m.links[remote]; ok {
		return e.state
	}
	return None
}

type Snapshot struct {
	Remote domain.ParticipantID
	State  State
	Video  webrtc.TrackLocal
}

// Snapshot lists entries sorted by remote id.
func (m *Manager) Snapshot() []Snapshot {
	out := make([]Snapshot, 0, len(m.links))
	for remote, e := range m.links {
		s := Snapshot{Remote: remote, State: e.state}
		if e.link != nil && e.link.VideoSender() != nil {
			s.Video = e.link.VideoSender().Track()
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Remote < out[j].Remote })
	return out
}

func (m *Manager) Count(s State) int {
	n := 0
	for _, e := range m.links {
		if e.state == s {
			n++
		}
	}
	return n
}
