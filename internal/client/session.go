// Package client runs one participant: relay channel, peer links, shared board and chat,
// all driven from a single event loop.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Collab/internal/board"
	"github.com/dkeye/Collab/internal/chat"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/dkeye/Collab/internal/media"
	"github.com/dkeye/Collab/internal/peer"
	"github.com/dkeye/Collab/internal/share"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrRelayClosed = errors.New("relay connection closed")
	ErrStopped     = errors.New("session stopped")
)

// Relay is the participant's relay channel. Methods are safe from any goroutine.
type Relay interface {
	Send(domain.Envelope) error
	Emit(typ string, data any) error
	Signal(to domain.ParticipantID, p domain.SignalPayload) error
	Incoming() <-chan domain.Envelope
	Close()
}

// DialerFunc builds the link dialer; notify hands link events back to the session loop.
type DialerFunc func(notify func(peer.Event)) peer.Dialer

type Options struct {
	Room        domain.RoomID
	User        string
	SettleDelay time.Duration
}

type Session struct {
	relay Relay
	local *media.LocalMedia
	opts  Options

	peers    *peer.Manager
	share    *share.Controller
	canvas   *board.Canvas
	board    *board.Board
	composer *chat.Composer
	feed     *chat.Feed
	gallery  *Gallery

	self   domain.ParticipantID
	joined bool

	posts   chan func()
	notices chan Notice
	stopped chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
}

func New(relay Relay, dial DialerFunc, local *media.LocalMedia, capturer share.Capturer, opts Options) *Session {
	if local == nil {
		local = &media.LocalMedia{}
	}
	s := &Session{
		relay:   relay,
		local:   local,
		opts:    opts,
		canvas:  board.NewCanvas(),
		feed:    chat.NewFeed(opts.User),
		gallery: NewGallery(),
		posts:   make(chan func(), 256),
		notices: make(chan Notice, 64),
		stopped: make(chan struct{}),
	}
	s.board = board.New(s.canvas, relay)
	s.composer = chat.NewComposer(opts.User, relay, 0)
	s.peers = peer.NewManager(dial(s.notifyLink), loopScheduler{s}, s.gallery, activeVideo{s}, opts.SettleDelay)
	s.peers.SetAudio(local.Audio())
	s.share = share.NewController(local.Video(), capturer, s.peers, s.gallery, s.post)
	s.gallery.ShowLocal(local.Video())
	return s
}

// Run serves the loop until ctx ends, Leave is called or the relay goes away.
// On the way out every link is closed and every local track stopped.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-s.relay.Incoming():
			if !ok {
				s.notify(NoticeWarn, "relay connection lost")
				return ErrRelayClosed
			}
			s.dispatch(env)
		case fn := <-s.posts:
			fn()
		}
	}
}

// Leave ends Run.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Session) Notices() <-chan Notice { return s.notices }

func (s *Session) Done() <-chan struct{} { return s.stopped }

func (s *Session) shutdown() {
	if s.joined {
		_ = s.relay.Send(domain.Envelope{Type: domain.EventLeaveRoom, Room: s.opts.Room})
	}
	if s.share.Sharing() {
		_ = s.share.StopShare()
	}
	s.peers.CloseAll()
	s.local.Stop()
	s.relay.Close()
	close(s.stopped)
	log.Info().Str("module", "client").Str("room", string(s.opts.Room)).Msg("session closed")
}

// post runs fn on the loop. It never blocks once the session has stopped.
func (s *Session) post(fn func()) {
	select {
	case s.posts <- fn:
	case <-s.stopped:
	}
}

// call runs fn on the loop and waits for its result.
func (s *Session) call(fn func() error) error {
	res := make(chan error, 1)
	s.post(func() { res <- fn() })
	select {
	case err := <-res:
		return err
	case <-s.stopped:
		return ErrStopped
	}
}

func (s *Session) notifyLink(ev peer.Event) {
	s.post(func() { s.peers.Handle(ev) })
}

type loopScheduler struct{ s *Session }

func (l loopScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, func() { l.s.post(fn) })
	return func() { t.Stop() }
}

type activeVideo struct{ s *Session }

func (a activeVideo) ActiveVideo() webrtc.TrackLocal { return a.s.share.ActiveVideo() }
