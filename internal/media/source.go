package media

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog"
)

type TrackState int32

const (
	TrackStateLive TrackState = iota
	TrackStateMuted
	TrackStateStopped
)

// frames yields encoded samples with their play duration. A zero duration marks a non-media unit.
type frames interface {
	next() ([]byte, time.Duration, error)
	rewind() error
	close() error
}

// Source feeds a local track from a file until stopped. Muted sources keep pacing but write nothing.
type Source struct {
	track *webrtc.TrackLocalStaticSample
	state atomic.Int32

	cancel context.CancelFunc
	ended  chan struct{}
}

func newSource(ctx context.Context, track *webrtc.TrackLocalStaticSample, in frames, repeat bool, logger zerolog.Logger) *Source {
	ctx, cancel := context.WithCancel(ctx)
	s := &Source{track: track, cancel: cancel, ended: make(chan struct{})}
	go s.loop(ctx, in, repeat, logger)
	return s
}

func (s *Source) Track() webrtc.TrackLocal { return s.track }

// Ended is closed once the feeder stops, by Stop or by running out of input.
func (s *Source) Ended() <-chan struct{} { return s.ended }

func (s *Source) Stop() {
	s.state.Store(int32(TrackStateStopped))
	s.cancel()
}

func (s *Source) GetState() TrackState { return TrackState(s.state.Load()) }

// Toggle flips mute and reports whether the source is now live.
func (s *Source) Toggle() bool {
	if s.state.CompareAndSwap(int32(TrackStateLive), int32(TrackStateMuted)) {
		return false
	}
	return s.state.CompareAndSwap(int32(TrackStateMuted), int32(TrackStateLive))
}

func (s *Source) loop(ctx context.Context, in frames, repeat bool, logger zerolog.Logger) {
	defer func() {
		s.state.Store(int32(TrackStateStopped))
		if err := in.close(); err != nil {
			logger.Debug().Err(err).Msg("close input")
		}
		close(s.ended)
		logger.Info().Msg("source stopped")
	}()

	pace := time.NewTimer(0)
	defer pace.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pace.C:
		}

		data, d, err := in.next()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if !repeat {
				return
			}
			if err := in.rewind(); err != nil {
				logger.Error().Err(err).Msg("rewind failed, stopping")
				return
			}
			pace.Reset(0)
			continue
		}
		if err != nil {
			logger.Error().Err(err).Msg("read sample, stopping")
			return
		}
		if d > 0 && s.GetState() == TrackStateLive {
			if err := s.track.WriteSample(media.Sample{Data: data, Duration: d}); err != nil {
				logger.Debug().Err(err).Msg("write sample")
			}
		}
		pace.Reset(d)
	}
}
