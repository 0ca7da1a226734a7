// Package share swaps the outbound video between camera and screen capture on every link at once.
package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrAlreadySharing = errors.New("already sharing")
	ErrNotSharing     = errors.New("not sharing")
)

// Capture is a running screen capture. Ended is closed when the capture stops for any reason.
type Capture interface {
	Track() webrtc.TrackLocal
	Ended() <-chan struct{}
	Stop()
}

type Capturer interface {
	Capture(ctx context.Context) (Capture, error)
}

// Substituter replaces the outbound video on every open link.
type Substituter interface {
	ReplaceVideo(webrtc.TrackLocal) error
}

// Preview shows the local outbound video.
type Preview interface {
	ShowLocal(webrtc.TrackLocal)
}

// Controller is loop-owned like the peer manager. post must run fn on that loop;
// it is how a capture that ends by itself gets turned into StopShare.
type Controller struct {
	camera   webrtc.TrackLocal
	capturer Capturer
	links    Substituter
	preview  Preview
	post     func(func())

	screen Capture
	stop   chan struct{}
}

func NewController(camera webrtc.TrackLocal, c Capturer, links Substituter, p Preview, post func(func())) *Controller {
	return &Controller{camera: camera, capturer: c, links: links, preview: p, post: post}
}

func (c *Controller) Sharing() bool { return c.screen != nil }

// ActiveVideo is the track new links must send.
func (c *Controller) ActiveVideo() webrtc.TrackLocal {
	if c.screen != nil {
		return c.screen.Track()
	}
	return c.camera
}

func (c *Controller) ShareScreen(ctx context.Context) error {
	if c.screen != nil {
		return ErrAlreadySharing
	}
	if c.capturer == nil {
		return fmt.Errorf("screen capture: %w", errors.ErrUnsupported)
	}
	capture, err := c.capturer.Capture(ctx)
	if err != nil {
		return fmt.Errorf("screen capture: %w", err)
	}

	c.screen = capture
	c.stop = make(chan struct{})
	if err := c.links.ReplaceVideo(capture.Track()); err != nil {
		log.Warn().Err(err).Str("module", "share").Msg("some links kept the old track")
	}
	c.preview.ShowLocal(capture.Track())
	go c.watch(capture, c.stop)

	log.Info().Str("module", "share").Msg("screen share started")
	return nil
}

func (c *Controller) StopShare() error {
	if c.screen == nil {
		return ErrNotSharing
	}
	capture := c.screen
	c.screen = nil
	close(c.stop)

	if err := c.links.ReplaceVideo(c.camera); err != nil {
		log.Warn().Err(err).Str("module", "share").Msg("some links kept the screen track")
	}
	capture.Stop()
	c.preview.ShowLocal(c.camera)

	log.Info().Str("module", "share").Msg("screen share stopped")
	return nil
}

func (c *Controller) Toggle(ctx context.Context) error {
	if c.screen != nil {
		return c.StopShare()
	}
	return c.ShareScreen(ctx)
}

// watch turns an external end of the capture into StopShare on the owner's loop.
func (c *Controller) watch(capture Capture, stop <-chan struct{}) {
	select {
	case <-stop:
	case <-capture.Ended():
		c.post(func() {
			if c.screen != capture {
				return
			}
			log.Info().Str("module", "share").Msg("capture ended")
			_ = c.StopShare()
		})
	}
}
