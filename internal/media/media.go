// Package media owns the local tracks: camera, microphone and screen capture, all fed from files.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Collab/internal/share"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoCamera     = errors.New("no camera")
	ErrNoMicrophone = errors.New("no microphone")
	ErrNoScreen     = errors.New("no screen source")
)

type Options struct {
	Camera     string
	Microphone string
	Screen     string
	StreamID   string
}

// LocalMedia holds whichever devices could be acquired. Either may be nil.
type LocalMedia struct {
	Camera     *Source
	Microphone *Source
}

// Open acquires every configured device. Failures are returned one per device and
// never stop the others.
func Open(ctx context.Context, opts Options) (*LocalMedia, []error) {
	m := &LocalMedia{}
	var errs []error

	if cam, err := OpenVideo(ctx, opts.Camera, "camera", opts.StreamID, true); err != nil {
		errs = append(errs, fmt.Errorf("camera: %w", err))
	} else {
		m.Camera = cam
	}
	if mic, err := OpenAudio(ctx, opts.Microphone, "microphone", opts.StreamID); err != nil {
		errs = append(errs, fmt.Errorf("microphone: %w", err))
	} else {
		m.Microphone = mic
	}
	return m, errs
}

func OpenVideo(ctx context.Context, path, id, streamID string, repeat bool) (*Source, error) {
	if path == "" {
		return nil, ErrNoCamera
	}
	in, mime, err := openIVF(path)
	if err != nil {
		return nil, err
	}
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: mime}, id, streamID)
	if err != nil {
		_ = in.close()
		return nil, err
	}
	logger := log.With().Str("module", "media").Str("track", id).Logger()
	return newSource(ctx, track, in, repeat, logger), nil
}

func OpenAudio(ctx context.Context, path, id, streamID string) (*Source, error) {
	if path == "" {
		return nil, ErrNoMicrophone
	}
	in, err := openOgg(path)
	if err != nil {
		return nil, err
	}
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, id, streamID)
	if err != nil {
		_ = in.close()
		return nil, err
	}
	logger := log.With().Str("module", "media").Str("track", id).Logger()
	return newSource(ctx, track, in, true, logger), nil
}

// Video returns the camera track or a nil interface.
func (m *LocalMedia) Video() webrtc.TrackLocal {
	if m.Camera == nil {
		return nil
	}
	return m.Camera.Track()
}

func (m *LocalMedia) Audio() webrtc.TrackLocal {
	if m.Microphone == nil {
		return nil
	}
	return m.Microphone.Track()
}

// ToggleAudio reports whether the microphone is live afterwards.
func (m *LocalMedia) ToggleAudio() (bool, error) {
	if m.Microphone == nil {
		return false, ErrNoMicrophone
	}
	return m.Microphone.Toggle(), nil
}

func (m *LocalMedia) ToggleVideo() (bool, error) {
	if m.Camera == nil {
		return false, ErrNoCamera
	}
	return m.Camera.Toggle(), nil
}

// Stop releases every local track.
func (m *LocalMedia) Stop() {
	if m.Camera != nil {
		m.Camera.Stop()
	}
	if m.Microphone != nil {
		m.Microphone.Stop()
	}
}

// FileCapturer plays an IVF file once as a screen capture; reaching its end looks like the
// user pressing the system "stop sharing" control.
type FileCapturer struct {
	Path     string
	StreamID string
}

func (c FileCapturer) Capture(ctx context.Context) (share.Capture, error) {
	if c.Path == "" {
		return nil, ErrNoScreen
	}
	src, err := OpenVideo(ctx, c.Path, "screen", c.StreamID, false)
	if err != nil {
		return nil, err
	}
	return src, nil
}
