package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
	"github.com/pion/webrtc/v4/pkg/media/oggreader"
)

var ErrUnsupportedCodec = errors.New("unsupported codec")

const defaultFrameDuration = 33 * time.Millisecond

type ivfFrames struct {
	f        *os.File
	r        *ivfreader.IVFReader
	duration time.Duration
}

// openIVF returns the reader and the mime type of its codec.
func openIVF(path string) (*ivfFrames, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	r, hdr, err := ivfreader.NewWith(f)
	if err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("ivf header: %w", err)
	}

	var mime string
	switch hdr.FourCC {
	case "VP80":
		mime = webrtc.MimeTypeVP8
	case "VP90":
		mime = webrtc.MimeTypeVP9
	case "AV01":
		mime = webrtc.MimeTypeAV1
	default:
		_ = f.Close()
		return nil, "", fmt.Errorf("%s: %w", hdr.FourCC, ErrUnsupportedCodec)
	}

	d := defaultFrameDuration
	if hdr.TimebaseDenominator > 0 && hdr.TimebaseNumerator > 0 {
		d = time.Duration(float64(hdr.TimebaseNumerator) / float64(hdr.TimebaseDenominator) * float64(time.Second))
	}
	return &ivfFrames{f: f, r: r, duration: d}, mime, nil
}

func (v *ivfFrames) next() ([]byte, time.Duration, error) {
	frame, _, err := v.r.ParseNextFrame()
	if err != nil {
		return nil, 0, err
	}
	return frame, v.duration, nil
}

func (v *ivfFrames) rewind() error {
	if _, err := v.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r, _, err := ivfreader.NewWith(v.f)
	if err != nil {
		return err
	}
	v.r = r
	return nil
}

func (v *ivfFrames) close() error { return v.f.Close() }

// oggPages reads Opus pages; duration comes from the granule position at 48kHz.
type oggPages struct {
	f           *os.File
	r           *oggreader.OggReader
	lastGranule uint64
}

func openOgg(path string) (*oggPages, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, _, err := oggreader.NewWith(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("ogg header: %w", err)
	}
	return &oggPages{f: f, r: r}, nil
}

func (o *oggPages) next() ([]byte, time.Duration, error) {
	page, hdr, err := o.r.ParseNextPage()
	if err != nil {
		return nil, 0, err
	}
	if hdr.GranulePosition < o.lastGranule {
		o.lastGranule = 0
	}
	samples := hdr.GranulePosition - o.lastGranule
	o.lastGranule = hdr.GranulePosition
	return page, time.Duration(float64(samples) / 48000 * float64(time.Second)), nil
}

func (o *oggPages) rewind() error {
	if _, err := o.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	r, _, err := oggreader.NewWith(o.f)
	if err != nil {
		return err
	}
	o.r = r
	o.lastGranule = 0
	return nil
}

func (o *oggPages) close() error { return o.f.Close() }
