// Package rtc opens peer media links with pion and runs their handshake over the relay.
package rtc

import (
	"encoding/json"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/dkeye/Collab/internal/peer"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Signaler sends a handshake frame to one member of the current room. Called from pion goroutines.
type Signaler interface {
	Signal(to domain.ParticipantID, p domain.SignalPayload) error
}

type Dialer struct {
	cfg    webrtc.Configuration
	sig    Signaler
	notify func(peer.Event)
}

// NewDialer: notify receives link events from pion goroutines and must hand them to the owner's loop.
func NewDialer(iceServers []string, sig Signaler, notify func(peer.Event)) *Dialer {
	cfg := webrtc.Configuration{}
	if len(iceServers) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: iceServers}}
	}
	return &Dialer{cfg: cfg, sig: sig, notify: notify}
}

func (d *Dialer) Call(remote domain.ParticipantID, gen uint64, out peer.Outbound) (peer.Link, error) {
	c, err := d.open(remote, gen, out)
	if err != nil {
		return nil, err
	}
	sdp, err := c.createOffer()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := d.sig.Signal(remote, domain.SignalPayload{Kind: domain.SignalOffer, SDP: sdp}); err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Info().Str("module", "webrtc").Str("remote", string(remote)).Msg("offer sent")
	return c, nil
}

func (d *Dialer) Answer(remote domain.ParticipantID, gen uint64, offerSDP string, out peer.Outbound) (peer.Link, error) {
	c, err := d.open(remote, gen, out)
	if err != nil {
		return nil, err
	}
	sdp, err := c.applyOfferAndCreateAnswer(offerSDP)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := d.sig.Signal(remote, domain.SignalPayload{Kind: domain.SignalAnswer, SDP: sdp}); err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Info().Str("module", "webrtc").Str("remote", string(remote)).Msg("answer sent")
	return c, nil
}

func (d *Dialer) open(remote domain.ParticipantID, gen uint64, out peer.Outbound) (*WebRTCConnection, error) {
	c, err := newWebRTCConnection(d.cfg, remote, gen, d.notify)
	if err != nil {
		return nil, err
	}
	if err := c.addOutbound(out); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.start(func(ci webrtc.ICECandidateInit) {
		raw, err := json.Marshal(ci)
		if err != nil {
			return
		}
		if err := d.sig.Signal(remote, domain.SignalPayload{Kind: domain.SignalCandidate, Candidate: raw}); err != nil {
			log.Debug().Err(err).Str("module", "webrtc").Str("remote", string(remote)).Msg("candidate not sent")
		}
	})
	return c, nil
}
