package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/dkeye/Collab/internal/peer"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// WebRTCConnection is one peer.Link. Remote candidates that arrive before the remote
// description are held until it is set.
type WebRTCConnection struct {
	pc     *webrtc.PeerConnection
	remote domain.ParticipantID
	gen    uint64
	video  *webrtc.RTPSender

	mu      sync.Mutex
	pending []webrtc.ICECandidateInit
	haveSDP bool

	closeOnce sync.Once
	notify    func(peer.Event)
}

func newWebRTCConnection(cfg webrtc.Configuration, remote domain.ParticipantID, gen uint64, notify func(peer.Event)) (*WebRTCConnection, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &WebRTCConnection{pc: pc, remote: remote, gen: gen, notify: notify}, nil
}

// addOutbound attaches the local tracks. A video slot always exists, so a later
// share can swap into it without renegotiation.
func (c *WebRTCConnection) addOutbound(out peer.Outbound) error {
	if out.Audio != nil {
		if _, err := c.pc.AddTrack(out.Audio); err != nil {
			return fmt.Errorf("add audio: %w", err)
		}
	} else if _, err := c.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		return fmt.Errorf("add audio transceiver: %w", err)
	}

	if out.Video != nil {
		sender, err := c.pc.AddTrack(out.Video)
		if err != nil {
			return fmt.Errorf("add video: %w", err)
		}
		c.video = sender
		return nil
	}
	tr, err := c.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionSendrecv,
	})
	if err != nil {
		return fmt.Errorf("add video transceiver: %w", err)
	}
	c.video = tr.Sender()
	return nil
}

func (c *WebRTCConnection) start(onICE func(webrtc.ICECandidateInit)) {
	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "webrtc").Str("remote", string(c.remote)).Str("ice_state", s.String()).Msg("ICE state")
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "webrtc").Str("remote", string(c.remote)).Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed || s == webrtc.PeerConnectionStateClosed {
			c.closeOnce.Do(func() {
				c.notify(peer.Event{Kind: peer.LinkClosed, Remote: c.remote, Gen: c.gen})
			})
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil {
			onICE(cand.ToJSON())
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "webrtc").
			Str("remote", string(c.remote)).
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("OnTrack received")
		c.notify(peer.Event{Kind: peer.StreamReceived, Remote: c.remote, Gen: c.gen, StreamID: track.StreamID()})
		go drain(track)
	})
}

// drain consumes a remote track; a headless participant has nowhere to play it.
func drain(track *webrtc.TrackRemote) {
	for {
		if _, _, err := track.ReadRTP(); err != nil {
			return
		}
	}
}

func (c *WebRTCConnection) createOffer() (string, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return "", fmt.Errorf("create offer: %w", err)
	}
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return "", fmt.Errorf("set local description: %w", err)
	}
	return offer.SDP, nil
}

func (c *WebRTCConnection) applyOfferAndCreateAnswer(sdp string) (string, error) {
	if err := c.setRemote(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp}); err != nil {
		return "", err
	}
	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return "", fmt.Errorf("create answer: %w", err)
	}
	if err := c.pc.SetLocalDescription(answer); err != nil {
		return "", fmt.Errorf("set local description: %w", err)
	}
	return answer.SDP, nil
}

func (c *WebRTCConnection) setRemote(desc webrtc.SessionDescription) error {
	if err := c.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	c.mu.Lock()
	c.haveSDP = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, ci := range pending {
		if err := c.pc.AddICECandidate(ci); err != nil {
			log.Debug().Err(err).Str("module", "webrtc").Str("remote", string(c.remote)).Msg("buffered candidate")
		}
	}
	return nil
}

func (c *WebRTCConnection) VideoSender() peer.VideoSender {
	if c.video == nil {
		return nil
	}
	return c.video
}

func (c *WebRTCConnection) SetRemoteAnswer(sdp string) error {
	return c.setRemote(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp})
}

func (c *WebRTCConnection) AddCandidate(raw json.RawMessage) error {
	var ci webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &ci); err != nil {
		return fmt.Errorf("parse ICE candidate: %w", err)
	}
	c.mu.Lock()
	if !c.haveSDP {
		c.pending = append(c.pending, ci)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.pc.AddICECandidate(ci)
}

func (c *WebRTCConnection) Close() error {
	err := c.pc.Close()
	if err != nil && !errors.Is(err, webrtc.ErrConnectionClosed) {
		log.Error().Err(err).Str("module", "webrtc").Str("remote", string(c.remote)).Msg("close error")
		return err
	}
	log.Info().Str("module", "webrtc").Str("remote", string(c.remote)).Msg("closed")
	return nil
}
