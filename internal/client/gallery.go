package client

import (
	"sort"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

// Gallery is the set of display surfaces: one per remote stream id, plus the local preview.
type Gallery struct {
	remote map[string]domain.ParticipantID
	local  webrtc.TrackLocal
}

func NewGallery() *Gallery {
	return &Gallery{remote: make(map[string]domain.ParticipantID)}
}

// Show is a no-op for a stream id that already has a surface.
func (g *Gallery) Show(streamID string, remote domain.ParticipantID) {
	if _, ok := g.remote[streamID]; ok {
		return
	}
	g.remote[streamID] = remote
	log.Info().Str("module", "client").Str("stream", streamID).Str("remote", string(remote)).Msg("surface added")
}

func (g *Gallery) Release(streamID string) {
	delete(g.remote, streamID)
}

func (g *Gallery) ShowLocal(t webrtc.TrackLocal) { g.local = t }

func (g *Gallery) Local() webrtc.TrackLocal { return g.local }

func (g *Gallery) Streams() []string {
	out := make([]string, 0, len(g.remote))
	for id := range g.remote {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
