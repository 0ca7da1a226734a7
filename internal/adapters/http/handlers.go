package http

import (
	"net/http"
	"strings"

	"github.com/dkeye/Collab/internal/app/relay"
	"github.com/dkeye/Collab/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionUserKey = "user"

type handlers struct {
	relay *relay.Relay
}

type MeRequest struct {
	Name string `json:"name"`
}

type MeResponse struct {
	Name string `json:"name"`
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.relay.Rooms.List()})
}

func (h *handlers) roomMembers(c *gin.Context) {
	room := domain.RoomID(c.Param("id"))
	if err := room.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	members := h.relay.Rooms.Members(room)
	ids := make([]domain.ParticipantID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.MediaID)
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "members": ids})
}

// getMe returns the display label kept in the cookie session. It is a label, not an identity.
func (h *handlers) getMe(c *gin.Context) {
	s := sessions.Default(c)
	name, _ := s.Get(sessionUserKey).(string)
	if name == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no display name"})
		return
	}
	c.JSON(http.StatusOK, MeResponse{Name: name})
}

func (h *handlers) putMe(c *gin.Context) {
	var req MeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > domain.MaxUsernameLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}
	s := sessions.Default(c)
	s.Set(sessionUserKey, name)
	if err := s.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session save failed"})
		return
	}
	c.JSON(http.StatusOK, MeResponse{Name: name})
}
