package http

import (
	"context"
	"net/http"

	"github.com/dkeye/Collab/internal/adapters/signal"
	"github.com/dkeye/Collab/internal/app/relay"
	"github.com/dkeye/Collab/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(ctx context.Context, cfg *config.Config, rl *relay.Relay) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("CollabSessions", store))

	index := func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	}
	r.Static("/static", cfg.StaticPath)
	r.GET("/", index)
	r.GET("/room/:id", index)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": rl.Sessions.Count()})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	h := &handlers{relay: rl}
	api := r.Group("/api")
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:id/members", h.roomMembers)
	api.GET("/me", h.getMe)
	api.PUT("/me", h.putMe)

	ctrl := signal.NewSignalWSController(rl, signal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
		ChatLimit:  cfg.ChatLimit,
		ChatWindow: cfg.ChatWindow,
	})
	api.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
