package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/auth"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/store"
)

// NewServer builds the HTTP server: auth endpoints, the room admin surface
// and the websocket relay endpoint.
func NewServer(coordinator *core.Coordinator, registry *core.Registry, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	apiHandlers := NewAPIHandlers(authService, logger)
	router.POST("/api/register", apiHandlers.Register)
	router.POST("/api/login", apiHandlers.Login)
	router.POST("/api/guest", apiHandlers.GuestLogin)

	roomHandlers := NewRoomHandlers(registry, st, logger)
	authorized := router.Group("/api", AuthMiddleware(authService, logger))
	authorized.POST("/rooms", roomHandlers.CreateRoom)
	authorized.GET("/rooms", roomHandlers.ListRooms)
	authorized.GET("/rooms/:id", roomHandlers.GetRoom)
	authorized.GET("/rooms/:id/messages", roomHandlers.ListMessages)

	wsHandler := NewWSHandler(coordinator, registry, authService, cfg, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
