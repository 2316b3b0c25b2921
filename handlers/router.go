package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"htmx-tictactoe/web"
)

// NewRouter wires every route of the game onto a gin engine.
func NewRouter(logger *slog.Logger, h *Handler) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer
	r.StaticFS("/static", http.FS(web.Static()))

	r.GET("/ping", PingHandler)

	// Main pages
	r.GET("/", h.NewGameHandler)
	r.GET("/game/:id", h.GamePageHandler)

	// Game API endpoints
	api := r.Group("/api/game/:id")
	{
		api.POST("/cells", h.CellClickHandler)
		api.POST("/replay", h.ReplayHandler)
		api.GET("/state", h.StateHandler)
		api.GET("/events", h.GameSSEHandler)
	}

	r.GET("/ws/:id", h.WebSocketHandler)

	return r, nil
}

// RequestLogger logs every request through slog.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	log := logger.With("component", "http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		log.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"clientIP", c.ClientIP(),
		)
	}
}

func PingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
