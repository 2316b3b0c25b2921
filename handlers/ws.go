package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"htmx-tictactoe/game"
	"htmx-tictactoe/models"
)

// WSResponse answers one command received over the websocket.
type WSResponse struct {
	Action  string            `json:"action"`
	Effects []models.Effect   `json:"effects"`
	State   *models.GameState `json:"state,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// WebSocketHandler accepts commands as JSON messages and answers each one
// with the effects it produced. Ignored clicks answer with an empty effect
// list.
func (that *Handler) WebSocketHandler(c *gin.Context) {
	sessionID := c.Param("id")
	log := that.logger.With("method", "WebSocketHandler", "sessionID", sessionID)

	if _, err := that.store.Get(c.Request.Context(), sessionID); err != nil {
		that.abortWithError(c, err)
		return
	}

	conn, err := that.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	log.Info("WebSocket connection established")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err := conn.WriteJSON(WSResponse{Error: "malformed message"}); err != nil {
				return
			}
			continue
		}

		response := WSResponse{Action: cmd.Action, Effects: []models.Effect{}}

		session, effects, err := that.Dispatch(c.Request.Context(), sessionID, cmd)
		switch {
		case err == nil:
			response.State = &session.State
			if effects != nil {
				response.Effects = effects
			}
		case errors.Is(err, game.ErrSessionNotFound):
			_ = conn.WriteJSON(WSResponse{Action: cmd.Action, Error: "Game not found"})
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session expired"))
			return
		case errors.Is(err, ErrUnknownAction):
			response.Error = err.Error()
		default:
			log.Error("error processing message", "error", err)
			response.Error = http.StatusText(http.StatusInternalServerError)
		}

		if err := conn.WriteJSON(response); err != nil {
			log.Error("failed to send response", "error", err)
			return
		}
	}
}
