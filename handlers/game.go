package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"htmx-tictactoe/events"
	"htmx-tictactoe/game"
	"htmx-tictactoe/models"
	"htmx-tictactoe/view"
)

const (
	ActionClick  = "click"
	ActionReplay = "replay"
)

var ErrUnknownAction = errors.New("unknown action")

// Command is one user input: a click on a cell or on the replay control.
type Command struct {
	Action string `json:"action"`
	Cell   *int   `json:"cell,omitempty"`
}

// Handler serves the game pages and the commands of the view.
type Handler struct {
	logger    *slog.Logger
	store     game.Store
	hub       *events.Hub
	keepAlive time.Duration
	upgrader  websocket.Upgrader
}

const defaultKeepAlive = 15 * time.Second

func New(logger *slog.Logger, store game.Store, hub *events.Hub, keepAlive time.Duration) *Handler {
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}

	return &Handler{
		logger:    logger.With("component", "handlers"),
		store:     store,
		hub:       hub,
		keepAlive: keepAlive,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// NewGameHandler starts a fresh session on every page load.
func (that *Handler) NewGameHandler(c *gin.Context) {
	session := game.NewSession(view.Initial())

	if err := that.store.Create(c.Request.Context(), session); err != nil {
		that.logger.Error("failed to create session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start game"})
		return
	}

	that.logger.Info("new game", "sessionID", session.ID)
	that.renderPage(c, session)
}

// GamePageHandler renders an existing session, e.g. in a second tab.
func (that *Handler) GamePageHandler(c *gin.Context) {
	session, err := that.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, game.ErrSessionNotFound) {
		c.HTML(http.StatusNotFound, "404.html", gin.H{
			"Title": "Game Not Found",
		})
		return
	}
	if err != nil {
		that.logger.Error("failed to get session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load game"})
		return
	}

	that.renderPage(c, session)
}

func (that *Handler) renderPage(c *gin.Context, session *models.Session) {
	c.HTML(http.StatusOK, "game.html", gin.H{
		"Title":     "Tic-Tac-Toe",
		"SessionID": session.ID,
		"Game":      renderGameHTML(session),
	})
}

// CellClickHandler resolves the clicked cell from the idx form value. Input
// that does not resolve to a playable cell is dropped with 204, so htmx
// leaves the page as it is.
func (that *Handler) CellClickHandler(c *gin.Context) {
	sessionID := c.Param("id")

	idx, err := strconv.Atoi(c.PostForm("idx"))
	if err != nil {
		that.logger.Debug("click outside a cell ignored", "sessionID", sessionID, "idx", c.PostForm("idx"))
		c.Status(http.StatusNoContent)
		return
	}

	that.logger.Debug("click", "sessionID", sessionID, "idx", idx)
	that.respond(c, sessionID, Command{Action: ActionClick, Cell: &idx})
}

// ReplayHandler resets the game of a session.
func (that *Handler) ReplayHandler(c *gin.Context) {
	that.respond(c, c.Param("id"), Command{Action: ActionReplay})
}

// StateHandler returns the session as JSON.
func (that *Handler) StateHandler(c *gin.Context) {
	session, err := that.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":  session.State,
		"view":   session.View,
		"result": game.Evaluate(session.State.Board),
	})
}

func (that *Handler) respond(c *gin.Context, sessionID string, cmd Command) {
	session, effects, err := that.Dispatch(c.Request.Context(), sessionID, cmd)
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	if len(effects) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Content-Type", "text/html")
	c.String(http.StatusOK, renderGameHTML(session))
}

// Dispatch runs a command against the stored session, applies the effects
// to its view and publishes the new fragment to the session's subscribers.
// Ignored input returns no effects and leaves the session unchanged.
func (that *Handler) Dispatch(ctx context.Context, sessionID string, cmd Command) (*models.Session, []models.Effect, error) {
	var effects []models.Effect

	session, err := that.store.Update(ctx, sessionID, func(session *models.Session) error {
		var next models.GameState

		switch cmd.Action {
		case ActionClick:
			if cmd.Cell == nil {
				return nil
			}
			next, effects = game.Move(session.State, *cmd.Cell)
		case ActionReplay:
			next, effects = game.Replay(session.State)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
		}

		if len(effects) == 0 {
			return nil
		}

		if err := view.Apply(&session.View, effects); err != nil {
			return fmt.Errorf("failed to apply effects: %w", err)
		}
		session.State = next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if len(effects) > 0 {
		that.hub.Broadcast(updateEvent(session))
		if session.State.Status.IsTerminal() && cmd.Action == ActionClick {
			that.logger.Info("game over", "sessionID", session.ID, "status", session.State.Status)
		}
	}

	return session, effects, nil
}

func (that *Handler) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.Is(err, ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, view.ErrInvalidWinPositions):
		that.logger.Error("contract violation while rendering", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		that.logger.Error("failed to handle request", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// updateEvent carries the rendered fragment of a session. Broadcasts run
// after the store released the session, so they can arrive out of commit
// order; Version lets streams drop the older ones.
func updateEvent(session *models.Session) models.GameEvent {
	return models.GameEvent{
		Type:      "update",
		SessionID: session.ID,
		Version:   session.Version,
		Data:      renderGameHTML(session),
	}
}

func renderEvent(c *gin.Context, event models.GameEvent) {
	c.Render(-1, sse.Event{
		Id:    strconv.FormatInt(event.Version, 10),
		Event: event.Type,
		Data:  event.Data,
	})
}

// GameSSEHandler streams rendered fragments of a session to one browser tab.
// The current fragment is sent first, so moves made between the page render
// and the connect are not lost.
func (that *Handler) GameSSEHandler(c *gin.Context) {
	sessionID := c.Param("id")

	subscriber := that.hub.Subscribe(c.Request.Context(), sessionID)
	defer that.hub.Unsubscribe(subscriber)

	session, err := that.store.Get(c.Request.Context(), sessionID)
	if err != nil {
		that.abortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	initial := updateEvent(session)
	lastVersion := initial.Version
	renderEvent(c, initial)
	c.Writer.Flush()

	keepAlive := time.NewTicker(that.keepAlive)
	defer keepAlive.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case event, ok := <-subscriber.Channel:
			if !ok {
				return false
			}
			if event.Version <= lastVersion {
				that.logger.Debug("stale event dropped", "sessionID", sessionID, "version", event.Version, "last", lastVersion)
				return true
			}
			lastVersion = event.Version
			renderEvent(c, event)
			return true
		case <-keepAlive.C:
			c.Render(-1, sse.Event{Event: "ping", Data: "ping"})
			return true
		case <-subscriber.Context.Done():
			return false
		}
	})
}
