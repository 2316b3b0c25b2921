package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"htmx-tictactoe/models"
)

func dialGame(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg any) WSResponse {
	t.Helper()

	require.NoError(t, conn.WriteJSON(msg))

	var response WSResponse
	require.NoError(t, conn.ReadJSON(&response))
	return response
}

func TestWebSocketHandler(t *testing.T) {
	app := setupRouter(t)
	server := httptest.NewServer(app.router)
	defer server.Close()

	sessionID := app.newGame(t)
	conn := dialGame(t, server, sessionID)

	t.Run("Click returns the effects of the move", func(t *testing.T) {
		response := send(t, conn, map[string]any{"action": "click", "cell": 0})

		require.Empty(t, response.Error)
		assert.Equal(t, []models.Effect{
			{Kind: models.EffectMarkCell, Cell: 0, Mark: models.CellCross},
			{Kind: models.EffectSetTurn, Turn: models.TurnCircle},
		}, response.Effects)
		require.NotNil(t, response.State)
		assert.Equal(t, models.CellCross, response.State.Board[0])
	})

	t.Run("Ignored click returns no effects", func(t *testing.T) {
		response := send(t, conn, map[string]any{"action": "click", "cell": 0})

		require.Empty(t, response.Error)
		assert.Empty(t, response.Effects)
		assert.Equal(t, models.TurnCircle, response.State.Turn)
	})

	t.Run("Unknown action", func(t *testing.T) {
		response := send(t, conn, map[string]any{"action": "undo"})

		assert.Contains(t, response.Error, "unknown action")
	})

	t.Run("Malformed message", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		var response WSResponse
		require.NoError(t, conn.ReadJSON(&response))
		assert.Equal(t, "malformed message", response.Error)
	})

	t.Run("Replay", func(t *testing.T) {
		response := send(t, conn, map[string]any{"action": "replay"})

		require.Empty(t, response.Error)
		assert.Contains(t, response.Effects, models.Effect{Kind: models.EffectHideReplay})
		assert.Equal(t, models.Board{}, response.State.Board)
		assert.Equal(t, models.TurnCross, response.State.Turn)
	})
}

func TestWebSocketHandler_UnknownGame(t *testing.T) {
	app := setupRouter(t)
	server := httptest.NewServer(app.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
