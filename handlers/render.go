package handlers

import (
	"fmt"
	"html"
	"strings"

	"htmx-tictactoe/models"
	"htmx-tictactoe/view"
)

// renderGameHTML renders the #game fragment of a session. Clicks on the
// cell list are delegated: one listener on the list, the cell is resolved
// from data-idx of the clicked item.
func renderGameHTML(session *models.Session) string {
	var b strings.Builder
	v := session.View

	b.WriteString(`<div id="game" class="game">`)

	b.WriteString(`<div class="game-status">`)
	fmt.Fprintf(&b, `<p>Turn: <span id="current-turn" class="%s"></span></p>`, html.EscapeString(v.TurnClass))
	fmt.Fprintf(&b, `<p id="game-status">%s</p>`, html.EscapeString(v.StatusText))
	b.WriteString(`</div>`)

	fmt.Fprintf(&b, `<ul id="cell-list" hx-post="/api/game/%s/cells" hx-trigger="click target:li" hx-vals='js:{idx: event.target.dataset.idx}' hx-target="#game" hx-swap="outerHTML">`, session.ID)
	for idx, class := range v.Cells {
		fmt.Fprintf(&b, `<li class="%s" data-idx="%d"></li>`, html.EscapeString(class), idx)
	}
	b.WriteString(`</ul>`)

	fmt.Fprintf(&b, `<button id="replay-game" class="%s" hx-post="/api/game/%s/replay" hx-target="#game" hx-swap="outerHTML">Replay</button>`,
		view.ReplayClass(v.ReplayVisible), session.ID)

	b.WriteString(`</div>`)
	return b.String()
}
