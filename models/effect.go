package models

// EffectKind names one visible change the view has to apply.
type EffectKind string

const (
	EffectMarkCell       EffectKind = "mark_cell"
	EffectSetTurn        EffectKind = "set_turn"
	EffectSetStatus      EffectKind = "set_status"
	EffectHighlightCells EffectKind = "highlight_cells"
	EffectShowReplay     EffectKind = "show_replay"
	EffectHideReplay     EffectKind = "hide_replay"
	EffectClearBoard     EffectKind = "clear_board"
)

// Effect is a single render instruction produced by a state transition.
// Only the fields relevant to Kind are set.
type Effect struct {
	Kind      EffectKind `json:"kind"`
	Cell      int        `json:"cell"`
	Mark      Cell       `json:"mark,omitempty"`
	Turn      Turn       `json:"turn,omitempty"`
	Status    GameStatus `json:"status,omitempty"`
	Positions []int      `json:"positions,omitempty"`
}

// GameEvent is what the hub fans out to the subscribers of a session.
type GameEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Version   int64  `json:"version"`
	Data      string `json:"data"`
}
