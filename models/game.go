package models

import "time"

// Cell is the content of one board position.
type Cell string

const (
	CellEmpty  Cell = ""
	CellCross  Cell = "cross"
	CellCircle Cell = "circle"
)

// Board is the 3x3 grid stored row-major, index 0 is top-left.
type Board [9]Cell

// Turn is whose mark is placed next.
type Turn string

const (
	TurnCross  Turn = "cross"
	TurnCircle Turn = "circle"
)

// Mark returns the cell value placed by the player holding the turn.
func (t Turn) Mark() Cell {
	if t == TurnCircle {
		return CellCircle
	}
	return CellCross
}

// GameStatus is the outcome shown in the status text.
type GameStatus string

const (
	StatusPlaying GameStatus = "PLAYING"
	StatusXWin    GameStatus = "X WIN"
	StatusOWin    GameStatus = "O WIN"
	StatusDraw    GameStatus = "END"
)

// IsTerminal reports whether the game accepts no further moves.
func (s GameStatus) IsTerminal() bool {
	return s == StatusXWin || s == StatusOWin || s == StatusDraw
}

// MoveResult is the outcome of evaluating a board.
type MoveResult struct {
	Status       GameStatus `json:"status"`
	WinPositions []int      `json:"winPositions,omitempty"` // nil unless Status is a win
}

// GameState is everything the state machine owns.
type GameState struct {
	Board  Board      `json:"board"`
	Turn   Turn       `json:"turn"`
	Status GameStatus `json:"status"`
}

// Session binds one browser session to its game and rendered view.
type Session struct {
	ID        string    `json:"id"`
	State     GameState `json:"state"`
	View      ViewState `json:"view"`
	Version   int64     `json:"version"` // bumped by every committed update
	UpdatedAt time.Time `json:"updatedAt"`
}

// ViewState is the visible state of the page, as classes and text.
type ViewState struct {
	Cells         [9]string `json:"cells"`
	TurnClass     string    `json:"turnClass"`
	StatusText    string    `json:"statusText"`
	ReplayVisible bool      `json:"replayVisible"`
}
