package game

import "htmx-tictactoe/models"

// WinLines are checked in this order; the first uniform line wins.
var WinLines = [8][3]int{
	// rows
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	// columns
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	// diagonals
	{0, 4, 8},
	{2, 4, 6},
}

// NewState returns the state of a fresh game: empty board, Cross to move.
func NewState() models.GameState {
	return models.GameState{
		Board:  models.Board{},
		Turn:   models.TurnCross,
		Status: models.StatusPlaying,
	}
}

// Evaluate scans the winning lines and reports the status of the board
func Evaluate(board models.Board) models.MoveResult {
	for _, line := range WinLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != models.CellEmpty && a == b && b == c {
			status := models.StatusXWin
			if a == models.CellCircle {
				status = models.StatusOWin
			}
			return models.MoveResult{
				Status:       status,
				WinPositions: []int{line[0], line[1], line[2]},
			}
		}
	}

	if IsBoardFull(board) {
		return models.MoveResult{Status: models.StatusDraw}
	}

	return models.MoveResult{Status: models.StatusPlaying}
}

// IsBoardFull checks if all cells on the board are filled
func IsBoardFull(board models.Board) bool {
	for _, cell := range board {
		if cell == models.CellEmpty {
			return false
		}
	}
	return true
}

// IsValidIndex reports whether index addresses a board cell.
func IsValidIndex(index int) bool {
	return index >= 0 && index < len(models.Board{})
}

// ApplyMove places the mark of state.Turn at index. The returned board is a
// copy; state.Board is never modified. Moves on occupied or out of range
// cells, or after the game ended, are rejected.
func ApplyMove(state models.GameState, index int) (models.Board, bool) {
	board := state.Board

	if state.Status != models.StatusPlaying {
		return board, false
	}
	if !IsValidIndex(index) || board[index] != models.CellEmpty {
		return board, false
	}

	board[index] = state.Turn.Mark()
	return board, true
}

// NextTurn alternates Cross and Circle.
func NextTurn(turn models.Turn) models.Turn {
	if turn == models.TurnCircle {
		return models.TurnCross
	}
	return models.TurnCircle
}

// Move runs one full transition: apply, advance the turn, evaluate.
// A rejected move returns the input state unchanged and no effects.
func Move(state models.GameState, index int) (models.GameState, []models.Effect) {
	board, accepted := ApplyMove(state, index)
	if !accepted {
		return state, nil
	}

	mover := state.Turn
	next := models.GameState{
		Board: board,
		Turn:  NextTurn(mover),
	}

	effects := []models.Effect{
		{Kind: models.EffectMarkCell, Cell: index, Mark: mover.Mark()},
		{Kind: models.EffectSetTurn, Turn: next.Turn},
	}

	result := Evaluate(board)
	next.Status = result.Status

	switch result.Status {
	case models.StatusXWin, models.StatusOWin:
		effects = append(effects,
			models.Effect{Kind: models.EffectSetStatus, Status: result.Status},
			models.Effect{Kind: models.EffectShowReplay},
			models.Effect{Kind: models.EffectHighlightCells, Positions: result.WinPositions},
		)
	case models.StatusDraw:
		effects = append(effects,
			models.Effect{Kind: models.EffectSetStatus, Status: result.Status},
			models.Effect{Kind: models.EffectShowReplay},
		)
	default:
		// playing
	}

	return next, effects
}

// Replay discards the current game and returns the effects that restore the
// initial view.
func Replay(_ models.GameState) (models.GameState, []models.Effect) {
	state := NewState()
	effects := []models.Effect{
		{Kind: models.EffectSetStatus, Status: state.Status},
		{Kind: models.EffectSetTurn, Turn: state.Turn},
		{Kind: models.EffectClearBoard},
		{Kind: models.EffectHideReplay},
	}
	return state, effects
}
