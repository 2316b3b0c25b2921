// Package view turns state machine effects into the visible state of the
// page: cell classes, the turn indicator, the status text and the replay
// control.
package view

import (
	"errors"
	"fmt"

	"htmx-tictactoe/models"
)

const (
	ClassWin  = "win"
	ClassShow = "show"
)

var (
	ErrInvalidWinPositions = errors.New("invalid win positions")
	ErrUnknownEffect       = errors.New("unknown effect")
)

// Initial returns the view of a fresh game.
func Initial() models.ViewState {
	return models.ViewState{
		TurnClass:  string(models.TurnCross),
		StatusText: string(models.StatusPlaying),
	}
}

// Apply applies effects in order. It stops at the first effect that
// cannot be applied.
func Apply(view *models.ViewState, effects []models.Effect) error {
	for _, effect := range effects {
		if err := applyOne(view, effect); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(view *models.ViewState, effect models.Effect) error {
	switch effect.Kind {
	case models.EffectMarkCell:
		return MarkCell(view, effect.Cell, effect.Mark)
	case models.EffectSetTurn:
		view.TurnClass = string(effect.Turn)
	case models.EffectSetStatus:
		view.StatusText = string(effect.Status)
	case models.EffectHighlightCells:
		return HighlightWinCells(view, effect.Positions)
	case models.EffectShowReplay:
		view.ReplayVisible = true
	case models.EffectHideReplay:
		view.ReplayVisible = false
	case models.EffectClearBoard:
		view.Cells = [9]string{}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEffect, effect.Kind)
	}
	return nil
}

// MarkCell sets the class of a cell to the mover's symbol.
func MarkCell(view *models.ViewState, cell int, mark models.Cell) error {
	if cell < 0 || cell >= len(view.Cells) {
		return fmt.Errorf("mark cell %d: out of range", cell)
	}
	view.Cells[cell] = string(mark)
	return nil
}

// HighlightWinCells adds the win class to the three cells of the winning
// line. Anything but exactly three valid positions is a defect in the caller.
func HighlightWinCells(view *models.ViewState, positions []int) error {
	if len(positions) != 3 {
		return fmt.Errorf("%w: got %d positions", ErrInvalidWinPositions, len(positions))
	}
	for _, position := range positions {
		if position < 0 || position >= len(view.Cells) {
			return fmt.Errorf("%w: position %d", ErrInvalidWinPositions, position)
		}
	}

	for _, position := range positions {
		view.Cells[position] = CellClass(view.Cells[position], ClassWin)
	}
	return nil
}

// IsWinCell reports whether the class list of a cell carries the highlight.
func IsWinCell(class string) bool {
	return hasClass(class, ClassWin)
}
