package features

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrMissingKing = errors.New("king missing from board")
)

// ReplayError reports the ply at which a game's replay stopped.
type ReplayError struct {
	Ply  int
	Move string
	Side Side
	Err  error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay ply %d (%s %q): %v", e.Ply, e.Side, e.Move, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }
