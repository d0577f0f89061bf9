// Package board provides the snake-and-ladder board definition and the pure
// movement rules applied when a player rolls the die.
package board

import (
	"fmt"
	"strings"
)

// FinalSquare is the winning square. A token landing exactly here wins;
// any move that would pass it is discarded.
const FinalSquare = 100

// Board holds the two fixed square redirections. It is built once at server
// construction and shared read-only across all rooms.
type Board struct {
	// Snakes maps a source square to a lower destination square.
	Snakes map[int]int
	// Ladders maps a source square to a higher destination square.
	Ladders map[int]int
}

// Classic returns the standard board shipped with the server.
func Classic() Board {
	return Board{
		Snakes: map[int]int{
			27: 8,
			39: 19,
			48: 30,
			65: 52,
			79: 41,
			95: 73,
			98: 64,
		},
		Ladders: map[int]int{
			3:  22,
			5:  17,
			11: 33,
			21: 56,
			25: 40,
			42: 60,
			57: 76,
			70: 93,
		},
	}
}

// Validate checks all board invariants.
//
// Postcondition: Returns nil if the board is valid, or an error describing all violations.
func (b Board) Validate() error {
	var errs []string

	for src, dst := range b.Snakes {
		if src < 2 || src > FinalSquare-1 {
			errs = append(errs, fmt.Sprintf("snake source %d out of range [2,%d]", src, FinalSquare-1))
		}
		if dst < 1 || dst >= src {
			errs = append(errs, fmt.Sprintf("snake %d→%d must descend to [1,%d)", src, dst, src))
		}
	}
	for src, dst := range b.Ladders {
		if src < 2 || src > FinalSquare-1 {
			errs = append(errs, fmt.Sprintf("ladder source %d out of range [2,%d]", src, FinalSquare-1))
		}
		if dst <= src || dst > FinalSquare {
			errs = append(errs, fmt.Sprintf("ladder %d→%d must climb to (%d,%d]", src, dst, src, FinalSquare))
		}
		if _, dup := b.Snakes[src]; dup {
			errs = append(errs, fmt.Sprintf("square %d is both a snake and a ladder source", src))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("board validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Move is the outcome of applying one die roll to a token.
type Move struct {
	// From is the token position before the roll.
	From int
	// To is the token position after the roll. Equal to From when the roll
	// was wasted (failed entry or overshoot).
	To int
	// Started reports whether the token is on the board after the roll.
	Started bool
	// Entered is true when this roll brought the token onto the board.
	Entered bool
	// Won is true when the token landed exactly on FinalSquare.
	Won bool
}

// Apply computes the next position for a token at the given position.
//
// Rules, in order: a token not yet on the board enters on a 1 or 6 and is
// placed on square 1. Once on the board the candidate square is position+die,
// redirected by a snake (checked first) or a ladder; a candidate beyond
// FinalSquare discards the whole move, redirect included.
//
// Precondition: position in [0,FinalSquare]; die in [1,6]; started implies position >= 1.
// Postcondition: Move.To is in [0,FinalSquare] and the receiver is unmodified.
func (b Board) Apply(position int, started bool, die int) Move {
	if !started {
		if die == 1 || die == 6 {
			return Move{From: position, To: 1, Started: true, Entered: true}
		}
		return Move{From: position, To: position}
	}

	candidate := position + die
	if dst, ok := b.Snakes[candidate]; ok {
		candidate = dst
	} else if dst, ok := b.Ladders[candidate]; ok {
		candidate = dst
	}

	if candidate > FinalSquare {
		return Move{From: position, To: position, Started: true}
	}

	return Move{
		From:    position,
		To:      candidate,
		Started: true,
		Won:     candidate == FinalSquare,
	}
}
