package worldcupdomain

import "errors"

var (
	// ErrInvalidBracketSize is returned when the requested bracket size is not a power of two >= 2.
	ErrInvalidBracketSize = errors.New("bracket size must be a power of two >= 2")

	// ErrPoolTooSmall is returned when the candidate pool cannot fill the requested bracket.
	ErrPoolTooSmall = errors.New("candidate pool is smaller than the bracket size")

	// ErrWinnerNotInMatch is returned when the decided winner is neither slot of the current match.
	ErrWinnerNotInMatch = errors.New("winner is not a competitor in the current match")

	// ErrTournamentComplete is returned when advancing a tournament that already has a winner.
	ErrTournamentComplete = errors.New("tournament is already complete")

	// ErrCorruptState is returned when a stored state fails structural validation.
	ErrCorruptState = errors.New("tournament state is corrupt")
)
