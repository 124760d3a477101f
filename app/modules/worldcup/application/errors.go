package worldcupservice

import (
	"errors"

	worldcupsessions "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/sessions"
)

var (
	// ErrCompetitorNotFound is returned when a rating update names a competitor
	// that is not in the store. Nothing is written.
	ErrCompetitorNotFound = errors.New("competitor not found")

	// ErrSameCompetitor is returned when winner and loser are the same competitor.
	ErrSameCompetitor = errors.New("winner and loser must differ")

	// ErrSizeNotOffered is returned for valid bracket sizes that are not offered to players.
	ErrSizeNotOffered = errors.New("bracket size is not offered")

	// ErrSessionNotFound is returned when no tournament is stored under the key.
	ErrSessionNotFound = worldcupsessions.ErrSessionNotFound

	// ErrSessionConflict is returned when another decision on the same bracket
	// was saved first.
	ErrSessionConflict = worldcupsessions.ErrSessionConflict
)
