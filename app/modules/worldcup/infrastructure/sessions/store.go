package worldcupsessions

import (
	"context"
	"errors"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

// ErrSessionNotFound is returned by Load when no state is stored under the key,
// including when it expired.
var ErrSessionNotFound = errors.New("tournament session not found")

// ErrSessionConflict is returned by CompareAndSave when the stored state has
// moved past the version the caller read.
var ErrSessionConflict = errors.New("tournament session was modified concurrently")

// Store hands tournament state between requests of one player session.
type Store interface {
	Save(ctx context.Context, key string, state *worldcupdomain.TournamentState) error
	// CompareAndSave replaces the state under key only while the stored
	// version still equals expectedVersion.
	CompareAndSave(ctx context.Context, key string, expectedVersion int64, state *worldcupdomain.TournamentState) error
	Load(ctx context.Context, key string) (*worldcupdomain.TournamentState, error)
	Delete(ctx context.Context, key string) error
}

const keyPrefix = "worldcup:session:"

func storageKey(key string) string {
	return keyPrefix + key
}
