package engine

import (
	"context"
	"errors"

	"crewscore/core"
)

// Sentinel errors returned by Ledger implementations and the service.
var (
	// ErrVersionConflict signals a lost optimistic-concurrency race; the
	// service re-reads and retries.
	ErrVersionConflict = errors.New("profile version conflict")
	// ErrDuplicateEvent signals the action event id was already committed.
	ErrDuplicateEvent = errors.New("duplicate action event")
	// ErrUnknownAction signals an action type with no scoring policy.
	ErrUnknownAction = errors.New("unknown action type")
)

// Ledger is the persistence contract for score profiles and the per-event
// dedupe record. Implementations must make CommitProgression atomic per user:
// the profile swap and the dedupe record land together or not at all.
type Ledger interface {
	// GetProfile returns the stored profile, or a fresh zero profile
	// (Version 0) when the user has no ledger entry yet.
	GetProfile(ctx context.Context, user core.UserID) (core.ScoreProfile, error)

	// CommitProgression stores the updated profile and records eventID as
	// processed. The write is guarded by compare-and-swap on Version: it
	// succeeds only when the stored version equals updated.Version-1.
	// Returns ErrVersionConflict on a lost race and ErrDuplicateEvent when
	// eventID was already committed.
	CommitProgression(ctx context.Context, eventID string, updated core.ScoreProfile, result core.ProgressionResult) error

	// LookupResult returns the committed result for a processed event id,
	// with ok=false when the id has not been seen.
	LookupResult(ctx context.Context, eventID string) (core.ProgressionResult, bool, error)
}
