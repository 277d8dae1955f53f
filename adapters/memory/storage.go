// Package memory provides a concurrent in-memory Ledger, the default for
// tests and demos.
package memory

import (
	"context"
	"sync"

	"crewscore/core"
	"crewscore/engine"
)

// Store is a concurrent in-memory Ledger implementation. Profiles are held in
// per-user records so commits for different users never contend.
type Store struct {
	users  sync.Map // map[core.UserID]*userRecord
	events sync.Map // map[string]core.ProgressionResult
}

type userRecord struct {
	mu      sync.Mutex
	profile core.ScoreProfile
}

func New() *Store { return &Store{} }

func (s *Store) getOrCreate(user core.UserID) *userRecord {
	if v, ok := s.users.Load(user); ok {
		return v.(*userRecord)
	}
	rec := &userRecord{profile: core.NewProfile(user)}
	actual, _ := s.users.LoadOrStore(user, rec)
	return actual.(*userRecord)
}

func (s *Store) GetProfile(_ context.Context, user core.UserID) (core.ScoreProfile, error) {
	rec := s.getOrCreate(user)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.profile.Clone(), nil
}

func (s *Store) CommitProgression(_ context.Context, eventID string, updated core.ScoreProfile, result core.ProgressionResult) error {
	rec := s.getOrCreate(updated.UserID)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if _, dup := s.events.Load(eventID); dup {
		return engine.ErrDuplicateEvent
	}
	if rec.profile.Version != updated.Version-1 {
		return engine.ErrVersionConflict
	}
	rec.profile = updated.Clone()
	s.events.Store(eventID, result)
	return nil
}

func (s *Store) LookupResult(_ context.Context, eventID string) (core.ProgressionResult, bool, error) {
	if v, ok := s.events.Load(eventID); ok {
		return v.(core.ProgressionResult), true, nil
	}
	return core.ProgressionResult{}, false, nil
}

var _ engine.Ledger = (*Store)(nil)
