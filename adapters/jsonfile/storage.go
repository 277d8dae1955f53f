// Package jsonfile persists the ledger to a single JSON file. Suitable for
// demos and small deployments.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"crewscore/core"
	"crewscore/engine"
)

// Store keeps all profiles and processed events in memory and rewrites the
// file atomically on every commit. The single mutex serializes commits across
// users, which is acceptable at file-storage scale.
type Store struct {
	path     string
	mu       sync.Mutex
	profiles map[core.UserID]core.ScoreProfile
	events   map[string]core.ProgressionResult
}

type fileDoc struct {
	Profiles map[string]core.ScoreProfile      `json:"profiles"`
	Events   map[string]core.ProgressionResult `json:"events"`
}

func New(path string) (*Store, error) {
	s := &Store{
		path:     path,
		profiles: map[core.UserID]core.ScoreProfile{},
		events:   map[string]core.ProgressionResult{},
	}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	for k, v := range doc.Profiles {
		s.profiles[core.UserID(k)] = v
	}
	for k, v := range doc.Events {
		s.events[k] = v
	}
	return nil
}

func (s *Store) persist() error {
	doc := fileDoc{
		Profiles: make(map[string]core.ScoreProfile, len(s.profiles)),
		Events:   s.events,
	}
	for k, v := range s.profiles {
		doc.Profiles[string(k)] = v
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) GetProfile(_ context.Context, user core.UserID) (core.ScoreProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[user]; ok {
		return p.Clone(), nil
	}
	return core.NewProfile(user), nil
}

func (s *Store) CommitProgression(_ context.Context, eventID string, updated core.ScoreProfile, result core.ProgressionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.events[eventID]; dup {
		return engine.ErrDuplicateEvent
	}
	prev, existed := s.profiles[updated.UserID]
	stored := int64(0)
	if existed {
		stored = prev.Version
	}
	if stored != updated.Version-1 {
		return engine.ErrVersionConflict
	}
	s.profiles[updated.UserID] = updated.Clone()
	s.events[eventID] = result
	if err := s.persist(); err != nil {
		// roll back the in-memory state so a failed write is not half-applied
		delete(s.events, eventID)
		if existed {
			s.profiles[updated.UserID] = prev
		} else {
			delete(s.profiles, updated.UserID)
		}
		return err
	}
	return nil
}

func (s *Store) LookupResult(_ context.Context, eventID string) (core.ProgressionResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.events[eventID]; ok {
		return res, true, nil
	}
	return core.ProgressionResult{}, false, nil
}

var _ engine.Ledger = (*Store)(nil)
