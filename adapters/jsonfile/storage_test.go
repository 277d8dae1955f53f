package jsonfile

import (
	"context"
	"path/filepath"
	"testing"

	"crewscore/core"
	"crewscore/engine"
)

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := s.GetProfile(ctx, "ana")
	p.CMS = 25
	p.Version = 1
	p.Counters[core.CounterReviews] = 1
	if err := s.CommitProgression(ctx, "e1", p, core.ProgressionResult{EventID: "e1", Points: 25}); err != nil {
		t.Fatal(err)
	}

	// reopen from disk
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s2.GetProfile(ctx, "ana")
	if err != nil || got.CMS != 25 || got.Counters[core.CounterReviews] != 1 {
		t.Fatalf("reloaded profile: %+v err=%v", got, err)
	}
	if _, ok, _ := s2.LookupResult(ctx, "e1"); !ok {
		t.Fatal("dedupe record lost across reload")
	}
}

func TestDuplicateAndConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	ctx := context.Background()
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	p, _ := s.GetProfile(ctx, "ana")
	p.Version = 1
	if err := s.CommitProgression(ctx, "e1", p, core.ProgressionResult{}); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitProgression(ctx, "e1", p, core.ProgressionResult{}); err != engine.ErrDuplicateEvent {
		t.Fatalf("want duplicate, got %v", err)
	}
	stale := p // still version 1
	if err := s.CommitProgression(ctx, "e2", stale, core.ProgressionResult{}); err != engine.ErrVersionConflict {
		t.Fatalf("want conflict, got %v", err)
	}
}
