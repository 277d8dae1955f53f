package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"crewscore/catalog"
	"crewscore/core"
)

// commitRetries bounds optimistic-concurrency retries per event. Every
// conflict means another event for the same user committed, so the loop
// starves only under sustained same-user contention.
const commitRetries = 32

// Service is the progression orchestrator: it sequences resolver, calculator,
// level resolver, and badge evaluator against one ActionEvent and applies the
// outcome to the ledger exactly once per event id.
type Service struct {
	ledger Ledger
	cat    *catalog.Catalog
	bus    *EventBus
	log    *slog.Logger
}

// NewService wires the ledger, catalog, and event bus into a Service.
func NewService(ledger Ledger, cat *catalog.Catalog, bus *EventBus) *Service {
	if ledger == nil || cat == nil || bus == nil {
		panic("NewService requires non-nil ledger, catalog, and bus")
	}
	return &Service{ledger: ledger, cat: cat, bus: bus, log: slog.Default()}
}

// SetLogger overrides the default logger.
func (s *Service) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// Subscribe registers a handler on the service's event bus.
func (s *Service) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	return s.bus.Subscribe(typ, handler)
}

// Publish forwards an event to the bus.
func (s *Service) Publish(ctx context.Context, ev core.Event) {
	s.bus.Publish(ctx, ev)
}

// Process scores one action event and commits the progression. Resubmitting an
// already-committed event id returns the stored result with Replayed set; it
// never re-awards. Unknown action types are rejected without mutation.
func (s *Service) Process(ctx context.Context, ev core.ActionEvent, flags core.StatusFlags) (core.ProgressionResult, error) {
	if strings.TrimSpace(ev.ID) == "" {
		return core.ProgressionResult{}, errors.New("action event id is required")
	}
	user, err := core.NormalizeUserID(ev.UserID)
	if err != nil {
		return core.ProgressionResult{}, err
	}
	ev.UserID = user
	if !core.KnownAction(ev.Type) {
		return core.ProgressionResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, ev.Type)
	}

	// At-least-once delivery: a replayed id is a successful no-op.
	if prev, ok, err := s.ledger.LookupResult(ctx, ev.ID); err != nil {
		return core.ProgressionResult{}, fmt.Errorf("dedupe lookup: %w", err)
	} else if ok {
		prev.Replayed = true
		return prev, nil
	}

	for attempt := 0; attempt < commitRetries; attempt++ {
		result, err := s.attempt(ctx, ev, flags)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if errors.Is(err, ErrDuplicateEvent) {
			// lost the dedupe race to a concurrent replay of the same id
			prev, ok, lerr := s.ledger.LookupResult(ctx, ev.ID)
			if lerr == nil && ok {
				prev.Replayed = true
				return prev, nil
			}
			return core.ProgressionResult{}, err
		}
		if err != nil {
			return core.ProgressionResult{}, err
		}
		s.publishResult(ctx, ev, result)
		return result, nil
	}
	return core.ProgressionResult{}, fmt.Errorf("commit for user %s: %w", user, ErrVersionConflict)
}

// attempt runs one read-compute-commit cycle.
func (s *Service) attempt(ctx context.Context, ev core.ActionEvent, flags core.StatusFlags) (core.ProgressionResult, error) {
	before, err := s.ledger.GetProfile(ctx, ev.UserID)
	if err != nil {
		return core.ProgressionResult{}, fmt.Errorf("read profile: %w", err)
	}

	comps, err := core.ResolveComponents(ev, flags)
	if err != nil {
		return core.ProgressionResult{}, fmt.Errorf("%w: %v", ErrUnknownAction, err)
	}
	award := comps.Award()
	if award.Points < 0 {
		// Calculate floors at zero, so this is unreachable with validated
		// inputs; log the invariant violation rather than failing the caller.
		s.log.Error("negative award floored",
			"event_id", ev.ID, "action", ev.Type, "points", award.Points)
		award.Points = 0
	}

	after := before.Clone()
	if err := core.ApplyCounters(&after, ev); err != nil {
		return core.ProgressionResult{}, err
	}
	newCMS, err := core.AddSafe(after.CMS, int64(award.Points))
	if err != nil {
		return core.ProgressionResult{}, fmt.Errorf("cms overflow for user %s: %w", ev.UserID, err)
	}
	after.CMS = newCMS

	oldTier, newTier, leveledUp := core.DetectLevelUp(before.CMS, after.CMS, s.cat.Tiers)
	after.LevelID = newTier.ID

	earned := core.EvaluateBadges(after, s.cat.Badges)
	for _, id := range earned {
		after.Badges[id] = struct{}{}
	}

	after.Version++
	after.Updated = time.Now().UTC()

	result := core.ProgressionResult{
		EventID:    ev.ID,
		UserID:     ev.UserID,
		Points:     award.Points,
		NewCMS:     after.CMS,
		LeveledUp:  leveledUp,
		OldLevelID: oldTier.ID,
		NewLevelID: newTier.ID,
		NewBadges:  earned,
	}
	if err := s.ledger.CommitProgression(ctx, ev.ID, after, result); err != nil {
		return core.ProgressionResult{}, err
	}
	return result, nil
}

func (s *Service) publishResult(ctx context.Context, ev core.ActionEvent, res core.ProgressionResult) {
	s.bus.Publish(ctx, core.NewActionScored(res.UserID, ev.ID, ev.Type, res.Points, res.NewCMS))
	if res.LeveledUp {
		s.bus.Publish(ctx, core.NewLevelUp(res.UserID, res.NewLevelID, res.NewCMS))
	}
	for _, badge := range res.NewBadges {
		s.bus.Publish(ctx, core.NewBadgeEarned(res.UserID, badge))
	}
}

// Profile returns the user's current ledger snapshot.
func (s *Service) Profile(ctx context.Context, user core.UserID) (core.ScoreProfile, error) {
	normalized, err := core.NormalizeUserID(user)
	if err != nil {
		return core.ScoreProfile{}, err
	}
	p, err := s.ledger.GetProfile(ctx, normalized)
	if err != nil {
		return core.ScoreProfile{}, err
	}
	if p.LevelID == "" {
		p.LevelID = s.cat.LowestTier().ID
	}
	return p, nil
}

// BadgeProgress reports progress toward every automated badge for the user.
func (s *Service) BadgeProgress(ctx context.Context, user core.UserID) ([]core.BadgeProgress, error) {
	p, err := s.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	return core.ProgressFor(p, s.cat.Badges), nil
}

// Catalog exposes the immutable configuration the service was built with.
func (s *Service) Catalog() *catalog.Catalog { return s.cat }

// Close stops the event bus workers.
func (s *Service) Close() { s.bus.Close() }
