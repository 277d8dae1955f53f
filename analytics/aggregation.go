// Package analytics aggregates progression events into in-process engagement
// metrics: per-action scoring volume, badge and level-up tallies, and daily
// active users.
package analytics

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"crewscore/core"
)

// Snapshot is a point-in-time export of the aggregated metrics.
type Snapshot struct {
	GeneratedAt    time.Time                 `json:"generated_at"`
	EventsScored   int64                     `json:"events_scored"`
	PointsAwarded  int64                     `json:"points_awarded"`
	ByAction       map[core.ActionType]int64 `json:"by_action"`
	PointsByAction map[core.ActionType]int64 `json:"points_by_action"`
	LevelUps       int64                     `json:"level_ups"`
	BadgesEarned   int64                     `json:"badges_earned"`
	BadgesByID     map[core.BadgeID]int64    `json:"badges_by_id"`
	DailyActive    map[string]int            `json:"daily_active"`
}

// Aggregator accumulates metrics from the event bus. All methods are safe for
// concurrent use.
type Aggregator struct {
	mu             sync.Mutex
	eventsScored   int64
	pointsAwarded  int64
	byAction       map[core.ActionType]int64
	pointsByAction map[core.ActionType]int64
	levelUps       int64
	badgesEarned   int64
	badgesByID     map[core.BadgeID]int64
	dailyUsers     map[string]map[core.UserID]struct{}
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byAction:       map[core.ActionType]int64{},
		pointsByAction: map[core.ActionType]int64{},
		badgesByID:     map[core.BadgeID]int64{},
		dailyUsers:     map[string]map[core.UserID]struct{}{},
	}
}

// OnEvent folds one domain event into the aggregates.
func (a *Aggregator) OnEvent(_ context.Context, e core.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch e.Type {
	case core.EventActionScored:
		a.eventsScored++
		a.pointsAwarded += int64(e.Points)
		a.byAction[e.Action]++
		a.pointsByAction[e.Action] += int64(e.Points)
		a.markActive(e)
	case core.EventLevelUp:
		a.levelUps++
	case core.EventBadgeEarned:
		a.badgesEarned++
		a.badgesByID[e.Badge]++
	}
}

func (a *Aggregator) markActive(e core.Event) {
	day := e.Time.UTC().Format("2006-01-02")
	users := a.dailyUsers[day]
	if users == nil {
		users = map[core.UserID]struct{}{}
		a.dailyUsers[day] = users
	}
	users[e.UserID] = struct{}{}
}

// Snapshot returns a copy of the current aggregates.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	snap := Snapshot{
		GeneratedAt:    time.Now().UTC(),
		EventsScored:   a.eventsScored,
		PointsAwarded:  a.pointsAwarded,
		ByAction:       make(map[core.ActionType]int64, len(a.byAction)),
		PointsByAction: make(map[core.ActionType]int64, len(a.pointsByAction)),
		LevelUps:       a.levelUps,
		BadgesEarned:   a.badgesEarned,
		BadgesByID:     make(map[core.BadgeID]int64, len(a.badgesByID)),
		DailyActive:    make(map[string]int, len(a.dailyUsers)),
	}
	for k, v := range a.byAction {
		snap.ByAction[k] = v
	}
	for k, v := range a.pointsByAction {
		snap.PointsByAction[k] = v
	}
	for k, v := range a.badgesByID {
		snap.BadgesByID[k] = v
	}
	for day, users := range a.dailyUsers {
		snap.DailyActive[day] = len(users)
	}
	return snap
}

// ExportJSON writes the snapshot as indented JSON.
func (a *Aggregator) ExportJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a.Snapshot())
}

// Attach subscribes the aggregator to every progression event type and
// returns a detach function.
func Attach(a *Aggregator, subscribe func(core.EventType, func(context.Context, core.Event)) func()) func() {
	var unsubs []func()
	for _, typ := range []core.EventType{core.EventActionScored, core.EventLevelUp, core.EventBadgeEarned} {
		unsubs = append(unsubs, subscribe(typ, a.OnEvent))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
