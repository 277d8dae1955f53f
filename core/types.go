package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// UserID uniquely identifies a user in the scoring domain.
type UserID string

// ActionType enumerates the scoreable user actions.
type ActionType string

const (
	ActionLayoverCheckIn     ActionType = "layover_check_in"
	ActionSpotCheckIn        ActionType = "spot_check_in"
	ActionPlanHosted         ActionType = "plan_hosted"
	ActionPlanAttended       ActionType = "plan_attended"
	ActionReviewWritten      ActionType = "review_written"
	ActionConnectionAccepted ActionType = "connection_accepted"
	ActionStreakBonus        ActionType = "streak_bonus"
)

// ActionContext is the type-specific payload of an ActionEvent. Fields that do
// not apply to a given action type are ignored by the resolver.
type ActionContext struct {
	AttendeeCount      int    `json:"attendee_count,omitempty"`
	WordCount          int    `json:"word_count,omitempty"`
	HasPhoto           bool   `json:"has_photo,omitempty"`
	IsInternational    bool   `json:"is_international,omitempty"`
	FirstTimeCity      bool   `json:"first_time_city,omitempty"`
	FirstTimeContinent bool   `json:"first_time_continent,omitempty"`
	StreakLength       int    `json:"streak_length,omitempty"`
	CityID             string `json:"city_id,omitempty"`
	ContinentID        string `json:"continent_id,omitempty"`
}

// ActionEvent is one scoreable occurrence. ID must be unique per occurrence;
// it is the dedupe key for at-least-once delivery.
type ActionEvent struct {
	ID         string        `json:"id"`
	UserID     UserID        `json:"user_id"`
	Type       ActionType    `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Context    ActionContext `json:"context"`
}

// StatusFlags are cohort flags derived externally from the user's account.
// The engine reads them, never mutates them.
type StatusFlags struct {
	IsNewUser      bool `json:"is_new_user"`
	IsFoundingCrew bool `json:"is_founding_crew"`
	IsBetaPioneer  bool `json:"is_beta_pioneer"`
}

// BadgeID is a badge identifier. Per-entity badge instances use the composite
// form produced by BadgeKey.ID().
type BadgeID string

// BadgeKey is the typed composite key for a per-entity badge instance.
// The string form is produced only at the persistence/display boundary.
type BadgeKey struct {
	FamilyID string
	EntityID string
}

// ID renders the composite badge identifier.
func (k BadgeKey) ID() BadgeID { return BadgeID(k.FamilyID + ":" + k.EntityID) }

// ScoreProfile is the per-user ledger record the engine contracts on. Version
// carries the optimistic-concurrency token used by Ledger implementations;
// a fresh profile has Version 0 and is committed as Version 1.
type ScoreProfile struct {
	UserID    UserID                      `json:"user_id"`
	CMS       int64                       `json:"cms"`
	LevelID   string                      `json:"level_id"`
	Badges    map[BadgeID]struct{}        `json:"badges"`
	Counters  map[string]int64            `json:"counters"`
	PerEntity map[string]map[string]int64 `json:"per_entity"`
	Version   int64                       `json:"version"`
	Updated   time.Time                   `json:"updated"`
}

// NewProfile returns an empty profile for a user, ready for its first action.
func NewProfile(user UserID) ScoreProfile {
	return ScoreProfile{
		UserID:    user,
		Badges:    map[BadgeID]struct{}{},
		Counters:  map[string]int64{},
		PerEntity: map[string]map[string]int64{},
	}
}

// Clone returns a deep copy of the profile to uphold immutability.
func (p ScoreProfile) Clone() ScoreProfile {
	cp := p
	cp.Badges = make(map[BadgeID]struct{}, len(p.Badges))
	for b := range p.Badges {
		cp.Badges[b] = struct{}{}
	}
	cp.Counters = make(map[string]int64, len(p.Counters))
	for k, v := range p.Counters {
		cp.Counters[k] = v
	}
	cp.PerEntity = make(map[string]map[string]int64, len(p.PerEntity))
	for fam, ents := range p.PerEntity {
		m := make(map[string]int64, len(ents))
		for e, v := range ents {
			m[e] = v
		}
		cp.PerEntity[fam] = m
	}
	return cp
}

// HasBadge reports whether the profile already holds the badge.
func (p ScoreProfile) HasBadge(id BadgeID) bool {
	_, ok := p.Badges[id]
	return ok
}

// ProgressionResult is the committed outcome of processing one ActionEvent.
type ProgressionResult struct {
	EventID    string    `json:"event_id"`
	UserID     UserID    `json:"user_id"`
	Points     int       `json:"points"`
	NewCMS     int64     `json:"new_cms"`
	LeveledUp  bool      `json:"leveled_up"`
	OldLevelID string    `json:"old_level_id,omitempty"`
	NewLevelID string    `json:"new_level_id,omitempty"`
	NewBadges  []BadgeID `json:"new_badges,omitempty"`
	Replayed   bool      `json:"replayed,omitempty"`
}

// AddSafe adds delta to base ensuring no signed overflow occurs.
func AddSafe(base int64, delta int64) (int64, error) {
	if (delta > 0 && base > math.MaxInt64-delta) || (delta < 0 && base < math.MinInt64-delta) {
		return 0, errors.New("integer overflow in AddSafe")
	}
	return base + delta, nil
}

// NormalizeUserID trims and lowercases user identifiers.
func NormalizeUserID(id UserID) (UserID, error) {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return "", errors.New("empty user id")
	}
	return UserID(strings.ToLower(s)), nil
}

// ValidateBadgeID ensures a non-empty badge id with a simple charset check.
// The ':' separator is reserved for per-entity composite instances.
func ValidateBadgeID(b BadgeID) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return errors.New("empty badge id")
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == ':' {
			continue
		}
		return errors.New("invalid badge id")
	}
	return nil
}

// KnownActionTypes lists every action type the resolver can score.
func KnownActionTypes() []ActionType {
	return []ActionType{
		ActionLayoverCheckIn,
		ActionSpotCheckIn,
		ActionPlanHosted,
		ActionPlanAttended,
		ActionReviewWritten,
		ActionConnectionAccepted,
		ActionStreakBonus,
	}
}
