package core

import "sort"

// BadgePredicate is the closed set of badge-earning rules. Manual marks
// display-only badges the evaluator never awards; the other variants are
// automated.
type BadgePredicate interface {
	badgePredicate()
}

// CounterThreshold earns the badge once a named counter reaches the threshold.
type CounterThreshold struct {
	Counter   string `json:"counter"`
	Threshold int64  `json:"threshold"`
}

// PerEntityThreshold earns one badge instance per entity whose counter in the
// family reaches the threshold, identified by the composite BadgeKey.
type PerEntityThreshold struct {
	Family    string `json:"family"`
	Threshold int64  `json:"threshold"`
}

// Manual badges are awarded out of band (admin grants, cohort imports).
type Manual struct{}

func (CounterThreshold) badgePredicate()   {}
func (PerEntityThreshold) badgePredicate() {}
func (Manual) badgePredicate()             {}

// BadgeDefinition describes one badge or, for per-entity predicates, a family
// of badge instances sharing a template.
type BadgeDefinition struct {
	ID        BadgeID        `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Rarity    string         `json:"rarity"`
	Predicate BadgePredicate `json:"-"`
}

// valid filters malformed definitions so one bad catalog entry cannot block
// scoring for every user.
func (d BadgeDefinition) valid() bool {
	if ValidateBadgeID(d.ID) != nil {
		return false
	}
	switch p := d.Predicate.(type) {
	case CounterThreshold:
		return p.Counter != "" && p.Threshold > 0
	case PerEntityThreshold:
		return p.Family != "" && p.Threshold > 0
	case Manual:
		return true
	default:
		return false
	}
}

// EvaluateBadges returns badge IDs newly earned by the profile's current
// counter state. It is a pure function of final state, not of any delta:
// re-running it on an unchanged profile yields nothing, because IDs already in
// the badge set are filtered out. Output is sorted for determinism.
func EvaluateBadges(profile ScoreProfile, defs []BadgeDefinition) []BadgeID {
	var earned []BadgeID
	for _, d := range defs {
		if !d.valid() {
			continue
		}
		switch p := d.Predicate.(type) {
		case CounterThreshold:
			if profile.HasBadge(d.ID) {
				continue
			}
			if profile.Counters[p.Counter] >= p.Threshold {
				earned = append(earned, d.ID)
			}
		case PerEntityThreshold:
			for entity, count := range profile.PerEntity[p.Family] {
				if count < p.Threshold {
					continue
				}
				id := BadgeKey{FamilyID: string(d.ID), EntityID: entity}.ID()
				if profile.HasBadge(id) {
					continue
				}
				earned = append(earned, id)
			}
		}
	}
	sort.Slice(earned, func(i, j int) bool { return earned[i] < earned[j] })
	return earned
}

// BadgeProgress reports how far a user is from an unearned automated badge.
// Derived on demand, never stored.
type BadgeProgress struct {
	BadgeID   BadgeID `json:"badge_id"`
	Earned    bool    `json:"earned"`
	Remaining int64   `json:"remaining,omitempty"`
}

// ProgressFor computes progress entries for every automated badge. Earned
// badges report Remaining 0; unearned ones report the counter shortfall,
// clamped at 0. Manual and malformed definitions are skipped.
func ProgressFor(profile ScoreProfile, defs []BadgeDefinition) []BadgeProgress {
	var out []BadgeProgress
	for _, d := range defs {
		if !d.valid() {
			continue
		}
		switch p := d.Predicate.(type) {
		case CounterThreshold:
			out = append(out, progressEntry(profile, d.ID, profile.Counters[p.Counter], p.Threshold))
		case PerEntityThreshold:
			for entity, count := range profile.PerEntity[p.Family] {
				id := BadgeKey{FamilyID: string(d.ID), EntityID: entity}.ID()
				out = append(out, progressEntry(profile, id, count, p.Threshold))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BadgeID < out[j].BadgeID })
	return out
}

func progressEntry(profile ScoreProfile, id BadgeID, count, threshold int64) BadgeProgress {
	if profile.HasBadge(id) {
		return BadgeProgress{BadgeID: id, Earned: true}
	}
	remaining := threshold - count
	if remaining < 0 {
		remaining = 0
	}
	return BadgeProgress{BadgeID: id, Remaining: remaining}
}
