package core

import "fmt"

// Multiplier and bonus names. Names are stable: they appear in award
// breakdowns surfaced to callers.
const (
	MultNewUser            = "new_user"
	MultFoundingCrew       = "founding_crew"
	MultBetaPioneer        = "beta_pioneer"
	MultFirstTimeCity      = "first_time_city"
	MultFirstTimeContinent = "first_time_continent"

	BonusPhoto          = "photo"
	BonusInternational  = "international"
	BonusDetailedReview = "detailed_review"
	BonusAttendees      = "attendees"
	BonusStreak         = "streak"
)

// Status multiplier factors. Any subset may co-apply; new_user is time-boxed
// upstream (the caller clears the flag after 30 days), founding_crew and
// beta_pioneer are permanent cohort grants.
const (
	factorNewUser            = 2.0
	factorFoundingCrew       = 1.5
	factorBetaPioneer        = 1.25
	factorFirstTimeCity      = 1.5
	factorFirstTimeContinent = 2.0
)

// Counter names used by badge predicates.
const (
	CounterLayoverCheckins  = "layover_checkins"
	CounterSpotCheckins     = "spot_checkins"
	CounterPlansHosted      = "plans_hosted"
	CounterPlansAttended    = "plans_attended"
	CounterReviews          = "reviews"
	CounterConnections      = "connections"
	CounterStreakClaims     = "streak_claims"
	CounterUniqueCities     = "unique_cities"
	CounterUniqueContinents = "unique_continents"

	FamilyCityCheckins = "city_checkins"
)

// bonusTier is one rung of a threshold-tiered bonus. Only the highest matched
// rung applies, never the sum of all matched rungs.
type bonusTier struct {
	threshold int
	amount    int
}

// actionPolicy fixes, per action type, the base points and which named
// multipliers and bonuses the action is eligible for.
type actionPolicy struct {
	base           int
	contextMults   bool // first_time_city / first_time_continent eligible
	photoBonus     bool
	intlBonus      bool
	detailedBonus  bool
	attendeeTiers  []bonusTier
	streakTiers    []bonusTier
	counters       []string // flat counters incremented by one
	cityFamily     bool     // bump per-city counter keyed by Context.CityID
	firstCityCount bool     // bump unique_cities / unique_continents on first-time flags
}

// policies is the closed eligibility table. An action type absent from this
// table is unknown and must be rejected, never scored as zero.
var policies = map[ActionType]actionPolicy{
	ActionLayoverCheckIn: {
		base:           10,
		contextMults:   true,
		intlBonus:      true,
		counters:       []string{CounterLayoverCheckins},
		cityFamily:     true,
		firstCityCount: true,
	},
	ActionSpotCheckIn: {
		base:           15,
		contextMults:   true,
		photoBonus:     true,
		intlBonus:      true,
		counters:       []string{CounterSpotCheckins},
		cityFamily:     true,
		firstCityCount: true,
	},
	ActionPlanHosted: {
		base: 50,
		attendeeTiers: []bonusTier{
			{threshold: 5, amount: 25},
			{threshold: 10, amount: 50},
			{threshold: 20, amount: 100},
		},
		counters: []string{CounterPlansHosted},
	},
	ActionPlanAttended: {
		base:     20,
		counters: []string{CounterPlansAttended},
	},
	ActionReviewWritten: {
		base:          25,
		photoBonus:    true,
		detailedBonus: true,
		counters:      []string{CounterReviews},
	},
	ActionConnectionAccepted: {
		base:     5,
		counters: []string{CounterConnections},
	},
	ActionStreakBonus: {
		base: 10,
		streakTiers: []bonusTier{
			{threshold: 7, amount: 20},
			{threshold: 30, amount: 100},
		},
		counters: []string{CounterStreakClaims},
	},
}

// detailedReviewWords is the minimum word count for the detailed-review bonus.
const detailedReviewWords = 100

// KnownAction reports whether the action type has a scoring policy.
func KnownAction(t ActionType) bool {
	_, ok := policies[t]
	return ok
}

// ResolveComponents maps an action event plus the user's status flags onto the
// multiplier and bonus maps consumed by Calculate. Unknown action types return
// an error so integration bugs surface instead of silently awarding zero.
//
// Both first-time flags may be supplied on one event (a user's very first
// check-in anywhere); the resolver includes both and leaves any exclusivity
// decision to the caller building the context.
func ResolveComponents(ev ActionEvent, flags StatusFlags) (ScoreComponents, error) {
	pol, ok := policies[ev.Type]
	if !ok {
		return ScoreComponents{}, fmt.Errorf("unknown action type %q", ev.Type)
	}

	comps := ScoreComponents{
		BasePoints:  pol.base,
		Multipliers: map[string]float64{},
		Bonuses:     map[string]int{},
	}

	// Status multipliers are additively independent: any subset stacks.
	if flags.IsNewUser {
		comps.Multipliers[MultNewUser] = factorNewUser
	}
	if flags.IsFoundingCrew {
		comps.Multipliers[MultFoundingCrew] = factorFoundingCrew
	}
	if flags.IsBetaPioneer {
		comps.Multipliers[MultBetaPioneer] = factorBetaPioneer
	}

	if pol.contextMults {
		if ev.Context.FirstTimeCity {
			comps.Multipliers[MultFirstTimeCity] = factorFirstTimeCity
		}
		if ev.Context.FirstTimeContinent {
			comps.Multipliers[MultFirstTimeContinent] = factorFirstTimeContinent
		}
	}

	if pol.photoBonus && ev.Context.HasPhoto {
		comps.Bonuses[BonusPhoto] = 10
	}
	if pol.intlBonus && ev.Context.IsInternational {
		comps.Bonuses[BonusInternational] = 15
	}
	if pol.detailedBonus && ev.Context.WordCount >= detailedReviewWords {
		comps.Bonuses[BonusDetailedReview] = 15
	}
	if amount, ok := highestTier(pol.attendeeTiers, ev.Context.AttendeeCount); ok {
		comps.Bonuses[BonusAttendees] = amount
	}
	if amount, ok := highestTier(pol.streakTiers, ev.Context.StreakLength); ok {
		comps.Bonuses[BonusStreak] = amount
	}

	return comps, nil
}

// highestTier picks the single maximal matched rung. Tiers are declared in
// ascending threshold order.
func highestTier(tiers []bonusTier, value int) (int, bool) {
	amount, matched := 0, false
	for _, t := range tiers {
		if value >= t.threshold {
			amount, matched = t.amount, true
		}
	}
	return amount, matched
}

// ApplyCounters mutates the profile's running counters per the action type's
// increment rules. The caller owns cloning; this operates in place.
func ApplyCounters(p *ScoreProfile, ev ActionEvent) error {
	pol, ok := policies[ev.Type]
	if !ok {
		return fmt.Errorf("unknown action type %q", ev.Type)
	}
	if p.Counters == nil {
		p.Counters = map[string]int64{}
	}
	for _, name := range pol.counters {
		p.Counters[name]++
	}
	if pol.firstCityCount {
		if ev.Context.FirstTimeCity {
			p.Counters[CounterUniqueCities]++
		}
		if ev.Context.FirstTimeContinent {
			p.Counters[CounterUniqueContinents]++
		}
	}
	if pol.cityFamily && ev.Context.CityID != "" {
		if p.PerEntity == nil {
			p.PerEntity = map[string]map[string]int64{}
		}
		fam := p.PerEntity[FamilyCityCheckins]
		if fam == nil {
			fam = map[string]int64{}
			p.PerEntity[FamilyCityCheckins] = fam
		}
		fam[ev.Context.CityID]++
	}
	return nil
}
