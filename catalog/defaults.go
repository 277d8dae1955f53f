package catalog

import "crewscore/core"

func capAt(v int64) *int64 { return &v }

// Default returns the built-in CrewMate progression catalog.
func Default() *Catalog {
	return &Catalog{
		Tiers: []core.LevelTier{
			{ID: "rookie", Name: "Rookie", MinCMS: 0, MaxCMS: capAt(99), Order: 1},
			{ID: "explorer", Name: "Explorer", MinCMS: 100, MaxCMS: capAt(249), Order: 2},
			{ID: "navigator", Name: "Navigator", MinCMS: 250, MaxCMS: capAt(499), Order: 3},
			{ID: "globetrotter", Name: "Globetrotter", MinCMS: 500, MaxCMS: capAt(999), Order: 4},
			{ID: "captain", Name: "Captain", MinCMS: 1000, Order: 5},
		},
		Badges: []core.BadgeDefinition{
			{ID: "first_layover", Name: "First Layover", Category: "travel", Rarity: "common",
				Predicate: core.CounterThreshold{Counter: core.CounterLayoverCheckins, Threshold: 1}},
			{ID: "frequent_flyer_10", Name: "Frequent Flyer", Category: "travel", Rarity: "uncommon",
				Predicate: core.CounterThreshold{Counter: core.CounterLayoverCheckins, Threshold: 10}},
			{ID: "layover_legend_50", Name: "Layover Legend", Category: "travel", Rarity: "epic",
				Predicate: core.CounterThreshold{Counter: core.CounterLayoverCheckins, Threshold: 50}},
			{ID: "spot_scout_5", Name: "Spot Scout", Category: "travel", Rarity: "common",
				Predicate: core.CounterThreshold{Counter: core.CounterSpotCheckins, Threshold: 5}},
			{ID: "review_rookie_1", Name: "First Review", Category: "contribution", Rarity: "common",
				Predicate: core.CounterThreshold{Counter: core.CounterReviews, Threshold: 1}},
			{ID: "review_guru_10", Name: "Review Guru", Category: "contribution", Rarity: "rare",
				Predicate: core.CounterThreshold{Counter: core.CounterReviews, Threshold: 10}},
			{ID: "review_master_50", Name: "Review Master", Category: "contribution", Rarity: "epic",
				Predicate: core.CounterThreshold{Counter: core.CounterReviews, Threshold: 50}},
			{ID: "first_host", Name: "First Host", Category: "social", Rarity: "common",
				Predicate: core.CounterThreshold{Counter: core.CounterPlansHosted, Threshold: 1}},
			{ID: "super_host_10", Name: "Super Host", Category: "social", Rarity: "rare",
				Predicate: core.CounterThreshold{Counter: core.CounterPlansHosted, Threshold: 10}},
			{ID: "joiner_5", Name: "Joiner", Category: "social", Rarity: "common",
				Predicate: core.CounterThreshold{Counter: core.CounterPlansAttended, Threshold: 5}},
			{ID: "social_butterfly_25", Name: "Social Butterfly", Category: "social", Rarity: "rare",
				Predicate: core.CounterThreshold{Counter: core.CounterConnections, Threshold: 25}},
			{ID: "globetrotter_10", Name: "Globetrotter", Category: "travel", Rarity: "rare",
				Predicate: core.CounterThreshold{Counter: core.CounterUniqueCities, Threshold: 10}},
			{ID: "continental_4", Name: "Continental", Category: "travel", Rarity: "epic",
				Predicate: core.CounterThreshold{Counter: core.CounterUniqueContinents, Threshold: 4}},
			{ID: "streak_keeper_5", Name: "Streak Keeper", Category: "engagement", Rarity: "uncommon",
				Predicate: core.CounterThreshold{Counter: core.CounterStreakClaims, Threshold: 5}},

			// one instance per city, earned at five check-ins there
			{ID: "city_expert", Name: "City Expert", Category: "travel", Rarity: "epic",
				Predicate: core.PerEntityThreshold{Family: core.FamilyCityCheckins, Threshold: 5}},

			// display-only; granted by cohort import or admin action
			{ID: "founding_crew", Name: "Founding Crew", Category: "cohort", Rarity: "legendary",
				Predicate: core.Manual{}},
			{ID: "beta_pioneer", Name: "Beta Pioneer", Category: "cohort", Rarity: "legendary",
				Predicate: core.Manual{}},
			{ID: "community_champion", Name: "Community Champion", Category: "cohort", Rarity: "legendary",
				Predicate: core.Manual{}},
		},
	}
}
