package core

import (
	"math"
	"sort"
)

// ScoreComponents is the intermediate shape produced by the resolver and
// consumed by Calculate. It is never persisted.
type ScoreComponents struct {
	BasePoints  int                `json:"base_points"`
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
	Bonuses     map[string]int     `json:"bonuses,omitempty"`
}

// ScoreAward is the immutable result of one score computation.
type ScoreAward struct {
	Points    int             `json:"points"`
	Breakdown ScoreComponents `json:"breakdown"`
}

// Calculate computes base*product(multipliers)+sum(bonuses), rounded once at
// the end with ties away from zero, floored at 0.
//
// Multiplier factors are folded in sorted key order so that identical inputs
// always produce bit-identical float intermediates; replayed events must score
// the same award every time.
func Calculate(base int, multipliers map[string]float64, bonuses map[string]int) int {
	factor := 1.0
	if len(multipliers) > 0 {
		names := make([]string, 0, len(multipliers))
		for name := range multipliers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			factor *= multipliers[name]
		}
	}
	sum := 0
	for _, amount := range bonuses {
		sum += amount
	}
	total := math.Round(float64(base)*factor + float64(sum))
	if total < 0 {
		return 0
	}
	return int(total)
}

// Award folds the components into a ScoreAward.
func (c ScoreComponents) Award() ScoreAward {
	return ScoreAward{Points: Calculate(c.BasePoints, c.Multipliers, c.Bonuses), Breakdown: c}
}
