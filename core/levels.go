package core

import (
	"fmt"
	"sort"
)

// LevelTier is one named band of cumulative CMS. MaxCMS nil marks the
// open-ended top tier. Tiers partition [0, inf) with no gaps or overlaps.
type LevelTier struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	MinCMS int64  `json:"min_cms"`
	MaxCMS *int64 `json:"max_cms,omitempty"`
	Order  int    `json:"order"`
}

// Contains reports whether cms falls inside the tier's band.
func (t LevelTier) Contains(cms int64) bool {
	if cms < t.MinCMS {
		return false
	}
	return t.MaxCMS == nil || cms <= *t.MaxCMS
}

// ValidateTiers checks that tiers form a contiguous, non-overlapping partition
// of [0, inf): first tier starts at 0, each MaxCMS+1 equals the next MinCMS,
// and only the last tier is open-ended.
func ValidateTiers(tiers []LevelTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("no tiers configured")
	}
	sorted := sortTiers(tiers)
	if sorted[0].MinCMS != 0 {
		return fmt.Errorf("first tier %q must start at 0, starts at %d", sorted[0].ID, sorted[0].MinCMS)
	}
	for i, t := range sorted {
		last := i == len(sorted)-1
		if last {
			if t.MaxCMS != nil {
				return fmt.Errorf("last tier %q must be open-ended", t.ID)
			}
			continue
		}
		if t.MaxCMS == nil {
			return fmt.Errorf("tier %q is open-ended but not last", t.ID)
		}
		if *t.MaxCMS < t.MinCMS {
			return fmt.Errorf("tier %q has max %d below min %d", t.ID, *t.MaxCMS, t.MinCMS)
		}
		if next := sorted[i+1]; *t.MaxCMS+1 != next.MinCMS {
			return fmt.Errorf("gap or overlap between tiers %q and %q", t.ID, next.ID)
		}
	}
	return nil
}

// ResolveLevel returns the tier containing cms. With a valid configuration
// exactly one tier matches; on a malformed table it fails closed to the lowest
// tier rather than blocking scoring.
func ResolveLevel(cms int64, tiers []LevelTier) LevelTier {
	if len(tiers) == 0 {
		return LevelTier{}
	}
	sorted := sortTiers(tiers)
	for _, t := range sorted {
		if t.Contains(cms) {
			return t
		}
	}
	return sorted[0]
}

// DetectLevelUp resolves tiers for both CMS values explicitly rather than
// assuming a monotonic tier index, so it stays correct if tier definitions are
// reordered between releases. CMS never decreases, so a change is always up.
func DetectLevelUp(oldCMS, newCMS int64, tiers []LevelTier) (oldTier, newTier LevelTier, leveledUp bool) {
	oldTier = ResolveLevel(oldCMS, tiers)
	newTier = ResolveLevel(newCMS, tiers)
	return oldTier, newTier, oldTier.ID != newTier.ID
}

func sortTiers(tiers []LevelTier) []LevelTier {
	sorted := make([]LevelTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinCMS < sorted[j].MinCMS })
	return sorted
}
