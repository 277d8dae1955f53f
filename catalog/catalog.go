// Package catalog holds the static scoring configuration: the level tier
// ladder and the badge catalog. Both are loaded once at process start and
// treated as immutable; the engine receives them as explicit arguments, never
// through mutable globals.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"crewscore/core"
)

// Catalog bundles the tier ladder and badge definitions.
type Catalog struct {
	Tiers  []core.LevelTier
	Badges []core.BadgeDefinition
}

// LowestTier returns the tier new profiles start in.
func (c *Catalog) LowestTier() core.LevelTier {
	return core.ResolveLevel(0, c.Tiers)
}

// Validate checks the tier ladder (fatal on error: a broken ladder breaks
// level resolution for everyone) and prunes malformed badge definitions,
// returning the dropped IDs so the caller can log them. A single bad badge
// must never block scoring.
func (c *Catalog) Validate() ([]core.BadgeID, error) {
	if err := core.ValidateTiers(c.Tiers); err != nil {
		return nil, fmt.Errorf("tier ladder: %w", err)
	}
	kept := c.Badges[:0]
	var dropped []core.BadgeID
	seen := map[core.BadgeID]struct{}{}
	for _, d := range c.Badges {
		if _, dup := seen[d.ID]; dup || !validDefinition(d) {
			dropped = append(dropped, d.ID)
			continue
		}
		seen[d.ID] = struct{}{}
		kept = append(kept, d)
	}
	c.Badges = kept
	return dropped, nil
}

func validDefinition(d core.BadgeDefinition) bool {
	if core.ValidateBadgeID(d.ID) != nil {
		return false
	}
	switch p := d.Predicate.(type) {
	case core.CounterThreshold:
		return p.Counter != "" && p.Threshold > 0
	case core.PerEntityThreshold:
		return p.Family != "" && p.Threshold > 0
	case core.Manual:
		return true
	default:
		return false
	}
}

// catalogFile is the on-disk JSON shape. Predicates are flattened into a
// tagged object because interfaces do not unmarshal directly.
type catalogFile struct {
	Tiers  []core.LevelTier `json:"tiers"`
	Badges []badgeFile      `json:"badges"`
}

type badgeFile struct {
	ID        core.BadgeID  `json:"id"`
	Name      string        `json:"name"`
	Category  string        `json:"category"`
	Rarity    string        `json:"rarity"`
	Predicate predicateFile `json:"predicate"`
}

type predicateFile struct {
	Kind      string `json:"kind"` // counter | per_entity | manual
	Counter   string `json:"counter,omitempty"`
	Family    string `json:"family,omitempty"`
	Threshold int64  `json:"threshold,omitempty"`
}

// LoadFromFile reads and validates a catalog from a JSON file.
func LoadFromFile(path string) (*Catalog, []core.BadgeID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var raw catalogFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c := &Catalog{Tiers: raw.Tiers}
	for _, b := range raw.Badges {
		c.Badges = append(c.Badges, core.BadgeDefinition{
			ID:        b.ID,
			Name:      b.Name,
			Category:  b.Category,
			Rarity:    b.Rarity,
			Predicate: b.Predicate.toPredicate(),
		})
	}
	dropped, err := c.Validate()
	if err != nil {
		return nil, nil, err
	}
	return c, dropped, nil
}

func (p predicateFile) toPredicate() core.BadgePredicate {
	switch p.Kind {
	case "counter":
		return core.CounterThreshold{Counter: p.Counter, Threshold: p.Threshold}
	case "per_entity":
		return core.PerEntityThreshold{Family: p.Family, Threshold: p.Threshold}
	case "manual":
		return core.Manual{}
	default:
		return nil // dropped by Validate
	}
}
