// Package tiers derives a user's rank from points. Tiers are never stored per
// user; they are resolved from the ledger on every read.
package tiers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
)

var (
	ErrNoFloorTier   = errors.New("tier table must contain a tier with min_points 0")
	ErrDuplicateTier = errors.New("tier thresholds must be unique")
	ErrUnknownTier   = errors.New("unknown tier")
)

// Tier is one rank of the static tier table.
type Tier struct {
	Name      string            `json:"name"`
	MinPoints int64             `json:"min_points"`
	Visual    map[string]string `json:"visual,omitempty"`
}

// Resolver maps points to tiers. It is immutable and safe for concurrent use.
type Resolver struct {
	tiers []Tier
}

// NewResolver validates the table and sorts it by threshold. The table must
// contain a floor tier and no two tiers may share a threshold.
func NewResolver(table []*models.Tier) (*Resolver, error) {
	tiers := make([]Tier, 0, len(table))
	for _, t := range table {
		if t.MinPoints < 0 {
			return nil, fmt.Errorf("tier %q has negative threshold %d", t.Name, t.MinPoints)
		}
		tiers = append(tiers, Tier{Name: t.Name, MinPoints: t.MinPoints, Visual: t.Visual})
	}

	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinPoints < tiers[j].MinPoints })

	if len(tiers) == 0 || tiers[0].MinPoints != 0 {
		return nil, ErrNoFloorTier
	}

	names := make(map[string]struct{}, len(tiers))
	for i, t := range tiers {
		if i > 0 && tiers[i-1].MinPoints == t.MinPoints {
			return nil, fmt.Errorf("%w: %q and %q both start at %d", ErrDuplicateTier, tiers[i-1].Name, t.Name, t.MinPoints)
		}
		if _, ok := names[t.Name]; ok {
			return nil, fmt.Errorf("duplicate tier name %q", t.Name)
		}
		names[t.Name] = struct{}{}
	}

	return &Resolver{tiers: tiers}, nil
}

// Resolve returns the highest tier whose threshold is at or below points.
// Negative points resolve to the floor tier.
func (r *Resolver) Resolve(points int64) Tier {
	i := sort.Search(len(r.tiers), func(i int) bool { return r.tiers[i].MinPoints > points })
	if i == 0 {
		return r.tiers[0]
	}
	return r.tiers[i-1]
}

// Next returns the tier after the one points resolves to, if any.
func (r *Resolver) Next(points int64) (Tier, bool) {
	i := sort.Search(len(r.tiers), func(i int) bool { return r.tiers[i].MinPoints > points })
	if i >= len(r.tiers) {
		return Tier{}, false
	}
	return r.tiers[i], true
}

// ByName looks a tier up by name.
func (r *Resolver) ByName(name string) (Tier, error) {
	for _, t := range r.tiers {
		if t.Name == name {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %s", ErrUnknownTier, name)
}

// Tiers returns a copy of the table in ascending order.
func (r *Resolver) Tiers() []Tier {
	return append([]Tier(nil), r.tiers...)
}

// IsLocked reports whether a tier-gated cosmetic is unavailable. A cosmetic
// stays usable below its threshold while it remains equipped, but cannot be
// re-selected once unequipped.
func IsLocked(tier Tier, points int64, currentlyEquipped bool) bool {
	return points < tier.MinPoints && !currentlyEquipped
}
