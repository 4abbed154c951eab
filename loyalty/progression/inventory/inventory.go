// Package inventory owns granted items. Items are immutable once created and
// expire logically at read time.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/shopspring/decimal"
)

// IsExpired reports whether item is past its expiry at now. Permanent items
// never expire and an item is still active at exactly its expiry instant.
func IsExpired(item *models.InventoryItem, now time.Time) bool {
	return item.ExpiresAt != nil && now.After(*item.ExpiresAt)
}

// Store wraps an InventoryRepository with the expiry rule.
type Store struct {
	repo repositories.InventoryRepository
}

func NewStore(repo repositories.InventoryRepository) *Store {
	return &Store{repo: repo}
}

// Add persists a new item.
func (s *Store) Add(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == "" || item.UserID == "" {
		return fmt.Errorf("inventory item requires id and user id")
	}
	if item.ExpiresAt != nil && item.ExpiresAt.Before(item.GrantedAt) {
		return fmt.Errorf("inventory item %s expires before it is granted", item.ID)
	}
	return s.repo.Insert(ctx, item)
}

// ActiveItems returns the user's non-expired items, optionally filtered by
// type. now must be read once per operation by the caller.
func (s *Store) ActiveItems(ctx context.Context, userID, itemType string, now time.Time) ([]*models.InventoryItem, error) {
	items, err := s.repo.ListByUser(ctx, userID, itemType)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}

	active := make([]*models.InventoryItem, 0, len(items))
	for _, item := range items {
		if !IsExpired(item, now) {
			active = append(active, item)
		}
	}
	return active, nil
}

// ActiveBoosters returns the user's non-expired boosters.
func (s *Store) ActiveBoosters(ctx context.Context, userID string, now time.Time) ([]*models.InventoryItem, error) {
	return s.ActiveItems(ctx, userID, models.ItemTypeBoosters, now)
}

// Owns reports whether the user holds an active item sourced from sourceID.
func (s *Store) Owns(ctx context.Context, userID, itemType, sourceID string, now time.Time) (bool, error) {
	items, err := s.ActiveItems(ctx, userID, itemType, now)
	if err != nil {
		return false, err
	}
	for _, item := range items {
		if item.SourceID == sourceID {
			return true, nil
		}
	}
	return false, nil
}

// BoosterPolicy folds active boosters into a reward multiplier. Bonuses stack
// additively and the sum is capped at MaxBonus.
type BoosterPolicy struct {
	MaxBonus decimal.Decimal
}

func NewBoosterPolicy(maxBonus float64) BoosterPolicy {
	return BoosterPolicy{MaxBonus: decimal.NewFromFloat(maxBonus)}
}

// Bonus sums the bonus of boosters that apply to rewardType. A booster with
// an empty effect applies to every reward type.
func (p BoosterPolicy) Bonus(boosters []*models.InventoryItem, rewardType string) decimal.Decimal {
	total := decimal.Zero
	for _, b := range boosters {
		if b.Type != models.ItemTypeBoosters || !b.Bonus.IsPositive() {
			continue
		}
		if b.Effect != "" && b.Effect != rewardType {
			continue
		}
		total = total.Add(b.Bonus)
	}
	if p.MaxBonus.GreaterThanOrEqual(decimal.Zero) && total.GreaterThan(p.MaxBonus) {
		return p.MaxBonus
	}
	return total
}

// Apply returns amount scaled by 1 + bonus, truncated toward zero.
func (p BoosterPolicy) Apply(amount int64, bonus decimal.Decimal) int64 {
	if bonus.IsZero() {
		return amount
	}
	return decimal.NewFromInt(amount).Mul(decimal.NewFromInt(1).Add(bonus)).IntPart()
}
