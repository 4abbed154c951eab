// Package rewards is the only writer of user ledgers and inventory. Every
// method runs inside the caller's transaction so the ledger mutation commits
// together with whatever triggered it.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/logger"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/events"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount     = errors.New("reward amount must be positive")
	ErrUnknownRewardType = errors.New("unknown reward type")
	ErrInvalidGrant      = errors.New("invalid item grant")
)

// Result describes one applied currency grant.
type Result struct {
	Ledger     *models.UserLedger
	RewardType string
	Base       int64
	Effective  int64
	Bonus      decimal.Decimal
}

// Events returns the output events of the grant.
func (r *Result) Events() []events.Event {
	return []events.Event{events.LedgerUpdated{
		UserID: r.Ledger.UserID,
		Points: r.Ledger.Points,
		Tokens: r.Ledger.Tokens,
	}}
}

type Applier struct {
	policy inventory.BoosterPolicy
	newID  func() string
}

func NewApplier(policy inventory.BoosterPolicy) *Applier {
	return &Applier{policy: policy, newID: uuid.NewString}
}

// Grant adds amount, scaled by the user's active boosters at now, to the
// ledger field for rewardType: XP rolls into points, TOKEN into tokens.
func (a *Applier) Grant(ctx context.Context, tx repositories.Repositories, userID, rewardType string, amount int64, now time.Time) (*Result, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if rewardType != models.RewardTypeXP && rewardType != models.RewardTypeToken {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRewardType, rewardType)
	}

	boosters, err := inventory.NewStore(tx.Inventory()).ActiveBoosters(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	bonus := a.policy.Bonus(boosters, rewardType)
	effective := a.policy.Apply(amount, bonus)

	var points, tokens int64
	if rewardType == models.RewardTypeXP {
		points = effective
	} else {
		tokens = effective
	}

	ledger, err := tx.Ledgers().AddBalances(ctx, userID, points, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to credit ledger: %w", err)
	}

	slog.Debug("Reward granted",
		slog.String("type", "eng"),
		slog.String("user_id", userID),
		slog.String("reward_type", rewardType),
		slog.Int64("base", amount),
		slog.Int64("effective", effective),
		slog.String("bonus", bonus.String()))

	return &Result{
		Ledger:     ledger,
		RewardType: rewardType,
		Base:       amount,
		Effective:  effective,
		Bonus:      bonus,
	}, nil
}

// GrantItem writes a new inventory item. Items with a duration expire at
// now plus the duration; zero means permanent.
func (a *Applier) GrantItem(ctx context.Context, tx repositories.Repositories, userID string, grant models.ItemGrant, sourceID string, now time.Time) (*models.InventoryItem, error) {
	if err := ValidateGrant(grant); err != nil {
		return nil, err
	}

	item := &models.InventoryItem{
		ID:        a.newID(),
		UserID:    userID,
		Type:      grant.Type,
		Name:      grant.Name,
		SourceID:  sourceID,
		Bonus:     grant.Bonus,
		Effect:    grant.Effect,
		GrantedAt: now,
	}
	if grant.DurationHours > 0 {
		expires := now.Add(time.Duration(grant.DurationHours) * time.Hour)
		item.ExpiresAt = &expires
	}

	if err := inventory.NewStore(tx.Inventory()).Add(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to grant item: %w", err)
	}

	slog.Debug("Item granted",
		slog.String("type", "eng"),
		slog.String("user_id", userID),
		slog.String("item_type", item.Type),
		slog.String("item", item.Name),
		slog.String("source", sourceID))

	return item, nil
}

// Spend removes tokens. It fails with repositories.ErrInsufficientTokens
// instead of overdrawing.
func (a *Applier) Spend(ctx context.Context, tx repositories.Repositories, userID string, amount int64) (*models.UserLedger, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if amount == 0 {
		return tx.Ledgers().Get(ctx, userID)
	}
	return tx.Ledgers().SpendTokens(ctx, userID, amount)
}

// SetProgression moves the user to act and level.
func (a *Applier) SetProgression(ctx context.Context, tx repositories.Repositories, userID string, act, level int) (*models.UserLedger, error) {
	if act < 0 || level < 0 {
		return nil, fmt.Errorf("%w: act and level must not be negative, got %d/%d", ErrInvalidAmount, act, level)
	}
	ledger, err := tx.Ledgers().SetProgression(ctx, userID, act, level)
	if err != nil {
		return nil, err
	}

	logger.LogEngine("Progression updated",
		slog.String("user_id", userID),
		slog.Int("act", act),
		slog.Int("level", level))

	return ledger, nil
}

// ValidateGrant checks an item grant from the catalog.
func ValidateGrant(grant models.ItemGrant) error {
	known := false
	for _, t := range models.ItemTypes {
		if grant.Type == t {
			known = true
			break
		}
	}
	switch {
	case !known:
		return fmt.Errorf("%w: unknown item type %q", ErrInvalidGrant, grant.Type)
	case grant.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidGrant)
	case grant.DurationHours < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidGrant)
	case grant.Bonus.IsNegative():
		return fmt.Errorf("%w: negative bonus", ErrInvalidGrant)
	case grant.Type != models.ItemTypeBoosters && !grant.Bonus.IsZero():
		return fmt.Errorf("%w: only boosters carry a bonus", ErrInvalidGrant)
	}
	return nil
}
