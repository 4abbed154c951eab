// Package shop decides whether catalog items may be bought and performs
// purchases.
package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/logger"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/events"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/inventory"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/rewards"
)

// Reason explains a purchase decision.
type Reason string

const (
	ReasonOK                 Reason = "ok"
	ReasonOwned              Reason = "owned"
	ReasonActLocked          Reason = "act_locked"
	ReasonLevelLocked        Reason = "level_locked"
	ReasonInsufficientTokens Reason = "insufficient_tokens"
)

// Decision is the user-facing result of a purchase check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

// IsLocked reports whether the act/level gate blocks item for the user.
func IsLocked(user *models.UserLedger, item *models.ShopItem) bool {
	return user.Act < item.RequiredAct ||
		(user.Act == item.RequiredAct && user.Level < item.RequiredLevel)
}

// CanPurchase checks the act/level gate and the token balance. An item the
// user already owns bypasses the gate.
func CanPurchase(user *models.UserLedger, item *models.ShopItem, ownsAlready bool) Decision {
	if !ownsAlready && IsLocked(user, item) {
		if user.Act < item.RequiredAct {
			return Decision{Reason: ReasonActLocked}
		}
		return Decision{Reason: ReasonLevelLocked}
	}
	if user.Tokens < item.Price {
		return Decision{Reason: ReasonInsufficientTokens}
	}
	if ownsAlready {
		return Decision{Allowed: true, Reason: ReasonOwned}
	}
	return Decision{Allowed: true, Reason: ReasonOK}
}

// PurchaseRequested asks to buy a catalog item.
type PurchaseRequested struct {
	UserID        string `json:"userId"`
	CatalogItemID string `json:"catalogItemId"`
}

// Receipt is the outcome of a purchase. Item and Ledger are set only when
// the purchase went through.
type Receipt struct {
	Decision
	Item   *models.InventoryItem `json:"item,omitempty"`
	Ledger *models.UserLedger    `json:"ledger,omitempty"`
}

type Gate struct {
	store     repositories.Store
	applier   *rewards.Applier
	clock     clock.Clock
	publisher events.Publisher
}

func NewGate(store repositories.Store, applier *rewards.Applier, c clock.Clock, publisher events.Publisher) *Gate {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Gate{store: store, applier: applier, clock: c, publisher: publisher}
}

// Purchase checks the gate and, when allowed, spends tokens and grants the
// item in one transaction. Rejections are returned as a Receipt, not an error.
func (g *Gate) Purchase(ctx context.Context, req PurchaseRequested) (*Receipt, error) {
	item, err := g.store.Catalog().ShopItem(ctx, req.CatalogItemID)
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()
	var (
		receipt *Receipt
		batch   events.Batch
	)
	err = g.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		batch = events.Batch{}

		ledger, err := tx.Ledgers().GetForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}

		owns, err := inventory.NewStore(tx.Inventory()).Owns(ctx, req.UserID, item.Type, item.ID, now)
		if err != nil {
			return err
		}

		decision := CanPurchase(ledger, item, owns)
		receipt = &Receipt{Decision: decision}
		if !decision.Allowed {
			return nil
		}

		ledger, err = g.applier.Spend(ctx, tx, req.UserID, item.Price)
		if errors.Is(err, repositories.ErrInsufficientTokens) {
			receipt.Decision = Decision{Reason: ReasonInsufficientTokens}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to spend tokens: %w", err)
		}

		granted, err := g.applier.GrantItem(ctx, tx, req.UserID, item.Grant(), item.ID, now)
		if err != nil {
			return err
		}

		receipt.Item = granted
		receipt.Ledger = ledger
		batch.Add(
			events.LedgerUpdated{UserID: req.UserID, Points: ledger.Points, Tokens: ledger.Tokens},
			events.InventoryGranted{UserID: req.UserID, Item: *granted},
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if receipt.Allowed {
		logger.LogEngine("Item purchased",
			slog.String("user_id", req.UserID),
			slog.String("item_id", item.ID),
			slog.Int64("price", item.Price))
		g.publisher.Publish(ctx, batch.Events()...)
	} else {
		slog.Debug("Purchase rejected",
			slog.String("type", "eng"),
			slog.String("user_id", req.UserID),
			slog.String("item_id", item.ID),
			slog.String("reason", string(receipt.Reason)))
	}
	return receipt, nil
}
