package loyalty

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/quests"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/shop"
	"github.com/shopspring/decimal"
)

func newMemoryEngine(t *testing.T, now time.Time) *Engine {
	t.Helper()
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Engine.SweepEnabled = false
	e := New(cfg, "test", "none")
	e.Clock = clock.NewFake(now)

	if err := e.SetupStore(ctx, true); err != nil {
		t.Fatalf("SetupStore() error = %v", err)
	}
	if err := e.SeedCatalog(ctx); err != nil {
		t.Fatalf("SeedCatalog() error = %v", err)
	}
	if err := e.Setup(ctx); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	t.Cleanup(func() { e.Close(context.Background()) })
	return e
}

func TestEngineEndToEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	e := newMemoryEngine(t, now)

	if len(e.Quests.Quests()) == 0 {
		t.Fatal("no quests loaded from the default catalog")
	}

	if _, err := e.Processor.CreateUser(ctx, "u1"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	outcome, err := e.Processor.OrderCompleted(ctx, &quests.OrderCompleted{
		UserID:     "u1",
		OrderID:    "o-1",
		OrderTotal: decimal.NewFromInt(25),
		Items:      []quests.OrderItem{{Name: "Ramen", Price: decimal.NewFromInt(25)}},
		Timestamp:  now,
	})
	if err != nil {
		t.Fatalf("OrderCompleted() error = %v", err)
	}

	var first *quests.CompletionResult
	for i := range outcome.Completions {
		if outcome.Completions[i].QuestID == "q-act0-1" {
			first = &outcome.Completions[i]
		}
	}
	if first == nil {
		t.Fatalf("q-act0-1 not completed, got %+v", outcome.Completions)
	}

	standing, err := e.Tiers.Standing(ctx, "u1")
	if err != nil {
		t.Fatalf("Standing() error = %v", err)
	}
	if standing.Points != first.RewardAmount {
		t.Errorf("Points = %d, want %d", standing.Points, first.RewardAmount)
	}
	if standing.Current.Name != "Bronze" {
		t.Errorf("Current tier = %s, want Bronze", standing.Current.Name)
	}

	titles, err := e.Inventory.ActiveItems(ctx, "u1", models.ItemTypeTitles, now)
	if err != nil {
		t.Fatalf("ActiveItems() error = %v", err)
	}
	if len(titles) != 1 {
		t.Errorf("titles = %d, want 1", len(titles))
	}

	again, err := e.Processor.OrderCompleted(ctx, &quests.OrderCompleted{
		UserID:     "u1",
		OrderID:    "o-1",
		OrderTotal: decimal.NewFromInt(25),
		Timestamp:  now,
	})
	if err != nil {
		t.Fatalf("duplicate OrderCompleted() error = %v", err)
	}
	if !again.Duplicate || len(again.Completions) != 0 {
		t.Errorf("duplicate outcome = %+v", again)
	}
}

func TestEngineLockedPurchase(t *testing.T) {
	ctx := context.Background()
	e := newMemoryEngine(t, time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

	if _, err := e.Processor.CreateUser(ctx, "u2"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	receipt, err := e.Processor.Purchase(ctx, shop.PurchaseRequested{UserID: "u2", CatalogItemID: "frame-gold"})
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	if receipt.Allowed || receipt.Reason != shop.ReasonActLocked {
		t.Errorf("Decision = %+v, want act_locked", receipt.Decision)
	}
}

func TestEngineSetupWithoutStore(t *testing.T) {
	e := New(DefaultConfig(), "test", "none")
	if err := e.Setup(context.Background()); err == nil {
		t.Fatal("expected error without a store")
	}
}
