package shop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/memstore"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/events"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/inventory"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/rewards"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestCanPurchase(t *testing.T) {
	item := &models.ShopItem{ID: "aura", Price: 100, RequiredAct: 2, RequiredLevel: 3}

	tests := []struct {
		name string
		user models.UserLedger
		owns bool
		want Decision
	}{
		{name: "Exact gate", user: models.UserLedger{Act: 2, Level: 3, Tokens: 100}, want: Decision{Allowed: true, Reason: ReasonOK}},
		{name: "Level below", user: models.UserLedger{Act: 2, Level: 2, Tokens: 10_000}, want: Decision{Reason: ReasonLevelLocked}},
		{name: "Act below", user: models.UserLedger{Act: 1, Level: 9, Tokens: 10_000}, want: Decision{Reason: ReasonActLocked}},
		{name: "Later act low level", user: models.UserLedger{Act: 3, Level: 0, Tokens: 100}, want: Decision{Allowed: true, Reason: ReasonOK}},
		{name: "Owned bypasses gate", user: models.UserLedger{Act: 2, Level: 2, Tokens: 100}, owns: true, want: Decision{Allowed: true, Reason: ReasonOwned}},
		{name: "Insufficient tokens", user: models.UserLedger{Act: 2, Level: 3, Tokens: 99}, want: Decision{Reason: ReasonInsufficientTokens}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanPurchase(&tt.user, item, tt.owns); got != tt.want {
				t.Errorf("CanPurchase() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newGate(t *testing.T, ledger *models.UserLedger) (*Gate, *memstore.Store, *events.Recorder) {
	t.Helper()
	ctx := context.Background()

	store := memstore.New()
	err := store.Catalog().Save(ctx, nil, nil, []*models.ShopItem{
		{ID: "frame-gold", Type: models.ItemTypeFrames, Name: "Gold Frame", Price: 300, RequiredAct: 2, RequiredLevel: 3},
		{ID: "boost-day", Type: models.ItemTypeBoosters, Name: "Day Booster", Price: 50, DurationHours: 24},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Ledgers().Create(ctx, ledger); err != nil {
		t.Fatal(err)
	}

	recorder := &events.Recorder{}
	applier := rewards.NewApplier(inventory.NewBoosterPolicy(1.0))
	return NewGate(store, applier, clock.NewFake(now), recorder), store, recorder
}

func TestGate_Purchase(t *testing.T) {
	ctx := context.Background()
	gate, store, recorder := newGate(t, &models.UserLedger{UserID: "u1", Act: 2, Level: 3, Tokens: 320})

	receipt, err := gate.Purchase(ctx, PurchaseRequested{UserID: "u1", CatalogItemID: "frame-gold"})
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}
	if !receipt.Allowed || receipt.Item == nil || receipt.Ledger.Tokens != 20 {
		t.Fatalf("Purchase() = %+v", receipt)
	}
	if receipt.Item.SourceID != "frame-gold" || receipt.Item.ExpiresAt != nil {
		t.Errorf("granted item = %+v", receipt.Item)
	}
	if recorder.Count(events.NameInventoryGranted) != 1 || recorder.Count(events.NameLedgerUpdated) != 1 {
		t.Errorf("events = %v", recorder.Events())
	}

	// Dropping below the gate keeps the owned item purchasable, but tokens still count.
	if _, err := store.Ledgers().SetProgression(ctx, "u1", 2, 1); err != nil {
		t.Fatal(err)
	}
	receipt, err = gate.Purchase(ctx, PurchaseRequested{UserID: "u1", CatalogItemID: "frame-gold"})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Allowed || receipt.Reason != ReasonInsufficientTokens {
		t.Errorf("Purchase() = %+v, want insufficient tokens", receipt.Decision)
	}

	ledger, _ := store.Ledgers().Get(ctx, "u1")
	if ledger.Tokens != 20 {
		t.Errorf("tokens = %d, want 20", ledger.Tokens)
	}
}

func TestGate_PurchaseLocked(t *testing.T) {
	ctx := context.Background()
	gate, store, recorder := newGate(t, &models.UserLedger{UserID: "u1", Act: 2, Level: 2, Tokens: 10_000})

	receipt, err := gate.Purchase(ctx, PurchaseRequested{UserID: "u1", CatalogItemID: "frame-gold"})
	if err != nil {
		t.Fatal(err)
	}
	if receipt.Allowed || receipt.Reason != ReasonLevelLocked {
		t.Errorf("Purchase() = %+v, want level lock", receipt.Decision)
	}

	ledger, _ := store.Ledgers().Get(ctx, "u1")
	items, _ := store.Inventory().ListByUser(ctx, "u1", "")
	if ledger.Tokens != 10_000 || len(items) != 0 {
		t.Errorf("rejected purchase changed state: tokens %d items %d", ledger.Tokens, len(items))
	}
	if len(recorder.Events()) != 0 {
		t.Errorf("rejected purchase published %v", recorder.Events())
	}
}

func TestGate_PurchaseTimedItem(t *testing.T) {
	ctx := context.Background()
	gate, _, _ := newGate(t, &models.UserLedger{UserID: "u1", Tokens: 50})

	receipt, err := gate.Purchase(ctx, PurchaseRequested{UserID: "u1", CatalogItemID: "boost-day"})
	if err != nil {
		t.Fatal(err)
	}
	if !receipt.Allowed || receipt.Item.ExpiresAt == nil || !receipt.Item.ExpiresAt.Equal(now.Add(24*time.Hour)) {
		t.Errorf("Purchase() = %+v", receipt)
	}
}

func TestGate_PurchaseUnknownItem(t *testing.T) {
	gate, _, _ := newGate(t, &models.UserLedger{UserID: "u1"})

	_, err := gate.Purchase(context.Background(), PurchaseRequested{UserID: "u1", CatalogItemID: "nope"})
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Purchase() error = %v, want ErrNotFound", err)
	}
}
