package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/memstore"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"github.com/shopspring/decimal"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time {
	return &t
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{name: "Permanent", expiresAt: nil, want: false},
		{name: "Expired one second ago", expiresAt: at(now.Add(-time.Second)), want: true},
		{name: "Expires in an hour", expiresAt: at(now.Add(time.Hour)), want: false},
		{name: "Expires exactly now", expiresAt: at(now), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &models.InventoryItem{ID: "i", ExpiresAt: tt.expiresAt}
			if got := IsExpired(item, now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_ActiveItems(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memstore.New().Inventory())

	items := []*models.InventoryItem{
		{ID: "a", UserID: "u1", Type: models.ItemTypeFrames, Name: "Old frame", GrantedAt: now.Add(-48 * time.Hour), ExpiresAt: at(now.Add(-time.Second))},
		{ID: "b", UserID: "u1", Type: models.ItemTypeFrames, Name: "New frame", GrantedAt: now, ExpiresAt: at(now.Add(time.Hour))},
		{ID: "c", UserID: "u1", Type: models.ItemTypeTitles, Name: "Regular", GrantedAt: now},
		{ID: "d", UserID: "u2", Type: models.ItemTypeFrames, Name: "Other user", GrantedAt: now},
	}
	for _, item := range items {
		if err := store.Add(ctx, item); err != nil {
			t.Fatalf("Add(%s) error = %v", item.ID, err)
		}
	}

	active, err := store.ActiveItems(ctx, "u1", "", now)
	if err != nil {
		t.Fatalf("ActiveItems() error = %v", err)
	}
	if len(active) != 2 || active[0].ID != "b" || active[1].ID != "c" {
		t.Errorf("ActiveItems() = %v, want [b c]", ids(active))
	}

	frames, err := store.ActiveItems(ctx, "u1", models.ItemTypeFrames, now)
	if err != nil {
		t.Fatalf("ActiveItems() error = %v", err)
	}
	if len(frames) != 1 || frames[0].ID != "b" {
		t.Errorf("ActiveItems(Frames) = %v, want [b]", ids(frames))
	}

	later, _ := store.ActiveItems(ctx, "u1", models.ItemTypeFrames, now.Add(2*time.Hour))
	if len(later) != 0 {
		t.Errorf("ActiveItems(Frames) two hours later = %v, want none", ids(later))
	}
}

func TestStore_AddRejectsInvalid(t *testing.T) {
	store := NewStore(memstore.New().Inventory())
	err := store.Add(context.Background(), &models.InventoryItem{
		ID:        "x",
		UserID:    "u1",
		GrantedAt: now,
		ExpiresAt: at(now.Add(-time.Hour)),
	})
	if err == nil {
		t.Error("Add() accepted an item that expires before it is granted")
	}
}

func TestBoosterPolicy_Bonus(t *testing.T) {
	booster := func(bonus, effect string) *models.InventoryItem {
		return &models.InventoryItem{Type: models.ItemTypeBoosters, Bonus: decimal.RequireFromString(bonus), Effect: effect}
	}

	tests := []struct {
		name     string
		boosters []*models.InventoryItem
		reward   string
		want     string
	}{
		{name: "None", boosters: nil, reward: models.RewardTypeXP, want: "0"},
		{name: "Single", boosters: []*models.InventoryItem{booster("0.5", "")}, reward: models.RewardTypeXP, want: "0.5"},
		{name: "Additive", boosters: []*models.InventoryItem{booster("0.25", ""), booster("0.25", models.RewardTypeXP)}, reward: models.RewardTypeXP, want: "0.5"},
		{name: "Effect mismatch", boosters: []*models.InventoryItem{booster("0.5", models.RewardTypeToken)}, reward: models.RewardTypeXP, want: "0"},
		{name: "Capped", boosters: []*models.InventoryItem{booster("0.75", ""), booster("0.75", "")}, reward: models.RewardTypeXP, want: "1"},
	}

	policy := NewBoosterPolicy(1.0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Bonus(tt.boosters, tt.reward)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Bonus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoosterPolicy_Apply(t *testing.T) {
	policy := NewBoosterPolicy(1.0)

	if got := policy.Apply(100, decimal.RequireFromString("0.5")); got != 150 {
		t.Errorf("Apply(100, 0.5) = %d, want 150", got)
	}
	if got := policy.Apply(100, decimal.Zero); got != 100 {
		t.Errorf("Apply(100, 0) = %d, want 100", got)
	}
	if got := policy.Apply(15, decimal.RequireFromString("0.1")); got != 16 {
		t.Errorf("Apply(15, 0.1) = %d, want 16", got)
	}
}

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New().Inventory()
	fake := clock.NewFake(now)

	for i, expiry := range []*time.Time{
		at(now.Add(-72 * time.Hour)),
		at(now.Add(-time.Hour)),
		nil,
	} {
		item := &models.InventoryItem{
			ID:        string(rune('a' + i)),
			UserID:    "u1",
			Type:      models.ItemTypeBoosters,
			GrantedAt: now.Add(-96 * time.Hour),
			ExpiresAt: expiry,
		}
		if err := repo.Insert(ctx, item); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	removed, err := NewSweeper(repo, fake, 24*time.Hour).Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep() removed = %d, want 1", removed)
	}

	left, _ := repo.ListByUser(ctx, "u1", "")
	if len(left) != 2 {
		t.Errorf("items left = %v, want 2", ids(left))
	}
}

func ids(items []*models.InventoryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}
