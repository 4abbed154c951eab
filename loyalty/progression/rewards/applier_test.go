package rewards

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/memstore"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories/mock"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/inventory"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// mockTx exposes gomock repositories as a unit of work.
type mockTx struct {
	ledgers   *mock.MockLedgerRepository
	inventory *mock.MockInventoryRepository
}

func (m mockTx) Ledgers() repositories.LedgerRepository         { return m.ledgers }
func (m mockTx) Activity() repositories.ActivityRepository      { return nil }
func (m mockTx) Progress() repositories.QuestProgressRepository { return nil }
func (m mockTx) Inventory() repositories.InventoryRepository    { return m.inventory }
func (m mockTx) Events() repositories.ProcessedEventRepository  { return nil }

func newMockTx(t *testing.T) mockTx {
	ctrl := gomock.NewController(t)
	return mockTx{
		ledgers:   mock.NewMockLedgerRepository(ctrl),
		inventory: mock.NewMockInventoryRepository(ctrl),
	}
}

func expires(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestApplier_Grant(t *testing.T) {
	halfBooster := &models.InventoryItem{
		ID:        "b1",
		UserID:    "u1",
		Type:      models.ItemTypeBoosters,
		Bonus:     decimal.RequireFromString("0.5"),
		ExpiresAt: expires(time.Hour),
	}
	expiredBooster := &models.InventoryItem{
		ID:        "b2",
		UserID:    "u1",
		Type:      models.ItemTypeBoosters,
		Bonus:     decimal.RequireFromString("0.5"),
		ExpiresAt: expires(-time.Second),
	}

	tests := []struct {
		name       string
		rewardType string
		amount     int64
		boosters   []*models.InventoryItem
		wantPoints int64
		wantTokens int64
	}{
		{name: "XP without boosters", rewardType: models.RewardTypeXP, amount: 100, wantPoints: 100},
		{name: "XP with half booster", rewardType: models.RewardTypeXP, amount: 100, boosters: []*models.InventoryItem{halfBooster}, wantPoints: 150},
		{name: "Expired booster ignored", rewardType: models.RewardTypeXP, amount: 100, boosters: []*models.InventoryItem{expiredBooster}, wantPoints: 100},
		{name: "Tokens", rewardType: models.RewardTypeToken, amount: 40, boosters: []*models.InventoryItem{halfBooster}, wantTokens: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newMockTx(t)
			tx.inventory.EXPECT().
				ListByUser(gomock.Any(), "u1", models.ItemTypeBoosters).
				Return(tt.boosters, nil)
			tx.ledgers.EXPECT().
				AddBalances(gomock.Any(), "u1", tt.wantPoints, tt.wantTokens).
				Return(&models.UserLedger{UserID: "u1", Points: tt.wantPoints, Tokens: tt.wantTokens}, nil)

			got, err := NewApplier(inventory.NewBoosterPolicy(1.0)).Grant(context.Background(), tx, "u1", tt.rewardType, tt.amount, now)
			if err != nil {
				t.Fatalf("Grant() error = %v", err)
			}
			if got.Base != tt.amount {
				t.Errorf("Grant() base = %d, want %d", got.Base, tt.amount)
			}
			if got.Effective != tt.wantPoints+tt.wantTokens {
				t.Errorf("Grant() effective = %d, want %d", got.Effective, tt.wantPoints+tt.wantTokens)
			}
		})
	}
}

func TestApplier_GrantRejectsInvalid(t *testing.T) {
	a := NewApplier(inventory.NewBoosterPolicy(1.0))
	tx := newMockTx(t)

	if _, err := a.Grant(context.Background(), tx, "u1", models.RewardTypeXP, 0, now); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Grant(0) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := a.Grant(context.Background(), tx, "u1", "GEMS", 10, now); !errors.Is(err, ErrUnknownRewardType) {
		t.Errorf("Grant(GEMS) error = %v, want ErrUnknownRewardType", err)
	}
}

func TestApplier_GrantItem(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	a := NewApplier(inventory.NewBoosterPolicy(1.0))

	var timed, permanent *models.InventoryItem
	err := store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		var err error
		timed, err = a.GrantItem(ctx, tx, "u1", models.ItemGrant{
			Type:          models.ItemTypeBoosters,
			Name:          "Double Down",
			DurationHours: 24,
			Bonus:         decimal.RequireFromString("0.5"),
		}, "shop-booster", now)
		if err != nil {
			return err
		}
		permanent, err = a.GrantItem(ctx, tx, "u1", models.ItemGrant{Type: models.ItemTypeTitles, Name: "Regular"}, "q1", now)
		return err
	})
	if err != nil {
		t.Fatalf("GrantItem() error = %v", err)
	}

	if timed.ExpiresAt == nil || !timed.ExpiresAt.Equal(now.Add(24*time.Hour)) {
		t.Errorf("timed item expires at %v, want %v", timed.ExpiresAt, now.Add(24*time.Hour))
	}
	if permanent.ExpiresAt != nil {
		t.Errorf("permanent item expires at %v", permanent.ExpiresAt)
	}
	if timed.ID == permanent.ID {
		t.Error("items share an id")
	}

	_, err = a.GrantItem(ctx, newMockTx(t), "u1", models.ItemGrant{Type: "Hats", Name: "Top"}, "", now)
	if !errors.Is(err, ErrInvalidGrant) {
		t.Errorf("GrantItem(Hats) error = %v, want ErrInvalidGrant", err)
	}
}

func TestApplier_SpendIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	a := NewApplier(inventory.NewBoosterPolicy(1.0))

	if err := store.Ledgers().Create(ctx, &models.UserLedger{UserID: "u1", Tokens: 50}); err != nil {
		t.Fatal(err)
	}

	err := store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		if _, err := a.Grant(ctx, tx, "u1", models.RewardTypeXP, 100, now); err != nil {
			return err
		}
		_, err := a.Spend(ctx, tx, "u1", 80)
		return err
	})
	if !errors.Is(err, repositories.ErrInsufficientTokens) {
		t.Fatalf("Spend() error = %v, want ErrInsufficientTokens", err)
	}

	ledger, _ := store.Ledgers().Get(ctx, "u1")
	if ledger.Points != 0 || ledger.Tokens != 50 {
		t.Errorf("ledger after rollback = %d points %d tokens, want 0/50", ledger.Points, ledger.Tokens)
	}
}
