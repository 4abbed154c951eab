package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
)

func TestWithinTxRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Ledgers().Create(ctx, &models.UserLedger{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		if _, err := tx.Ledgers().AddBalances(ctx, "u1", 500, 20); err != nil {
			return err
		}
		if _, err := tx.Events().MarkProcessed(ctx, "u1", "order:1", time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() error = %v, want boom", err)
	}

	ledger, err := s.Ledgers().Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if ledger.Points != 0 || ledger.Tokens != 0 {
		t.Errorf("ledger after rollback = %d/%d, want 0/0", ledger.Points, ledger.Tokens)
	}

	fresh, err := s.Events().MarkProcessed(ctx, "u1", "order:1", time.Now())
	if err != nil || !fresh {
		t.Errorf("MarkProcessed after rollback = %v, %v; want fresh", fresh, err)
	}
}

func TestLedgerErrors(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.Ledgers().Get(ctx, "ghost"); !repositories.IsNotFound(err) {
		t.Errorf("Get(ghost) error = %v, want not found", err)
	}

	if err := s.Ledgers().Create(ctx, &models.UserLedger{UserID: "u1", Tokens: 10}); err != nil {
		t.Fatal(err)
	}
	if err := s.Ledgers().Create(ctx, &models.UserLedger{UserID: "u1"}); !repositories.IsConflict(err) {
		t.Errorf("duplicate Create() error = %v, want conflict", err)
	}
	if _, err := s.Ledgers().SpendTokens(ctx, "u1", 11); !errors.Is(err, repositories.ErrInsufficientTokens) {
		t.Errorf("SpendTokens(11) error = %v, want insufficient tokens", err)
	}
	ledger, err := s.Ledgers().SpendTokens(ctx, "u1", 10)
	if err != nil || ledger.Tokens != 0 {
		t.Errorf("SpendTokens(10) = %+v, %v", ledger, err)
	}
}

func TestProgressMarkCompletedOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	p, err := s.Progress().GetOrCreate(ctx, "u1", "q1", now)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := s.Progress().MarkCompleted(ctx, p, now)
	if err != nil || !ok {
		t.Fatalf("first MarkCompleted() = %v, %v", ok, err)
	}
	ok, err = s.Progress().MarkCompleted(ctx, p, now.Add(time.Minute))
	if err != nil || ok {
		t.Fatalf("second MarkCompleted() = %v, %v; want false", ok, err)
	}

	list, err := s.Progress().ListByUser(ctx, "u1")
	if err != nil || len(list) != 1 || !list[0].CompletedAt.Equal(now) {
		t.Errorf("ListByUser() = %+v, %v", list, err)
	}
}

func TestInventoryDeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	edge := now

	items := []*models.InventoryItem{
		{ID: "a", UserID: "u1", Type: models.ItemTypeBoosters, Name: "old", GrantedAt: past.Add(-time.Hour), ExpiresAt: &past},
		{ID: "b", UserID: "u1", Type: models.ItemTypeBoosters, Name: "edge", GrantedAt: past, ExpiresAt: &edge},
		{ID: "c", UserID: "u1", Type: models.ItemTypeFrames, Name: "forever", GrantedAt: past},
		{ID: "d", UserID: "u1", Type: models.ItemTypeAuras, Name: "old aura", GrantedAt: past.Add(-time.Hour), ExpiresAt: &past},
	}
	for _, item := range items {
		if err := s.Inventory().Insert(ctx, item); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Inventory().Insert(ctx, items[0]); !repositories.IsConflict(err) {
		t.Errorf("duplicate Insert() error = %v, want conflict", err)
	}

	removed, err := s.Inventory().DeleteExpired(ctx, models.ItemTypeBoosters, now, 10)
	if err != nil || removed != 1 {
		t.Fatalf("DeleteExpired() = %d, %v; want 1", removed, err)
	}

	left, _ := s.Inventory().ListByUser(ctx, "u1", "")
	if len(left) != 3 {
		t.Errorf("remaining items = %d, want 3", len(left))
	}
	boosters, _ := s.Inventory().ListByUser(ctx, "u1", models.ItemTypeBoosters)
	if len(boosters) != 1 || boosters[0].ID != "b" {
		t.Errorf("remaining boosters = %+v", boosters)
	}
}
