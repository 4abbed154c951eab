package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/uptrace/bun"
)

type ledgerRepository struct {
	BaseRepository
}

func NewLedgerRepository(db bun.IDB) LedgerRepository {
	return &ledgerRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ledgerRepository) Create(ctx context.Context, ledger *models.UserLedger) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	ledger.CreatedAt = now
	ledger.UpdatedAt = now
	_, err := r.db.NewInsert().Model(ledger).Exec(ctx)
	return r.HandleErrorWithID("create", "ledger", ledger.UserID, err)
}

func (r *ledgerRepository) Get(ctx context.Context, userID string) (*models.UserLedger, error) {
	return r.get(ctx, userID, false)
}

func (r *ledgerRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserLedger, error) {
	return r.get(ctx, userID, true)
}

func (r *ledgerRepository) get(ctx context.Context, userID string, lock bool) (*models.UserLedger, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ledger := new(models.UserLedger)
	query := r.db.NewSelect().
		Model(ledger).
		Where("user_id = ?", userID)
	if lock {
		query = query.For("UPDATE")
	}

	if err := query.Scan(ctx); err != nil {
		return nil, r.HandleErrorWithID("get", "ledger", userID, err)
	}
	return ledger, nil
}

func (r *ledgerRepository) AddBalances(ctx context.Context, userID string, points, tokens int64) (*models.UserLedger, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ledger := new(models.UserLedger)
	err := r.db.NewUpdate().
		Model(ledger).
		Set("points = points + ?", points).
		Set("tokens = tokens + ?", tokens).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("add_balances", "ledger", userID, err)
	}
	return ledger, nil
}

func (r *ledgerRepository) SpendTokens(ctx context.Context, userID string, amount int64) (*models.UserLedger, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ledger := new(models.UserLedger)
	err := r.db.NewUpdate().
		Model(ledger).
		Set("tokens = tokens - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("tokens >= ?", amount).
		Returning("*").
		Scan(ctx)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, r.HandleErrorWithID("spend_tokens", "ledger", userID, err)
	}

	exists, existsErr := r.db.NewSelect().
		Model((*models.UserLedger)(nil)).
		Where("user_id = ?", userID).
		Exists(ctx)
	if existsErr != nil {
		return nil, r.HandleErrorWithID("spend_tokens", "ledger", userID, existsErr)
	}
	if !exists {
		return nil, &NotFoundError{Entity: "ledger", ID: userID}
	}
	return nil, ErrInsufficientTokens
}

func (r *ledgerRepository) SetProgression(ctx context.Context, userID string, act, level int) (*models.UserLedger, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ledger := new(models.UserLedger)
	err := r.db.NewUpdate().
		Model(ledger).
		Set("act = ?", act).
		Set("level = ?", level).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("set_progression", "ledger", userID, err)
	}
	return ledger, nil
}

func (r *ledgerRepository) SetEquippedTier(ctx context.Context, userID string, tier string) (*models.UserLedger, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	ledger := new(models.UserLedger)
	err := r.db.NewUpdate().
		Model(ledger).
		Set("equipped_tier = ?", tier).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("set_equipped_tier", "ledger", userID, err)
	}
	return ledger, nil
}
