package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type activityRepository struct {
	BaseRepository
}

func NewActivityRepository(db bun.IDB) ActivityRepository {
	return &activityRepository{BaseRepository: NewBaseRepository(db)}
}

// Get returns the zero activity for users that never produced an event.
func (r *activityRepository) Get(ctx context.Context, userID string) (*models.UserActivity, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	activity := new(models.UserActivity)
	err := r.db.NewSelect().
		Model(activity).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.UserActivity{UserID: userID, LifetimeSpend: decimal.Zero}, nil
	}
	if err != nil {
		return nil, r.HandleErrorWithID("get", "activity", userID, err)
	}
	return activity, nil
}

func (r *activityRepository) Record(ctx context.Context, userID string, orders, referrals int64, spend decimal.Decimal) (*models.UserActivity, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	activity := &models.UserActivity{
		UserID:        userID,
		OrderCount:    orders,
		ReferralCount: referrals,
		LifetimeSpend: spend,
		UpdatedAt:     time.Now(),
	}

	_, err := r.db.NewInsert().
		Model(activity).
		On("CONFLICT (user_id) DO UPDATE").
		Set("order_count = ua.order_count + EXCLUDED.order_count").
		Set("referral_count = ua.referral_count + EXCLUDED.referral_count").
		Set("lifetime_spend = ua.lifetime_spend + EXCLUDED.lifetime_spend").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("record", "activity", userID, err)
	}
	return activity, nil
}
