package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type questProgressRepository struct {
	BaseRepository
}

func NewQuestProgressRepository(db bun.IDB) QuestProgressRepository {
	return &questProgressRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *questProgressRepository) GetOrCreate(ctx context.Context, userID, questID string, now time.Time) (*models.UserQuestProgress, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	fresh := &models.UserQuestProgress{
		UserID:    userID,
		QuestID:   questID,
		Counter:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := r.db.NewInsert().
		Model(fresh).
		On("CONFLICT (user_id, quest_id) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("create", "quest_progress", questID, err)
	}

	progress := new(models.UserQuestProgress)
	err = r.db.NewSelect().
		Model(progress).
		Where("user_id = ? AND quest_id = ?", userID, questID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "quest_progress", questID, err)
	}
	return progress, nil
}

func (r *questProgressRepository) ListByUser(ctx context.Context, userID string) ([]*models.UserQuestProgress, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var progress []*models.UserQuestProgress
	err := r.db.NewSelect().
		Model(&progress).
		Where("user_id = ?", userID).
		Order("quest_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("list", "quest_progress", userID, err)
	}
	return progress, nil
}

func (r *questProgressRepository) Update(ctx context.Context, progress *models.UserQuestProgress) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	progress.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(progress).
		Column("counter", "window_start", "metadata", "updated_at").
		WherePK().
		Where("uqp.completed_at IS NULL").
		Exec(ctx)
	return r.HandleErrorWithID("update", "quest_progress", progress.QuestID, err)
}

func (r *questProgressRepository) MarkCompleted(ctx context.Context, progress *models.UserQuestProgress, at time.Time) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	row := *progress
	row.CompletedAt = &at
	row.UpdatedAt = at

	res, err := r.db.NewUpdate().
		Model(&row).
		Column("counter", "window_start", "metadata", "updated_at", "completed_at").
		WherePK().
		Where("uqp.completed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("complete", "quest_progress", progress.QuestID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, r.HandleErrorWithID("complete", "quest_progress", progress.QuestID, err)
	}
	if affected == 0 {
		return false, nil
	}

	progress.CompletedAt = &at
	progress.UpdatedAt = at
	return true, nil
}
