package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/uptrace/bun"
)

type processedEventRepository struct {
	BaseRepository
}

func NewProcessedEventRepository(db bun.IDB) ProcessedEventRepository {
	return &processedEventRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *processedEventRepository) MarkProcessed(ctx context.Context, userID, key string, at time.Time) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	res, err := r.db.NewInsert().
		Model(&models.ProcessedEvent{UserID: userID, EventKey: key, ProcessedAt: at}).
		On("CONFLICT (user_id, event_key) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return false, r.HandleErrorWithID("mark_processed", "processed_event", key, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, r.HandleErrorWithID("mark_processed", "processed_event", key, err)
	}
	return affected == 1, nil
}
