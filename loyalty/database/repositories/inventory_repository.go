package repositories

import (
	"context"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/uptrace/bun"
)

type inventoryRepository struct {
	BaseRepository
}

func NewInventoryRepository(db bun.IDB) InventoryRepository {
	return &inventoryRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *inventoryRepository) Insert(ctx context.Context, item *models.InventoryItem) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.NewInsert().Model(item).Exec(ctx)
	return r.HandleErrorWithID("insert", "inventory_item", item.ID, err)
}

// ListByUser returns every item ever granted to the user, expired ones
// included. An empty itemType matches all types.
func (r *inventoryRepository) ListByUser(ctx context.Context, userID string, itemType string) ([]*models.InventoryItem, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var items []*models.InventoryItem
	query := r.db.NewSelect().
		Model(&items).
		Where("user_id = ?", userID)
	if itemType != "" {
		query = query.Where("type = ?", itemType)
	}

	if err := query.Order("granted_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, r.HandleErrorWithID("list", "inventory_item", userID, err)
	}
	return items, nil
}

func (r *inventoryRepository) DeleteExpired(ctx context.Context, itemType string, cutoff time.Time, limit int) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	batch := r.db.NewSelect().
		Model((*models.InventoryItem)(nil)).
		Column("id").
		Where("type = ?", itemType).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", cutoff).
		Limit(limit)

	res, err := r.db.NewDelete().
		Model((*models.InventoryItem)(nil)).
		Where("id IN (?)", batch).
		Exec(ctx)
	if err != nil {
		return 0, r.HandleErrorWithID("delete_expired", "inventory_item", itemType, err)
	}

	affected, _ := res.RowsAffected()
	return int(affected), nil
}
