package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/config"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"
)

type catalogRepository struct {
	BaseRepository
	bunDB *bun.DB
}

func NewCatalogRepository(db *bun.DB) CatalogRepository {
	return &catalogRepository{BaseRepository: NewBaseRepository(db), bunDB: db}
}

func (r *catalogRepository) Tiers(ctx context.Context) ([]*models.Tier, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var tiers []*models.Tier
	err := r.db.NewSelect().
		Model(&tiers).
		Order("min_points ASC").
		Scan(ctx)
	return tiers, r.HandleErrorWithID("list", "tier", "*", err)
}

func (r *catalogRepository) QuestDefinitions(ctx context.Context) ([]*models.QuestDefinition, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var quests []*models.QuestDefinition
	err := r.db.NewSelect().
		Model(&quests).
		Order("min_act ASC", "quest_id ASC").
		Scan(ctx)
	return quests, r.HandleErrorWithID("list", "quest_definition", "*", err)
}

func (r *catalogRepository) ShopItems(ctx context.Context) ([]*models.ShopItem, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var items []*models.ShopItem
	err := r.db.NewSelect().
		Model(&items).
		Order("required_act ASC", "required_level ASC", "id ASC").
		Scan(ctx)
	return items, r.HandleErrorWithID("list", "shop_item", "*", err)
}

func (r *catalogRepository) ShopItem(ctx context.Context, id string) (*models.ShopItem, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	item := new(models.ShopItem)
	err := r.db.NewSelect().
		Model(item).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("get", "shop_item", id, err)
	}
	return item, nil
}

// Save upserts the whole catalog in one transaction.
func (r *catalogRepository) Save(ctx context.Context, tiers []*models.Tier, quests []*models.QuestDefinition, items []*models.ShopItem) error {
	ctx, cancel := context.WithTimeout(ctx, config.BatchQueryTimeout)
	defer cancel()

	now := time.Now()
	err := r.bunDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(tiers) > 0 {
			_, err := tx.NewInsert().
				Model(&tiers).
				On("CONFLICT (name) DO UPDATE").
				Set("min_points = EXCLUDED.min_points").
				Set("visual = EXCLUDED.visual").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to save tiers: %w", err)
			}
		}

		if len(quests) > 0 {
			for _, q := range quests {
				q.CreatedAt = now
				q.UpdatedAt = now
			}
			_, err := tx.NewInsert().
				Model(&quests).
				On("CONFLICT (quest_id) DO UPDATE").
				Set("name = EXCLUDED.name").
				Set("description = EXCLUDED.description").
				Set("type = EXCLUDED.type").
				Set("reward_type = EXCLUDED.reward_type").
				Set("reward_amount = EXCLUDED.reward_amount").
				Set("min_act = EXCLUDED.min_act").
				Set("validation_config = EXCLUDED.validation_config").
				Set("reward_item = EXCLUDED.reward_item").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to save quest definitions: %w", err)
			}
		}

		if len(items) > 0 {
			for _, item := range items {
				item.CreatedAt = now
			}
			_, err := tx.NewInsert().
				Model(&items).
				On("CONFLICT (id) DO UPDATE").
				Set("type = EXCLUDED.type").
				Set("name = EXCLUDED.name").
				Set("description = EXCLUDED.description").
				Set("price = EXCLUDED.price").
				Set("required_act = EXCLUDED.required_act").
				Set("required_level = EXCLUDED.required_level").
				Set("duration_hours = EXCLUDED.duration_hours").
				Set("bonus = EXCLUDED.bonus").
				Set("effect = EXCLUDED.effect").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to save shop items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Catalog saved",
		slog.String("type", "db"),
		slog.Int("tiers", len(tiers)),
		slog.Int("quests", len(quests)),
		slog.Int("shop_items", len(items)))
	return nil
}

// CachedCatalog keeps shop item lookups in an LRU. The catalog is static at
// runtime, so entries never go stale until Save is called.
type CachedCatalog struct {
	CatalogRepository
	cache *lru.Cache
}

func NewCachedCatalog(inner CatalogRepository, size int) *CachedCatalog {
	if size <= 0 {
		size = config.CatalogCacheSize
	}
	cache, _ := lru.New(size)
	return &CachedCatalog{CatalogRepository: inner, cache: cache}
}

func (c *CachedCatalog) ShopItem(ctx context.Context, id string) (*models.ShopItem, error) {
	if cached, ok := c.cache.Get(id); ok {
		return cached.(*models.ShopItem), nil
	}

	item, err := c.CatalogRepository.ShopItem(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, item)
	return item, nil
}

func (c *CachedCatalog) Save(ctx context.Context, tiers []*models.Tier, quests []*models.QuestDefinition, items []*models.ShopItem) error {
	if err := c.CatalogRepository.Save(ctx, tiers, quests, items); err != nil {
		return err
	}
	c.cache.Purge()
	return nil
}
