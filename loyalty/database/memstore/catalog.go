package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
)

// Catalog is an in-memory repositories.CatalogRepository.
type Catalog struct {
	mu     sync.RWMutex
	tiers  []*models.Tier
	quests []*models.QuestDefinition
	items  map[string]*models.ShopItem
}

func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]*models.ShopItem)}
}

func (c *Catalog) Tiers(_ context.Context) ([]*models.Tier, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.Tier, 0, len(c.tiers))
	for _, t := range c.tiers {
		tier := *t
		out = append(out, &tier)
	}
	return out, nil
}

func (c *Catalog) QuestDefinitions(_ context.Context) ([]*models.QuestDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.QuestDefinition, 0, len(c.quests))
	for _, q := range c.quests {
		quest := *q
		out = append(out, &quest)
	}
	return out, nil
}

func (c *Catalog) ShopItems(_ context.Context) ([]*models.ShopItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*models.ShopItem, 0, len(c.items))
	for _, it := range c.items {
		item := *it
		out = append(out, &item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *Catalog) ShopItem(_ context.Context, id string) (*models.ShopItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[id]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "shop_item", ID: id}
	}
	item := *it
	return &item, nil
}

// Save upserts by primary key, matching the Postgres catalog.
func (c *Catalog) Save(_ context.Context, tiers []*models.Tier, quests []*models.QuestDefinition, items []*models.ShopItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range tiers {
		tier := *t
		replaced := false
		for i, existing := range c.tiers {
			if existing.Name == tier.Name {
				c.tiers[i] = &tier
				replaced = true
				break
			}
		}
		if !replaced {
			c.tiers = append(c.tiers, &tier)
		}
	}
	sort.Slice(c.tiers, func(i, j int) bool { return c.tiers[i].MinPoints < c.tiers[j].MinPoints })

	for _, q := range quests {
		quest := *q
		replaced := false
		for i, existing := range c.quests {
			if existing.QuestID == quest.QuestID {
				c.quests[i] = &quest
				replaced = true
				break
			}
		}
		if !replaced {
			c.quests = append(c.quests, &quest)
		}
	}

	for _, it := range items {
		item := *it
		c.items[item.ID] = &item
	}
	return nil
}
