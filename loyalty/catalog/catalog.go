// Package catalog holds the static configuration data of the engine: the
// tier table, quest definitions and shop items.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/quests"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/rewards"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/tiers"
	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

type Catalog struct {
	Tiers  []*models.Tier            `yaml:"tiers"`
	Quests []*models.QuestDefinition `yaml:"quests"`
	Shop   []*models.ShopItem        `yaml:"shop"`
}

// LoadFile reads a YAML catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return &c, nil
}

// Validate checks the whole catalog and reports every problem found.
func (c *Catalog) Validate() error {
	var errs []error

	if _, err := tiers.NewResolver(c.Tiers); err != nil {
		errs = append(errs, fmt.Errorf("tiers: %w", err))
	}

	seenQuests := make(map[string]struct{}, len(c.Quests))
	for _, q := range c.Quests {
		if _, ok := seenQuests[q.QuestID]; ok {
			errs = append(errs, fmt.Errorf("quest %q is defined twice", q.QuestID))
		}
		seenQuests[q.QuestID] = struct{}{}
		if _, err := quests.NewQuest(q); err != nil {
			errs = append(errs, err)
		}
	}

	seenItems := make(map[string]struct{}, len(c.Shop))
	for _, item := range c.Shop {
		if item.ID == "" {
			errs = append(errs, errors.New("shop item without id"))
			continue
		}
		if _, ok := seenItems[item.ID]; ok {
			errs = append(errs, fmt.Errorf("shop item %q is defined twice", item.ID))
		}
		seenItems[item.ID] = struct{}{}

		switch {
		case item.Price < 0:
			errs = append(errs, fmt.Errorf("shop item %q: negative price", item.ID))
		case item.RequiredAct < 0 || item.RequiredLevel < 0:
			errs = append(errs, fmt.Errorf("shop item %q: negative act or level", item.ID))
		}
		if err := rewards.ValidateGrant(item.Grant()); err != nil {
			errs = append(errs, fmt.Errorf("shop item %q: %w", item.ID, err))
		}
	}

	return errors.Join(errs...)
}

// Save validates the catalog and writes it through repo.
func (c *Catalog) Save(ctx context.Context, repo repositories.CatalogRepository) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return repo.Save(ctx, c.Tiers, c.Quests, c.Shop)
}

type shopSource []*models.ShopItem

func (s shopSource) Len() int {
	return len(s)
}

func (s shopSource) String(i int) string {
	return strings.ToLower(s[i].Name + " " + s[i].Type)
}

// SearchShop fuzzy-matches query against item names and types, best match
// first. An empty query returns every item.
func SearchShop(items []*models.ShopItem, query string) []*models.ShopItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	matches := fuzzy.FindFrom(query, shopSource(items))
	results := make([]*models.ShopItem, len(matches))
	for i, match := range matches {
		results[i] = items[match.Index]
	}
	return results
}
