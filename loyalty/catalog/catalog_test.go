package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/disgoorg/loyalty-engine/loyalty/database/memstore"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	c := Default()
	c.Tiers = c.Tiers[1:]
	c.Quests = append(c.Quests, &models.QuestDefinition{QuestID: "q-act0-1", Type: models.QuestTypeOneOff, RewardType: models.RewardTypeXP, RewardAmount: 1, ValidationConfig: map[string]interface{}{"targetCount": 1}})
	c.Shop = append(c.Shop, &models.ShopItem{ID: "hat", Type: "Hats", Name: "Hat"})

	err := c.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 3 {
		t.Errorf("Validate() = %v, want 3 problems", err)
	}
}

const sample = `
tiers:
  - name: Bronze
    min_points: 0
  - name: Silver
    min_points: 500
    visual:
      color: "#c0c0c0"
quests:
  - id: q-lunch
    name: Lunch
    type: TIME
    reward_type: XP
    reward_amount: 40
    min_act: 0
    validation_config:
      startTime: "11:30"
      endTime: "14:00"
  - id: q-feast
    name: Feast
    type: COLLECTION
    reward_type: XP
    reward_amount: 800
    min_act: 2
    validation_config:
      minOrderValue: 60
shop:
  - id: boost
    type: Boosters
    name: Booster
    price: 90
    duration_hours: 24
    bonus: 0.5
    effect: XP
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if len(c.Tiers) != 2 || len(c.Quests) != 2 || len(c.Shop) != 1 {
		t.Fatalf("loaded %d tiers %d quests %d items", len(c.Tiers), len(c.Quests), len(c.Shop))
	}
	if c.Quests[1].MinAct != 2 {
		t.Errorf("q-feast min act = %d", c.Quests[1].MinAct)
	}
	if c.Shop[0].Bonus.String() != "0.5" {
		t.Errorf("booster bonus = %s", c.Shop[0].Bonus)
	}

	store := memstore.New()
	if err := c.Save(context.Background(), store.Catalog()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	saved, _ := store.Catalog().QuestDefinitions(context.Background())
	if len(saved) != 2 {
		t.Errorf("saved quests = %d", len(saved))
	}
}

func TestSearchShop(t *testing.T) {
	items := Default().Shop

	if got := SearchShop(items, ""); len(got) != len(items) {
		t.Errorf("SearchShop(\"\") = %d items, want %d", len(got), len(items))
	}

	got := SearchShop(items, "frost")
	if len(got) == 0 || got[0].ID != "aura-frost" {
		t.Errorf("SearchShop(frost) = %v", got)
	}

	if got := SearchShop(items, "zzzz"); len(got) != 0 {
		t.Errorf("SearchShop(zzzz) = %v", got)
	}
}

func TestExampleCatalogFile(t *testing.T) {
	c, err := LoadFile(filepath.Join("..", "..", "catalog.example.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}
