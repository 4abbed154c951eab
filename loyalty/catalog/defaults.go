package catalog

import (
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/shopspring/decimal"
)

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Tiers: []*models.Tier{
			{Name: "Bronze", MinPoints: 0, Visual: map[string]string{"color": "#cd7f32", "badge": "bronze"}},
			{Name: "Silver", MinPoints: 1000, Visual: map[string]string{"color": "#c0c0c0", "badge": "silver"}},
			{Name: "Gold", MinPoints: 5000, Visual: map[string]string{"color": "#ffd700", "badge": "gold"}},
			{Name: "Platinum", MinPoints: 15000, Visual: map[string]string{"color": "#e5e4e2", "badge": "platinum"}},
			{Name: "Diamond", MinPoints: 40000, Visual: map[string]string{"color": "#b9f2ff", "badge": "diamond"}},
		},
		Quests: []*models.QuestDefinition{
			{
				QuestID:          "q-act0-1",
				Name:             "First Bite",
				Description:      "Complete your first order",
				Type:             models.QuestTypeOneOff,
				RewardType:       models.RewardTypeXP,
				RewardAmount:     100,
				MinAct:           0,
				ValidationConfig: map[string]interface{}{"targetCount": 1},
				RewardItem:       &models.ItemGrant{Type: models.ItemTypeTitles, Name: "Newcomer"},
			},
			{
				QuestID:          "q-act0-2",
				Name:             "Lunch Rush",
				Description:      "Order between 12:00 and 14:00",
				Type:             models.QuestTypeTime,
				RewardType:       models.RewardTypeXP,
				RewardAmount:     150,
				MinAct:           0,
				ValidationConfig: map[string]interface{}{"startTime": "12:00", "endTime": "14:00"},
			},
			{
				QuestID:          "q-act0-3",
				Name:             "Bring a Friend",
				Description:      "Have one referral confirmed",
				Type:             models.QuestTypeSocial,
				RewardType:       models.RewardTypeToken,
				RewardAmount:     50,
				MinAct:           0,
				ValidationConfig: map[string]interface{}{},
			},
			{
				QuestID:          "q-act1-1",
				Name:             "Regular",
				Description:      "Place three orders within seven days",
				Type:             models.QuestTypeStreak,
				RewardType:       models.RewardTypeXP,
				RewardAmount:     400,
				MinAct:           1,
				ValidationConfig: map[string]interface{}{"targetCount": 3, "timeframe": "7d"},
			},
			{
				QuestID:          "q-act1-2",
				Name:             "Weekend Treat",
				Description:      "Order on a Saturday or Sunday",
				Type:             models.QuestTypeStreak,
				RewardType:       models.RewardTypeToken,
				RewardAmount:     30,
				MinAct:           1,
				ValidationConfig: map[string]interface{}{"days": []interface{}{"sat", "sun"}},
			},
			{
				QuestID:          "q-act1-3",
				Name:             "Explorer",
				Description:      "Try five different dishes",
				Type:             models.QuestTypeCollection,
				RewardType:       models.RewardTypeXP,
				RewardAmount:     500,
				MinAct:           1,
				ValidationConfig: map[string]interface{}{"targetCount": 5},
			},
			{
				QuestID:          "q-act2-1",
				Name:             "Summer Special",
				Description:      "Order with the SUMMER promotion",
				Type:             models.QuestTypeCollection,
				RewardType:       models.RewardTypeToken,
				RewardAmount:     80,
				MinAct:           2,
				ValidationConfig: map[string]interface{}{"promoName": "SUMMER"},
			},
			{
				QuestID:          "q-act2-2",
				Name:             "Feast",
				Description:      "Place an order of at least 60",
				Type:             models.QuestTypeCollection,
				RewardType:       models.RewardTypeXP,
				RewardAmount:     800,
				MinAct:           2,
				ValidationConfig: map[string]interface{}{"minOrderValue": 60},
			},
			{
				QuestID:          "q-act2-3",
				Name:             "Patron",
				Description:      "Spend 500 in total",
				Type:             models.QuestTypeSpend,
				RewardType:       models.RewardTypeToken,
				RewardAmount:     200,
				MinAct:           2,
				ValidationConfig: map[string]interface{}{"spendAmount": 500},
				RewardItem: &models.ItemGrant{
					Type:          models.ItemTypeBoosters,
					Name:          "Patron's Favour",
					DurationHours: 72,
					Bonus:         decimal.RequireFromString("0.25"),
					Effect:        models.RewardTypeXP,
				},
			},
			{
				QuestID:          "q-act3-1",
				Name:             "Veteran",
				Description:      "Earn 10000 XP",
				Type:             models.QuestTypeOneOff,
				RewardType:       models.RewardTypeToken,
				RewardAmount:     300,
				MinAct:           3,
				ValidationConfig: map[string]interface{}{"targetXP": 10000},
			},
		},
		Shop: []*models.ShopItem{
			{ID: "frame-bamboo", Type: models.ItemTypeFrames, Name: "Bamboo Frame", Price: 60},
			{ID: "frame-gold", Type: models.ItemTypeFrames, Name: "Gilded Frame", Price: 300, RequiredAct: 2, RequiredLevel: 3},
			{ID: "aura-ember", Type: models.ItemTypeAuras, Name: "Ember Aura", Price: 150, RequiredAct: 1},
			{ID: "aura-frost", Type: models.ItemTypeAuras, Name: "Frost Aura", Price: 400, RequiredAct: 3, RequiredLevel: 1},
			{ID: "title-gourmet", Type: models.ItemTypeTitles, Name: "Gourmet", Price: 120, RequiredAct: 1, RequiredLevel: 2},
			{
				ID:            "boost-xp-day",
				Type:          models.ItemTypeBoosters,
				Name:          "XP Booster (24h)",
				Description:   "+50% XP from quests for a day",
				Price:         90,
				DurationHours: 24,
				Bonus:         decimal.RequireFromString("0.5"),
				Effect:        models.RewardTypeXP,
			},
			{
				ID:            "boost-token-week",
				Type:          models.ItemTypeBoosters,
				Name:          "Token Booster (7d)",
				Description:   "+20% tokens from quests for a week",
				Price:         250,
				RequiredAct:   1,
				DurationHours: 168,
				Bonus:         decimal.RequireFromString("0.2"),
				Effect:        models.RewardTypeToken,
			},
		},
	}
}
