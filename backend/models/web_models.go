package models

import (
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/quests"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/tiers"
	"github.com/shopspring/decimal"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type CreateUserRequest struct {
	UserID string `json:"userId"`
}

type StyleRequest struct {
	Tier string `json:"tier"`
}

type ProgressionRequest struct {
	Act   *int `json:"act"`
	Level *int `json:"level"`
}

// LedgerDTO is a ledger together with its derived tier standing.
type LedgerDTO struct {
	UserID       string      `json:"user_id"`
	Points       int64       `json:"points"`
	Tokens       int64       `json:"tokens"`
	Act          int         `json:"act"`
	Level        int         `json:"level"`
	EquippedTier string      `json:"equipped_tier,omitempty"`
	Tier         tiers.Tier  `json:"tier"`
	NextTier     *tiers.Tier `json:"next_tier,omitempty"`
	ToNext       int64       `json:"to_next,omitempty"`
}

// SubmissionResult is the answer to an accepted event.
type SubmissionResult struct {
	Completions []quests.CompletionResult `json:"completions"`
	Duplicate   bool                      `json:"duplicate"`
}

type InventoryDTO struct {
	UserID string                  `json:"user_id"`
	Type   string                  `json:"type,omitempty"`
	Items  []*models.InventoryItem `json:"items"`
}

type ShopDTO struct {
	Query string             `json:"query,omitempty"`
	Items []*models.ShopItem `json:"items"`
}

type QuestDTO struct {
	QuestID      string            `json:"quest_id"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Type         string            `json:"type"`
	RewardType   string            `json:"reward_type"`
	RewardAmount int64             `json:"reward_amount"`
	MinAct       int               `json:"min_act"`
	RewardItem   *models.ItemGrant `json:"reward_item,omitempty"`
	Progress     *QuestProgressDTO `json:"progress,omitempty"`
}

type QuestProgressDTO struct {
	Counter     decimal.Decimal `json:"counter"`
	Items       int             `json:"items,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func NewLedgerDTO(ledger *models.UserLedger, standing *tiers.Standing) *LedgerDTO {
	dto := &LedgerDTO{
		UserID:       ledger.UserID,
		Points:       ledger.Points,
		Tokens:       ledger.Tokens,
		Act:          ledger.Act,
		Level:        ledger.Level,
		EquippedTier: ledger.EquippedTier,
	}
	if standing != nil {
		dto.Tier = standing.Current
		dto.NextTier = standing.Next
		dto.ToNext = standing.ToNext
	}
	return dto
}

func NewQuestDTO(def *models.QuestDefinition, progress *models.UserQuestProgress) QuestDTO {
	dto := QuestDTO{
		QuestID:      def.QuestID,
		Name:         def.Name,
		Description:  def.Description,
		Type:         def.Type,
		RewardType:   def.RewardType,
		RewardAmount: def.RewardAmount,
		MinAct:       def.MinAct,
		RewardItem:   def.RewardItem,
	}
	if progress != nil {
		dto.Progress = &QuestProgressDTO{
			Counter:     progress.Counter,
			Items:       len(progress.Metadata.Items),
			CompletedAt: progress.CompletedAt,
		}
	}
	return dto
}
