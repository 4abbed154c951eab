package models

import (
	"time"

	"github.com/uptrace/bun"
)

type QuestDefinition struct {
	bun.BaseModel `bun:"table:quest_definitions,alias:qd"`

	QuestID          string                 `bun:"quest_id,pk" json:"quest_id" yaml:"id"`
	Name             string                 `bun:"name,notnull" json:"name" yaml:"name"`
	Description      string                 `bun:"description,notnull,default:''" json:"description" yaml:"description"`
	Type             string                 `bun:"type,notnull" json:"type" yaml:"type"`
	RewardType       string                 `bun:"reward_type,notnull" json:"reward_type" yaml:"reward_type"`
	RewardAmount     int64                  `bun:"reward_amount,notnull" json:"reward_amount" yaml:"reward_amount"`
	MinAct           int                    `bun:"min_act,notnull,default:0" json:"min_act" yaml:"min_act"`
	ValidationConfig map[string]interface{} `bun:"validation_config,type:jsonb" json:"validation_config" yaml:"validation_config"`
	RewardItem       *ItemGrant             `bun:"reward_item,type:jsonb" json:"reward_item,omitempty" yaml:"reward_item,omitempty"`
	CreatedAt        time.Time              `bun:"created_at,notnull,default:current_timestamp" json:"-" yaml:"-"`
	UpdatedAt        time.Time              `bun:"updated_at,notnull,default:current_timestamp" json:"-" yaml:"-"`
}

// Quest type constants
const (
	QuestTypeOneOff     = "ONE_OFF"
	QuestTypeCollection = "COLLECTION"
	QuestTypeTime       = "TIME"
	QuestTypeStreak     = "STREAK"
	QuestTypeSocial     = "SOCIAL"
	QuestTypeSpend      = "SPEND"
)

// Reward type constants
const (
	RewardTypeXP    = "XP"
	RewardTypeToken = "TOKEN"
)
