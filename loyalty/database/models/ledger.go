package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// UserLedger is the per-user balance sheet. Points gate tiers, tokens gate
// shop purchases.
type UserLedger struct {
	bun.BaseModel `bun:"table:user_ledgers,alias:ul"`

	UserID       string    `bun:"user_id,pk" json:"user_id"`
	Points       int64     `bun:"points,notnull,default:0" json:"points"`
	Tokens       int64     `bun:"tokens,notnull,default:0" json:"tokens"`
	Act          int       `bun:"act,notnull,default:0" json:"act"`
	Level        int       `bun:"level,notnull,default:0" json:"level"`
	EquippedTier string    `bun:"equipped_tier,notnull,default:''" json:"equipped_tier"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// UserActivity holds the lifetime counters quests are evaluated against.
type UserActivity struct {
	bun.BaseModel `bun:"table:user_activity,alias:ua"`

	UserID        string          `bun:"user_id,pk" json:"user_id"`
	OrderCount    int64           `bun:"order_count,notnull,default:0" json:"order_count"`
	ReferralCount int64           `bun:"referral_count,notnull,default:0" json:"referral_count"`
	LifetimeSpend decimal.Decimal `bun:"lifetime_spend,type:numeric(14,2),notnull,default:0" json:"lifetime_spend"`
	UpdatedAt     time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// ProcessedEvent records business event keys that were already applied.
type ProcessedEvent struct {
	bun.BaseModel `bun:"table:processed_events,alias:pe"`

	UserID      string    `bun:"user_id,pk"`
	EventKey    string    `bun:"event_key,pk"`
	ProcessedAt time.Time `bun:"processed_at,notnull"`
}
