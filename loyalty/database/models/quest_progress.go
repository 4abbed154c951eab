package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type UserQuestProgress struct {
	bun.BaseModel `bun:"table:user_quest_progress,alias:uqp"`

	ID          int64            `bun:"id,pk,autoincrement" json:"-"`
	UserID      string           `bun:"user_id,notnull,unique:user_quest" json:"user_id"`
	QuestID     string           `bun:"quest_id,notnull,unique:user_quest" json:"quest_id"`
	Counter     decimal.Decimal  `bun:"counter,type:numeric(14,2),notnull,default:0" json:"counter"`
	WindowStart *time.Time       `bun:"window_start" json:"window_start,omitempty"`
	CompletedAt *time.Time       `bun:"completed_at" json:"completed_at,omitempty"`
	Metadata    ProgressMetadata `bun:"metadata,type:jsonb" json:"-"`
	CreatedAt   time.Time        `bun:"created_at,notnull,default:current_timestamp" json:"-"`
	UpdatedAt   time.Time        `bun:"updated_at,notnull,default:current_timestamp" json:"-"`
}

// ProgressMetadata keeps validator state that does not fit the counter.
type ProgressMetadata struct {
	Items  []string    `json:"items,omitempty"`
	Events []time.Time `json:"events,omitempty"`
}

// Completed reports whether the quest was credited. Completed rows are frozen.
func (p *UserQuestProgress) Completed() bool {
	return p.CompletedAt != nil
}

// HasItem reports whether name was already collected.
func (m *ProgressMetadata) HasItem(name string) bool {
	for _, item := range m.Items {
		if item == name {
			return true
		}
	}
	return false
}
