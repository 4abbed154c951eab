package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// InventoryItem is a granted cosmetic or booster. Rows are never updated;
// expiry is evaluated at read time.
type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory_items,alias:ii"`

	ID        string          `bun:"id,pk" json:"id"`
	UserID    string          `bun:"user_id,notnull" json:"user_id"`
	Type      string          `bun:"type,notnull" json:"type"`
	Name      string          `bun:"name,notnull" json:"name"`
	SourceID  string          `bun:"source_id,notnull,default:''" json:"source_id"`
	Bonus     decimal.Decimal `bun:"bonus,type:numeric(6,3),notnull,default:0" json:"bonus"`
	Effect    string          `bun:"effect,notnull,default:''" json:"effect,omitempty"`
	GrantedAt time.Time       `bun:"granted_at,notnull" json:"granted_at"`
	ExpiresAt *time.Time      `bun:"expires_at" json:"expires_at,omitempty"`
}

// ItemGrant describes an item handed out by a quest reward.
type ItemGrant struct {
	Type          string          `json:"type" yaml:"type"`
	Name          string          `json:"name" yaml:"name"`
	DurationHours int             `json:"duration_hours,omitempty" yaml:"duration_hours,omitempty"`
	Bonus         decimal.Decimal `json:"bonus,omitempty" yaml:"bonus,omitempty"`
	Effect        string          `json:"effect,omitempty" yaml:"effect,omitempty"`
}

// Item type constants
const (
	ItemTypeFrames   = "Frames"
	ItemTypeAuras    = "Auras"
	ItemTypeTitles   = "Titles"
	ItemTypeBoosters = "Boosters"
)

// ItemTypes lists the known inventory item types.
var ItemTypes = []string{ItemTypeFrames, ItemTypeAuras, ItemTypeTitles, ItemTypeBoosters}
