package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ShopItem is a static catalog entry purchasable with tokens.
type ShopItem struct {
	bun.BaseModel `bun:"table:shop_items,alias:si"`

	ID            string          `bun:"id,pk" json:"id" yaml:"id"`
	Type          string          `bun:"type,notnull" json:"type" yaml:"type"`
	Name          string          `bun:"name,notnull" json:"name" yaml:"name"`
	Description   string          `bun:"description,notnull,default:''" json:"description" yaml:"description"`
	Price         int64           `bun:"price,notnull" json:"price" yaml:"price"`
	RequiredAct   int             `bun:"required_act,notnull,default:0" json:"required_act" yaml:"required_act"`
	RequiredLevel int             `bun:"required_level,notnull,default:0" json:"required_level" yaml:"required_level"`
	DurationHours int             `bun:"duration_hours,notnull,default:0" json:"duration_hours" yaml:"duration_hours"` // 0 = permanent
	Bonus         decimal.Decimal `bun:"bonus,type:numeric(6,3),notnull,default:0" json:"bonus" yaml:"bonus"`
	Effect        string          `bun:"effect,notnull,default:''" json:"effect,omitempty" yaml:"effect"`
	CreatedAt     time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"-" yaml:"-"`
}

// Grant converts the catalog entry into the grant it produces on purchase.
func (s *ShopItem) Grant() ItemGrant {
	return ItemGrant{
		Type:          s.Type,
		Name:          s.Name,
		DurationHours: s.DurationHours,
		Bonus:         s.Bonus,
		Effect:        s.Effect,
	}
}
