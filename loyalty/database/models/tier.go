package models

import "github.com/uptrace/bun"

type Tier struct {
	bun.BaseModel `bun:"table:tiers,alias:t"`

	Name      string            `bun:"name,pk" json:"name" yaml:"name"`
	MinPoints int64             `bun:"min_points,notnull,unique" json:"min_points" yaml:"min_points"`
	Visual    map[string]string `bun:"visual,type:jsonb" json:"visual" yaml:"visual"`
}
