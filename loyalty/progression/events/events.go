// Package events carries the engine's output events to external consumers.
// Events are published after the producing transaction commits and delivery
// failures never affect the committed state.
package events

import (
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/google/uuid"
)

const (
	NameLedgerUpdated    = "ledger.updated"
	NameQuestCompleted   = "quest.completed"
	NameInventoryGranted = "inventory.granted"
)

// Event is an output event.
type Event interface {
	Name() string
	User() string
}

type LedgerUpdated struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
	Tokens int64  `json:"tokens"`
}

func (LedgerUpdated) Name() string   { return NameLedgerUpdated }
func (e LedgerUpdated) User() string { return e.UserID }

// QuestCompleted reports a credited quest. RewardAmount is the amount added
// to the ledger after boosters, BaseAmount the configured reward.
type QuestCompleted struct {
	UserID       string `json:"user_id"`
	QuestID      string `json:"quest_id"`
	RewardType   string `json:"reward_type"`
	RewardAmount int64  `json:"reward_amount"`
	BaseAmount   int64  `json:"base_amount"`
}

func (QuestCompleted) Name() string   { return NameQuestCompleted }
func (e QuestCompleted) User() string { return e.UserID }

type InventoryGranted struct {
	UserID string               `json:"user_id"`
	Item   models.InventoryItem `json:"item"`
}

func (InventoryGranted) Name() string   { return NameInventoryGranted }
func (e InventoryGranted) User() string { return e.UserID }

// Envelope is the delivered form of an event.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       Event     `json:"data"`
}

func NewEnvelope(e Event, at time.Time) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       e.Name(),
		UserID:     e.User(),
		OccurredAt: at,
		Data:       e,
	}
}

// Batch collects events produced inside a transaction.
type Batch struct {
	events []Event
}

func (b *Batch) Add(e ...Event) {
	b.events = append(b.events, e...)
}

func (b *Batch) Events() []Event {
	return b.events
}

func (b *Batch) Len() int {
	return len(b.events)
}
