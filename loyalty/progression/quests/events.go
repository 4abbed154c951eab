package quests

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a domain event submitted to the engine.
type Event interface {
	Subject() string
	OccurredAt() time.Time
	// DedupeKey identifies the business event. Empty means the event has no
	// natural key and relies on the completion guard alone.
	DedupeKey() string
	validate() error
}

type OrderItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type OrderCompleted struct {
	UserID     string          `json:"userId"`
	OrderID    string          `json:"orderId,omitempty"`
	OrderTotal decimal.Decimal `json:"orderTotal"`
	Items      []OrderItem     `json:"items"`
	PromoName  string          `json:"promoName,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (e *OrderCompleted) Subject() string       { return e.UserID }
func (e *OrderCompleted) OccurredAt() time.Time { return e.Timestamp }

func (e *OrderCompleted) DedupeKey() string {
	if e.OrderID == "" {
		return ""
	}
	return "order:" + e.OrderID
}

func (e *OrderCompleted) validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return errors.New("userId is required")
	case e.OrderTotal.IsNegative():
		return errors.New("orderTotal must not be negative")
	}
	for _, item := range e.Items {
		if strings.TrimSpace(item.Name) == "" {
			return errors.New("item name is required")
		}
	}
	return nil
}

type ReferralConfirmed struct {
	UserID         string    `json:"userId"`
	ReferredUserID string    `json:"referredUserId"`
	Timestamp      time.Time `json:"timestamp"`
}

func (e *ReferralConfirmed) Subject() string       { return e.UserID }
func (e *ReferralConfirmed) OccurredAt() time.Time { return e.Timestamp }
func (e *ReferralConfirmed) DedupeKey() string     { return "referral:" + e.ReferredUserID }

func (e *ReferralConfirmed) validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return errors.New("userId is required")
	case strings.TrimSpace(e.ReferredUserID) == "":
		return errors.New("referredUserId is required")
	case e.ReferredUserID == e.UserID:
		return errors.New("users cannot refer themselves")
	}
	return nil
}
