package tiers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
)

// ErrStyleLocked is returned when a user selects a tier style they have not
// reached and are not currently wearing.
var ErrStyleLocked = errors.New("tier style is locked")

// Standing is the derived rank of a ledger.
type Standing struct {
	Points   int64  `json:"points"`
	Current  Tier   `json:"current"`
	Next     *Tier  `json:"next,omitempty"`
	ToNext   int64  `json:"to_next,omitempty"`
	Equipped string `json:"equipped,omitempty"`
}

type Service struct {
	resolver *Resolver
	ledgers  repositories.LedgerRepository
}

func NewService(resolver *Resolver, ledgers repositories.LedgerRepository) *Service {
	return &Service{resolver: resolver, ledgers: ledgers}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

// Standing resolves the user's tier from the current ledger.
func (s *Service) Standing(ctx context.Context, userID string) (*Standing, error) {
	ledger, err := s.ledgers.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.standingFor(ledger.Points, ledger.EquippedTier), nil
}

// StandingOf derives the standing of an already loaded ledger.
func (s *Service) StandingOf(ledger *models.UserLedger) *Standing {
	return s.standingFor(ledger.Points, ledger.EquippedTier)
}

func (s *Service) standingFor(points int64, equipped string) *Standing {
	st := &Standing{
		Points:   points,
		Current:  s.resolver.Resolve(points),
		Equipped: equipped,
	}
	if next, ok := s.resolver.Next(points); ok {
		st.Next = &next
		st.ToNext = next.MinPoints - points
	}
	return st
}

// EquipStyle equips the style of the named tier. An empty name unequips.
func (s *Service) EquipStyle(ctx context.Context, userID, tierName string) (*Standing, error) {
	ledger, err := s.ledgers.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if tierName != "" {
		tier, err := s.resolver.ByName(tierName)
		if err != nil {
			return nil, err
		}
		if IsLocked(tier, ledger.Points, ledger.EquippedTier == tier.Name) {
			return nil, fmt.Errorf("%w: %s requires %d points", ErrStyleLocked, tier.Name, tier.MinPoints)
		}
	}

	if ledger.EquippedTier == tierName {
		return s.standingFor(ledger.Points, ledger.EquippedTier), nil
	}

	updated, err := s.ledgers.SetEquippedTier(ctx, userID, tierName)
	if err != nil {
		return nil, err
	}

	slog.Debug("Tier style equipped",
		slog.String("type", "eng"),
		slog.String("user_id", userID),
		slog.String("tier", tierName))

	return s.standingFor(updated.Points, updated.EquippedTier), nil
}
