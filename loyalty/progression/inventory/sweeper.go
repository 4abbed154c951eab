package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/config"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"golang.org/x/sync/errgroup"
)

// Sweeper physically removes items that expired longer than the retention
// period ago. Active item reads never depend on it.
type Sweeper struct {
	repo      repositories.InventoryRepository
	clock     clock.Clock
	retention time.Duration
	batchSize int
}

func NewSweeper(repo repositories.InventoryRepository, c clock.Clock, retention time.Duration) *Sweeper {
	if retention < 0 {
		retention = 0
	}
	return &Sweeper{
		repo:      repo,
		clock:     c,
		retention: retention,
		batchSize: config.SweepBatchSize,
	}
}

// Sweep prunes every item type in parallel and returns the number of rows removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.retention)
	start := time.Now()

	var removed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for _, itemType := range models.ItemTypes {
		itemType := itemType
		g.Go(func() error {
			for {
				n, err := s.repo.DeleteExpired(ctx, itemType, cutoff, s.batchSize)
				if err != nil {
					return fmt.Errorf("failed to sweep %s: %w", itemType, err)
				}
				removed.Add(int64(n))
				if n < s.batchSize {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		})
	}

	err := g.Wait()
	total := int(removed.Load())

	slog.Info("Inventory sweep finished",
		slog.String("type", "db"),
		slog.Int("removed", total),
		slog.Time("cutoff", cutoff),
		slog.Duration("took", time.Since(start)))

	return total, err
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = config.DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				slog.Error("Inventory sweep failed",
					slog.String("type", "db"),
					slog.Any("error", err))
			}
		}
	}
}
