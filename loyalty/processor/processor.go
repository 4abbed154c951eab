// Package processor is the entry point for external inputs. It retries whole
// units of work when storage reports a concurrent-update conflict.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/disgoorg/loyalty-engine/loyalty/config"
	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/quests"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/rewards"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/shop"
)

type EventSubmitter interface {
	Submit(ctx context.Context, ev quests.Event) (*quests.Outcome, error)
}

type Purchaser interface {
	Purchase(ctx context.Context, req shop.PurchaseRequested) (*shop.Receipt, error)
}

type RetryOptions struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
}

func (o RetryOptions) withDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = config.DefaultMaxAttempts
	}
	if o.Initial <= 0 {
		o.Initial = config.DefaultRetryInitial
	}
	if o.Max <= 0 {
		o.Max = config.DefaultRetryMax
	}
	return o
}

type Processor struct {
	engine  EventSubmitter
	gate    Purchaser
	store   repositories.Store
	applier *rewards.Applier
	retry   RetryOptions
}

func New(engine EventSubmitter, gate Purchaser, store repositories.Store, applier *rewards.Applier, opts RetryOptions) *Processor {
	return &Processor{
		engine:  engine,
		gate:    gate,
		store:   store,
		applier: applier,
		retry:   opts.withDefaults(),
	}
}

// OrderCompleted submits an order event. A failed call leaves the event
// unconsumed and is safe to resubmit.
func (p *Processor) OrderCompleted(ctx context.Context, ev *quests.OrderCompleted) (*quests.Outcome, error) {
	return withRetry(ctx, p.retry, "order_completed", func() (*quests.Outcome, error) {
		return p.engine.Submit(ctx, ev)
	})
}

func (p *Processor) ReferralConfirmed(ctx context.Context, ev *quests.ReferralConfirmed) (*quests.Outcome, error) {
	return withRetry(ctx, p.retry, "referral_confirmed", func() (*quests.Outcome, error) {
		return p.engine.Submit(ctx, ev)
	})
}

func (p *Processor) Purchase(ctx context.Context, req shop.PurchaseRequested) (*shop.Receipt, error) {
	return withRetry(ctx, p.retry, "purchase", func() (*shop.Receipt, error) {
		return p.gate.Purchase(ctx, req)
	})
}

// SetProgression moves a user to act and level.
func (p *Processor) SetProgression(ctx context.Context, userID string, act, level int) (*models.UserLedger, error) {
	return withRetry(ctx, p.retry, "set_progression", func() (*models.UserLedger, error) {
		var ledger *models.UserLedger
		err := p.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repositories) error {
			var err error
			ledger, err = p.applier.SetProgression(ctx, tx, userID, act, level)
			return err
		})
		return ledger, err
	})
}

// CreateUser opens an empty ledger.
func (p *Processor) CreateUser(ctx context.Context, userID string) (*models.UserLedger, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	ledger := &models.UserLedger{UserID: userID}
	if err := p.store.Ledgers().Create(ctx, ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

func withRetry[T any](ctx context.Context, opts RetryOptions, operation string, fn func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = opts.Initial
	policy.MaxInterval = opts.Max

	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := fn()
		if err != nil && !repositories.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(opts.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Retrying after conflict",
				slog.String("type", "db"),
				slog.String("operation", operation),
				slog.Int("attempt", attempt),
				slog.Duration("next", next),
				slog.Any("error", err))
		}),
	)
	if err != nil && repositories.IsRetryable(err) {
		return result, fmt.Errorf("%s failed after %d attempts: %w", operation, attempt, err)
	}
	return result, err
}
