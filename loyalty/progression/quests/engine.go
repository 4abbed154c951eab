// Package quests evaluates quest definitions against domain events and
// credits completed quests exactly once.
package quests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/logger"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/events"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/rewards"
	"github.com/shopspring/decimal"
)

// ErrInvalidEvent is returned for events that fail validation.
var ErrInvalidEvent = errors.New("invalid event")

// Quest is a definition together with its decoded config.
type Quest struct {
	Definition *models.QuestDefinition
	Config     Config
}

// CompletionResult describes one quest credited by an event.
type CompletionResult struct {
	QuestID      string                `json:"quest_id"`
	Name         string                `json:"name"`
	RewardType   string                `json:"reward_type"`
	BaseAmount   int64                 `json:"base_amount"`
	RewardAmount int64                 `json:"reward_amount"`
	Item         *models.InventoryItem `json:"item,omitempty"`
	CompletedAt  time.Time             `json:"completed_at"`
}

// Outcome is the full result of a submission.
type Outcome struct {
	Completions []CompletionResult `json:"completions"`
	Duplicate   bool               `json:"duplicate"`
	Ledger      *models.UserLedger `json:"ledger,omitempty"`
}

type Engine struct {
	store     repositories.Store
	applier   *rewards.Applier
	clock     clock.Clock
	publisher events.Publisher
	loc       *time.Location

	mu     sync.RWMutex
	quests []*Quest
}

func NewEngine(store repositories.Store, applier *rewards.Applier, c clock.Clock, publisher events.Publisher, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Engine{
		store:     store,
		applier:   applier,
		clock:     c,
		publisher: publisher,
		loc:       loc,
	}
}

// Load reads quest definitions from the catalog.
func (e *Engine) Load(ctx context.Context) error {
	defs, err := e.store.Catalog().QuestDefinitions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load quest definitions: %w", err)
	}
	e.SetDefinitions(defs)
	return nil
}

// SetDefinitions decodes and installs defs. Definitions with an invalid
// config are logged and left out; the rest stay active. It returns the
// configuration errors.
func (e *Engine) SetDefinitions(defs []*models.QuestDefinition) []error {
	quests := make([]*Quest, 0, len(defs))
	var errs []error
	for _, def := range defs {
		q, err := NewQuest(def)
		if err != nil {
			errs = append(errs, err)
			slog.Error("Quest configuration error, quest disabled",
				slog.String("type", "error"),
				slog.String("quest_id", def.QuestID),
				slog.Any("error", err))
			continue
		}
		quests = append(quests, q)
	}
	sort.Slice(quests, func(i, j int) bool { return quests[i].Definition.QuestID < quests[j].Definition.QuestID })

	e.mu.Lock()
	e.quests = quests
	e.mu.Unlock()

	logger.LogEngine("Quests loaded",
		slog.Int("active", len(quests)),
		slog.Int("disabled", len(errs)))
	return errs
}

// NewQuest validates a definition and decodes its config.
func NewQuest(def *models.QuestDefinition) (*Quest, error) {
	switch {
	case def.QuestID == "":
		return nil, fmt.Errorf("%w: quest id is required", ErrInvalidConfig)
	case def.RewardAmount <= 0:
		return nil, fmt.Errorf("%w: %s: reward amount must be positive", ErrInvalidConfig, def.QuestID)
	case def.RewardType != models.RewardTypeXP && def.RewardType != models.RewardTypeToken:
		return nil, fmt.Errorf("%w: %s: unknown reward type %q", ErrInvalidConfig, def.QuestID, def.RewardType)
	case def.MinAct < 0:
		return nil, fmt.Errorf("%w: %s: min act must not be negative", ErrInvalidConfig, def.QuestID)
	}
	if def.RewardItem != nil {
		if err := rewards.ValidateGrant(*def.RewardItem); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, def.QuestID, err)
		}
	}

	cfg, err := ParseConfig(def.Type, def.ValidationConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.QuestID, err)
	}
	return &Quest{Definition: def, Config: cfg}, nil
}

// Quests returns the active quests ordered by id.
func (e *Engine) Quests() []*Quest {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Quest(nil), e.quests...)
}

// SubmitEvent processes ev and returns the quests it completed.
func (e *Engine) SubmitEvent(ctx context.Context, ev Event) ([]CompletionResult, error) {
	outcome, err := e.Submit(ctx, ev)
	if err != nil {
		return nil, err
	}
	return outcome.Completions, nil
}

// Submit processes ev in one transaction. Replays of an event with a known
// dedupe key are acknowledged without effect. Output events are published
// after commit.
func (e *Engine) Submit(ctx context.Context, ev Event) (*Outcome, error) {
	if err := ev.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	now := e.clock.Now()
	ev = withTimestamp(ev, now)
	quests := e.Quests()

	var (
		outcome *Outcome
		batch   events.Batch
	)
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Repositories) error {
		outcome = &Outcome{}
		batch = events.Batch{}
		return e.process(ctx, tx, ev, quests, now, outcome, &batch)
	})
	if err != nil {
		return nil, err
	}

	if batch.Len() > 0 {
		e.publisher.Publish(ctx, batch.Events()...)
	}
	return outcome, nil
}

func (e *Engine) process(ctx context.Context, tx repositories.Repositories, ev Event, quests []*Quest, now time.Time, outcome *Outcome, batch *events.Batch) error {
	userID := ev.Subject()

	ledger, err := tx.Ledgers().GetForUpdate(ctx, userID)
	if err != nil {
		return err
	}

	if key := ev.DedupeKey(); key != "" {
		fresh, err := tx.Events().MarkProcessed(ctx, userID, key, now)
		if err != nil {
			return err
		}
		if !fresh {
			outcome.Duplicate = true
			outcome.Ledger = ledger
			slog.Debug("Duplicate event ignored",
				slog.String("type", "eng"),
				slog.String("user_id", userID),
				slog.String("key", key))
			return nil
		}
	}

	in := evalInput{event: ev, ledger: ledger, loc: e.loc}
	switch v := ev.(type) {
	case *OrderCompleted:
		in.order = v
		in.activity, err = tx.Activity().Record(ctx, userID, 1, 0, v.OrderTotal)
	case *ReferralConfirmed:
		in.activity, err = tx.Activity().Record(ctx, userID, 0, 1, decimal.Zero)
	default:
		return fmt.Errorf("%w: unsupported event %T", ErrInvalidEvent, ev)
	}
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	// XP rewards can satisfy lifetime-XP quests, so evaluation repeats over
	// the remaining quests until a pass completes nothing.
	pending := make([]*Quest, 0, len(quests))
	for _, q := range quests {
		if q.Definition.MinAct <= ledger.Act {
			pending = append(pending, q)
		}
	}
	credited := false
	for len(pending) > 0 {
		var next []*Quest
		progressed := false
		for _, q := range pending {
			result, done, err := e.evaluateQuest(ctx, tx, q, &in, now, batch)
			if err != nil {
				return err
			}
			if result != nil {
				outcome.Completions = append(outcome.Completions, *result)
				credited = true
				progressed = true
			}
			if !done {
				next = append(next, q)
			}
		}
		if !progressed {
			break
		}
		pending = retainXPQuests(next)
	}

	outcome.Ledger = in.ledger
	if credited {
		batch.Add(events.LedgerUpdated{UserID: userID, Points: in.ledger.Points, Tokens: in.ledger.Tokens})
	}
	return nil
}

func retainXPQuests(quests []*Quest) []*Quest {
	out := quests[:0]
	for _, q := range quests {
		if c, ok := q.Config.(*OneOffConfig); ok && c.TargetXP > 0 {
			out = append(out, q)
		}
	}
	return out
}

// evaluateQuest returns a result when this call credited the quest. done is
// true when the quest needs no further evaluation for this event.
func (e *Engine) evaluateQuest(ctx context.Context, tx repositories.Repositories, q *Quest, in *evalInput, now time.Time, batch *events.Batch) (*CompletionResult, bool, error) {
	if !relevant(q.Config, *in) {
		return nil, false, nil
	}

	def := q.Definition
	userID := in.ledger.UserID

	progress, err := tx.Progress().GetOrCreate(ctx, userID, def.QuestID, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load progress for %s: %w", def.QuestID, err)
	}
	if progress.Completed() {
		return nil, true, nil
	}

	v := evaluate(q, progress, *in)
	if !v.done {
		if v.changed {
			if err := tx.Progress().Update(ctx, progress); err != nil {
				return nil, false, fmt.Errorf("failed to save progress for %s: %w", def.QuestID, err)
			}
		}
		return nil, false, nil
	}

	won, err := tx.Progress().MarkCompleted(ctx, progress, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to complete %s: %w", def.QuestID, err)
	}
	if !won {
		return nil, true, nil
	}

	grant, err := e.applier.Grant(ctx, tx, userID, def.RewardType, def.RewardAmount, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to reward %s: %w", def.QuestID, err)
	}
	in.ledger = grant.Ledger

	result := &CompletionResult{
		QuestID:      def.QuestID,
		Name:         def.Name,
		RewardType:   def.RewardType,
		BaseAmount:   grant.Base,
		RewardAmount: grant.Effective,
		CompletedAt:  now,
	}
	batch.Add(events.QuestCompleted{
		UserID:       userID,
		QuestID:      def.QuestID,
		RewardType:   def.RewardType,
		RewardAmount: grant.Effective,
		BaseAmount:   grant.Base,
	})

	if def.RewardItem != nil {
		item, err := e.applier.GrantItem(ctx, tx, userID, *def.RewardItem, def.QuestID, now)
		if err != nil {
			return nil, false, fmt.Errorf("failed to grant item for %s: %w", def.QuestID, err)
		}
		result.Item = item
		batch.Add(events.InventoryGranted{UserID: userID, Item: *item})
	}

	logger.LogEngine("Quest completed",
		slog.String("user_id", userID),
		slog.String("quest_id", def.QuestID),
		slog.String("reward_type", def.RewardType),
		slog.Int64("reward", grant.Effective))

	return result, true, nil
}

func withTimestamp(ev Event, now time.Time) Event {
	switch v := ev.(type) {
	case *OrderCompleted:
		if v.Timestamp.IsZero() {
			c := *v
			c.Timestamp = now
			return &c
		}
	case *ReferralConfirmed:
		if v.Timestamp.IsZero() {
			c := *v
			c.Timestamp = now
			return &c
		}
	}
	return ev
}
