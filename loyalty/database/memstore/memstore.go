// Package memstore is an in-memory repositories.Store used by tests and the
// -memory development mode. Transactions are serialised behind one lock and
// rolled back by restoring a snapshot.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/shopspring/decimal"
)

type state struct {
	ledgers   map[string]models.UserLedger
	activity  map[string]models.UserActivity
	progress  map[string]models.UserQuestProgress
	inventory []models.InventoryItem
	processed map[string]time.Time
	nextID    int64
}

func newState() *state {
	return &state{
		ledgers:   make(map[string]models.UserLedger),
		activity:  make(map[string]models.UserActivity),
		progress:  make(map[string]models.UserQuestProgress),
		processed: make(map[string]time.Time),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.ledgers {
		c.ledgers[k] = v
	}
	for k, v := range s.activity {
		c.activity[k] = v
	}
	for k, v := range s.progress {
		v.Metadata.Items = append([]string(nil), v.Metadata.Items...)
		v.Metadata.Events = append([]time.Time(nil), v.Metadata.Events...)
		c.progress[k] = v
	}
	c.inventory = append([]models.InventoryItem(nil), s.inventory...)
	for k, v := range s.processed {
		c.processed[k] = v
	}
	c.nextID = s.nextID
	return c
}

// Store implements repositories.Store in memory.
type Store struct {
	mu      sync.Mutex
	st      *state
	catalog *Catalog
}

// New creates an empty store with an empty catalog.
func New() *Store {
	return &Store{st: newState(), catalog: NewCatalog()}
}

func (s *Store) access(inTx bool) access {
	return access{store: s, inTx: inTx}
}

func (s *Store) Ledgers() repositories.LedgerRepository {
	return ledgerRepo{s.access(false)}
}

func (s *Store) Activity() repositories.ActivityRepository {
	return activityRepo{s.access(false)}
}

func (s *Store) Progress() repositories.QuestProgressRepository {
	return progressRepo{s.access(false)}
}

func (s *Store) Inventory() repositories.InventoryRepository {
	return inventoryRepo{s.access(false)}
}

func (s *Store) Events() repositories.ProcessedEventRepository {
	return eventRepo{s.access(false)}
}

func (s *Store) Catalog() repositories.CatalogRepository {
	return s.catalog
}

// WithinTx holds the store lock for the duration of fn and restores the
// previous state when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.st.clone()
	if err := fn(ctx, txRepos{s.access(true)}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type txRepos struct {
	a access
}

func (t txRepos) Ledgers() repositories.LedgerRepository {
	return ledgerRepo{t.a}
}

func (t txRepos) Activity() repositories.ActivityRepository {
	return activityRepo{t.a}
}

func (t txRepos) Progress() repositories.QuestProgressRepository {
	return progressRepo{t.a}
}

func (t txRepos) Inventory() repositories.InventoryRepository {
	return inventoryRepo{t.a}
}

func (t txRepos) Events() repositories.ProcessedEventRepository {
	return eventRepo{t.a}
}

// access guards state reads and writes. Inside a transaction the store lock
// is already held.
type access struct {
	store *Store
	inTx  bool
}

func (a access) acquire() func() {
	if a.inTx {
		return func() {}
	}
	a.store.mu.Lock()
	return a.store.mu.Unlock
}

func (a access) st() *state {
	return a.store.st
}

type ledgerRepo struct{ access }

type activityRepo struct{ access }

type progressRepo struct{ access }

type inventoryRepo struct{ access }

type eventRepo struct{ access }

func (r ledgerRepo) Create(_ context.Context, ledger *models.UserLedger) error {
	defer r.acquire()()

	if _, ok := r.st().ledgers[ledger.UserID]; ok {
		return &repositories.ConflictError{Entity: "ledger", Field: "user_id", Value: ledger.UserID}
	}
	now := time.Now()
	ledger.CreatedAt = now
	ledger.UpdatedAt = now
	r.st().ledgers[ledger.UserID] = *ledger
	return nil
}

func (r ledgerRepo) Get(_ context.Context, userID string) (*models.UserLedger, error) {
	defer r.acquire()()
	return r.getLedger(userID)
}

func (r ledgerRepo) GetForUpdate(_ context.Context, userID string) (*models.UserLedger, error) {
	defer r.acquire()()
	return r.getLedger(userID)
}

func (r ledgerRepo) getLedger(userID string) (*models.UserLedger, error) {
	ledger, ok := r.st().ledgers[userID]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "ledger", ID: userID}
	}
	return &ledger, nil
}

func (r ledgerRepo) updateLedger(userID string, fn func(l *models.UserLedger) error) (*models.UserLedger, error) {
	ledger, ok := r.st().ledgers[userID]
	if !ok {
		return nil, &repositories.NotFoundError{Entity: "ledger", ID: userID}
	}
	if err := fn(&ledger); err != nil {
		return nil, err
	}
	ledger.UpdatedAt = time.Now()
	r.st().ledgers[userID] = ledger
	return &ledger, nil
}

func (r ledgerRepo) AddBalances(_ context.Context, userID string, points, tokens int64) (*models.UserLedger, error) {
	defer r.acquire()()
	return r.updateLedger(userID, func(l *models.UserLedger) error {
		l.Points += points
		l.Tokens += tokens
		return nil
	})
}

func (r ledgerRepo) SpendTokens(_ context.Context, userID string, amount int64) (*models.UserLedger, error) {
	defer r.acquire()()
	return r.updateLedger(userID, func(l *models.UserLedger) error {
		if l.Tokens < amount {
			return repositories.ErrInsufficientTokens
		}
		l.Tokens -= amount
		return nil
	})
}

func (r ledgerRepo) SetProgression(_ context.Context, userID string, act, level int) (*models.UserLedger, error) {
	defer r.acquire()()
	return r.updateLedger(userID, func(l *models.UserLedger) error {
		l.Act = act
		l.Level = level
		return nil
	})
}

func (r ledgerRepo) SetEquippedTier(_ context.Context, userID string, tier string) (*models.UserLedger, error) {
	defer r.acquire()()
	return r.updateLedger(userID, func(l *models.UserLedger) error {
		l.EquippedTier = tier
		return nil
	})
}

// Activity

func (r activityRepo) Get(_ context.Context, userID string) (*models.UserActivity, error) {
	defer r.acquire()()

	activity, ok := r.st().activity[userID]
	if !ok {
		return &models.UserActivity{UserID: userID, LifetimeSpend: decimal.Zero}, nil
	}
	return &activity, nil
}

func (r activityRepo) Record(_ context.Context, userID string, orders, referrals int64, spend decimal.Decimal) (*models.UserActivity, error) {
	defer r.acquire()()

	activity, ok := r.st().activity[userID]
	if !ok {
		activity = models.UserActivity{UserID: userID, LifetimeSpend: decimal.Zero}
	}
	activity.OrderCount += orders
	activity.ReferralCount += referrals
	activity.LifetimeSpend = activity.LifetimeSpend.Add(spend)
	activity.UpdatedAt = time.Now()
	r.st().activity[userID] = activity
	return &activity, nil
}

// Quest progress

func progressKey(userID, questID string) string {
	return userID + "\x00" + questID
}

func (r progressRepo) GetOrCreate(_ context.Context, userID, questID string, now time.Time) (*models.UserQuestProgress, error) {
	defer r.acquire()()

	key := progressKey(userID, questID)
	progress, ok := r.st().progress[key]
	if !ok {
		r.st().nextID++
		progress = models.UserQuestProgress{
			ID:        r.st().nextID,
			UserID:    userID,
			QuestID:   questID,
			Counter:   decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.st().progress[key] = progress
	}
	return cloneProgress(progress), nil
}

func (r progressRepo) ListByUser(_ context.Context, userID string) ([]*models.UserQuestProgress, error) {
	defer r.acquire()()

	var out []*models.UserQuestProgress
	for _, p := range r.st().progress {
		if p.UserID == userID {
			out = append(out, cloneProgress(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestID < out[j].QuestID })
	return out, nil
}

func (r progressRepo) Update(_ context.Context, progress *models.UserQuestProgress) error {
	defer r.acquire()()

	key := progressKey(progress.UserID, progress.QuestID)
	stored, ok := r.st().progress[key]
	if !ok {
		return &repositories.NotFoundError{Entity: "quest_progress", ID: progress.QuestID}
	}
	if stored.CompletedAt != nil {
		return nil
	}
	stored.Counter = progress.Counter
	stored.WindowStart = progress.WindowStart
	stored.Metadata = progress.Metadata
	stored.UpdatedAt = time.Now()
	r.st().progress[key] = *cloneProgress(stored)
	return nil
}

func (r progressRepo) MarkCompleted(_ context.Context, progress *models.UserQuestProgress, at time.Time) (bool, error) {
	defer r.acquire()()

	key := progressKey(progress.UserID, progress.QuestID)
	stored, ok := r.st().progress[key]
	if !ok || stored.CompletedAt != nil {
		return false, nil
	}
	stored.Counter = progress.Counter
	stored.WindowStart = progress.WindowStart
	stored.Metadata = progress.Metadata
	stored.CompletedAt = &at
	stored.UpdatedAt = at
	r.st().progress[key] = *cloneProgress(stored)

	progress.CompletedAt = &at
	progress.UpdatedAt = at
	return true, nil
}

func cloneProgress(p models.UserQuestProgress) *models.UserQuestProgress {
	p.Metadata.Items = append([]string(nil), p.Metadata.Items...)
	p.Metadata.Events = append([]time.Time(nil), p.Metadata.Events...)
	return &p
}

// Inventory

func (r inventoryRepo) Insert(_ context.Context, item *models.InventoryItem) error {
	defer r.acquire()()

	for _, existing := range r.st().inventory {
		if existing.ID == item.ID {
			return &repositories.ConflictError{Entity: "inventory_item", Field: "id", Value: item.ID}
		}
	}
	r.st().inventory = append(r.st().inventory, *item)
	return nil
}

func (r inventoryRepo) ListByUser(_ context.Context, userID string, itemType string) ([]*models.InventoryItem, error) {
	defer r.acquire()()

	var out []*models.InventoryItem
	for _, item := range r.st().inventory {
		if item.UserID != userID || (itemType != "" && item.Type != itemType) {
			continue
		}
		item := item
		out = append(out, &item)
	}
	return out, nil
}

func (r inventoryRepo) DeleteExpired(_ context.Context, itemType string, cutoff time.Time, limit int) (int, error) {
	defer r.acquire()()

	var expired []string
	for _, item := range r.st().inventory {
		if item.Type != itemType || item.ExpiresAt == nil || !item.ExpiresAt.Before(cutoff) {
			continue
		}
		expired = append(expired, item.ID)
		if limit > 0 && len(expired) == limit {
			break
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	drop := make(map[string]struct{}, len(expired))
	for _, id := range expired {
		drop[id] = struct{}{}
	}
	kept := r.st().inventory[:0:0]
	for _, item := range r.st().inventory {
		if _, ok := drop[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	r.st().inventory = kept
	return len(expired), nil
}

// Processed events

func (r eventRepo) MarkProcessed(_ context.Context, userID, key string, at time.Time) (bool, error) {
	defer r.acquire()()

	k := userID + "\x00" + key
	if _, ok := r.st().processed[k]; ok {
		return false, nil
	}
	r.st().processed[k] = at
	return true, nil
}
