package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/database/models"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

//go:generate mockgen -source=store.go -destination=mock/repositories.go -package=mock -exclude_interfaces=ActivityRepository,QuestProgressRepository,ProcessedEventRepository,CatalogRepository,Repositories,Store

type LedgerRepository interface {
	Create(ctx context.Context, ledger *models.UserLedger) error
	Get(ctx context.Context, userID string) (*models.UserLedger, error)
	// GetForUpdate reads the ledger and locks the row until the transaction ends.
	GetForUpdate(ctx context.Context, userID string) (*models.UserLedger, error)
	AddBalances(ctx context.Context, userID string, points, tokens int64) (*models.UserLedger, error)
	SpendTokens(ctx context.Context, userID string, amount int64) (*models.UserLedger, error)
	SetProgression(ctx context.Context, userID string, act, level int) (*models.UserLedger, error)
	SetEquippedTier(ctx context.Context, userID string, tier string) (*models.UserLedger, error)
}

type ActivityRepository interface {
	Get(ctx context.Context, userID string) (*models.UserActivity, error)
	Record(ctx context.Context, userID string, orders, referrals int64, spend decimal.Decimal) (*models.UserActivity, error)
}

type QuestProgressRepository interface {
	// GetOrCreate returns the locked progress row, creating it on first use.
	GetOrCreate(ctx context.Context, userID, questID string, now time.Time) (*models.UserQuestProgress, error)
	ListByUser(ctx context.Context, userID string) ([]*models.UserQuestProgress, error)
	// Update persists counter, window and metadata of a row that is not completed.
	Update(ctx context.Context, progress *models.UserQuestProgress) error
	// MarkCompleted sets completed_at only if it is still null and reports
	// whether this call won.
	MarkCompleted(ctx context.Context, progress *models.UserQuestProgress, at time.Time) (bool, error)
}

type InventoryRepository interface {
	Insert(ctx context.Context, item *models.InventoryItem) error
	ListByUser(ctx context.Context, userID string, itemType string) ([]*models.InventoryItem, error)
	DeleteExpired(ctx context.Context, itemType string, cutoff time.Time, limit int) (int, error)
}

type ProcessedEventRepository interface {
	// MarkProcessed records key and reports false when it was already present.
	MarkProcessed(ctx context.Context, userID, key string, at time.Time) (bool, error)
}

type CatalogRepository interface {
	Tiers(ctx context.Context) ([]*models.Tier, error)
	QuestDefinitions(ctx context.Context) ([]*models.QuestDefinition, error)
	ShopItems(ctx context.Context) ([]*models.ShopItem, error)
	ShopItem(ctx context.Context, id string) (*models.ShopItem, error)
	Save(ctx context.Context, tiers []*models.Tier, quests []*models.QuestDefinition, items []*models.ShopItem) error
}

// Repositories groups the per-user stores that take part in one unit of work.
type Repositories interface {
	Ledgers() LedgerRepository
	Activity() ActivityRepository
	Progress() QuestProgressRepository
	Inventory() InventoryRepository
	Events() ProcessedEventRepository
}

// Store is the persistence boundary of the engine.
type Store interface {
	Repositories
	Catalog() CatalogRepository
	// WithinTx runs fn atomically. Any error rolls back every write made
	// through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

type repoSet struct {
	db bun.IDB
}

func (r repoSet) Ledgers() LedgerRepository { return NewLedgerRepository(r.db) }

func (r repoSet) Activity() ActivityRepository { return NewActivityRepository(r.db) }

func (r repoSet) Progress() QuestProgressRepository { return NewQuestProgressRepository(r.db) }

func (r repoSet) Inventory() InventoryRepository { return NewInventoryRepository(r.db) }

func (r repoSet) Events() ProcessedEventRepository { return NewProcessedEventRepository(r.db) }

type bunStore struct {
	repoSet
	db      *bun.DB
	catalog CatalogRepository
}

// NewStore creates the Postgres-backed store.
func NewStore(db *bun.DB, catalog CatalogRepository) Store {
	if catalog == nil {
		catalog = NewCatalogRepository(db)
	}
	return &bunStore{repoSet: repoSet{db: db}, db: db, catalog: catalog}
}

func (s *bunStore) Catalog() CatalogRepository {
	return s.catalog
}

func (s *bunStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error {
	base := NewBaseRepository(s.db)
	err := s.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, repoSet{db: tx})
	})
	if err == nil {
		return nil
	}
	// Errors returned by fn pass through; only raw driver errors (commit
	// failures, lock timeouts) are translated.
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return base.HandleErrorWithID("transaction", "unit_of_work", "-", err)
	}
	return err
}
