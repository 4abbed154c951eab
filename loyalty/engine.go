package loyalty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/loyalty-engine/loyalty/catalog"
	"github.com/disgoorg/loyalty-engine/loyalty/config"
	"github.com/disgoorg/loyalty-engine/loyalty/database"
	"github.com/disgoorg/loyalty-engine/loyalty/database/memstore"
	"github.com/disgoorg/loyalty-engine/loyalty/database/repositories"
	"github.com/disgoorg/loyalty-engine/loyalty/logger"
	"github.com/disgoorg/loyalty-engine/loyalty/processor"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/clock"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/events"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/inventory"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/quests"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/rewards"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/shop"
	"github.com/disgoorg/loyalty-engine/loyalty/progression/tiers"
)

// NewLogger builds the process logger from the log section.
func NewLogger(cfg LogConfig, prefix string) *slog.Logger {
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.AddSource,
		}))
	}
	return slog.New(logger.NewHandlerWithWriter(os.Stdout, prefix, cfg.Level, cfg.Color))
}

func New(cfg Config, version string, commit string) *Engine {
	return &Engine{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
		Clock:   clock.System{},
	}
}

// Engine owns every long-lived component of the loyalty service.
type Engine struct {
	Cfg     Config
	Version string
	Commit  string
	Clock   clock.Clock

	DB        *database.DB
	Store     repositories.Store
	Tiers     *tiers.Service
	Inventory *inventory.Store
	Applier   *rewards.Applier
	Quests    *quests.Engine
	Shop      *shop.Gate
	Processor *processor.Processor
	Bus       *events.Bus
	Sweeper   *inventory.Sweeper
}

// SetupStore connects to Postgres and prepares the schema, or falls back to
// the in-memory store when memory is set.
func (e *Engine) SetupStore(ctx context.Context, memory bool) error {
	if memory {
		e.Store = memstore.New()
		logger.LogSystem("Using in-memory store")
		return nil
	}

	start := time.Now()
	db, err := database.New(ctx, e.Cfg.DB)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	e.DB = db
	cat := repositories.NewCachedCatalog(repositories.NewCatalogRepository(db.BunDB()), config.CatalogCacheSize)
	e.Store = repositories.NewStore(db.BunDB(), cat)

	logger.LogSystem("Database connected",
		slog.String("database", e.Cfg.DB.Database),
		slog.Duration("took", time.Since(start)))
	return nil
}

// LoadCatalog returns the configured YAML catalog or the built-in one.
func (e *Engine) LoadCatalog() (*catalog.Catalog, error) {
	if e.Cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(e.Cfg.Catalog.Path)
}

// SeedCatalog writes the configured catalog into the store.
func (e *Engine) SeedCatalog(ctx context.Context) error {
	if e.Store == nil {
		return errors.New("store is not set up")
	}
	cat, err := e.LoadCatalog()
	if err != nil {
		return err
	}
	if err := cat.Save(ctx, e.Store.Catalog()); err != nil {
		return err
	}
	logger.LogSystem("Catalog seeded",
		slog.Int("tiers", len(cat.Tiers)),
		slog.Int("quests", len(cat.Quests)),
		slog.Int("shop_items", len(cat.Shop)))
	return nil
}

// Setup builds the progression components on top of the store. The catalog
// must already be present.
func (e *Engine) Setup(ctx context.Context) error {
	if e.Store == nil {
		return errors.New("store is not set up")
	}

	loc, err := e.Cfg.Engine.Location()
	if err != nil {
		return err
	}

	table, err := e.Store.Catalog().Tiers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tiers: %w", err)
	}
	resolver, err := tiers.NewResolver(table)
	if err != nil {
		return fmt.Errorf("invalid tier table: %w", err)
	}

	sinks := []events.Sink{events.LogSink{}}
	if e.Cfg.Webhook.URL != "" {
		sinks = append(sinks, events.NewWebhookSink(events.WebhookConfig{
			URL:        e.Cfg.Webhook.URL,
			Secret:     e.Cfg.Webhook.Secret,
			MaxRetries: e.Cfg.Webhook.MaxRetries,
			RetryDelay: e.Cfg.Webhook.RetryDelay.Duration,
			Timeout:    e.Cfg.Webhook.Timeout.Duration,
		}))
	}
	e.Bus = events.NewBus(e.Cfg.Engine.EventBuffer, sinks...)

	e.Tiers = tiers.NewService(resolver, e.Store.Ledgers())
	e.Inventory = inventory.NewStore(e.Store.Inventory())
	e.Applier = rewards.NewApplier(inventory.NewBoosterPolicy(e.Cfg.Engine.MaxBoosterBonus))
	e.Quests = quests.NewEngine(e.Store, e.Applier, e.Clock, e.Bus, loc)
	e.Shop = shop.NewGate(e.Store, e.Applier, e.Clock, e.Bus)
	e.Processor = processor.New(e.Quests, e.Shop, e.Store, e.Applier, processor.RetryOptions{
		MaxAttempts: e.Cfg.Engine.MaxAttempts,
		Initial:     e.Cfg.Engine.RetryInitial.Duration,
		Max:         e.Cfg.Engine.RetryMax.Duration,
	})
	e.Sweeper = inventory.NewSweeper(e.Store.Inventory(), e.Clock, e.Cfg.Engine.SweepRetention.Duration)

	if err := e.Quests.Load(ctx); err != nil {
		return fmt.Errorf("failed to load quests: %w", err)
	}

	logger.LogEngine("Engine ready",
		slog.Int("tiers", len(table)),
		slog.Int("quests", len(e.Quests.Quests())),
		slog.String("timezone", loc.String()),
		slog.Int("sinks", len(sinks)))
	return nil
}

// StartSweeper runs the inventory sweeper until ctx is done. It is a no-op
// when sweeping is disabled.
func (e *Engine) StartSweeper(ctx context.Context) {
	if !e.Cfg.Engine.SweepEnabled || e.Sweeper == nil {
		return
	}
	go e.Sweeper.Run(ctx, e.Cfg.Engine.SweepInterval.Duration)
}

// Ping reports whether the backing store is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if e.DB == nil {
		return nil
	}
	return e.DB.Ping(ctx)
}

func (e *Engine) Close(ctx context.Context) {
	if e.Bus != nil {
		if err := e.Bus.Close(ctx); err != nil {
			logger.LogError("Failed to drain event bus", err)
		}
	}
	if e.DB != nil {
		e.DB.Close()
	}
}
