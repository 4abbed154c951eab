package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/loyalty-engine/backend"
	"github.com/disgoorg/loyalty-engine/backend/handlers"
	"github.com/disgoorg/loyalty-engine/loyalty"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "", "path to config, empty uses defaults and LOYALTY_* env")
	memory := flag.Bool("memory", false, "Whether to use the in-memory store instead of Postgres")
	seed := flag.Bool("seed", false, "Whether to write the catalog to the store on startup")
	flag.Parse()

	cfg, err := loyalty.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(loyalty.NewLogger(cfg.Log, "Loyalty"))
	slog.Info("Starting Loyalty Engine",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	e := loyalty.New(*cfg, version, commit)
	if err = e.SetupStore(ctx, *memory); err != nil {
		slog.Error("Failed to set up store", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}

	// The memory store starts empty, so it is always seeded.
	if *seed || *memory || cfg.Catalog.Seed {
		if err = e.SeedCatalog(ctx); err != nil {
			slog.Error("Failed to seed catalog", slog.String("type", "sys"), slog.Any("error", err))
			os.Exit(-1)
		}
	}

	if err = e.Setup(ctx); err != nil {
		slog.Error("Failed to set up engine", slog.String("type", "sys"), slog.Any("error", err))
		os.Exit(-1)
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	e.StartSweeper(sweepCtx)

	app := backend.NewApp(&handlers.WebApp{
		Engine:  e,
		Version: version,
		Commit:  commit,
	}, cfg.HTTP)

	go func() {
		slog.Info("Starting HTTP server", slog.String("type", "sys"), slog.String("address", cfg.HTTP.Addr))
		if err := app.Listen(cfg.HTTP.Addr); err != nil {
			slog.Error("Failed to start server", slog.String("type", "sys"), slog.Any("error", err))
		}
	}()

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	slog.Info("Shutting down", slog.String("type", "sys"))
	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("type", "sys"), slog.Any("error", err))
	}
	e.Close(shutdownCtx)

	slog.Info("Shutdown complete", slog.String("type", "sys"))
}
