package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/cityscape/internal/building"
	"github.com/udisondev/cityscape/internal/config"
	"github.com/udisondev/cityscape/internal/db"
	"github.com/udisondev/cityscape/internal/scene"
)

const defaultConfigPath = "config/world.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := flag.String("config", defaultConfigPath, "path to world config")
	epoch := flag.Uint64("epoch", 0, "generation epoch (bump after terrain changes)")
	load := flag.Bool("load", false, "restore the stored layout for the epoch instead of generating")
	flag.Parse()

	if p := os.Getenv("CITYSCAPE_CONFIG"); p != "" {
		*configPath = p
	}
	cfg, err := config.LoadWorld(*configPath)
	if err != nil {
		return fmt.Errorf("loading world config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("cityscape worldgen starting", "config", *configPath, "epoch", *epoch)

	textures := scene.NewTextureRegistry()
	params, err := cfg.Buildings.BuildParams(textures)
	if err != nil {
		// Every malformed value is reported at once; the load is failed.
		return fmt.Errorf("building config invalid: %w", err)
	}
	lights, err := config.BuildLights(cfg.Lights)
	if err != nil {
		return fmt.Errorf("light config invalid: %w", err)
	}
	slog.Info("config loaded",
		"buildings", params.Count,
		"materials", len(params.Materials),
		"lights", len(lights))

	terrain := scene.WaveTerrain{
		Amplitude: cfg.Terrain.Amplitude,
		Frequency: cfg.Terrain.Frequency,
		Water:     cfg.Terrain.WaterLevel,
	}

	gen := building.NewGenerator(params, *epoch)
	if *load {
		return restoreLayout(ctx, cfg, gen)
	}
	gen.Generate(terrain)

	if cfg.PersistLayout {
		if err := persistLayout(ctx, cfg, gen); err != nil {
			return err
		}
	}
	return nil
}

func persistLayout(ctx context.Context, cfg config.World, gen *building.Generator) error {
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.RunMigrations(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	repo := db.NewLayoutRepository(database)
	if err := repo.SaveLayout(ctx, gen.Epoch(), gen.Buildings()); err != nil {
		return fmt.Errorf("saving layout: %w", err)
	}
	return nil
}

func restoreLayout(ctx context.Context, cfg config.World, gen *building.Generator) error {
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	repo := db.NewLayoutRepository(database)
	layout, err := repo.LoadLayout(ctx, gen.Epoch())
	if err != nil {
		return fmt.Errorf("loading layout: %w", err)
	}
	gen.Restore(gen.Epoch(), layout)
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
