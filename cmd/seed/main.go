package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"armar/internal/config"
	"armar/internal/database"
	"armar/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath   = flag.String("catalog", "configs/catalog.yaml", "path to catalog.yaml")
		configPath = flag.String("config", "configs/config.yaml", "path to the YAML config file")
	)
	flag.Parse()

	seed, err := service.LoadCatalogSeed(*seedPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Database.Configured() {
		return fmt.Errorf("seeding needs %s and %s", config.EnvDatabaseURL, config.EnvDatabaseName)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := database.Open(ctx, cfg.Database, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	res, err := service.SeedCatalog(ctx, store, seed, &logger)
	if err != nil {
		return err
	}

	fmt.Printf("done: services=%d gallery=%d skipped=%d\n", res.Services, res.Gallery, res.Skipped)
	return nil
}
