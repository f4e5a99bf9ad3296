package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"armar/internal/config"
	"armar/internal/database"
	"armar/internal/export"
	"armar/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "configs/config.yaml"
	}
	configPath := flag.String("config", defaultConfig, "path to the YAML config file")
	outDir := flag.String("out", "", "directory for the workbook (defaults to exports.path)")
	backup := flag.Bool("backup", false, "also copy the database file next to the workbook (sqlite only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *outDir != "" {
		cfg.Exports.Path = *outDir
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Database.Configured() {
		return fmt.Errorf("export needs %s and %s", config.EnvDatabaseURL, config.EnvDatabaseName)
	}

	openCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	store, err := database.Open(openCtx, cfg.Database, logging.Component(logger, "database"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	path, err := export.NewExporter(store, cfg.Exports.Path, logging.Component(logger, "export")).Export(ctx)
	if err != nil {
		return err
	}
	fmt.Println(path)

	if *backup {
		b, ok := store.(backuper)
		if !ok {
			return errors.New("backup is only supported for sqlite databases")
		}
		backupPath, err := b.Backup(ctx, cfg.Exports.Path)
		if err != nil {
			return err
		}
		fmt.Println(backupPath)
	}
	return nil
}

type backuper interface {
	Backup(ctx context.Context, dir string) (string, error)
}
