package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/config"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
	"github.com/jgosmann/linux-bsec-exporter/internal/sensor"
	"github.com/jgosmann/linux-bsec-exporter/internal/system"
)

func main() {
	configPath := flag.String("config", "/etc/linux-bsec-exporter/config.toml", "path to the TOML configuration file")
	flag.Parse()

	// Logger initialisieren
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Config laden
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Config loaded successfully", zap.String("path", *configPath))

	raw, err := engine.NewNativeEngine()
	if err != nil {
		logger.Fatal("Failed to load fusion engine", zap.Error(err))
	}

	ctrl, err := sensor.OpenController(cfg.Sensor.Device, cfg.Sensor.Address)
	if err != nil {
		logger.Fatal("Failed to open sensor", zap.Error(err))
	}

	// Lifecycle Manager
	lifecycle := system.NewLifecycleManager(cfg, raw, ctrl, logger)

	if err := lifecycle.Start(); err != nil {
		logger.Fatal("Failed to start exporter", zap.Error(err))
	}

	logger.Info("linux-bsec-exporter started successfully")

	// Graceful Shutdown auf Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := lifecycle.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("linux-bsec-exporter stopped successfully")
}
