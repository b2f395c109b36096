package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathshare/tracker/internal/config"
	"github.com/pathshare/tracker/internal/kafka"
	"github.com/pathshare/tracker/internal/server"
	"github.com/pathshare/tracker/internal/service"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(config.GetConfigPath())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}
	logger.SetOutput(os.Stdout)

	// Set log level
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to 'info'", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Create a context that will be canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional downstream pipeline for accepted fixes
	var sink service.FixSink
	if cfg.Kafka.Enabled {
		sink = kafka.NewSink(kafka.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
		logger.WithFields(logrus.Fields{
			"brokers": cfg.Kafka.Brokers,
			"topic":   cfg.Kafka.Topic,
		}).Info("Kafka fix sink enabled")
	}

	tracker := service.NewTracker(service.Config{
		HistoryLimit: cfg.Tracking.HistoryLimit,
	}, sink, logger)
	tracker.Start(ctx)

	srv := server.NewServer(server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, tracker, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Errorf("Server error: %v", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Shutting down tracker service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	if err := tracker.Stop(); err != nil {
		logger.Errorf("Tracker shutdown error: %v", err)
	}
}
