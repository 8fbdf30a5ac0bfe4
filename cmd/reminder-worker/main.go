package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"aisle/internal/amqp"
	"aisle/internal/config"
	"aisle/internal/database"
	"aisle/internal/logger"
	"aisle/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// AMQP is optional: with no broker URL the worker logs reminders
	// instead of publishing them.
	var publisher services.ReminderPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.Warnw("failed to connect to AMQP, continuing in log-only mode", "error", err)
		} else {
			defer client.Close()
			publisher = client
			log.Infow("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		log.Info("AMQP disabled, reminders will be logged only")
	}

	window := time.Duration(cfg.ReminderWindowDays) * 24 * time.Hour
	processor := services.NewReminderProcessor(dbManager.DB(), publisher, window)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run once on startup so a restart never silently skips a day.
	if count, err := processor.ProcessDuePayments(ctx); err != nil {
		log.Errorw("initial reminder run failed", "error", err)
	} else {
		log.Infow("initial reminder run complete", "reminders", count)
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.ReminderCron, func() {
		count, err := processor.ProcessDuePayments(ctx)
		if err != nil {
			log.Errorw("scheduled reminder run failed", "error", err)
			return
		}
		log.Infow("scheduled reminder run complete", "reminders", count)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder cron expression %q: %w", cfg.ReminderCron, err)
	}

	scheduler.Start()
	log.Infow("reminder worker started", "cron", cfg.ReminderCron, "window_days", cfg.ReminderWindowDays)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Infow("shutdown signal received", "signal", sig.String())

	cancel()
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		log.Info("reminder worker shutdown complete")
	case <-time.After(30 * time.Second):
		log.Warn("shutdown timeout reached")
	}
	return nil
}
