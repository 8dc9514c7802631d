package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/finance_ledger/internal/adapters/email"
	"github.com/SscSPs/finance_ledger/internal/adapters/messaging/amqp"
	"github.com/SscSPs/finance_ledger/internal/core/services"
	"github.com/SscSPs/finance_ledger/internal/platform/config"
	"github.com/SscSPs/finance_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/finance_ledger/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("Starting notify-worker")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notification worker")
		os.Exit(1)
	}
	if cfg.StorageDriver != config.StoragePostgres {
		logger.Error("The notification worker needs shared storage", slog.String("storage_driver", cfg.StorageDriver))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, database.PoolOptions{MaxConns: 4, ConnectTimeout: 10 * time.Second})
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	repos := pgsql.NewRepositoryProvider(dbPool)

	sender, err := email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom, "", cfg.HTTPClientTimeout)
	if err != nil {
		logger.Error("Failed to initialize e-mail sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer amqpClient.Close()

	delivery := services.NewEmailDeliveryService(repos.UserContactRepo, sender, repos.NotificationRepo)

	err = amqpClient.ConsumeEmails(ctx, func(ctx context.Context, job *amqp.EmailJob) error {
		return delivery.Deliver(ctx, job.Notification, job.Template())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
