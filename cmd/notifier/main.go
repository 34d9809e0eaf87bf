package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/logging"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("storefront-notifier", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New("storefront-notifier", cfg.LogLevel)
	if cfg.LogFormat == "console" {
		logger = logging.NewConsole("storefront-notifier", cfg.LogLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("notifier stopped")
	}
	logger.Info().Msg("notifier stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	if len(cfg.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.NotifierGroup, logger)
	defer consumer.Close()

	logger.Info().
		Strs("brokers", cfg.KafkaBrokers).
		Str("topic", cfg.KafkaTopic).
		Str("group", cfg.NotifierGroup).
		Str("smtp", cfg.SMTPHost+":"+cfg.SMTPPort).
		Msg("consuming payment events")

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
