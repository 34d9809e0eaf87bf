package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/dispatcher"
	"github.com/example/ec-storefront/internal/domain/coupon"
	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/draft"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/kv"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/infrastructure/storefront"
	"github.com/example/ec-storefront/internal/logging"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/session"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	tokenExpiry     = 15 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("storefront-api", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := newLogger(cfg)

	if err := cfg.ValidateAPI(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("api stopped")
	}
	logger.Info().Msg("api stopped")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.LogFormat == "console" {
		return logging.NewConsole("storefront-api", cfg.LogLevel)
	}
	return logging.New("storefront-api", cfg.LogLevel)
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	kvStore, closeKV, err := openKV(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeKV()

	sessions := session.NewStore(kvStore, cfg.SessionTTL)
	drafts := draft.NewSlot(kvStore, cfg.SessionTTL)

	var publisher store.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = kafka.NewLoggingPublisher(producer, logger)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing payment events to kafka")
	}

	eventStore, closeEvents, err := openEventStore(ctx, cfg, publisher, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	client := storefront.NewClient(cfg.StorefrontAPIURL, cfg.StorefrontAPITimeout, logger)
	attempts := payment.NewService(eventStore)
	payments := dispatcher.New(attempts, client, drafts, sessions, dispatcher.Config{
		CardProcessingDelay: cfg.CardProcessingDelay,
		PollInterval:        cfg.MobileMoneyPollInterval,
		MaxPolls:            cfg.MobileMoneyMaxPolls,
	}, logger)
	defer payments.Close()

	cmdHandler := command.NewHandler(sessions, coupon.NewResolver(client), drafts, payments, logger)
	queryHandler := query.NewHandler(sessions, drafts, attempts, logger)

	router := api.NewRouter(api.RouterConfig{
		Handlers:       api.NewHandlers(cmdHandler, queryHandler, payments, logger),
		JWTService:     auth.NewJWTService(cfg.JWTSecret, tokenExpiry),
		Logger:         logger,
		RequestTimeout: requestTimeout,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("storefront_api", cfg.StorefrontAPIURL).Msg("server started")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// pending mobile money attempts stay pending; polling stops here
		payments.Close()
		return err
	})
	return g.Wait()
}

func openKV(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (kv.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn().Msg("REDIS_ADDR is empty, sessions and drafts are kept in memory")
		return kv.NewMemoryStore(), func() {}, nil
	}
	client, err := kv.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	return kv.NewRedisStore(client, "storefront"), func() { _ = client.Close() }, nil
}

func openEventStore(ctx context.Context, cfg *config.Config, publisher store.Publisher, logger zerolog.Logger) (store.EventStoreInterface, func(), error) {
	if cfg.EventStore == config.EventStoreMemory {
		logger.Info().Msg("payment events kept in memory")
		return store.NewEventStore(publisher), func() {}, nil
	}

	db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	if err := store.RunMigrations(db); err != nil {
		closeDB()
		return nil, nil, err
	}
	logger.Info().Msg("connected to postgres, migrations applied")
	return store.NewPostgresEventStore(db, publisher), closeDB, nil
}
