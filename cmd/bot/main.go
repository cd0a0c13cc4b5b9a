package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"kapebot/internal/config"
	"kapebot/internal/engine"
	"kapebot/internal/repository"
	"kapebot/internal/repository/memory"
	"kapebot/internal/repository/postgres"
	redisstore "kapebot/internal/repository/redis"
	"kapebot/internal/server"
	"kapebot/internal/service"
	"kapebot/internal/transport"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Kape bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully")

	// Listing catalog: PostgreSQL when configured, demo catalog otherwise
	var propertyRepo repository.PropertyRepository
	if cfg.DatabaseURL != "" {
		db, err := connectDatabase(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := runMigrations(db, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		propertyRepo = postgres.NewPropertyRepo(db)
		logger.Info("Using PostgreSQL listing catalog")
	} else {
		propertyRepo = memory.NewSeededPropertyRepo()
		logger.Info("No DATABASE_URL set, using built-in demo catalog")
	}

	// Session storage: Redis when configured, in-memory otherwise
	var sessions repository.SessionStore
	var greeted repository.GreetedStore
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		store := redisstore.NewSessionStore(client)
		sessions = store
		greeted = store
		logger.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
	} else {
		sessions = memory.NewSessionStore()
		greeted = memory.NewGreetedStore()
		logger.Info("Using in-memory session store")
	}

	// Generative assistant; without a key only the local parser runs
	var completer service.ChatCompleter
	if cfg.OpenAIAPIKey != "" {
		completer = openai.NewClient(cfg.OpenAIAPIKey)
	} else {
		logger.Warn("No OPENAI_API_KEY set, criteria extraction uses the local parser only")
	}
	assistant := service.NewAssistant(completer, cfg.OpenAIModel, logger)

	properties := service.NewPropertyService(propertyRepo)

	twilioSender := transport.NewTwilioClient(
		cfg.Twilio.AccountSID,
		cfg.Twilio.AuthToken,
		cfg.Twilio.WhatsAppNumber,
	)

	// The engine first runs against WhatsApp only; when Telegram is
	// enabled its sender is routed in below.
	router := transport.NewRouter(twilioSender, nil)
	eng := engine.New(sessions, greeted, properties, assistant, router, logger)

	var telegram *transport.TelegramChannel
	if cfg.TelegramToken != "" {
		telegram, err = transport.NewTelegramChannel(cfg.TelegramToken, eng, logger)
		if err != nil {
			logger.Fatal("Failed to create Telegram channel", zap.Error(err))
		}
		router = transport.NewRouter(twilioSender, telegram)
		eng = engine.New(sessions, greeted, properties, assistant, router, logger)
		go telegram.Start()
		logger.Info("Telegram channel enabled")
	}

	srv := server.New(
		eng, properties, assistant, router, logger,
		cfg.Twilio.AccountSID != "",
		cfg.OpenAIAPIKey != "",
	)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping...")

	if telegram != nil {
		telegram.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}

	logger.Info("Bot stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("No new migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Migrations applied successfully")
	return nil
}
