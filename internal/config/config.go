package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port string

	Twilio TwilioConfig

	// OpenAIAPIKey is optional; without it the bot only uses the
	// local heuristic extractor.
	OpenAIAPIKey string
	OpenAIModel  string

	// TelegramToken is optional; without it the Telegram channel is
	// disabled.
	TelegramToken string

	// DatabaseURL is optional; without it the built-in demo catalog
	// is served.
	DatabaseURL string

	// RedisAddr is optional; without it sessions live in memory.
	RedisAddr     string
	RedisPassword string
}

// TwilioConfig holds the WhatsApp sending credentials
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "3001"),
		Twilio: TwilioConfig{
			AccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
			WhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		},
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	// Validate required fields
	if cfg.Twilio.AccountSID == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID is required")
	}
	if cfg.Twilio.AuthToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN is required")
	}
	if cfg.Twilio.WhatsAppNumber == "" {
		return nil, fmt.Errorf("TWILIO_WHATSAPP_NUMBER is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
