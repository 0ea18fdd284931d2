package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string

	// ExchangeTokenTTL is the expiry assigned to tokens minted for exchange
	// receivers.
	ExchangeTokenTTL time.Duration

	// SweepOnBalanceRead makes balance reads sweep expired tokens first.
	SweepOnBalanceRead bool
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("EXCHANGE_TOKEN_TTL", "8760h") // 365 days
	viper.SetDefault("SWEEP_ON_BALANCE_READ", false)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	ttlStr := viper.GetString("EXCHANGE_TOKEN_TTL")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil || ttl <= 0 {
		ttl = 365 * 24 * time.Hour
		if ttlStr != "" && err != nil {
			log.Printf("Warning: Invalid value for EXCHANGE_TOKEN_TTL ('%s'). Defaulting to %s.\n", ttlStr, ttl.String())
		}
	}
	cfg.ExchangeTokenTTL = ttl

	cfg.SweepOnBalanceRead = viper.GetBool("SWEEP_ON_BALANCE_READ")

	return cfg, nil
}
