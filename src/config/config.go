package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	LogLevel           string
	MaxUploadSizeBytes int64
	FactorConfigPath   string

	// Aggregator (Plaid-style) collaborator settings.
	PlaidClientID    string
	PlaidSecret      string
	PlaidEnvironment string // sandbox, development or production
	PlaidTimeout     time.Duration

	// Transaction window requested from the aggregator.
	AggregatorLookback time.Duration
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "16777216")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 16MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 16 * 1024 * 1024
	}

	plaidEnv := strings.ToLower(getEnv("PLAID_ENV", "sandbox"))
	switch plaidEnv {
	case "sandbox", "development", "production":
	default:
		log.Printf("WARNING: Unknown PLAID_ENV '%s'. Using sandbox.", plaidEnv)
		plaidEnv = "sandbox"
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MaxUploadSizeBytes: maxUploadSizeBytes,
		FactorConfigPath:   getEnv("FACTOR_CONFIG_PATH", "config/factors.yaml"),
		PlaidClientID:      getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:        getEnv("PLAID_SECRET", ""),
		PlaidEnvironment:   plaidEnv,
		PlaidTimeout:       getEnvAsDuration("PLAID_TIMEOUT", 20*time.Second),
		AggregatorLookback: getEnvAsDuration("AGGREGATOR_LOOKBACK", 365*24*time.Hour),
	}

	log.Println("Application configuration loaded.")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
