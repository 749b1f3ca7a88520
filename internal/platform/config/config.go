package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultLunchMoneyBaseURL  = "https://api.lunchmoney.dev/v2"
	defaultBatchSize          = 500
	maxBatchSize              = 500
	defaultMoneyForwardMonths = 18
)

// Config holds application configuration.
type Config struct {
	LunchMoneyAPIKey  string
	LunchMoneyBaseURL string
	LedgerRateLimit   string        // ulule/limiter formatted rate, e.g. "120-M"
	LedgerTimeout     time.Duration // per HTTP request; zero disables

	DatabaseURL    string
	RunMigrations  bool
	MigrationsPath string

	DataDir              string
	MoneyForwardDir      string
	MoneyForwardMonths   int
	MoneyForwardEncoding string
	RevolutDir           string

	ImportBatchSize int

	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("LUNCH_MONEY_API_KEY", "")
	viper.SetDefault("LUNCH_MONEY_BASE_URL", defaultLunchMoneyBaseURL)
	viper.SetDefault("LEDGER_RATE_LIMIT", "120-M")
	viper.SetDefault("LEDGER_TIMEOUT", "0s")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("RUN_MIGRATIONS", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("MONEY_FORWARD_DIR", "")
	viper.SetDefault("MONEY_FORWARD_MONTHS", defaultMoneyForwardMonths)
	viper.SetDefault("MONEY_FORWARD_ENCODING", "utf-8")
	viper.SetDefault("REVOLUT_DIR", "")
	viper.SetDefault("IMPORT_BATCH_SIZE", defaultBatchSize)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	viper.AutomaticEnv()

	cfg := &Config{
		LunchMoneyAPIKey:     viper.GetString("LUNCH_MONEY_API_KEY"),
		LunchMoneyBaseURL:    strings.TrimRight(viper.GetString("LUNCH_MONEY_BASE_URL"), "/"),
		LedgerRateLimit:      viper.GetString("LEDGER_RATE_LIMIT"),
		DatabaseURL:          viper.GetString("PGSQL_URL"),
		RunMigrations:        viper.GetBool("RUN_MIGRATIONS"),
		MigrationsPath:       viper.GetString("MIGRATIONS_PATH"),
		DataDir:              viper.GetString("DATA_DIR"),
		MoneyForwardDir:      viper.GetString("MONEY_FORWARD_DIR"),
		MoneyForwardMonths:   viper.GetInt("MONEY_FORWARD_MONTHS"),
		MoneyForwardEncoding: strings.ToLower(viper.GetString("MONEY_FORWARD_ENCODING")),
		RevolutDir:           viper.GetString("REVOLUT_DIR"),
		ImportBatchSize:      viper.GetInt("IMPORT_BATCH_SIZE"),
		LogLevel:             strings.ToLower(viper.GetString("LOG_LEVEL")),
		LogFormat:            strings.ToLower(viper.GetString("LOG_FORMAT")),
	}

	if cfg.LunchMoneyAPIKey == "" {
		return nil, errors.New("LUNCH_MONEY_API_KEY must be set")
	}

	timeoutStr := viper.GetString("LEDGER_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		log.Printf("Warning: Invalid value for LEDGER_TIMEOUT ('%s'). Defaulting to no timeout.\n", timeoutStr)
		timeout = 0
	}
	cfg.LedgerTimeout = timeout

	if cfg.MoneyForwardDir == "" {
		cfg.MoneyForwardDir = filepath.Join(cfg.DataDir, "money-forward")
	}
	if cfg.RevolutDir == "" {
		cfg.RevolutDir = filepath.Join(cfg.DataDir, "revolut")
	}

	if cfg.MoneyForwardMonths <= 0 {
		log.Printf("Warning: MONEY_FORWARD_MONTHS must be positive. Defaulting to %d.\n", defaultMoneyForwardMonths)
		cfg.MoneyForwardMonths = defaultMoneyForwardMonths
	}

	if cfg.ImportBatchSize <= 0 || cfg.ImportBatchSize > maxBatchSize {
		return nil, fmt.Errorf("IMPORT_BATCH_SIZE must be between 1 and %d, got %d", maxBatchSize, cfg.ImportBatchSize)
	}

	switch cfg.MoneyForwardEncoding {
	case "utf-8", "utf8", "shift_jis", "sjis":
	default:
		return nil, fmt.Errorf("MONEY_FORWARD_ENCODING must be utf-8 or shift_jis, got %q", cfg.MoneyForwardEncoding)
	}

	return cfg, nil
}

// RequireDatabase reports whether the mapping store can be opened. Commands
// that only talk to the ledger skip this check.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("PGSQL_URL must be set")
	}
	return nil
}
