package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	JWTSecret     string
	StorageDriver string

	// RabbitMQ e-mail queue
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Resend
	ResendAPIKey string
	EmailFrom    string

	// Exchange rate provider
	RatesProviderURL      string
	RatesAPIKey           string
	RatesBaseCurrency     string
	RatesTargetCurrencies []string

	BillSweepInterval   time.Duration
	BudgetSweepInterval time.Duration
	RateRefreshInterval time.Duration
	SweepConcurrency    int
	TxRetryAttempts     int

	RateLimit         string // ulule/limiter formatted rate, e.g. "100-M"
	HTTPClientTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("STORAGE_DRIVER", StoragePostgres)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "finledger")
	viper.SetDefault("AMQP_QUEUE", "finledger.emails")
	viper.SetDefault("RESEND_API_KEY", "")
	viper.SetDefault("EMAIL_FROM", "Finance Ledger <no-reply@finledger.local>")
	viper.SetDefault("RATES_PROVIDER_URL", "https://api.exchangerate.host")
	viper.SetDefault("RATES_API_KEY", "")
	viper.SetDefault("RATES_BASE_CURRENCY", "USD")
	viper.SetDefault("RATES_TARGET_CURRENCIES", "SOS")
	viper.SetDefault("BILL_SWEEP_INTERVAL", "1h")
	viper.SetDefault("BUDGET_SWEEP_INTERVAL", "24h")
	viper.SetDefault("RATE_REFRESH_INTERVAL", "24h")
	viper.SetDefault("SWEEP_CONCURRENCY", 4)
	viper.SetDefault("TX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("HTTP_CLIENT_TIMEOUT", "10s")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.StorageDriver = strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StorageMemory:
		log.Println("Warning: STORAGE_DRIVER=memory, data is lost on restart.")
	default:
		log.Printf("Warning: unknown STORAGE_DRIVER %q. Defaulting to %s.\n", cfg.StorageDriver, StoragePostgres)
		cfg.StorageDriver = StoragePostgres
	}

	cfg.AMQPURL = viper.GetString("AMQP_URL")
	cfg.AMQPExchange = viper.GetString("AMQP_EXCHANGE")
	cfg.AMQPQueue = viper.GetString("AMQP_QUEUE")
	if cfg.AMQPURL == "" {
		log.Println("Warning: AMQP_URL not set. Notification e-mails will not be queued.")
	}

	cfg.ResendAPIKey = viper.GetString("RESEND_API_KEY")
	cfg.EmailFrom = viper.GetString("EMAIL_FROM")

	cfg.RatesProviderURL = viper.GetString("RATES_PROVIDER_URL")
	cfg.RatesAPIKey = viper.GetString("RATES_API_KEY")
	cfg.RatesBaseCurrency = strings.ToUpper(viper.GetString("RATES_BASE_CURRENCY"))
	cfg.RatesTargetCurrencies = splitCodes(viper.GetString("RATES_TARGET_CURRENCIES"))

	cfg.BillSweepInterval = durationOr("BILL_SWEEP_INTERVAL", time.Hour)
	cfg.BudgetSweepInterval = durationOr("BUDGET_SWEEP_INTERVAL", 24*time.Hour)
	cfg.RateRefreshInterval = durationOr("RATE_REFRESH_INTERVAL", 24*time.Hour)
	cfg.HTTPClientTimeout = durationOr("HTTP_CLIENT_TIMEOUT", 10*time.Second)

	cfg.SweepConcurrency = viper.GetInt("SWEEP_CONCURRENCY")
	if cfg.SweepConcurrency < 1 {
		cfg.SweepConcurrency = 1
	}
	cfg.TxRetryAttempts = viper.GetInt("TX_RETRY_ATTEMPTS")
	if cfg.TxRetryAttempts < 1 {
		cfg.TxRetryAttempts = 1
	}
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

// durationOr parses key as a duration, falling back on fallback with a warning.
// A zero duration is allowed and disables the matching scheduled job.
func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}

func splitCodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
