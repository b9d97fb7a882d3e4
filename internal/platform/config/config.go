package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool

	LogLevel  string
	LogFormat string

	StoreDriver   string
	DatabaseURL   string
	SQLitePath    string
	EnableDBCheck bool
	RunMigrations bool

	JWTSecret string
	JWTIssuer string

	KafkaBrokers          []string
	LedgerEventsTopic     string
	ReportEventsTopic     string
	EventBufferSize       int
	EventPublishTimeout   time.Duration
	EventDeliveryAttempts int

	StrictLinePolicy       bool
	RateLimit              string
	CORSAllowedOrigins     []string
	MetricsEnabled         bool
	SlowOperationThreshold time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "ledger.db")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("LEDGER_EVENTS_TOPIC", "ledger-events")
	v.SetDefault("REPORT_EVENTS_TOPIC", "report-events")
	v.SetDefault("EVENT_BUFFER_SIZE", 1024)
	v.SetDefault("EVENT_PUBLISH_TIMEOUT", "5s")
	v.SetDefault("EVENT_DELIVERY_ATTEMPTS", 3)
	v.SetDefault("STRICT_LINE_POLICY", false)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SLOW_OPERATION_THRESHOLD", "500ms")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
		StoreDriver:           strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:           v.GetString("PGSQL_URL"),
		SQLitePath:            v.GetString("SQLITE_PATH"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:         v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTIssuer:             v.GetString("JWT_ISSUER"),
		KafkaBrokers:          splitList(v.GetString("KAFKA_BROKERS")),
		LedgerEventsTopic:     v.GetString("LEDGER_EVENTS_TOPIC"),
		ReportEventsTopic:     v.GetString("REPORT_EVENTS_TOPIC"),
		EventBufferSize:       v.GetInt("EVENT_BUFFER_SIZE"),
		EventDeliveryAttempts: v.GetInt("EVENT_DELIVERY_ATTEMPTS"),
		StrictLinePolicy:      v.GetBool("STRICT_LINE_POLICY"),
		RateLimit:             v.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MetricsEnabled:        v.GetBool("METRICS_ENABLED"),
	}

	var err error
	if cfg.EventPublishTimeout, err = parseDuration(v, "EVENT_PUBLISH_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.SlowOperationThreshold, err = parseDuration(v, "SLOW_OPERATION_THRESHOLD"); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_DRIVER is %q", StoreDriverPostgres)
		}
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.EventBufferSize <= 0 {
		return nil, fmt.Errorf("EVENT_BUFFER_SIZE must be positive, got %d", cfg.EventBufferSize)
	}
	if cfg.EventDeliveryAttempts <= 0 {
		return nil, fmt.Errorf("EVENT_DELIVERY_ATTEMPTS must be positive, got %d", cfg.EventDeliveryAttempts)
	}

	if cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
