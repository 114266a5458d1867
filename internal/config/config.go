package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is shared by every binary. Values come from the process
// environment, optionally seeded from .env files.
type Config struct {
	Port                   string        `mapstructure:"PORT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	PostgresURL            string        `mapstructure:"POSTGRES_URL"`
	DBSchema               string        `mapstructure:"DB_SCHEMA"`
	RedisURL               string        `mapstructure:"REDIS_URL"`
	KafkaBrokers           string        `mapstructure:"KAFKA_BROKERS"`
	OrderEventsTopic       string        `mapstructure:"ORDER_EVENTS_TOPIC"`
	JWTSecret              string        `mapstructure:"JWT_SECRET"`
	CORSAllowedOrigins     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	AssistantEndpoint      string        `mapstructure:"ASSISTANT_ENDPOINT"`
	AssistantAPIKey        string        `mapstructure:"ASSISTANT_API_KEY"`
	AssistantRatePerMinute int           `mapstructure:"ASSISTANT_RATE_PER_MINUTE"`
	SessionTTL             time.Duration `mapstructure:"SESSION_TTL"`
	EmailServiceURL        string        `mapstructure:"EMAIL_SERVICE_URL"`
	OTLPEndpoint           string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MigrationsPath         string        `mapstructure:"MIGRATIONS_PATH"`
	ShopName               string        `mapstructure:"SHOP_NAME"`
	PublicURL              string        `mapstructure:"PUBLIC_URL"`
}

var defaults = map[string]any{
	"PORT":                        "8080",
	"LOG_LEVEL":                   "info",
	"POSTGRES_URL":                "",
	"DB_SCHEMA":                   "storefront",
	"REDIS_URL":                   "",
	"KAFKA_BROKERS":               "",
	"ORDER_EVENTS_TOPIC":          "order.events",
	"JWT_SECRET":                  "",
	"CORS_ALLOWED_ORIGINS":        "http://localhost:5173",
	"ASSISTANT_ENDPOINT":          "",
	"ASSISTANT_API_KEY":           "",
	"ASSISTANT_RATE_PER_MINUTE":   10,
	"SESSION_TTL":                 "168h",
	"EMAIL_SERVICE_URL":           "http://localhost:8085",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4317",
	"MIGRATIONS_PATH":             "file://migrations",
	"SHOP_NAME":                   "Digital Shop Nepal",
	"PUBLIC_URL":                  "http://localhost:5173",
}

// Load reads the given .env files (missing files are skipped; none means
// ./.env) and then resolves every key from the environment over defaults.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values every binary relies on.
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("PORT must be a TCP port, got %q", c.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.AssistantRatePerMinute <= 0 {
		return errors.New("ASSISTANT_RATE_PER_MINUTE must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// ValidateStorefront adds the settings only the storefront API needs.
func (c *Config) ValidateStorefront() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.PostgresURL == "" {
		return errors.New("POSTGRES_URL is required")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	return nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

func (c *Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
