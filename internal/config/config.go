// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP API server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; empty disables persistence (in-memory only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// StalenessThreshold is how old a session's last position may be before the
	// sweep marks it urgent (e.g. "60s").
	StalenessThreshold string `mapstructure:"STALENESS_THRESHOLD"`
	// SweepInterval is the liveness sweep tick (e.g. "5s").
	SweepInterval string `mapstructure:"SWEEP_INTERVAL"`
	// CheckInInterval is the FriendWalk check-in window (e.g. "10m").
	CheckInInterval string `mapstructure:"CHECKIN_INTERVAL"`

	// BroadcastMinRadiusM / BroadcastMaxRadiusM bound the broadcast geofence radius in meters.
	BroadcastMinRadiusM float64 `mapstructure:"BROADCAST_MIN_RADIUS_M"`
	BroadcastMaxRadiusM float64 `mapstructure:"BROADCAST_MAX_RADIUS_M"`

	// EscalationLowWaterMark is the net score at which a community post becomes pending.
	EscalationLowWaterMark int `mapstructure:"ESCALATION_LOW_WATER_MARK"`
	// EscalationThreshold is the net score at which a pending post escalates to a report.
	EscalationThreshold int `mapstructure:"ESCALATION_THRESHOLD"`
	// RejectionFloor is the (negative) net score at which a post is auto-rejected.
	RejectionFloor int `mapstructure:"REJECTION_FLOOR"`

	// JWTSecret signs operator access tokens (HS256). Required when auth is enabled.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim (e.g. "campus-dispatch").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "campus-dispatch-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Events (optional). When Kafka brokers are set, the server emits dispatch events to Kafka.
	// EventsKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	EventsKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the Kafka topic for dispatch events (default dispatch-events).
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint for traces/metrics/logs. Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("STALENESS_THRESHOLD", "60s")
	v.SetDefault("SWEEP_INTERVAL", "5s")
	v.SetDefault("CHECKIN_INTERVAL", "10m")
	v.SetDefault("BROADCAST_MIN_RADIUS_M", 100.0)
	v.SetDefault("BROADCAST_MAX_RADIUS_M", 2000.0)
	v.SetDefault("ESCALATION_LOW_WATER_MARK", 3)
	v.SetDefault("ESCALATION_THRESHOLD", 5)
	v.SetDefault("REJECTION_FLOOR", -5)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "campus-dispatch")
	v.SetDefault("JWT_AUDIENCE", "campus-dispatch-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "dispatch-events")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "dispatch-events-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BroadcastMinRadiusM <= 0 || cfg.BroadcastMaxRadiusM < cfg.BroadcastMinRadiusM {
		return nil, errors.New("config: broadcast radius bounds must satisfy 0 < min <= max")
	}

	if cfg.EscalationLowWaterMark <= 0 || cfg.EscalationThreshold < cfg.EscalationLowWaterMark {
		return nil, errors.New("config: escalation thresholds must satisfy 0 < low_water_mark <= threshold")
	}
	if cfg.RejectionFloor >= 0 {
		return nil, errors.New("config: REJECTION_FLOOR must be negative")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// Staleness parses StalenessThreshold as a time.Duration. Returns 60s if unset or invalid.
func (c *Config) Staleness() time.Duration {
	d, err := time.ParseDuration(c.StalenessThreshold)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Sweep parses SweepInterval as a time.Duration. Returns 5s if unset or invalid.
func (c *Config) Sweep() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// CheckIn parses CheckInInterval as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) CheckIn() time.Duration {
	d, err := time.ParseDuration(c.CheckInInterval)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// EventsKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event export is enabled (non-empty list) and to create the producer.
func (c *Config) EventsKafkaBrokersList() []string {
	if c == nil || c.EventsKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.EventsKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
