package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/SUII07/EasyHome-sub000/pkg/config"
	"github.com/SUII07/EasyHome-sub000/pkg/database"
	"github.com/SUII07/EasyHome-sub000/pkg/tracing"
)

// Config holds all configuration for the marketplace service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"easyhome"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"easyhome_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"easyhome_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`

	// Auth
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"easyhome"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Booking throttle
	ThrottleLimit  int           `env:"BOOKING_THROTTLE_LIMIT" envDefault:"10"`
	ThrottleWindow time.Duration `env:"BOOKING_THROTTLE_WINDOW" envDefault:"1h"`

	// Observability
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
	TracingEnabled    bool     `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string   `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64  `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.ThrottleLimit < 1 {
		return fmt.Errorf("booking throttle limit must be positive, got %d", c.ThrottleLimit)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be in [0, 1], got %f", c.TracingSampleRate)
	}
	return nil
}

// Postgres returns the connection pool configuration.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPass,
		DB:       c.RedisDB,
	}
}

// Tracing returns the tracer configuration.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:      c.TracingEnabled,
		ServiceName:  "easyhome",
		Environment:  c.Environment,
		OTLPEndpoint: c.OTLPEndpoint,
		SampleRate:   c.TracingSampleRate,
	}
}
