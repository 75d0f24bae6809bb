package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// minSecretLength is the shortest HS256 key accepted at startup.
const minSecretLength = 32

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	HTTP       HTTPConfig       `envPrefix:"HTTP_"`
	Postgres   PostgresConfig   `envPrefix:"POSTGRES_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	Logger     LoggerConfig     `envPrefix:"LOG_"`
	Auth       AuthConfig       `envPrefix:"AUTH_"`
	Classifier ClassifierConfig `envPrefix:"CLASSIFIER_"`
	Events     EventsConfig     `envPrefix:"EVENTS_"`
	CORS       CORSConfig       `envPrefix:"CORS_"`
	Cache      CacheConfig      `envPrefix:"CACHE_"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name    string `env:"NAME" envDefault:"helpdesk-service"`
	Env     string `env:"ENV" envDefault:"development"`
	Host    string `env:"HOST" envDefault:"0.0.0.0"`
	Port    string `env:"PORT" envDefault:"8080"`
	Version string `env:"VERSION" envDefault:"dev"`
}

// HTTPConfig holds request handling limits.
type HTTPConfig struct {
	RequestTimeoutSeconds int `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	BodyLimitBytes        int `env:"BODY_LIMIT_BYTES" envDefault:"1048576"`
}

// PostgresConfig holds DB connection values. An empty DSN selects the
// in-memory store.
type PostgresConfig struct {
	DSN            string `env:"DSN"`
	MaxConns       int32  `env:"MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
// Addr may also be a redis:// or rediss:// URL.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string `env:"LEVEL" envDefault:"info"`
	Format      string `env:"FORMAT" envDefault:"json"`
	Development bool   `env:"DEVELOPMENT" envDefault:"false"`
}

// AuthConfig defines authentication parameters. JWTSecret is loaded once and
// must never be logged.
type AuthConfig struct {
	JWTSecret     string `env:"JWT_SECRET,required"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"HelpdeskAPI"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"HelpdeskUsers"`
	TokenTTLHours int    `env:"TOKEN_TTL_HOURS" envDefault:"24"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"12"`
}

// ClassifierConfig selects the category oracle. Mode is "keyword" or "http".
type ClassifierConfig struct {
	Mode           string `env:"MODE" envDefault:"keyword"`
	URL            string `env:"URL"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"5"`
}

// EventsConfig configures forwarding of domain events. Each broker gets a
// queue of ForwardBuffer events; overflow is dropped and counted.
type EventsConfig struct {
	RedisChannel   string `env:"REDIS_CHANNEL" envDefault:"helpdesk.events"`
	AMQPURL        string `env:"AMQP_URL"`
	AMQPExchange   string `env:"AMQP_EXCHANGE" envDefault:"helpdesk.events"`
	PublishTimeout int    `env:"PUBLISH_TIMEOUT_SECONDS" envDefault:"5"`
	ForwardBuffer  int    `env:"FORWARD_BUFFER" envDefault:"256"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowOrigins string `env:"ALLOW_ORIGINS" envDefault:"http://localhost:4200"`
}

// CacheConfig sizes the ticket owner cache.
type CacheConfig struct {
	OwnerEntries    int `env:"OWNER_ENTRIES" envDefault:"10000"`
	OwnerTTLSeconds int `env:"OWNER_TTL_SECONDS" envDefault:"600"`
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	if c.Auth.TokenTTLHours <= 0 {
		return errors.New("AUTH_TOKEN_TTL_HOURS must be positive")
	}
	switch strings.ToLower(c.Classifier.Mode) {
	case "keyword":
	case "http":
		if c.Classifier.URL == "" {
			return errors.New("CLASSIFIER_URL is required when CLASSIFIER_MODE=http")
		}
	default:
		return fmt.Errorf("unknown CLASSIFIER_MODE %q", c.Classifier.Mode)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (h HTTPConfig) RequestTimeout() time.Duration {
	if h.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(h.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of issued tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// Timeout returns the per-call classifier deadline.
func (c ClassifierConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// OwnerTTL returns how long cached ticket owners live.
func (c CacheConfig) OwnerTTL() time.Duration {
	return time.Duration(c.OwnerTTLSeconds) * time.Second
}

// Origins splits the comma separated origin list.
func (c CORSConfig) Origins() []string {
	var origins []string
	for _, part := range strings.Split(c.AllowOrigins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
