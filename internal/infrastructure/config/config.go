package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Backend    string `env:"BACKEND,     default=sqlite"`
	SQLitePath string `env:"SQLITE_PATH, default=wellness.db"`

	Mongo MongoConfig
	Redis RedisConfig

	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
	ActivityLimit  int           `env:"ACTIVITY_LIMIT,  default=200"`
	WriteWorkers   int           `env:"WRITE_WORKERS,   default=8"`
	SeedDemo       bool          `env:"SEED_DEMO,       default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=spiritual_wellness"`
}

// RedisConfig is optional: an empty address disables booking idempotency.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendSQLite, BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("unknown BACKEND %q", c.Backend)
	}
	if c.JWTSecret == "" && c.IsProduction() {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}
