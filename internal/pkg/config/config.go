package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const minProductionKeyLen = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AuthConfig holds the token signing and password hashing settings. The
// signing key has no default: startup fails when it is not supplied.
type AuthConfig struct {
	SigningKey    string `env:"JWT_SECRET_KEY, required"`
	Algorithm     string `env:"JWT_ALGORITHM,  default=HS256"`
	ExpireMinutes int    `env:"JWT_EXPIRE_MINUTES, default=30"`
	BcryptCost    int    `env:"BCRYPT_COST,    default=12"`
	HashWorkers   int    `env:"HASH_WORKERS,   default=4"`
	CheckLiveness bool   `env:"AUTH_CHECK_ACCOUNT_LIVENESS, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URL,   default=mongodb://localhost:27017"`
	Database string `env:"DATABASE_NAME, default=musical_events"`
}

type RedisConfig struct {
	Addr          string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password      string        `env:"REDIS_PASSWORD"`
	DB            int           `env:"REDIS_DB,        default=0"`
	ReviewLockTTL time.Duration `env:"REVIEW_LOCK_TTL, default=30s"`
}

// TokenTTL returns the configured token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.ExpireMinutes) * time.Minute
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.SigningKey == "" {
		return errors.New("JWT_SECRET_KEY must not be empty")
	}
	if c.IsProduction() && len(c.Auth.SigningKey) < minProductionKeyLen {
		return fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes in production", minProductionKeyLen)
	}
	if c.Auth.ExpireMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRE_MINUTES must be positive, got %d", c.Auth.ExpireMinutes)
	}
	return nil
}
