package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Env  string `env:"APP_ENV" env-default:"development"`
	Port string `env:"PORT"    env-default:"3003"`

	MongoURI     string `env:"MONGODB_URI"`
	TestMongoURI string `env:"TEST_MONGODB_URI"`
	MongoDB      string `env:"MONGO_DB" env-default:"bloglist"`

	Secret       string `env:"SECRET"            env-required:"true"`
	BcryptRounds int    `env:"BCRYPT_ROUNDS"     env-default:"10"`
	DummyHash    string `env:"DUMMY_BCRYPT_HASH"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" env-default:"60s"`

	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"*" env-separator:","`

	LogLevel  string `env:"LOG_LEVEL"  env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json"`
}

// Load reads the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Secret == "" {
		return errors.New("SECRET must not be empty")
	}
	if c.DatabaseURI() == "" {
		if c.IsTest() {
			return errors.New("TEST_MONGODB_URI is required when APP_ENV=test")
		}
		return errors.New("MONGODB_URI is required")
	}
	return validateRounds(c.BcryptRounds)
}

func validateRounds(n int) error {
	if n < 4 || n > 31 {
		return fmt.Errorf("BCRYPT_ROUNDS must be between 4 and 31, got %d", n)
	}
	return nil
}

// Hashing is the subset of the environment the hash command needs.
type Hashing struct {
	BcryptRounds int `env:"BCRYPT_ROUNDS" env-default:"10"`
}

// LoadHashing reads only the bcrypt settings, so hashes can be produced
// without a database or secret configured.
func LoadHashing() (*Hashing, error) {
	var h Hashing
	if err := cleanenv.ReadEnv(&h); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := validateRounds(h.BcryptRounds); err != nil {
		return nil, err
	}
	return &h, nil
}

// IsTest reports whether the test database should be used.
func (c *Config) IsTest() bool {
	return c.Env == "test"
}

// DatabaseURI returns the connection string for the current environment.
func (c *Config) DatabaseURI() string {
	if c.IsTest() {
		return c.TestMongoURI
	}
	return c.MongoURI
}

// CacheEnabled reports whether the Redis list cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
