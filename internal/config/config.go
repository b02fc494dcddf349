package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvFile is read before the environment is decoded.
const DefaultEnvFile = ".env"

// Backends lists the key-value store implementations that can hold the log.
var Backends = []string{"memory", "file", "redis", "pocketbase"}

// Config holds runtime configuration. Every field can be set as CHEERS_<NAME>;
// the PocketBase credentials also accept the bare PB_* names.
type Config struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Backend     string `envconfig:"BACKEND" default:"file"`
	DataDir     string `envconfig:"DATA_DIR" default:"data"`
	StorageKey  string `envconfig:"STORAGE_KEY" default:"alcoholLogs"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"cheers:"`
	PBURL       string `envconfig:"PB_URL"`
	PBEmail     string `envconfig:"PB_EMAIL"`
	PBPassword  string `envconfig:"PB_PASSWORD"`

	DrinkTypes []string `envconfig:"DRINK_TYPES" default:"beer,wine,baijiu,whisky,cocktail"`
	Timezone   string   `envconfig:"TIMEZONE" default:"Local"`
}

// Load reads envFile when it exists and decodes the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			log.Debug("No env file, using environment only", "file", envFile)
		}
	}

	var cfg Config
	if err := envconfig.Process("cheers", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate normalises drink types and checks the backend settings.
func (c *Config) Validate() error {
	types := c.DrinkTypes[:0]
	for _, t := range c.DrinkTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	c.DrinkTypes = types
	if len(c.DrinkTypes) == 0 {
		return errors.New("at least one drink type is required")
	}
	if c.StorageKey == "" {
		return errors.New("storage key must not be empty")
	}

	switch c.Backend {
	case "memory", "file", "redis":
	case "pocketbase":
		if c.PBURL == "" || c.PBEmail == "" || c.PBPassword == "" {
			return fmt.Errorf("missing required environment variables: PB_URL, PB_EMAIL, PB_PASSWORD")
		}
	default:
		return fmt.Errorf("unknown backend %q, want one of %s", c.Backend, strings.Join(Backends, ", "))
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used to decide what "today" is.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
