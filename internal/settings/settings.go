// Package settings reads process configuration from the environment.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/aretw0/rewind/internal/logging"
	"github.com/aretw0/rewind/pkg/persistence/middleware"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

var (
	ErrParsingSettings = errors.New("failed to parse settings")
	ErrInvalidSettings = errors.New("invalid settings")
)

// Redis holds the connection settings of the redis store.
type Redis struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	Prefix   string        `env:"PREFIX" envDefault:"rewind:session:"`
	TTL      time.Duration `env:"TTL" envDefault:"0s"`
}

// Settings is the process configuration shared by the CLI commands.
type Settings struct {
	Store    string `env:"STORE" envDefault:"memory"`
	Dir      string `env:"DIR" envDefault:".rewind/sessions"`
	Redis    Redis  `envPrefix:"REDIS_"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"false"`

	// MaxInputSize bounds REPL command lines, in bytes.
	MaxInputSize int `env:"MAX_INPUT_SIZE" envDefault:"4096"`

	// EncryptionKey (base64, 32 bytes) seals snapshots at rest when set.
	EncryptionKey string `env:"ENCRYPTION_KEY"`
	// FallbackKeys are retired keys still accepted for decryption.
	FallbackKeys []string `env:"ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
}

// Prefix is prepended to every variable name.
const Prefix = "REWIND_"

// Load reads the given dotenv files (".env" when none is given; missing files
// are ignored), then parses REWIND_* variables. Variables already set in the
// environment win over dotenv values.
func Load(files ...string) (Settings, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("%w: %s: %w", ErrParsingSettings, f, err)
		}
	}

	s, err := env.ParseAsWithOptions[Settings](env.Options{Prefix: Prefix})
	if err != nil {
		return Settings{}, errors.Join(ErrParsingSettings, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks values env tags cannot express.
func (s Settings) Validate() error {
	switch s.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("%w: unknown store %q (want memory, file or redis)", ErrInvalidSettings, s.Store)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, s.Port)
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	if _, err := s.Encryption(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// Encryption decodes the configured keys; nil means snapshots are stored in clear.
func (s Settings) Encryption() (*middleware.EncryptionConfig, error) {
	if s.EncryptionKey == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, errors.New("fallback keys need an active encryption key")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	cfg := &middleware.EncryptionConfig{ActiveKey: active}
	for i, encoded := range s.FallbackKeys {
		key, err := middleware.ParseKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("fallback key #%d: %w", i+1, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, key)
	}
	return cfg, nil
}

// Level returns the parsed log level.
func (s Settings) Level() slog.Level {
	level, _ := logging.ParseLevel(s.LogLevel)
	return level
}
