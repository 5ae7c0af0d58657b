// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	EnvAddr           = "VARIANTCHESS_ADDR"
	EnvAllowedOrigins = "VARIANTCHESS_ALLOWED_ORIGINS"
	EnvDataDir        = "VARIANTCHESS_DATA_DIR"
	EnvLogLevel       = "VARIANTCHESS_LOG_LEVEL"
	EnvMatchInterval  = "VARIANTCHESS_MATCH_INTERVAL"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	// DataDir holds the room database. Empty keeps rooms in memory only.
	DataDir       string
	LogLevel      zapcore.Level
	MatchInterval time.Duration
}

func Default() Config {
	return Config{
		Addr:           ":3000",
		AllowedOrigins: []string{"http://localhost:5173"},
		DataDir:        "data",
		LogLevel:       zapcore.InfoLevel,
		MatchInterval:  time.Second,
	}
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads settings through lookup, starting from Default. A variable
// that is set but empty clears string settings.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvAddr); ok {
		if strings.TrimSpace(v) == "" {
			return Config{}, fmt.Errorf("%w: %s is empty", ErrInvalidConfig, EnvAddr)
		}
		cfg.Addr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvAllowedOrigins); ok {
		cfg.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(EnvDataDir); ok {
		cfg.DataDir = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok {
		level, err := zapcore.ParseLevel(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}
	if v, ok := lookup(EnvMatchInterval); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvMatchInterval, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, EnvMatchInterval, d)
		}
		cfg.MatchInterval = d
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Logger builds the production zap logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zc.Build()
}
