// Package config loads engine configuration the way the reference
// service layers its own: a typed struct with sane defaults, a TOML file
// as the primary source when present, and environment variables as the
// final override — so a container deployment never needs a file at all.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	GRPC        GRPCConfig        `toml:"grpc"`
	Persistence PersistenceConfig `toml:"persistence"`
	Logging     LoggingConfig     `toml:"logging"`
}

type GRPCConfig struct {
	Address string `toml:"address"`
	Port    int    `toml:"port"`
}

type PersistenceConfig struct {
	DBPath string `toml:"db_path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func defaults() Config {
	return Config{
		GRPC: GRPCConfig{
			Address: "0.0.0.0",
			Port:    7713,
		},
		Persistence: PersistenceConfig{
			DBPath: "ledger.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config starting from defaults, overlaying a TOML file at
// path if one is given and exists, then overlaying environment variables.
// An empty path skips the file source entirely.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("ENGINE_GRPC_ADDRESS"); ok {
		cfg.GRPC.Address = v
	}
	if v, ok := os.LookupEnv("ENGINE_GRPC_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.GRPC.Port = port
		}
	}
	if v, ok := os.LookupEnv("ENGINE_PERSISTENCE_DB_PATH"); ok {
		cfg.Persistence.DBPath = v
	}
	if v, ok := os.LookupEnv("ENGINE_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("ENGINE_LOG_FORMAT"); ok {
		cfg.Logging.Format = v
	}
	if v, ok := os.LookupEnv("ENGINE_DEBUG"); ok {
		if debug, err := strconv.ParseBool(v); err == nil && debug {
			cfg.Logging.Level = "debug"
		}
	}
}
