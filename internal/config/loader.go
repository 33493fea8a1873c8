package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "SEATFINDER_"
	EnvConfigFile = "SEATFINDER_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if SEATFINDER_CONFIG is set
//  3. env (prefix SEATFINDER_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %v", ErrLoadConfig, path, err)
		}
	}

	// SEATFINDER_CANDIDATE_LIMIT -> candidate_limit (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.CandidateLimit <= 0 {
		return fmt.Errorf("%w: candidate_limit must be positive, got %d", ErrInvalidConfig, c.CandidateLimit)
	}
	switch strings.ToLower(c.BandwidthRule) {
	case "scott", "silverman":
	default:
		return fmt.Errorf("%w: bandwidth_rule must be scott or silverman, got %q", ErrInvalidConfig, c.BandwidthRule)
	}
	switch c.StorageBackend {
	case StorageFile:
	case StorageMinio:
		if c.MinioEndpoint == "" {
			return fmt.Errorf("%w: minio_endpoint is required for the minio backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: storage_backend must be file or minio, got %q", ErrInvalidConfig, c.StorageBackend)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("%w: lookback_days must be positive", ErrInvalidConfig)
	}
	return nil
}
