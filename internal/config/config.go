// Package config loads datesift configuration from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vnexsus/datesift/domain"
)

// Environment variables consulted after file loading.
const (
	configPathEnv = "DATESIFT_CONFIG"

	apiKeyEnv      = "ANTHROPIC_API_KEY"
	redisAddrEnv   = "REDIS_ADDR"
	logLevelEnv    = "DATESIFT_LOG_LEVEL"
	cacheTypeEnv   = "DATESIFT_CACHE_TYPE"
	modelEnv       = "DATESIFT_MODEL"
	thresholdEnv   = "DATESIFT_ACCEPT_THRESHOLD"
	concurrencyEnv = "DATESIFT_CONCURRENCY"
)

// Load builds the configuration in three layers: documented defaults,
// then the YAML file at path, then environment overrides. An empty path
// falls back to the DATESIFT_CONFIG variable; when that is unset too,
// the file layer is skipped.
func Load(path string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// Unmarshal over the defaults; absent fields keep their values
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *domain.Config) {
	if v := os.Getenv(apiKeyEnv); v != "" {
		cfg.Reader.APIKey = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(cacheTypeEnv); v != "" {
		cfg.Cache.Type = v
	}
	if v := os.Getenv(modelEnv); v != "" {
		cfg.Reader.Model = v
	}
	if v := os.Getenv(thresholdEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scoring.AcceptThreshold = n
		}
	}
	if v := os.Getenv(concurrencyEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.Concurrency = n
		}
	}
}

func validate(cfg *domain.Config) error {
	if cfg.Normalize.MinYear > cfg.Normalize.MaxYear {
		return fmt.Errorf("config: normalize year window %d..%d is inverted",
			cfg.Normalize.MinYear, cfg.Normalize.MaxYear)
	}
	p := cfg.Proximity
	if p.Within3MonthsDays >= p.Within1YearDays || p.Within1YearDays >= p.Within5YearsDays {
		return fmt.Errorf("config: proximity buckets must be strictly increasing, got %d/%d/%d",
			p.Within3MonthsDays, p.Within1YearDays, p.Within5YearsDays)
	}
	if cfg.Risk.HighThreshold < cfg.Risk.MediumThreshold {
		return fmt.Errorf("config: risk high threshold %d below medium %d",
			cfg.Risk.HighThreshold, cfg.Risk.MediumThreshold)
	}
	if len(cfg.Reader.Strategies) == 0 {
		return fmt.Errorf("config: at least one reader strategy is required")
	}
	return nil
}
