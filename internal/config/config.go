package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Yahoo struct {
	ChartEndpoint         string `json:"chart_endpoint"`
	QuoteEndpoint         string `json:"quote_endpoint"`
	MaxConcurrency        int    `json:"max_concurrency"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec"`
	Burst                 int    `json:"burst"`
}

type Cache struct {
	TTLSeconds int `json:"ttl_sec"`
	MaxEntries int `json:"max_entries"`
}

type Config struct {
	Server   Server `json:"server"`
	Yahoo    Yahoo  `json:"yahoo"`
	Cache    Cache  `json:"cache"`
	LogLevel string `json:"log_level"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Yahoo: Yahoo{
			// endpoints default inside the yahoo client; rate limiting off
			MaxConcurrency: 4,
		},
		Cache:    Cache{TTLSeconds: 15, MaxEntries: 4096},
		LogLevel: "info",
	}
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. Environment variables override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("YAHOO_CHART_ENDPOINT"); v != "" {
		cfg.Yahoo.ChartEndpoint = v
	}
	if v := os.Getenv("YAHOO_QUOTE_ENDPOINT"); v != "" {
		cfg.Yahoo.QuoteEndpoint = v
	}
	setIntEnv("REQUEST_TIMEOUT_SEC", &cfg.Server.RequestTimeoutSec, 1)
	setIntEnv("CACHE_TTL_SEC", &cfg.Cache.TTLSeconds, 1)
	setIntEnv("CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries, 1)
	setIntEnv("YAHOO_MAX_CONCURRENCY", &cfg.Yahoo.MaxConcurrency, 1)
	setIntEnv("YAHOO_MAX_RPM", &cfg.Yahoo.MaxRequestsPerMinute, 0)
	setIntEnv("YAHOO_MIN_INTERVAL_SEC", &cfg.Yahoo.MinRequestIntervalSec, 0)
	setIntEnv("YAHOO_BURST", &cfg.Yahoo.Burst, 1)
}

func setIntEnv(key string, dst *int, min int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var x int
	_, _ = fmt.Sscanf(v, "%d", &x)
	if x >= min {
		*dst = x
	}
}
