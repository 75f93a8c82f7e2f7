// Package config loads client settings from the environment. A .env file in
// the working directory is applied first; variables already set win.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MinPollInterval = time.Second
	MaxPollInterval = 5 * time.Second
)

type Config struct {
	// Backends
	APIURL       string
	ScraperURL   string
	SchedulerURL string

	// Local state
	Home   string
	DBPath string

	// Behaviour
	PollInterval time.Duration
	PageSize     int
	Debounce     time.Duration
	HTTPTimeout  time.Duration
	RateLimit    float64

	LogLevel string
}

// Load reads the configuration. It never fails: unparsable values fall back
// to their defaults.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() *Config {
	cfg := &Config{}

	cfg.APIURL = getEnvString("NOVELSHELF_API_URL", "http://localhost:3000")
	cfg.ScraperURL = getEnvString("NOVELSHELF_SCRAPER_URL", "http://localhost:8000")
	cfg.SchedulerURL = getEnvString("NOVELSHELF_SCHEDULER_URL", "http://localhost:8001")

	cfg.Home = getEnvString("NOVELSHELF_HOME", defaultHome())
	cfg.DBPath = getEnvString("NOVELSHELF_DB", filepath.Join(cfg.Home, "novelshelf.db"))

	cfg.PollInterval = ClampPollInterval(getEnvDuration("NOVELSHELF_POLL_INTERVAL", 2*time.Second))
	cfg.PageSize = getEnvInt("NOVELSHELF_PAGE_SIZE", 20)
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	cfg.Debounce = getEnvDuration("NOVELSHELF_DEBOUNCE", 500*time.Millisecond)
	cfg.HTTPTimeout = getEnvDuration("NOVELSHELF_HTTP_TIMEOUT", 15*time.Second)
	cfg.RateLimit = getEnvFloat("NOVELSHELF_RATE_LIMIT", 10)

	cfg.LogLevel = strings.ToLower(getEnvString("NOVELSHELF_LOG_LEVEL", "info"))

	return cfg
}

func (c *Config) LogPath() string {
	return filepath.Join(c.Home, "novelshelf.log")
}

func (c *Config) ExportDir() string {
	return filepath.Join(c.Home, "exports")
}

func ClampPollInterval(d time.Duration) time.Duration {
	if d < MinPollInterval {
		return MinPollInterval
	}
	if d > MaxPollInterval {
		return MaxPollInterval
	}
	return d
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".novelshelf"
	}
	return filepath.Join(home, ".novelshelf")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
