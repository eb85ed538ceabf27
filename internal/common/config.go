package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the runtime settings of the sync core and the
// reference shop service. Values come from env vars with defaults; an
// optional YAML file can overlay them (file wins over env).
type Config struct {
	// HTTP listen address of the reference shop service.
	HTTPAddr string `yaml:"http_addr"`
	// Base URL the sync client talks to, e.g. http://127.0.0.1:8081.
	APIBaseURL string `yaml:"api_base_url"`
	// Static bearer credential. Empty disables auth on the shop
	// service and sends no Authorization header from the client.
	APIToken string `yaml:"api_token"`

	// Per-call deadline for REST calls.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Extra attempts for idempotent GETs. Mutations are never retried.
	ReadRetries int `yaml:"read_retries"`

	// Event-stream path on the backend.
	EventsPath string `yaml:"events_path"`
	// Reconnect backoff bounds and attempt cap.
	ReconnectMinDelay    time.Duration `yaml:"reconnect_min_delay"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay"`
	ReconnectMaxAttempts int           `yaml:"reconnect_max_attempts"`

	// Disable the prometheus server tracer (used by tests to avoid
	// duplicate /metrics listeners).
	PromDisable bool `yaml:"prom_disable"`
}

// LoadConfig reads settings from the environment.
func LoadConfig() *Config {
	return &Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8081"),
		APIBaseURL:           getenv("API_BASE_URL", "http://127.0.0.1:8081"),
		APIToken:             getenv("API_TOKEN", ""),
		RequestTimeout:       getenvDuration("REQUEST_TIMEOUT", 25*time.Second),
		ReadRetries:          getenvInt("READ_RETRIES", 2),
		EventsPath:           getenv("EVENTS_PATH", "/v1/events"),
		ReconnectMinDelay:    getenvDuration("RECONNECT_MIN_DELAY", time.Second),
		ReconnectMaxDelay:    getenvDuration("RECONNECT_MAX_DELAY", 30*time.Second),
		ReconnectMaxAttempts: getenvInt("RECONNECT_MAX_ATTEMPTS", 10),
		PromDisable:          getenv("PROM_DISABLE", "") == "1",
	}
}

// ApplyFile overlays settings from a YAML file onto c.
func (c *Config) ApplyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
