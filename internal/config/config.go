package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the generative-text API key.
// It is deliberately kept out of the YAML file so the config can be checked
// into dotfiles without leaking credentials.
const APIKeyEnv = "ECONBOARD_API_KEY"

// SessionHoursConfig holds the canonical UTC hours used to place
// session-period events on the timeline. These are sorting placeholders,
// not published announcement times, so they are configurable per market.
type SessionHoursConfig struct {
	// PreMarket is the UTC hour representing a typical pre-market
	// announcement (default 13, approximating early U.S. market hours).
	// Pointers distinguish an explicit 0 (midnight, valid) from "unset".
	PreMarket *int `yaml:"pre_market" json:"pre_market"`
	// PostMarket is the UTC hour for post-market announcements (default 21).
	// PreMarket must be earlier than PostMarket.
	PostMarket *int `yaml:"post_market" json:"post_market"`
}

// APIConfig describes the generative-text endpoint the four event queries
// are sent to. The endpoint is expected to speak the chat-completions JSON
// shape; the key comes from the environment (APIKeyEnv), optionally via a
// .env file.
type APIConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	Model   string `yaml:"model" json:"model"`
	// TimeoutSeconds bounds a single query. There is no retry: a failed
	// query fails the whole refresh.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
	// Key is resolved from the environment, never from YAML.
	Key string `yaml:"-" json:"-"`
}

// Timeout returns the per-query timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the dashboard and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for day grouping and time-of-day
	// display (e.g. "America/New_York"). Day groups follow this zone's
	// calendar-day boundary, not UTC's.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string for the periodic full
	// re-fetch of all four queries (e.g. "0 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DefaultWindow is the forward horizon applied when a request does not
	// select one: "24h" or "7d".
	DefaultWindow string `yaml:"default_window" json:"default_window"`

	// SessionHours places pre/post-market events on the timeline.
	SessionHours SessionHoursConfig `yaml:"session_hours" json:"session_hours"`

	// API is the upstream generative-text endpoint.
	API APIConfig `yaml:"api" json:"api"`

	// PreviewTTLSeconds caches the rendered dashboard snapshot (PNG) for
	// this long before re-capturing.
	PreviewTTLSeconds int `yaml:"preview_ttl_seconds" json:"preview_ttl_seconds"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8080",
		Timezone:      "America/New_York",
		RefreshCron:   "0 * * * *",
		DefaultWindow: "7d",
		SessionHours: SessionHoursConfig{
			PreMarket:  hourPtr(13),
			PostMarket: hourPtr(21),
		},
		API: APIConfig{
			BaseURL:        "https://api.openai.com",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		PreviewTTLSeconds: 300,
		BasicAuth:         nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	switch c.DefaultWindow {
	case "24h", "7d":
		// ok
	default:
		c.DefaultWindow = def.DefaultWindow
	}
	if !validHour(c.SessionHours.PreMarket) {
		c.SessionHours.PreMarket = def.SessionHours.PreMarket
	}
	if !validHour(c.SessionHours.PostMarket) {
		c.SessionHours.PostMarket = def.SessionHours.PostMarket
	}
	if *c.SessionHours.PreMarket >= *c.SessionHours.PostMarket {
		// Pre-market must sort before post-market on the same day.
		c.SessionHours = def.SessionHours
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = def.API.BaseURL
	}
	if c.API.Model == "" {
		c.API.Model = def.API.Model
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = def.API.TimeoutSeconds
	}
	if c.PreviewTTLSeconds <= 0 {
		c.PreviewTTLSeconds = def.PreviewTTLSeconds
	}
}

func hourPtr(h int) *int {
	return &h
}

func validHour(h *int) bool {
	return h != nil && *h >= 0 && *h <= 23
}

// Location resolves the configured display timezone, falling back to UTC
// if the name cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms and return the defaults.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
//
// In both cases the API key is overlaid from the environment; a .env file in
// the working directory is honored when present.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			cfg.API.Key = apiKeyFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.API.Key = apiKeyFromEnv()

	return &cfg, nil
}

// apiKeyFromEnv loads the API key from the environment, picking up a .env
// file first if one exists. A missing .env is not an error.
func apiKeyFromEnv() string {
	_ = godotenv.Load()
	return os.Getenv(APIKeyEnv)
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".econboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
