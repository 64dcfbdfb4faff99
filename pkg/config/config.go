package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent on every request unless overridden
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// ValidScopes are the collection scopes a user link can be enumerated with
var ValidScopes = []string{"post", "like", "mix", "music"}

// Config holds all configuration for the downloader
type Config struct {
	// Links to process on a plain `dydl download` run
	Links []string `yaml:"links"`

	Douyin    DouyinConfig    `yaml:"douyin"`
	Scopes    []string        `yaml:"scopes"`
	Limits    LimitsConfig    `yaml:"number"`
	Increment IncrementConfig `yaml:"increase"`
	Window    WindowConfig    `yaml:"window"`
	Download  DownloadConfig  `yaml:"download"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
	Output    OutputConfig    `yaml:"output"`
	Database  DatabaseConfig  `yaml:"database"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DouyinConfig holds the platform session settings
type DouyinConfig struct {
	// Cookie is the raw Cookie header value for authenticated endpoints
	Cookie    string `yaml:"cookie"`
	UserAgent string `yaml:"user_agent"`
}

// LimitsConfig caps how much each scope may yield (0 = unlimited). Post,
// like and music cap items; allmix caps how many of a user's collections
// are walked, each collection downloading whole.
type LimitsConfig struct {
	Post  int `yaml:"post"`
	Like  int `yaml:"like"`
	Mix   int `yaml:"allmix"`
	Music int `yaml:"music"`
}

// IncrementConfig enables incremental (dedup-aware) runs per scope
type IncrementConfig struct {
	Post  bool `yaml:"post"`
	Like  bool `yaml:"like"`
	Mix   bool `yaml:"mix"`
	Music bool `yaml:"music"`
}

// WindowConfig restricts post/like enumeration to a publish-date range.
// Dates are "2006-01-02"; empty means unbounded on that side.
type WindowConfig struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DownloadConfig toggles optional artifacts and sets the transfer timeout
type DownloadConfig struct {
	Audio          bool `yaml:"music"`
	Cover          bool `yaml:"cover"`
	Metadata       bool `yaml:"json"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
}

// RateLimitConfig controls request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// RetryConfig controls same-request retry behavior
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// OutputConfig controls where files are written
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory"`
}

// DatabaseConfig controls the persistent dedup store
type DatabaseConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path to the SQLite file; empty means <base_directory>/.dydl.db
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Douyin: DouyinConfig{
			UserAgent: DefaultUserAgent,
		},
		Scopes: []string{"post"},
		Increment: IncrementConfig{
			Post:  true,
			Like:  true,
			Mix:   true,
			Music: true,
		},
		Download: DownloadConfig{
			Audio:          true,
			Cover:          true,
			Metadata:       true,
			TimeoutSeconds: 60,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1.0,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
		},
		Output: OutputConfig{
			BaseDirectory: "./downloads",
		},
		Database: DatabaseConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in layers: defaults, then the YAML file (if it
// exists), then .env / environment variables. Flag overrides are applied by
// the command layer after Load returns.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides config fields from DYDL_* environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("DYDL_COOKIE"); v != "" {
		c.Douyin.Cookie = v
	}
	if v := os.Getenv("DYDL_USER_AGENT"); v != "" {
		c.Douyin.UserAgent = v
	}
	if v := os.Getenv("DYDL_OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv("DYDL_SCOPES"); v != "" {
		c.Scopes = splitList(v)
	}
	if v := os.Getenv("DYDL_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("DYDL_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("DYDL_DATABASE"); v != "" {
		c.Database.Enabled = parseBool(v, c.Database.Enabled)
	}
	if v := os.Getenv("DYDL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DYDL_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	var errs []error

	for _, scope := range c.Scopes {
		if !isValidScope(scope) {
			errs = append(errs, fmt.Errorf("invalid scope %q (valid: %s)", scope, strings.Join(ValidScopes, ", ")))
		}
	}
	if len(c.Scopes) == 0 {
		errs = append(errs, errors.New("at least one scope is required"))
	}

	if c.Limits.Post < 0 || c.Limits.Like < 0 || c.Limits.Mix < 0 || c.Limits.Music < 0 {
		errs = append(errs, errors.New("number limits cannot be negative"))
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("rate_limit.requests_per_second must be positive"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}

	if c.Download.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("download.timeout_seconds must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output.base_directory is required"))
	}

	if _, _, err := c.Window.Bounds(); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

func isValidScope(s string) bool {
	for _, v := range ValidScopes {
		if s == v {
			return true
		}
	}
	return false
}

// Bounds parses the window into concrete times. A zero time on either side
// means that side is unbounded. The end date is inclusive, so it extends to
// the last instant of that day.
func (w WindowConfig) Bounds() (start, end time.Time, err error) {
	if w.Start != "" {
		start, err = time.Parse("2006-01-02", w.Start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid window.start %q: %w", w.Start, err)
		}
	}
	if w.End != "" {
		end, err = time.Parse("2006-01-02", w.End)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid window.end %q: %w", w.End, err)
		}
		end = end.Add(24*time.Hour - time.Second)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("window.end %q is before window.start %q", w.End, w.Start)
	}
	return start, end, nil
}

// DatabasePath resolves the dedup store location
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Output.BaseDirectory, ".dydl.db")
}

// ScopeLimit returns the count limit for a scope (0 = unlimited)
func (c *Config) ScopeLimit(scope string) int {
	switch scope {
	case "post":
		return c.Limits.Post
	case "like":
		return c.Limits.Like
	case "mix":
		return c.Limits.Mix
	case "music":
		return c.Limits.Music
	}
	return 0
}

// ScopeIncremental reports whether dedup skipping is enabled for a scope
func (c *Config) ScopeIncremental(scope string) bool {
	switch scope {
	case "post":
		return c.Increment.Post
	case "like":
		return c.Increment.Like
	case "mix":
		return c.Increment.Mix
	case "music":
		return c.Increment.Music
	}
	return false
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the standard config file location
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "dydl", "config.yaml")
}
