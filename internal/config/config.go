// Package config resolves habitdash settings. Layers apply in order, each
// overriding the previous one:
//
//   - built-in defaults
//   - a YAML file (--config or HABITDASH_CONFIG)
//   - a .env file and the process environment (HABITDASH_*)
//   - values saved with `habitdash config set`
//   - command-line flags, applied by the caller
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "HABITDASH_CONFIG"
	EnvAPIURL     = "HABITDASH_API_URL"
	EnvFreshness  = "HABITDASH_FRESHNESS"
	EnvTimeout    = "HABITDASH_TIMEOUT"
	EnvRefetch    = "HABITDASH_REFETCH"
	EnvLogLevel   = "HABITDASH_LOG_LEVEL"

	DefaultAPIURL    = "http://localhost:3333"
	DefaultFreshness = 30 * time.Second
	DefaultTimeout   = 15 * time.Second
	DefaultLogLevel  = "warn"
)

type Config struct {
	APIURL              string        `json:"api_url" yaml:"api_url"`
	Freshness           time.Duration `json:"freshness" yaml:"freshness"`
	Timeout             time.Duration `json:"timeout" yaml:"timeout"`
	RefetchOnInvalidate bool          `json:"refetch_on_invalidate" yaml:"refetch_on_invalidate"`
	LogLevel            string        `json:"log_level" yaml:"log_level"`
}

// fileConfig mirrors Config with durations as strings ("30s", "1m").
type fileConfig struct {
	APIURL              string `yaml:"api_url"`
	Freshness           string `yaml:"freshness"`
	Timeout             string `yaml:"timeout"`
	RefetchOnInvalidate *bool  `yaml:"refetch_on_invalidate"`
	LogLevel            string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		APIURL:    DefaultAPIURL,
		Freshness: DefaultFreshness,
		Timeout:   DefaultTimeout,
		LogLevel:  DefaultLogLevel,
	}
}

type Sources struct {
	// File is an explicit config path. When empty, HABITDASH_CONFIG is used;
	// when both are empty no file is read.
	File string
	// DotEnv is loaded into the environment if it exists.
	DotEnv string
	Getenv func(string) string
	Stored map[string]string
}

func Resolve(src Sources) (Config, error) {
	cfg := Default()
	if src.DotEnv != "" {
		if err := loadDotEnv(src.DotEnv); err != nil {
			return Config{}, err
		}
	}
	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	path := strings.TrimSpace(src.File)
	if path == "" {
		path = strings.TrimSpace(getenv(EnvConfigFile))
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	for _, key := range StoredKeys() {
		value, ok := src.Stored[key]
		if !ok {
			continue
		}
		if err := cfg.Set(key, value); err != nil {
			return Config{}, fmt.Errorf("stored config %s: %w", key, err)
		}
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	for key, value := range map[string]string{
		KeyAPIURL:    fc.APIURL,
		KeyFreshness: fc.Freshness,
		KeyTimeout:   fc.Timeout,
		KeyLogLevel:  fc.LogLevel,
	} {
		if value == "" {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
	}
	if fc.RefetchOnInvalidate != nil {
		c.RefetchOnInvalidate = *fc.RefetchOnInvalidate
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	for env, key := range map[string]string{
		EnvAPIURL:    KeyAPIURL,
		EnvFreshness: KeyFreshness,
		EnvTimeout:   KeyTimeout,
		EnvRefetch:   KeyRefetch,
		EnvLogLevel:  KeyLogLevel,
	} {
		value := strings.TrimSpace(getenv(env))
		if value == "" {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

// Set applies one named value, validating it.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch normalizeKey(key) {
	case KeyAPIURL:
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("api url must start with http:// or https://, got %q", value)
		}
		c.APIURL = strings.TrimRight(value, "/")
	case KeyFreshness:
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		c.Freshness = d
	case KeyTimeout:
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		if d == 0 {
			return fmt.Errorf("timeout must be > 0")
		}
		c.Timeout = d
	case KeyRefetch:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		c.RefetchOnInvalidate = b
	case KeyLogLevel:
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log level %q (use debug, info, warn or error)", value)
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(value string) (time.Duration, error) {
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("duration must be >= 0")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (e.g. 30s, 2m)", value)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
