package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL     string `yaml:"apiBaseURL"`
	LogLevel       string `yaml:"logLevel"`
	RequestTimeout string `yaml:"requestTimeout"`
	TokenStore     string `yaml:"tokenStore"`
	TokenPath      string `yaml:"tokenPath"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisPassword  string `yaml:"redisPassword"`
	RedisTokenKey  string `yaml:"redisTokenKey"`
	BannerSeconds  int    `yaml:"bannerSeconds"`
}

// Load reads config from path (defaults to config.yaml), then applies
// BOOKSHELF_* environment overrides and validates the result. A missing file
// is not an error; overrides alone may form a complete config.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{
		TokenStore:    "file",
		RedisTokenKey: "bookshelf:token",
		BannerSeconds: 3,
	}
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	if v := os.Getenv("BOOKSHELF_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKSHELF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKSHELF_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKSHELF_TOKEN_STORE"); v != "" {
		cfg.TokenStore = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKSHELF_TOKEN_PATH"); v != "" {
		cfg.TokenPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKSHELF_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKSHELF_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("BOOKSHELF_REDIS_TOKEN_KEY"); v != "" {
		cfg.RedisTokenKey = strings.TrimSpace(v)
	}
	if v := os.Getenv("BOOKSHELF_BANNER_SECONDS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.BannerSeconds = n
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return errors.New("config: apiBaseURL is required (set in config.yaml or BOOKSHELF_API_BASE_URL)")
	}
	switch cfg.TokenStore {
	case "file", "redis":
	default:
		return fmt.Errorf("config: tokenStore must be \"file\" or \"redis\", got %q", cfg.TokenStore)
	}
	if cfg.TokenStore == "redis" && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required when tokenStore is redis")
	}
	if cfg.BannerSeconds < 0 {
		return errors.New("config: bannerSeconds must be >= 0")
	}
	return nil
}

// ParseRequestTimeout parses the optional request timeout duration string.
func ParseRequestTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 10 * time.Second, nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout duration: %w", err)
	}
	return dur, nil
}

// ResolveTokenPath returns the token file location, defaulting to
// ~/.bookshelf/token when the config leaves it empty.
func ResolveTokenPath(cfg FileConfig) (string, error) {
	if cfg.TokenPath != "" {
		return cfg.TokenPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bookshelf", "token"), nil
}
