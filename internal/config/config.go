package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from a JSON file, then overridden by MINDTASK_* environment
// variables. Missing values fall back to the env-default tags.
type Config struct {
	DBPath     string `json:"db_path"     env:"MINDTASK_DB_PATH"`
	WebEnabled bool   `json:"web_enabled" env:"MINDTASK_WEB_ENABLED"`
	WebPort    int    `json:"web_port"    env:"MINDTASK_WEB_PORT"    env-default:"8080" validate:"min=1,max=65535"`
	LogLevel   string `json:"log_level"   env:"MINDTASK_LOG_LEVEL"   env-default:"info" validate:"oneof=debug info warn error"`
	LogFile    string `json:"log_file"    env:"MINDTASK_LOG_FILE"`
	CacheTTL   string `json:"cache_ttl"   env:"MINDTASK_CACHE_TTL"   env-default:"30s"`
	Debug      bool   `json:"debug"       env:"MINDTASK_DEBUG"`
}

func Default() Config {
	return Config{WebPort: 8080, LogLevel: "info", CacheTTL: "30s"}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "mindtask", "config.json"), nil
}

func DefaultDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "mindtask", "mindtask.db"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads path when it exists and the environment otherwise. A missing
// file is not an error.
func Load(path string) (Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	} else if os.IsNotExist(err) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	} else {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.CacheDuration(); err != nil {
		return fmt.Errorf("invalid config: cache_ttl: %w", err)
	}
	return nil
}

// CacheDuration parses CacheTTL. An empty value disables caching.
func (c Config) CacheDuration() (time.Duration, error) {
	if c.CacheTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", c.CacheTTL)
	}
	return d, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
