package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port              string   `yaml:"port"`
	Env               string   `yaml:"env"`
	DatabaseDSN       string   `yaml:"database_dsn"`
	FlashSecret       string   `yaml:"flash_secret"`
	UploadDir         string   `yaml:"upload_dir"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
	RateLimitRPS      float64  `yaml:"rate_limit_rps"`
	RateLimitBurst    int      `yaml:"rate_limit_burst"`
}

// Load builds the configuration from defaults, an optional YAML file at
// CONFIG_PATH, and environment variables, in increasing priority.
func Load() Config {
	cfg, err := load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.Env == "production" && cfg.FlashSecret == "" {
		slog.Error("FLASH_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

func load() (Config, error) {
	cfg := Config{
		Port:           "8080",
		Env:            "development",
		DatabaseDSN:    "root:password@tcp(127.0.0.1:3306)/passforge?parseTime=true",
		UploadDir:      "uploads",
		MaxUploadBytes: 16 << 20,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.FlashSecret = getEnv("FLASH_SECRET", cfg.FlashSecret)
	cfg.UploadDir = getEnv("UPLOAD_DIR", cfg.UploadDir)

	if v := os.Getenv("ALLOWED_EXTENSIONS"); v != "" {
		cfg.AllowedExtensions = splitComma(v)
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.MaxUploadBytes = n
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = n
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = n
	}

	if cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.New("max upload bytes must be positive")
	}

	for i, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.AllowedExtensions[i] = ext
	}

	return cfg, nil
}

// FlashKey returns the flash signing secret. When none is configured a random
// 24 byte key is generated, so flashes do not survive a restart.
func (c Config) FlashKey() ([]byte, error) {
	if c.FlashSecret != "" {
		return []byte(c.FlashSecret), nil
	}

	key := make([]byte, 24)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating flash secret: %w", err)
	}
	return key, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
