// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TelegramToken   string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	ReviewChannelID int64  `yaml:"review_channel_id" env:"REVIEW_CHANNEL_ID"`
	DatabaseURL     string `yaml:"database_url" env:"DATABASE_URL"`
	//Watcher
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
	//Uploads
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`
	//Logging
	Debug   bool `yaml:"debug"`
	JSONLog bool `yaml:"json_log"`
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: Could not read %s: %v", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if channelID := os.Getenv("REVIEW_CHANNEL_ID"); channelID != "" {
		id, err := strconv.ParseInt(channelID, 10, 64)
		if err != nil {
			return nil, errors.New("invalid REVIEW_CHANNEL_ID: " + err.Error())
		}
		cfg.ReviewChannelID = id
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	//Set default values if not set
	if cfg.SweepIntervalSeconds == 0 {
		cfg.SweepIntervalSeconds = 300
	}

	if cfg.MaxFileSizeBytes == 0 {
		cfg.MaxFileSizeBytes = 5 * 1024 * 1024
	}

	//Validate required fields
	if cfg.TelegramToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	if cfg.ReviewChannelID == 0 {
		return nil, errors.New("REVIEW_CHANNEL_ID is required")
	}

	return cfg, nil
}
