// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-jobscout/internal/filter"
)

type Config struct {
	// Which site adapter to run against ("indeed", "linkedin").
	Site     string   `yaml:"site"`
	Keywords []string `yaml:"keywords"`

	PagesPerKeyword int `yaml:"pages_per_keyword"`
	WorkerCount     int `yaml:"worker_count"`
	CutoffDays      int `yaml:"cutoff_days"`

	MaxRetries         int `yaml:"max_retries"`
	EmptyPageThreshold int `yaml:"empty_page_threshold"`
	RecoveryAttempts   int `yaml:"recovery_attempts"`
	RecoveryTimeoutMin int `yaml:"recovery_timeout_min"`

	//Pacing knobs (tunable, not correctness-critical)
	PageIntervalMs       int `yaml:"page_interval_ms"`
	PageJitterMinMs      int `yaml:"page_jitter_min_ms"`
	PageJitterMaxMs      int `yaml:"page_jitter_max_ms"`
	KeywordSwitchDelayMs int `yaml:"keyword_switch_delay_ms"`

	Seniority filter.Policy `yaml:"seniority"`

	// Headful opens a visible browser. Default is headless.
	Headful bool `yaml:"headful"`

	//Paths
	DBPath      string `yaml:"db_path"`
	CookiesPath string `yaml:"cookies_path"`
	LogDir      string `yaml:"log_dir"`

	//Telegram reporting (optional, env-only)
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"-"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	//Override with env vars
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	cfg.applyDefaults()

	//Validate required fields
	if len(cfg.Keywords) == 0 {
		return nil, fmt.Errorf("config: at least one keyword is required")
	}
	if cfg.PageJitterMinMs > cfg.PageJitterMaxMs {
		return nil, fmt.Errorf("config: page_jitter_min_ms exceeds page_jitter_max_ms")
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Site == "" {
		cfg.Site = "indeed"
	}
	if cfg.PagesPerKeyword == 0 {
		cfg.PagesPerKeyword = 3
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.CutoffDays == 0 {
		cfg.CutoffDays = 14
	}
	if cfg.EmptyPageThreshold == 0 {
		cfg.EmptyPageThreshold = 2
	}
	if cfg.RecoveryAttempts == 0 {
		cfg.RecoveryAttempts = 3
	}
	if cfg.RecoveryTimeoutMin == 0 {
		cfg.RecoveryTimeoutMin = 5
	}
	if cfg.PageIntervalMs == 0 {
		cfg.PageIntervalMs = 2000
	}
	if cfg.PageJitterMaxMs == 0 {
		cfg.PageJitterMinMs = 500
		cfg.PageJitterMaxMs = 2000
	}
	if cfg.KeywordSwitchDelayMs == 0 {
		cfg.KeywordSwitchDelayMs = 3000
	}
	if len(cfg.Seniority.SeniorKeywords) == 0 && len(cfg.Seniority.EntryKeywords) == 0 {
		cfg.Seniority = filter.DefaultPolicy()
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "jobs.db"
	}
	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies"
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
}
