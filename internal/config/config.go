package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"GoldBean/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Sources struct {
		ScrapeURL       string        `yaml:"scrape_url"`
		ExchangeURL     string        `yaml:"exchange_url"`
		CoinbaseURL     string        `yaml:"coinbase_url"`
		ProbeURL        string        `yaml:"probe_url"`
		BasePriceUSD    float64       `yaml:"base_price_usd"`
		Markup          float64       `yaml:"markup"`
		ScrapeTimeout   time.Duration `yaml:"scrape_timeout"`
		ExchangeTimeout time.Duration `yaml:"exchange_timeout"`
		CoinbaseTimeout time.Duration `yaml:"coinbase_timeout"`
		ProbeTimeout    time.Duration `yaml:"probe_timeout"`
		Order           []string      `yaml:"order"`
	} `yaml:"sources"`
	History struct {
		RemoteDSN      string `yaml:"remote_dsn"`
		RemoteMaxConns int    `yaml:"remote_max_conns"`
	} `yaml:"history"`
	Schedule struct {
		UpdateCron string `yaml:"update_cron"`
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		StateFile  string `yaml:"state_file"`
	} `yaml:"database"`
	API struct {
		Listen string `yaml:"listen"`
	} `yaml:"api"`
	Proxy    string                `yaml:"proxy"`
	Holdings []model.HoldingRecord `yaml:"holdings"`
}

// Source names accepted in sources.order.
const (
	SourceScrape   = "scrape"
	SourceExchange = "exchange"
	SourceCoinbase = "coinbase"
)

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("GOLD_BASE_PRICE_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sources.BasePriceUSD = f
		}
	}
	if v := os.Getenv("GOLD_MARKUP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sources.Markup = f
		}
	}
	if v := os.Getenv("HISTORY_DATABASE_URL"); v != "" {
		cfg.History.RemoteDSN = v
	}
	if v := os.Getenv("CRON_UPDATE"); v != "" {
		cfg.Schedule.UpdateCron = v
	}
	if v := os.Getenv("CRON_REPORT"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v, ok := os.LookupEnv("SQLITE_PATH"); ok {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("API_LISTEN"); v != "" {
		cfg.API.Listen = v
	}

	// Defaults
	if cfg.Sources.BasePriceUSD == 0 {
		cfg.Sources.BasePriceUSD = 2650
	}
	if cfg.Sources.Markup == 0 {
		cfg.Sources.Markup = 1.25
	}
	if cfg.Sources.ScrapeTimeout == 0 {
		cfg.Sources.ScrapeTimeout = 15 * time.Second
	}
	if cfg.Sources.ExchangeTimeout == 0 {
		cfg.Sources.ExchangeTimeout = 10 * time.Second
	}
	if cfg.Sources.CoinbaseTimeout == 0 {
		cfg.Sources.CoinbaseTimeout = 20 * time.Second
	}
	if cfg.Sources.ProbeTimeout == 0 {
		cfg.Sources.ProbeTimeout = 5 * time.Second
	}
	if len(cfg.Sources.Order) == 0 {
		cfg.Sources.Order = []string{SourceScrape, SourceExchange, SourceCoinbase}
	}
	if cfg.History.RemoteMaxConns == 0 {
		cfg.History.RemoteMaxConns = 4
	}
	if cfg.Schedule.UpdateCron == "" {
		cfg.Schedule.UpdateCron = "0 0 8 * * *"
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 1 8 * * *"
	}
	if cfg.Database.StateFile == "" {
		cfg.Database.StateFile = "data/goldbean_state.json"
	}
	if _, set := os.LookupEnv("SQLITE_PATH"); !set && cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/goldbean.db"
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = ":8080"
	}

	return cfg, nil
}

// Validate checks that all values are usable. Telegram is optional but
// needs both fields when either is set.
func (c *Config) Validate() error {
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Sources.BasePriceUSD <= 0 {
		return fmt.Errorf("sources.base_price_usd must be positive")
	}
	if c.Sources.Markup <= 0 {
		return fmt.Errorf("sources.markup must be positive")
	}
	for _, name := range c.Sources.Order {
		switch name {
		case SourceScrape, SourceExchange, SourceCoinbase:
		default:
			return fmt.Errorf("sources.order: unknown source %q", name)
		}
	}
	for i, h := range c.Holdings {
		if h.Weight <= 0 {
			return fmt.Errorf("holdings[%d].weight must be positive", i)
		}
		if h.PurchasePrice < 0 {
			return fmt.Errorf("holdings[%d].purchase_price must not be negative", i)
		}
	}
	return nil
}
