package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"GoldBean/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 2650.0, cfg.Sources.BasePriceUSD)
	assert.Equal(t, 1.25, cfg.Sources.Markup)
	assert.Equal(t, 15*time.Second, cfg.Sources.ScrapeTimeout)
	assert.Equal(t, 5*time.Second, cfg.Sources.ProbeTimeout)
	assert.Equal(t, []string{"scrape", "exchange", "coinbase"}, cfg.Sources.Order)
	assert.Equal(t, "0 0 8 * * *", cfg.Schedule.UpdateCron)
	assert.Equal(t, "data/goldbean.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":8080", cfg.API.Listen)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
telegram:
  bot_token: file-token
  chat_id: "100"
sources:
  markup: 1.3
  coinbase_timeout: 3s
  order: [coinbase, scrape]
holdings:
  - name: 金条
    weight: 10
    purchase_price: 5000
    purchase_date: 2024-01-02T00:00:00Z
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("GOLD_BASE_PRICE_USD", "2700")
	t.Setenv("SQLITE_PATH", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "100", cfg.Telegram.ChatID)
	assert.Equal(t, 1.3, cfg.Sources.Markup)
	assert.Equal(t, 2700.0, cfg.Sources.BasePriceUSD)
	assert.Equal(t, 3*time.Second, cfg.Sources.CoinbaseTimeout)
	assert.Equal(t, []string{"coinbase", "scrape"}, cfg.Sources.Order)
	assert.Empty(t, cfg.Database.SQLitePath, "empty SQLITE_PATH selects the JSON state file")
	require.Len(t, cfg.Holdings, 1)
	assert.Equal(t, "金条", cfg.Holdings[0].Name)
	assert.Equal(t, 2024, cfg.Holdings[0].PurchaseDate.Year())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_UnnamedHolding(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Holdings = []model.HoldingRecord{{Weight: 5, PurchasePrice: 2900}}
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"zero markup", func(c *Config) { c.Sources.Markup = -1 }},
		{"unknown source", func(c *Config) { c.Sources.Order = []string{"metals"} }},
		{"holding without weight", func(c *Config) {
			c.Holdings = append(c.Holdings, c.Holdings...)
			c.Holdings[0].Weight = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			cfg.Holdings = []model.HoldingRecord{{Name: "金豆", Weight: 1}}
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
