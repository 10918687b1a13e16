package store

import (
	"fmt"
	"os"

	"etf-trader/internal/types"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Store struct {
		DataFile string `yaml:"data_file"`
	} `yaml:"store"`
	Source struct {
		Kind        string `yaml:"kind"` // STATIC, NSE, KITE, SCRAPE or CSV
		Exchange    string `yaml:"exchange"`
		CSVPath     string `yaml:"csv_path"`
		RateLimitMS int    `yaml:"rate_limit_ms"`
		Burst       int    `yaml:"burst"`
	} `yaml:"source"`
	Sizing struct {
		BufferPct   float64 `yaml:"buffer_pct"`
		MaxQuantity int     `yaml:"max_quantity"`
	} `yaml:"sizing"`
	Strategy struct {
		VolumeThreshold         float64 `yaml:"volume_threshold"`
		FilterEnabled           *bool   `yaml:"filter_enabled"`
		MaxRankToConsider       int     `yaml:"max_rank_to_consider"`
		AveragingLossThreshold  float64 `yaml:"averaging_loss_threshold"`
		ProfitThreshold         float64 `yaml:"profit_threshold"`
		DefaultInvestmentAmount float64 `yaml:"default_investment_amount"`
	} `yaml:"strategy"`
}

func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "STATIC", "NSE", "KITE", "SCRAPE":
	case "CSV":
		if c.Source.CSVPath == "" {
			return fmt.Errorf("source.csv_path is required when source.kind is 'CSV'")
		}
	default:
		return fmt.Errorf("invalid source.kind '%s': must be 'STATIC', 'NSE', 'KITE', 'SCRAPE' or 'CSV'", c.Source.Kind)
	}
	if c.Source.RateLimitMS < 0 {
		return fmt.Errorf("source.rate_limit_ms must be >= 0, got %d", c.Source.RateLimitMS)
	}
	if c.Sizing.BufferPct < 0 || c.Sizing.BufferPct >= 100 {
		return fmt.Errorf("sizing.buffer_pct must be in [0, 100), got %.2f", c.Sizing.BufferPct)
	}
	if c.Sizing.MaxQuantity < 0 {
		return fmt.Errorf("sizing.max_quantity must be >= 0, got %d", c.Sizing.MaxQuantity)
	}
	if c.Strategy.VolumeThreshold < 0 {
		return fmt.Errorf("strategy.volume_threshold must be >= 0, got %.0f", c.Strategy.VolumeThreshold)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Store.DataFile == "" {
		c.Store.DataFile = "etf-data.json"
	}
	if c.Source.Kind == "" {
		c.Source.Kind = "STATIC"
	}
	if c.Source.Exchange == "" {
		c.Source.Exchange = "NSE"
	}
	if c.Source.RateLimitMS == 0 {
		c.Source.RateLimitMS = 1000
	}
	if c.Source.Burst == 0 {
		c.Source.Burst = 1
	}
	if c.Sizing.MaxQuantity == 0 {
		c.Sizing.MaxQuantity = 1000
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// StrategySettings builds the settings used to seed a brand-new store
// file. Zero config values fall back to the defaults; existing stores
// keep their persisted settings regardless.
func (c *Config) StrategySettings() types.Settings {
	s := types.DefaultSettings()
	if c.Strategy.VolumeThreshold > 0 {
		s.VolumeThreshold = c.Strategy.VolumeThreshold
	}
	if c.Strategy.FilterEnabled != nil {
		s.FilterEnabled = *c.Strategy.FilterEnabled
	}
	if c.Strategy.MaxRankToConsider > 0 {
		s.MaxRankToConsider = c.Strategy.MaxRankToConsider
	}
	if c.Strategy.AveragingLossThreshold != 0 {
		s.AveragingLossThreshold = c.Strategy.AveragingLossThreshold
	}
	if c.Strategy.ProfitThreshold > 0 {
		s.ProfitThreshold = c.Strategy.ProfitThreshold
	}
	if c.Strategy.DefaultInvestmentAmount > 0 {
		s.DefaultInvestmentAmount = decimal.NewFromFloat(c.Strategy.DefaultInvestmentAmount)
	}
	return s
}
