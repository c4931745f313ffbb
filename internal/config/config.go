package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"CycleSentinel/internal/cycle"

	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of start_date / end_date.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider  string `yaml:"provider"`
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		APISecret string `yaml:"api_secret"`
		CSVPath   string `yaml:"csv_path"`
		Symbol    string `yaml:"symbol"`
		Interval  string `yaml:"interval"`
		StartDate string `yaml:"start_date"`
		EndDate   string `yaml:"end_date"`
	} `yaml:"data_source"`
	Analysis struct {
		PrimaryWindow    *cycle.Window `yaml:"primary_window"`
		Offsets          []int         `yaml:"offsets"`
		SecondaryWindow  *cycle.Window `yaml:"secondary_window"`
		HighlightOffsets []int         `yaml:"highlight_offsets"`
		Prominence       *float64      `yaml:"prominence"`
		MinSeparation    *int          `yaml:"min_separation"`
	} `yaml:"analysis"`
	Schedule struct {
		AnalysisCron string `yaml:"analysis_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telemetry struct {
		Provider string `yaml:"provider"`
	} `yaml:"telemetry"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults and the environment still apply.
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
	overrides := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"DATA_PROVIDER":      &cfg.DataSource.Provider,
		"DATA_BASE_URL":      &cfg.DataSource.BaseURL,
		"DATA_API_KEY":       &cfg.DataSource.APIKey,
		"DATA_API_SECRET":    &cfg.DataSource.APISecret,
		"SYMBOL":             &cfg.DataSource.Symbol,
		"START_DATE":         &cfg.DataSource.StartDate,
		"END_DATE":           &cfg.DataSource.EndDate,
		"CRON_ANALYSIS":      &cfg.Schedule.AnalysisCron,
		"SERVER_ADDR":        &cfg.Server.Addr,
		"OTEL_PROVIDER":      &cfg.Telemetry.Provider,
		"HTTPS_PROXY":        &cfg.Proxy,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("PROMINENCE"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse PROMINENCE: %w", err)
		}
		cfg.Analysis.Prominence = &p
	}
	if v := os.Getenv("MIN_SEPARATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse MIN_SEPARATION: %w", err)
		}
		cfg.Analysis.MinSeparation = &n
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "DXY"
	}
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1d"
	}
	if cfg.DataSource.StartDate == "" {
		cfg.DataSource.StartDate = "2021-07-01"
	}
	if cfg.Schedule.AnalysisCron == "" {
		cfg.Schedule.AnalysisCron = "0 0 23 * * 1-5"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8090"
	}
	if cfg.Telemetry.Provider == "" {
		cfg.Telemetry.Provider = "none"
	}

	return cfg, nil
}

// AnalysisParams overlays the analysis section onto cycle.DefaultParams.
func (c *Config) AnalysisParams() cycle.Params {
	p := cycle.DefaultParams()
	a := c.Analysis
	if a.PrimaryWindow != nil {
		p.Primary = *a.PrimaryWindow
	}
	if a.Offsets != nil {
		p.Offsets = append([]int(nil), a.Offsets...)
	}
	if a.SecondaryWindow != nil {
		p.Secondary = *a.SecondaryWindow
	}
	if a.HighlightOffsets != nil {
		p.HighlightOffsets = append([]int(nil), a.HighlightOffsets...)
	}
	if a.Prominence != nil {
		p.Prominence = *a.Prominence
	}
	if a.MinSeparation != nil {
		p.MinSeparation = *a.MinSeparation
	}
	return p
}

// Range returns the parsed analysis range. A zero end means "up to now".
func (c *Config) Range() (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, c.DataSource.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, &cycle.ConfigError{Field: "data_source.start_date", Reason: err.Error()}
	}
	if c.DataSource.EndDate == "" {
		return start, time.Time{}, nil
	}
	end, err = time.Parse(DateLayout, c.DataSource.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, &cycle.ConfigError{Field: "data_source.end_date", Reason: err.Error()}
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, &cycle.ConfigError{Field: "data_source.end_date", Reason: "must be after start_date"}
	}
	return start, end, nil
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	ds := c.DataSource
	switch ds.Provider {
	case "yahoo", "mock":
	case "rest":
		if ds.BaseURL == "" {
			return &cycle.ConfigError{Field: "data_source.base_url", Reason: "required for provider rest"}
		}
	case "alpaca":
		if ds.APIKey == "" || ds.APISecret == "" {
			return &cycle.ConfigError{Field: "data_source.api_key", Reason: "api_key and api_secret are required for provider alpaca"}
		}
	case "csv":
		if ds.CSVPath == "" {
			return &cycle.ConfigError{Field: "data_source.csv_path", Reason: "required for provider csv"}
		}
	default:
		return &cycle.ConfigError{Field: "data_source.provider", Reason: fmt.Sprintf("unknown provider %q", ds.Provider)}
	}
	if ds.Interval != "1d" && ds.Interval != "1wk" {
		return &cycle.ConfigError{Field: "data_source.interval", Reason: fmt.Sprintf("must be 1d or 1wk, got %q", ds.Interval)}
	}
	if ds.Symbol == "" {
		return &cycle.ConfigError{Field: "data_source.symbol", Reason: "required"}
	}
	if _, _, err := c.Range(); err != nil {
		return err
	}
	switch c.Telemetry.Provider {
	case "none", "otlp", "honeycomb":
	default:
		return &cycle.ConfigError{Field: "telemetry.provider", Reason: fmt.Sprintf("unknown provider %q", c.Telemetry.Provider)}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return &cycle.ConfigError{Field: "telegram", Reason: "bot_token and chat_id must be set together"}
	}
	return c.AnalysisParams().Validate()
}
