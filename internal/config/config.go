package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockPredictor/internal/collector"
	"StockPredictor/internal/store"
)

// years of daily history requested when a symbol names only a ticker
const historyYears = 10

// SymbolSource names a stock and where its history page lives.
type SymbolSource struct {
	Name   string `yaml:"name"`   // table name and user-facing choice, lowercase
	Ticker string `yaml:"ticker"` // builds URL when url is empty
	URL    string `yaml:"url"`
}

// Config holds all application configuration.
type Config struct {
	Database struct {
		Driver     string `yaml:"driver"` // "sqlite", "mysql" or "memory"
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		Name       string `yaml:"database"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Symbols []SymbolSource `yaml:"symbols"`
	Fetch   struct {
		Proxy       string        `yaml:"proxy"`
		Timeout     time.Duration `yaml:"timeout"`
		UserAgent   string        `yaml:"user_agent"`
		StartMarker string        `yaml:"start_marker"`
		EndMarker   string        `yaml:"end_marker"`
		SkipPrefix  int           `yaml:"skip_prefix"`
		TrimSuffix  int           `yaml:"trim_suffix"`
	} `yaml:"fetch"`
	Model struct {
		TestRatio float64 `yaml:"test_ratio"`
		Seed      *uint64 `yaml:"seed"` // unset means a different partition every run
		Timezone  string  `yaml:"timezone"`
	} `yaml:"model"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Report struct {
		Dir string `yaml:"dir"`
	} `yaml:"report"`
}

// DefaultSymbols are the stocks tracked when the config names none.
func DefaultSymbols() []SymbolSource {
	return []SymbolSource{
		{Name: "facebook", Ticker: "FB", URL: "https://finance.yahoo.com/quote/FB/history?period1=1337324400&period2=1572940800&interval=1d&filter=history&frequency=1d"},
		{Name: "tesla", Ticker: "TSLA", URL: "https://finance.yahoo.com/quote/TSLA/history?period1=1277794800&period2=1573545600&interval=1d&filter=history&frequency=1d"},
		{Name: "paypal", Ticker: "PYPL", URL: "https://finance.yahoo.com/quote/PYPL/history?period1=1436166000&period2=1573545600&interval=1d&filter=history&frequency=1d"},
	}
}

// Load reads an optional .env file and the YAML config, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults(time.Now())
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := []struct {
		key string
		dst *string
	}{
		{"DB_DRIVER", &c.Database.Driver},
		{"DB_HOST", &c.Database.Host},
		{"DB_PORT", &c.Database.Port},
		{"DB_USER", &c.Database.User},
		{"DB_PASSWORD", &c.Database.Password},
		{"DB_NAME", &c.Database.Name},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"HTTPS_PROXY", &c.Fetch.Proxy},
		{"MODEL_TIMEZONE", &c.Model.Timezone},
		{"REFRESH_CRON", &c.Schedule.RefreshCron},
		{"SERVER_ADDR", &c.Server.Addr},
		{"REPORT_DIR", &c.Report.Dir},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FETCH_TIMEOUT: %w", err)
		}
		c.Fetch.Timeout = d
	}
	if v := os.Getenv("MODEL_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MODEL_SEED: %w", err)
		}
		c.Model.Seed = &seed
	}
	if v := os.Getenv("MODEL_TEST_RATIO"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MODEL_TEST_RATIO: %w", err)
		}
		c.Model.TestRatio = r
	}
	return nil
}

func (c *Config) applyDefaults(now time.Time) {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "3306"
	}
	if c.Database.Name == "" {
		c.Database.Name = "stock"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock.db"
	}
	if len(c.Symbols) == 0 {
		c.Symbols = DefaultSymbols()
	}
	for i := range c.Symbols {
		s := &c.Symbols[i]
		if s.URL == "" && s.Ticker != "" {
			s.URL = collector.HistoryURL(s.Ticker, now.AddDate(-historyYears, 0, 0), now)
		}
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	// an explicit trim is kept even when its marker falls back to the default
	def := collector.DefaultExtractor()
	if c.Fetch.StartMarker == "" {
		c.Fetch.StartMarker = def.StartMarker
		if c.Fetch.SkipPrefix == 0 {
			c.Fetch.SkipPrefix = def.SkipPrefix
		}
	}
	if c.Fetch.EndMarker == "" {
		c.Fetch.EndMarker = def.EndMarker
		if c.Fetch.TrimSuffix == 0 {
			c.Fetch.TrimSuffix = def.TrimSuffix
		}
	}
	if c.Model.TestRatio == 0 {
		c.Model.TestRatio = 0.20
	}
	if c.Model.Timezone == "" {
		c.Model.Timezone = "Local"
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 30 22 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// Location resolves the configured timezone used for date <-> timestamp conversion.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Model.Timezone)
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required for sqlite")
		}
	case "mysql":
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required for mysql")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.database is required for mysql")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be sqlite, mysql or memory, got %q", c.Database.Driver)
	}

	seen := make(map[string]bool, len(c.Symbols))
	for i, s := range c.Symbols {
		if s.Name == "" {
			return fmt.Errorf("symbols[%d].name is required", i)
		}
		if err := store.ValidateTableName(s.Name); err != nil {
			return fmt.Errorf("symbols[%d].name: %w", i, err)
		}
		if s.Name != strings.ToLower(s.Name) {
			return fmt.Errorf("symbols[%d].name %q must be lowercase", i, s.Name)
		}
		if s.URL == "" {
			return fmt.Errorf("symbols[%d] needs a url or a ticker", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("symbol %q listed twice", s.Name)
		}
		seen[s.Name] = true
	}

	if c.Model.TestRatio <= 0 || c.Model.TestRatio >= 1 {
		return fmt.Errorf("model.test_ratio must be in (0, 1)")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("model.timezone: %w", err)
	}
	if c.Fetch.SkipPrefix < 0 || c.Fetch.TrimSuffix < 0 {
		return fmt.Errorf("fetch.skip_prefix and fetch.trim_suffix must not be negative")
	}
	return nil
}
