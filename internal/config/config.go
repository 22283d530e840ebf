package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the TUI and the fetch command look for a config file.
const DefaultPath = "configs/stockhelper.yaml"

var ErrInvalid = errors.New("invalid config")

// Config holds configuration for the whole application.
type Config struct {
	Naver   NaverConfig   `yaml:"naver"`
	News    NewsConfig    `yaml:"news"`
	Quote   QuoteConfig   `yaml:"quote"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	Display DisplayConfig `yaml:"display"`
}

// NaverConfig holds the endpoints and credentials of the price page and the search API.
type NaverConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	NewsURL      string `yaml:"news_url"`
	PriceURL     string `yaml:"price_url"`
	TimeoutMs    int    `yaml:"timeout_ms"`
}

type NewsConfig struct {
	// PageSize is the number of results requested per search call.
	PageSize int `yaml:"page_size"`
	// Count is how many headlines a search collects.
	Count int `yaml:"count"`
}

type QuoteConfig struct {
	// UpdateInterval is the delay between price polls, in seconds.
	UpdateInterval int `yaml:"update_interval"`
	// TapeSize is the number of recent quotes kept for the chart.
	TapeSize int `yaml:"tape_size"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

type DisplayConfig struct {
	Currency string `yaml:"currency"`
}

// Default returns a Config with reasonable defaults.
func Default() Config {
	return Config{
		Naver: NaverConfig{
			NewsURL:   "https://openapi.naver.com/v1/search/news.json",
			PriceURL:  "https://finance.naver.com/item/main.nhn",
			TimeoutMs: 10000,
		},
		News: NewsConfig{
			PageSize: 100,
			Count:    20,
		},
		Quote: QuoteConfig{
			UpdateInterval: 5,
			TapeSize:       600,
		},
		Export: ExportConfig{Path: "stock_news.csv"},
		Log: LogConfig{
			Path:  "log.txt",
			Level: "info",
		},
		Display: DisplayConfig{Currency: "원"},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

// LoadOrDefault behaves like Load but treats a missing file as empty.
func LoadOrDefault(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return parse(nil)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NAVER_CLIENT_ID"); v != "" {
		cfg.Naver.ClientID = v
	}
	if v := os.Getenv("NAVER_CLIENT_SECRET"); v != "" {
		cfg.Naver.ClientSecret = v
	}
	if v := os.Getenv("STOCKHELPER_UPDATE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid STOCKHELPER_UPDATE_INTERVAL: %q", v)
		}
		cfg.Quote.UpdateInterval = n
	}
	if v := os.Getenv("STOCKHELPER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

// Validate checks the values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Quote.UpdateInterval < 1 {
		return fmt.Errorf("%w: update interval must be >= 1 second", ErrInvalid)
	}
	if c.News.PageSize < 1 || c.News.PageSize > 100 {
		return fmt.Errorf("%w: page size must be between 1 and 100", ErrInvalid)
	}
	if c.News.Count < 0 {
		return fmt.Errorf("%w: news count must not be negative", ErrInvalid)
	}
	for _, u := range []string{c.Naver.NewsURL, c.Naver.PriceURL} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return fmt.Errorf("%w: invalid URL %q", ErrInvalid, u)
		}
	}
	if c.Export.Path == "" {
		return fmt.Errorf("%w: export path is empty", ErrInvalid)
	}
	return nil
}

// HasCredentials reports whether the search API credentials are set.
func (c *Config) HasCredentials() bool {
	return c.Naver.ClientID != "" && c.Naver.ClientSecret != ""
}

// Timeout returns the HTTP timeout for both endpoints.
func (c *Config) Timeout() time.Duration {
	if c.Naver.TimeoutMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Naver.TimeoutMs) * time.Millisecond
}

// Interval returns the price poll interval.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Quote.UpdateInterval) * time.Second
}
