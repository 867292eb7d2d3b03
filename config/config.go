package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Search  SearchConfig  `mapstructure:"search"`
	Player  PlayerConfig  `mapstructure:"player"`
	AI      AIConfig      `mapstructure:"ai"`
	UI      UIConfig      `mapstructure:"ui"`
	Log     LogConfig     `mapstructure:"log"`
}

// CatalogConfig contains the public catalog endpoints and HTTP client settings
type CatalogConfig struct {
	RelayPrefix string  `mapstructure:"relay_prefix"`
	FeedURL     string  `mapstructure:"feed_url"`
	LookupURL   string  `mapstructure:"lookup_url"`
	SearchURL   string  `mapstructure:"search_url"`
	SearchLimit int     `mapstructure:"search_limit"`
	HTTPTimeout int     `mapstructure:"http_timeout"` // in seconds
	RateLimit   float64 `mapstructure:"rate_limit"`   // requests per second
	UserAgent   string  `mapstructure:"user_agent"`
}

// SearchConfig contains search-as-you-type settings
type SearchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// PlayerConfig contains playback settings
type PlayerConfig struct {
	Volume float64 `mapstructure:"volume"` // 0.0 - 1.0
}

// AIConfig contains settings for the full-song link lookup
type AIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// UIConfig contains user interface settings
type UIConfig struct {
	ProgressBarWidth int  `mapstructure:"progress_bar_width"`
	CoverArt         bool `mapstructure:"cover_art"`
	DeviceMonitor    bool `mapstructure:"device_monitor"`
}

// LogConfig contains log output settings
type LogConfig struct {
	File string `mapstructure:"file"`
}

// GetHTTPTimeout returns the HTTP timeout as a time.Duration
func (c *CatalogConfig) GetHTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// GetDebounce returns the search debounce delay as a time.Duration
func (s *SearchConfig) GetDebounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Validate checks value ranges that viper cannot express
func (c *Config) Validate() error {
	if c.Catalog.FeedURL == "" || c.Catalog.LookupURL == "" || c.Catalog.SearchURL == "" {
		return fmt.Errorf("catalog endpoints must not be empty")
	}
	if c.Catalog.HTTPTimeout <= 0 {
		return fmt.Errorf("catalog.http_timeout must be positive, got %d", c.Catalog.HTTPTimeout)
	}
	if c.Search.DebounceMS <= 0 {
		return fmt.Errorf("search.debounce_ms must be positive, got %d", c.Search.DebounceMS)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return fmt.Errorf("player.volume must be within 0..1, got %v", c.Player.Volume)
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			RelayPrefix: "https://corsproxy.io/?",
			FeedURL:     "https://rss.applemarketingtools.com/api/v2/us/music/most-played/50/albums.json",
			LookupURL:   "https://itunes.apple.com/lookup",
			SearchURL:   "https://itunes.apple.com/search",
			SearchLimit: 50,
			HTTPTimeout: 15,
			RateLimit:   5,
			UserAgent:   "previewcli",
		},
		Search: SearchConfig{
			DebounceMS: 500,
		},
		Player: PlayerConfig{
			Volume: 1,
		},
		AI: AIConfig{
			Model: "gemini-2.5-flash",
		},
		UI: UIConfig{
			ProgressBarWidth: 30,
			CoverArt:         true,
			DeviceMonitor:    true,
		},
		Log: LogConfig{
			File: "previewcli.log",
		},
	}
}
