package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load reads config.toml (optional) plus flags and environment, and returns
// the merged Config
func Load(args []string) (*Config, error) {
	v := viper.New()

	flags := pflag.NewFlagSet("previewcli", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "path to config.toml")
	flags.Float64("volume", 0, "initial volume (0.0 - 1.0)")
	flags.String("log-file", "", "write logs to this file")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	if err := v.BindPFlag("player.volume", flags.Lookup("volume")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("log.file", flags.Lookup("log-file")); err != nil {
		return nil, err
	}

	// Set config file properties
	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath("$HOME/.config/previewcli/")
		v.AddConfigPath("$HOME/.config/")
		v.AddConfigPath(".")
	}

	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("PREVIEWCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file; running without one is fine
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || *configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = firstEnv("GEMINI_API_KEY", "API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("catalog.relay_prefix", defaults.Catalog.RelayPrefix)
	v.SetDefault("catalog.feed_url", defaults.Catalog.FeedURL)
	v.SetDefault("catalog.lookup_url", defaults.Catalog.LookupURL)
	v.SetDefault("catalog.search_url", defaults.Catalog.SearchURL)
	v.SetDefault("catalog.search_limit", defaults.Catalog.SearchLimit)
	v.SetDefault("catalog.http_timeout", defaults.Catalog.HTTPTimeout)
	v.SetDefault("catalog.rate_limit", defaults.Catalog.RateLimit)
	v.SetDefault("catalog.user_agent", defaults.Catalog.UserAgent)
	v.SetDefault("search.debounce_ms", defaults.Search.DebounceMS)
	v.SetDefault("player.volume", defaults.Player.Volume)
	v.SetDefault("ai.api_key", defaults.AI.APIKey)
	v.SetDefault("ai.model", defaults.AI.Model)
	v.SetDefault("ui.progress_bar_width", defaults.UI.ProgressBarWidth)
	v.SetDefault("ui.cover_art", defaults.UI.CoverArt)
	v.SetDefault("ui.device_monitor", defaults.UI.DeviceMonitor)
	v.SetDefault("log.file", defaults.Log.File)
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}
