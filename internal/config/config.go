// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = "127.0.0.1:8080"
	DefaultPrefix          = "pt"
	DefaultCooldownSeconds = 3
	DefaultMaxWidth        = 2048
	DefaultMaxHeight       = DefaultMaxWidth
	DefaultMaxSizeBytes    = 6 * 1024 * 1024
	DefaultTimeoutSeconds  = 10
	DefaultMaxRedirects    = 5
	DefaultMaxPageBytes    = 5 * 1024 * 1024
	DefaultUserAgent       = "Mozilla/5.0 (compatible; pixeltools/1.0; +https://github.com/memohai/pixeltools)"
)

// TokenEnv overrides discord.bot_token when set.
const TokenEnv = "DISCORD_TOKEN"

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Discord  DiscordConfig  `toml:"discord"`
	Resolver ResolverConfig `toml:"resolver"`
	HTTP     HTTPConfig     `toml:"http"`
	Unfurl   UnfurlConfig   `toml:"unfurl"`
	Server   ServerConfig   `toml:"server"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DiscordConfig holds the bot token, command prefix and per-user cooldown.
type DiscordConfig struct {
	BotToken               string `toml:"bot_token"`
	Prefix                 string `toml:"prefix"`
	CommandCooldownSeconds int    `toml:"command_cooldown_seconds"`
}

// ResolverConfig holds the media resolution policy.
type ResolverConfig struct {
	AllowAnimated          bool  `toml:"allow_animated"`
	AllowAvatarFallback    bool  `toml:"allow_avatar_fallback"`
	FallbackToAvatarOnMiss bool  `toml:"fallback_to_avatar_on_miss"`
	RunQueryClassification bool  `toml:"run_query_classification"`
	QueryOverride          bool  `toml:"query_override"`
	MaxWidth               int   `toml:"max_width"`
	MaxHeight              int   `toml:"max_height"`
	MaxSizeBytes           int64 `toml:"max_size_bytes"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
	MaxRedirects   int    `toml:"max_redirects"`
}

// UnfurlConfig toggles share-page unfurl strategies and bounds the page size.
type UnfurlConfig struct {
	MaxPageBytes int64 `toml:"max_page_bytes"`
	Tenor        bool  `toml:"tenor"`
	Giphy        bool  `toml:"giphy"`
}

// ServerConfig holds the health/debug HTTP server settings. Everything but
// /ping and /health requires a token signed with JWTSecret.
type ServerConfig struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	JWTSecret string `toml:"jwt_secret"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Discord: DiscordConfig{
			Prefix:                 DefaultPrefix,
			CommandCooldownSeconds: DefaultCooldownSeconds,
		},
		Resolver: ResolverConfig{
			AllowAnimated:          true,
			AllowAvatarFallback:    true,
			FallbackToAvatarOnMiss: true,
			RunQueryClassification: true,
			MaxWidth:               DefaultMaxWidth,
			MaxHeight:              DefaultMaxHeight,
			MaxSizeBytes:           DefaultMaxSizeBytes,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
			UserAgent:      DefaultUserAgent,
			MaxRedirects:   DefaultMaxRedirects,
		},
		Unfurl: UnfurlConfig{
			MaxPageBytes: DefaultMaxPageBytes,
			Tenor:        true,
			Giphy:        true,
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    DefaultHTTPAddr,
		},
	}
}

// Load reads and parses the TOML config file at path and applies default values for missing fields.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		cfg.Discord.BotToken = token
	}
	return cfg, nil
}
