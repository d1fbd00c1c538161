// Package boot provides runtime configuration and dependency wiring shared
// by the bot and the CLI.
package boot

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/memohai/pixeltools/internal/config"
	"github.com/memohai/pixeltools/internal/resolver"
)

// RuntimeConfig holds parsed runtime settings derived from config.Config.
// Values may be overridden by environment variables (HTTP_ADDR, JWT_SECRET).
type RuntimeConfig struct {
	ServerEnabled bool
	ServerAddr    string
	JwtSecret     string
	HTTPTimeout   time.Duration
	MaxRedirects  int
	UserAgent     string
	MaxPageBytes  int64
	EnableTenor   bool
	EnableGiphy   bool
	QueryOverride bool
	Policy        resolver.Config
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	if cfg.HTTP.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http timeout_seconds: %d", cfg.HTTP.TimeoutSeconds)
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = config.DefaultTimeoutSeconds * time.Second
	}
	maxRedirects := cfg.HTTP.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = config.DefaultMaxRedirects
	}
	userAgent := strings.TrimSpace(cfg.HTTP.UserAgent)
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	maxPage := cfg.Unfurl.MaxPageBytes
	if maxPage <= 0 {
		maxPage = config.DefaultMaxPageBytes
	}

	ret := &RuntimeConfig{
		ServerEnabled: cfg.Server.Enabled,
		ServerAddr:    cfg.Server.Addr,
		JwtSecret:     strings.TrimSpace(cfg.Server.JWTSecret),
		HTTPTimeout:   timeout,
		MaxRedirects:  maxRedirects,
		UserAgent:     userAgent,
		MaxPageBytes:  maxPage,
		EnableTenor:   cfg.Unfurl.Tenor,
		EnableGiphy:   cfg.Unfurl.Giphy,
		QueryOverride: cfg.Resolver.QueryOverride,
		Policy:        resolver.ConfigFromSettings(cfg.Resolver),
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	if value := strings.TrimSpace(os.Getenv("JWT_SECRET")); value != "" {
		ret.JwtSecret = value
	}
	if ret.ServerAddr == "" {
		ret.ServerAddr = config.DefaultHTTPAddr
	}
	if ret.ServerEnabled && ret.JwtSecret == "" {
		return nil, fmt.Errorf("server.jwt_secret is required when the server is enabled")
	}
	return ret, nil
}

// FetchOptions returns the per-request limits for outbound fetches.
func (rc *RuntimeConfig) FetchOptions() resolver.FetchOptions {
	return resolver.FetchOptions{Timeout: rc.HTTPTimeout, UserAgent: rc.UserAgent}
}

// Strategies returns the enabled unfurl strategies in match order.
func (rc *RuntimeConfig) Strategies() []resolver.UnfurlStrategy {
	var out []resolver.UnfurlStrategy
	if rc.EnableTenor {
		out = append(out, resolver.Tenor())
	}
	if rc.EnableGiphy {
		out = append(out, resolver.Giphy())
	}
	return out
}
