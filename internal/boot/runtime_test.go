package boot

import (
	"testing"
	"time"

	"github.com/memohai/pixeltools/internal/config"
	"github.com/memohai/pixeltools/internal/logger"
)

func TestProvideRuntimeConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	rc, err := ProvideRuntimeConfig(config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.HTTPTimeout != 10*time.Second || rc.MaxRedirects != 5 {
		t.Fatalf("unexpected http settings: %+v", rc)
	}
	if rc.ServerAddr != config.DefaultHTTPAddr {
		t.Fatalf("addr = %q", rc.ServerAddr)
	}
	if got := len(rc.Strategies()); got != 2 {
		t.Fatalf("strategies = %d, want 2", got)
	}
	if !rc.Policy.AllowAnimated || rc.Policy.MaxSizeBytes != config.DefaultMaxSizeBytes {
		t.Fatalf("unexpected policy: %+v", rc.Policy)
	}
}

func TestProvideRuntimeConfigOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9999")
	cfg := config.Default()
	cfg.Unfurl.Giphy = false
	cfg.HTTP.TimeoutSeconds = 3
	cfg.Resolver.QueryOverride = true

	rc, err := ProvideRuntimeConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.ServerAddr != "127.0.0.1:9999" {
		t.Fatalf("addr = %q", rc.ServerAddr)
	}
	if rc.HTTPTimeout != 3*time.Second {
		t.Fatalf("timeout = %s", rc.HTTPTimeout)
	}
	strategies := rc.Strategies()
	if len(strategies) != 1 || strategies[0].Name() != "tenor" {
		t.Fatalf("unexpected strategies: %v", strategies)
	}

	log := logger.Discard()
	client := ProvideHTTPClient(rc)
	if client.Timeout != 3*time.Second || client.CheckRedirect == nil {
		t.Fatalf("unexpected client: %+v", client)
	}
	unfurler := ProvideUnfurler(log, client, rc)
	if names := unfurler.Strategies(); len(names) != 1 || names[0] != "tenor" {
		t.Fatalf("unexpected unfurler strategies: %v", names)
	}
	if ProvideResolver(log, nil, ProvideSanitizer(log, client, unfurler, rc), rc) == nil {
		t.Fatalf("expected a resolver")
	}
}

func TestProvideRuntimeConfigRejectsNegativeTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.TimeoutSeconds = -1
	if _, err := ProvideRuntimeConfig(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestProvideRuntimeConfigRequiresSecretWhenServerEnabled(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg := config.Default()
	if cfg.Server.Enabled {
		t.Fatalf("server should be disabled by default")
	}
	cfg.Server.Enabled = true
	if _, err := ProvideRuntimeConfig(cfg); err == nil {
		t.Fatalf("expected error for an enabled server without jwt_secret")
	}

	cfg.Server.JWTSecret = "from-file"
	rc, err := ProvideRuntimeConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.JwtSecret != "from-file" {
		t.Fatalf("secret = %q", rc.JwtSecret)
	}
}

func TestProvideRuntimeConfigSecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	cfg := config.Default()
	cfg.Server.Enabled = true
	rc, err := ProvideRuntimeConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.JwtSecret != "from-env" {
		t.Fatalf("secret = %q", rc.JwtSecret)
	}
}
