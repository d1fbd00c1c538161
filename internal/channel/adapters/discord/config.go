package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/memohai/pixeltools/internal/config"
)

// Config is the validated Discord section of the application config.
type Config struct {
	BotToken string
	Prefix   string
	Cooldown time.Duration
}

// ParseConfig validates the [discord] section.
func ParseConfig(raw config.DiscordConfig) (Config, error) {
	token := strings.TrimSpace(raw.BotToken)
	if token == "" {
		return Config{}, fmt.Errorf("discord bot_token is required (or set %s)", config.TokenEnv)
	}
	prefix := strings.ToLower(strings.TrimSpace(raw.Prefix))
	if prefix == "" {
		prefix = config.DefaultPrefix
	}
	cooldown := time.Duration(raw.CommandCooldownSeconds) * time.Second
	if cooldown < 0 {
		cooldown = 0
	}
	return Config{
		BotToken: token,
		Prefix:   prefix,
		Cooldown: cooldown,
	}, nil
}

func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, "Bot ") {
		return token
	}
	return "Bot " + token
}
