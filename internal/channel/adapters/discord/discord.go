// Package discord connects the resolver to Discord through discordgo.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a gateway session with the intents the commands need.
// Message content and member search are privileged and must be enabled for
// the application.
func NewSession(cfg Config) (*discordgo.Session, error) {
	session, err := discordgo.New(normalizeToken(cfg.BotToken))
	if err != nil {
		return nil, fmt.Errorf("discord create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentMessageContent |
		discordgo.IntentGuildMembers
	return session, nil
}

// Adapter owns the gateway connection and routes its events to the bot.
type Adapter struct {
	logger  *slog.Logger
	session *discordgo.Session
	bot     *Bot

	mu       sync.Mutex
	removers []func()
	cancel   context.CancelFunc
}

func NewAdapter(log *slog.Logger, session *discordgo.Session, bot *Bot) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		logger:  log.With(slog.String("adapter", "discord")),
		session: session,
		bot:     bot,
	}
}

// Start registers the event handlers and opens the gateway. Commands keep
// running after ctx is done; Stop cancels them.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	a.removers = append(a.removers,
		a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			if r.User != nil {
				a.logger.Info("logged in", slog.String("user", r.User.String()), slog.String("user_id", r.User.ID))
			}
		}),
		// discordgo runs each handler on its own goroutine.
		a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
			a.bot.HandleMessage(runCtx, m.Message)
		}),
		a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageDelete) {
			if m.Message != nil {
				a.bot.HandleDelete(m.ID)
			}
		}),
	)

	if err := a.session.Open(); err != nil {
		a.releaseLocked()
		return fmt.Errorf("discord open connection: %w", err)
	}
	a.logger.Info("start")
	return nil
}

// Stop cancels in-flight commands and closes the gateway.
func (a *Adapter) Stop(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logger.Info("stop")
	a.releaseLocked()
	return a.session.Close()
}

func (a *Adapter) releaseLocked() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.bot.Close()
	for _, remove := range a.removers {
		remove()
	}
	a.removers = nil
}
