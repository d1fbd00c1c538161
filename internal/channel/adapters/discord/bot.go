package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/pixeltools/internal/channel"
	"github.com/memohai/pixeltools/internal/imaging"
	"github.com/memohai/pixeltools/internal/media"
	"github.com/memohai/pixeltools/internal/resolver"
)

// ImageResolver is the resolution pipeline used by the image commands.
type ImageResolver interface {
	Resolve(ctx context.Context, cfg resolver.Config, msg channel.Message, query string) (media.ResolvedImage, error)
}

type commandFunc func(ctx context.Context, m *discordgo.Message, args string) error

type command struct {
	name        string
	usage       string
	description string
	run         commandFunc
}

// Bot dispatches prefixed commands. Each image command runs under a context
// that is cancelled when the invoking message is deleted.
type Bot struct {
	session   messageSession
	resolver  ImageResolver
	policy    resolver.Config
	prefix    string
	cooldowns *cooldowns
	commands  []command
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

func NewBot(log *slog.Logger, session messageSession, res ImageResolver, cfg Config, policy resolver.Config) *Bot {
	if log == nil {
		log = slog.Default()
	}
	prefix := strings.ToLower(strings.TrimSpace(cfg.Prefix))
	if prefix == "" {
		prefix = "pt"
	}
	b := &Bot{
		session:   session,
		resolver:  res,
		policy:    policy,
		prefix:    prefix,
		cooldowns: newCooldowns(cfg.Cooldown),
		logger:    log.With(slog.String("adapter", "discord")),
		now:       time.Now,
		inflight:  make(map[string]context.CancelFunc),
	}
	b.commands = []command{
		{name: "ping", usage: "ping", description: "Check the bot's response latency.", run: b.ping},
		{name: "help", usage: "help", description: "Show this list of commands.", run: b.help},
		{name: "image", usage: "image [user|emoji|url]", description: "Post the resolved image unchanged.", run: b.image},
		{name: "invert", usage: "invert [user|emoji|url]", description: "Post the resolved image with its colors inverted.", run: b.invert},
	}
	return b
}

// parseCommand splits "pt invert foo" into ("invert", "foo"). The prefix is
// case-insensitive and may be followed directly by the command name.
func (b *Bot) parseCommand(content string) (string, string, bool) {
	content = strings.TrimSpace(content)
	if len(content) < len(b.prefix) || !strings.EqualFold(content[:len(b.prefix)], b.prefix) {
		return "", "", false
	}
	rest := strings.TrimSpace(content[len(b.prefix):])
	if rest == "" {
		return "", "", false
	}
	name, args, _ := strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(args), true
}

func (b *Bot) lookup(name string) (command, bool) {
	for _, c := range b.commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// HandleMessage runs the command in m, if any. Direct messages and bots are
// ignored.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	name, args, ok := b.parseCommand(m.Content)
	if !ok {
		return
	}
	cmd, ok := b.lookup(name)
	if !ok {
		return
	}
	if !b.cooldowns.Allow(m.Author.ID, b.now()) {
		b.logger.Debug("command on cooldown", slog.String("user_id", m.Author.ID), slog.String("command", name))
		return
	}

	ctx, done := b.track(ctx, m.ID)
	defer done()

	b.logger.Info("command received",
		slog.String("command", name),
		slog.String("guild_id", m.GuildID),
		slog.String("channel_id", m.ChannelID),
		slog.String("user_id", m.Author.ID),
	)
	if err := cmd.run(ctx, m, args); err != nil {
		if errors.Is(err, context.Canceled) {
			b.logger.Info("command cancelled", slog.String("command", name), slog.String("message_id", m.ID))
			return
		}
		b.logger.Error("command failed", slog.String("command", name), slog.Any("error", err))
	}
}

// HandleDelete cancels the in-flight command started by messageID.
func (b *Bot) HandleDelete(messageID string) {
	b.mu.Lock()
	cancel, ok := b.inflight[messageID]
	delete(b.inflight, messageID)
	b.mu.Unlock()
	if ok {
		cancel()
	}
}

// Close cancels every in-flight command.
func (b *Bot) Close() {
	b.mu.Lock()
	pending := b.inflight
	b.inflight = make(map[string]context.CancelFunc)
	b.mu.Unlock()
	for _, cancel := range pending {
		cancel()
	}
}

func (b *Bot) track(ctx context.Context, messageID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.inflight[messageID] = cancel
	b.mu.Unlock()
	return ctx, func() {
		b.mu.Lock()
		delete(b.inflight, messageID)
		b.mu.Unlock()
		cancel()
	}
}

// Inflight returns the number of commands still running.
func (b *Bot) Inflight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inflight)
}

func (b *Bot) ping(_ context.Context, m *discordgo.Message, _ string) error {
	start := b.now()
	sent, err := sendReplyText(b.session, m, "Please wait...")
	if err != nil {
		return err
	}
	latency := b.now().Sub(start).Milliseconds()
	if _, err := b.session.ChannelMessageEdit(sent.ChannelID, sent.ID, fmt.Sprintf("Pong! Latency: %d ms", latency)); err != nil {
		return fmt.Errorf("discord edit ping reply: %w", err)
	}
	return nil
}

func (b *Bot) help(_ context.Context, m *discordgo.Message, _ string) error {
	var sb strings.Builder
	sb.WriteString("**Commands**\n")
	for _, c := range b.commands {
		fmt.Fprintf(&sb, "`%s %s` %s\n", b.prefix, c.usage, c.description)
	}
	sb.WriteString("\nWithout an argument, images are taken from your attachment, the message you reply to, or your avatar.")
	_, err := sendReplyText(b.session, m, sb.String())
	return err
}

func (b *Bot) image(ctx context.Context, m *discordgo.Message, args string) error {
	return b.resolveAndSend(ctx, m, args, "image", nil)
}

func (b *Bot) invert(ctx context.Context, m *discordgo.Message, args string) error {
	return b.resolveAndSend(ctx, m, args, "inverted", func(img media.ResolvedImage) (media.ResolvedImage, error) {
		return imaging.Invert(img, b.policy.MaxWidth, b.policy.MaxHeight)
	})
}

func (b *Bot) resolveAndSend(ctx context.Context, m *discordgo.Message, args, name string, transform func(media.ResolvedImage) (media.ResolvedImage, error)) error {
	img, err := b.resolver.Resolve(ctx, b.policy, convertMessage(m), args)
	if err == nil && transform != nil {
		img, err = transform(img)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Info("image not resolved",
			slog.String("message_id", m.ID),
			slog.String("kind", media.KindOf(err).String()),
			slog.Any("error", err),
		)
		_, sendErr := sendReplyText(b.session, m, userMessage(err))
		return sendErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return sendReplyImage(b.session, m, img, name)
}

// userMessage renders err for chat. Unclassified failures get a generic text.
func userMessage(err error) string {
	if media.KindOf(err) == media.KindUnknown {
		return "Something went wrong while processing the image."
	}
	return media.Message(err)
}
