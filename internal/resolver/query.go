package resolver

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kenshaw/emoji"

	"github.com/memohai/pixeltools/internal/channel"
)

// Query is the classified form of the free text after a command.
type Query interface {
	isQuery()
}

// RawText is text that matched no member or emoji.
type RawText struct {
	Text string
}

// MemberQuery names a guild member.
type MemberQuery struct {
	Member channel.Member
}

// EmojiQuery names a custom or Unicode emoji.
type EmojiQuery struct {
	Emoji channel.Emoji
}

func (RawText) isQuery()     {}
func (MemberQuery) isQuery() {}
func (EmojiQuery) isQuery()  {}

var customEmojiPattern = regexp.MustCompile(`^<(a)?:([a-zA-Z0-9_]{2,32}):([0-9]{17,25})>$`)

// ParseCustomEmoji parses `<:name:id>` and `<a:name:id>` markup.
func ParseCustomEmoji(text string) (channel.Emoji, bool) {
	m := customEmojiPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return channel.Emoji{}, false
	}
	return channel.Emoji{ID: m[3], Name: m[2], Animated: m[1] == "a"}, true
}

// ParseUnicodeEmoji reports whether text is exactly one Unicode emoji.
func ParseUnicodeEmoji(text string) (channel.Emoji, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return channel.Emoji{}, false
	}
	e := emoji.FromCode(text)
	if e == nil {
		e = emoji.FromCode(strings.TrimSuffix(text, "\ufe0f"))
	}
	if e == nil {
		return channel.Emoji{}, false
	}
	return channel.Emoji{Name: e.Description, Unicode: text}, true
}

// Classifier turns command text into a Query. Classification never fails:
// lookup errors are logged and the text falls through as RawText.
type Classifier struct {
	directory channel.Directory
	logger    *slog.Logger
}

// NewClassifier creates a classifier. A nil directory limits classification
// to emoji markup and Unicode emoji.
func NewClassifier(log *slog.Logger, directory channel.Directory) *Classifier {
	if log == nil {
		log = slog.Default()
	}
	return &Classifier{
		directory: directory,
		logger:    log.With(slog.String("component", "classifier")),
	}
}

// Classify tries member, then custom emoji, then Unicode emoji.
func (c *Classifier) Classify(ctx context.Context, guildID, channelID, text string) Query {
	text = strings.TrimSpace(text)
	if text == "" {
		return RawText{}
	}
	if c.directory != nil {
		member, ok, err := c.directory.LookupMember(ctx, guildID, channelID, text)
		if err != nil {
			c.logger.Debug("member lookup failed", slog.String("query", text), slog.Any("error", err))
		} else if ok {
			return MemberQuery{Member: member}
		}
		found, ok, err := c.directory.LookupEmoji(ctx, guildID, channelID, text)
		if err != nil {
			c.logger.Debug("emoji lookup failed", slog.String("query", text), slog.Any("error", err))
		} else if ok {
			return EmojiQuery{Emoji: found}
		}
	}
	if parsed, ok := ParseCustomEmoji(text); ok {
		return EmojiQuery{Emoji: parsed}
	}
	if parsed, ok := ParseUnicodeEmoji(text); ok {
		return EmojiQuery{Emoji: parsed}
	}
	return RawText{Text: text}
}
