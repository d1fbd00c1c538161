package discord

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/pixeltools/internal/channel"
	"github.com/memohai/pixeltools/internal/resolver"
)

var (
	mentionPattern   = regexp.MustCompile(`^<@!?([0-9]{17,25})>$`)
	snowflakePattern = regexp.MustCompile(`^[0-9]{17,25}$`)
)

const memberSearchLimit = 10

type directorySession interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembersSearch(guildID, query string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	GuildEmojis(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Emoji, error)
}

// Directory resolves member and emoji references against the Discord API.
type Directory struct {
	session directorySession
	logger  *slog.Logger
}

var _ channel.Directory = (*Directory)(nil)

func NewDirectory(log *slog.Logger, session directorySession) *Directory {
	if log == nil {
		log = slog.Default()
	}
	return &Directory{
		session: session,
		logger:  log.With(slog.String("adapter", "discord"), slog.String("component", "directory")),
	}
}

// LookupMember accepts a mention, a bare user id, or a username, global
// name or nickname matched case-insensitively. Lookups outside a guild
// always miss.
func (d *Directory) LookupMember(ctx context.Context, guildID, _ string, query string) (channel.Member, bool, error) {
	query = strings.TrimSpace(query)
	if guildID == "" || query == "" {
		return channel.Member{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return channel.Member{}, false, err
	}

	if id := userIDFromQuery(query); id != "" {
		m, err := d.session.GuildMember(guildID, id, discordgo.WithContext(ctx))
		if err != nil {
			if isNotFound(err) {
				return channel.Member{}, false, nil
			}
			return channel.Member{}, false, err
		}
		return convertMember(guildID, m), true, nil
	}

	name := strings.TrimPrefix(query, "@")
	members, err := d.session.GuildMembersSearch(guildID, name, memberSearchLimit, discordgo.WithContext(ctx))
	if err != nil {
		return channel.Member{}, false, err
	}
	for _, m := range members {
		if memberMatches(m, name) {
			return convertMember(guildID, m), true, nil
		}
	}
	return channel.Member{}, false, nil
}

// LookupEmoji accepts `<:name:id>` markup, `:name:` or a bare name, and
// only returns emoji that belong to the guild.
func (d *Directory) LookupEmoji(ctx context.Context, guildID, _ string, query string) (channel.Emoji, bool, error) {
	query = strings.TrimSpace(query)
	if guildID == "" || query == "" {
		return channel.Emoji{}, false, nil
	}
	if err := ctx.Err(); err != nil {
		return channel.Emoji{}, false, err
	}

	var wantID, wantName string
	if parsed, ok := resolver.ParseCustomEmoji(query); ok {
		wantID = parsed.ID
	} else {
		wantName = strings.Trim(query, ":")
		if wantName == "" || strings.ContainsAny(wantName, " \t") {
			return channel.Emoji{}, false, nil
		}
	}

	emojis, err := d.session.GuildEmojis(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return channel.Emoji{}, false, err
	}
	for _, e := range emojis {
		if e == nil {
			continue
		}
		if (wantID != "" && e.ID == wantID) || (wantName != "" && strings.EqualFold(e.Name, wantName)) {
			return convertEmoji(e), true, nil
		}
	}
	return channel.Emoji{}, false, nil
}

func userIDFromQuery(query string) string {
	if m := mentionPattern.FindStringSubmatch(query); m != nil {
		return m[1]
	}
	if snowflakePattern.MatchString(query) {
		return query
	}
	return ""
}

func memberMatches(m *discordgo.Member, name string) bool {
	if m == nil || m.User == nil {
		return false
	}
	return strings.EqualFold(m.User.Username, name) ||
		strings.EqualFold(m.User.GlobalName, name) ||
		strings.EqualFold(m.Nick, name)
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
