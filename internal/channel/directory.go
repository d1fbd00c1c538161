package channel

import (
	"context"
	"strings"
)

// Member is a user in the context of a guild.
type Member struct {
	GuildID string `json:"guild_id,omitempty"`
	User    User   `json:"user"`
	Nick    string `json:"nick,omitempty"`
}

// DisplayName returns the nickname when set, otherwise the username.
func (m Member) DisplayName() string {
	if strings.TrimSpace(m.Nick) != "" {
		return m.Nick
	}
	return m.User.Username
}

// Emoji is either a platform custom emoji (ID set) or a Unicode emoji.
type Emoji struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Animated bool   `json:"animated,omitempty"`
	Unicode  string `json:"unicode,omitempty"`
}

// IsCustom reports whether the emoji is a platform-hosted custom emoji.
func (e Emoji) IsCustom() bool {
	return strings.TrimSpace(e.ID) != ""
}

// Directory resolves text fragments to members or custom emoji within a
// guild/channel scope. Lookups report not-found with ok=false, not an error.
type Directory interface {
	LookupMember(ctx context.Context, guildID, channelID, query string) (Member, bool, error)
	LookupEmoji(ctx context.Context, guildID, channelID, query string) (Emoji, bool, error)
}
