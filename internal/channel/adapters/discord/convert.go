package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/pixeltools/internal/channel"
)

// convertMessage maps a discordgo message, including one level of the
// message it replies to, into the platform-neutral model.
func convertMessage(m *discordgo.Message) channel.Message {
	msg := convertShallow(m)
	if m != nil && m.ReferencedMessage != nil {
		reply := convertShallow(m.ReferencedMessage)
		msg.ReferencedMessage = &reply
	}
	return msg
}

func convertShallow(m *discordgo.Message) channel.Message {
	if m == nil {
		return channel.Message{}
	}
	return channel.Message{
		ID:          m.ID,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		Author:      convertUser(m.Author),
		Content:     m.Content,
		Attachments: collectAttachments(m),
		Embeds:      collectEmbeds(m),
	}
}

func convertUser(u *discordgo.User) channel.User {
	if u == nil {
		return channel.User{}
	}
	return channel.User{
		ID:         u.ID,
		Username:   u.Username,
		AvatarHash: u.Avatar,
		Bot:        u.Bot,
	}
}

func collectAttachments(m *discordgo.Message) []channel.Attachment {
	if len(m.Attachments) == 0 {
		return nil
	}
	attachments := make([]channel.Attachment, 0, len(m.Attachments))
	for _, att := range m.Attachments {
		if att == nil {
			continue
		}
		url := strings.TrimSpace(att.URL)
		if url == "" {
			url = strings.TrimSpace(att.ProxyURL)
		}
		attachments = append(attachments, channel.Attachment{
			ID:       att.ID,
			URL:      url,
			Filename: att.Filename,
			Mime:     strings.TrimSpace(att.ContentType),
			Size:     int64(att.Size),
			Width:    att.Width,
			Height:   att.Height,
		})
	}
	return attachments
}

func collectEmbeds(m *discordgo.Message) []channel.Embed {
	if len(m.Embeds) == 0 {
		return nil
	}
	embeds := make([]channel.Embed, 0, len(m.Embeds))
	for _, e := range m.Embeds {
		if e == nil {
			continue
		}
		embed := channel.Embed{Kind: channel.EmbedKind(e.Type)}
		if e.Image != nil {
			embed.ImageURL = e.Image.URL
		}
		if e.Thumbnail != nil {
			embed.ThumbnailURL = e.Thumbnail.URL
		}
		embeds = append(embeds, embed)
	}
	return embeds
}

func convertMember(guildID string, m *discordgo.Member) channel.Member {
	if m == nil {
		return channel.Member{GuildID: guildID}
	}
	member := channel.Member{
		GuildID: guildID,
		User:    convertUser(m.User),
		Nick:    m.Nick,
	}
	if m.GuildID != "" {
		member.GuildID = m.GuildID
	}
	return member
}

func convertEmoji(e *discordgo.Emoji) channel.Emoji {
	if e == nil {
		return channel.Emoji{}
	}
	return channel.Emoji{ID: e.ID, Name: e.Name, Animated: e.Animated}
}
