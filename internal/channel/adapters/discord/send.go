package discord

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/memohai/pixeltools/internal/media"
)

const discordMaxLength = 2000

type messageSession interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// truncateDiscordText caps text at discordMaxLength characters, cutting on
// rune boundaries.
func truncateDiscordText(text string) string {
	if utf8.RuneCountInString(text) <= discordMaxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:discordMaxLength-3]) + "..."
}

func replyReference(m *discordgo.Message) *discordgo.MessageReference {
	ref := m.Reference()
	failIfNotExists := false
	ref.FailIfNotExists = &failIfNotExists
	return ref
}

func sendReplyText(session messageSession, m *discordgo.Message, text string) (*discordgo.Message, error) {
	sent, err := session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         truncateDiscordText(text),
		Reference:       replyReference(m),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		return nil, fmt.Errorf("discord send reply: %w", err)
	}
	return sent, nil
}

func sendReplyImage(session messageSession, m *discordgo.Message, img media.ResolvedImage, name string) error {
	_, err := session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Reference:       replyReference(m),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
		Files: []*discordgo.File{{
			Name:        img.Filename(name),
			ContentType: img.ContentType,
			Reader:      bytes.NewReader(img.Data),
		}},
	})
	if err != nil {
		return fmt.Errorf("discord send image: %w", err)
	}
	return nil
}
