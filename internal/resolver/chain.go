package resolver

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/memohai/pixeltools/internal/channel"
)

// Source names where a resolved image came from.
type Source string

const (
	SourceQuery           Source = "query"
	SourceAttachment      Source = "attachment"
	SourceReplyAttachment Source = "reply_attachment"
	SourceReplyEmbed      Source = "reply_embed"
	SourceReplyURL        Source = "reply_url"
	SourceAvatar          Source = "avatar"
)

const (
	cdnBase         = "https://cdn.discordapp.com"
	unicodeEmojiCDN = "https://emojicdn.elk.sh/"
)

var bareURLPattern = regexp.MustCompile(`https?://\S+`)

// FindCandidate walks the structural fallback chain: the message's own
// attachment, then the reply's attachment, image embed and first bare URL,
// and finally the author's avatar. It does no I/O.
func FindCandidate(cfg Config, msg channel.Message) (Candidate, Source, bool) {
	if att, ok := msg.FirstAttachment(); ok {
		return AttachmentCandidate{Attachment: att}, SourceAttachment, true
	}
	if reply := msg.ReferencedMessage; reply != nil {
		if att, ok := reply.FirstAttachment(); ok {
			return AttachmentCandidate{Attachment: att}, SourceReplyAttachment, true
		}
		if embed, ok := reply.FirstEmbed(); ok {
			if u, ok := embedImageURL(embed); ok {
				return URLCandidate{URL: u}, SourceReplyEmbed, true
			}
		}
		if u, ok := FirstURL(reply.Content); ok {
			return URLCandidate{URL: u}, SourceReplyURL, true
		}
	}
	if cfg.AvatarFallbackEnabled() && msg.Author.AvatarHash != "" {
		return URLCandidate{URL: AvatarURL(msg.Author, cfg.AllowAnimated)}, SourceAvatar, true
	}
	return nil, "", false
}

// embedImageURL reads the thumbnail of an image embed, and the full image
// falling back to the thumbnail of a rich embed.
func embedImageURL(e channel.Embed) (string, bool) {
	var candidates []string
	switch e.Kind {
	case channel.EmbedImage:
		candidates = []string{e.ThumbnailURL, e.ImageURL}
	case channel.EmbedRich:
		candidates = []string{e.ImageURL, e.ThumbnailURL}
	}
	for _, u := range candidates {
		if u = strings.TrimSpace(u); u != "" {
			return u, true
		}
	}
	return "", false
}

// FirstURL returns the first http(s) URL in text.
func FirstURL(text string) (string, bool) {
	m := bareURLPattern.FindString(text)
	if m == "" {
		return "", false
	}
	return trimURL(strings.TrimRight(m, `>)].,;:!?'"`)), true
}

// AvatarURL returns the 512px avatar URL of user. Animated avatars keep the
// gif extension only when animated media is allowed.
func AvatarURL(user channel.User, allowAnimated bool) string {
	ext := "png"
	if allowAnimated && user.HasAnimatedAvatar() {
		ext = "gif"
	}
	return cdnBase + "/avatars/" + user.ID + "/" + user.AvatarHash + "." + ext + "?size=512"
}

// EmojiURL returns the CDN URL of a custom or Unicode emoji.
func EmojiURL(e channel.Emoji, allowAnimated bool) string {
	if !e.IsCustom() {
		return unicodeEmojiCDN + url.PathEscape(e.Unicode) + "?style=twitter"
	}
	ext := "png"
	if allowAnimated && e.Animated {
		ext = "gif"
	}
	return cdnBase + "/emojis/" + e.ID + "." + ext + "?v=1"
}
