// Package channel defines the platform-neutral chat message model consumed by
// the media resolver, and the directory collaborator used for query lookups.
package channel

import "strings"

// Identity of a message sender.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	// AvatarHash is empty when the user has no custom avatar.
	AvatarHash string `json:"avatar_hash,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

// HasAnimatedAvatar reports whether the avatar hash carries the animated marker.
func (u User) HasAnimatedAvatar() bool {
	return strings.HasPrefix(u.AvatarHash, "a_")
}

// Attachment is a file uploaded with a message. Width and Height are zero
// when the platform did not report dimensions.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Mime     string `json:"mime,omitempty"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// HasDimensions reports whether both width and height metadata are present.
func (a Attachment) HasDimensions() bool {
	return a.Width > 0 && a.Height > 0
}

type EmbedKind string

const (
	EmbedImage EmbedKind = "image"
	EmbedRich  EmbedKind = "rich"
	EmbedVideo EmbedKind = "video"
	EmbedGIFV  EmbedKind = "gifv"
	EmbedLink  EmbedKind = "link"
)

// Embed is a rich preview attached to a message.
type Embed struct {
	Kind         EmbedKind `json:"kind"`
	ImageURL     string    `json:"image_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// Message is a received chat message together with the message it replies to.
type Message struct {
	ID                string       `json:"id"`
	GuildID           string       `json:"guild_id,omitempty"`
	ChannelID         string       `json:"channel_id"`
	Author            User         `json:"author"`
	Content           string       `json:"content,omitempty"`
	Attachments       []Attachment `json:"attachments,omitempty"`
	Embeds            []Embed      `json:"embeds,omitempty"`
	ReferencedMessage *Message     `json:"referenced_message,omitempty"`
}

// IsReply reports whether the message replies to another message.
func (m Message) IsReply() bool {
	return m.ReferencedMessage != nil
}

// FirstAttachment returns the first attachment, if any.
func (m Message) FirstAttachment() (Attachment, bool) {
	if len(m.Attachments) == 0 {
		return Attachment{}, false
	}
	return m.Attachments[0], true
}

// FirstEmbed returns the first embed, if any.
func (m Message) FirstEmbed() (Embed, bool) {
	if len(m.Embeds) == 0 {
		return Embed{}, false
	}
	return m.Embeds[0], true
}
