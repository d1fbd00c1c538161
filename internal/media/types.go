package media

import "strings"

// ResolvedImage is a payload that passed every active policy check of the
// config that produced it. The caller owns Data.
type ResolvedImage struct {
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	// Source names the candidate origin (attachment, reply_url, avatar, ...).
	Source string `json:"source"`
	// URL is the address the bytes were fetched from, empty for in-memory input.
	URL string `json:"url,omitempty"`
}

// Size returns the payload length in bytes.
func (r ResolvedImage) Size() int64 {
	return int64(len(r.Data))
}

// IsAnimated reports whether the payload is a GIF.
func (r ResolvedImage) IsAnimated() bool {
	return NormalizeMime(r.ContentType) == "image/gif"
}

// Filename returns a file name suitable for re-uploading the payload.
func (r ResolvedImage) Filename(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "image"
	}
	return base + ExtensionFromMime(r.ContentType)
}
