package media

import (
	"net/http"
	"path"
	"strings"
)

// NormalizeMime normalizes MIME to lowercase token form.
func NormalizeMime(raw string) string {
	mime := strings.ToLower(strings.TrimSpace(raw))
	if mime == "" {
		return ""
	}
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}

// FileExtension returns the lower-cased extension of name including the dot,
// or "" when name has none. URL query strings are ignored.
func FileExtension(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	return strings.ToLower(path.Ext(name))
}

// ExtensionFromMime maps an image MIME type to its canonical extension.
func ExtensionFromMime(mime string) string {
	switch NormalizeMime(mime) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// MimeFromExtension maps an image extension (with or without dot) to its MIME type.
func MimeFromExtension(ext string) string {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".") {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

// ResolveMime prefers a declared image MIME, then the extension, then sniffing.
func ResolveMime(declared, filename string, data []byte) string {
	if mime := NormalizeMime(declared); strings.HasPrefix(mime, "image/") {
		return mime
	}
	if mime := MimeFromExtension(FileExtension(filename)); mime != "" {
		return mime
	}
	if len(data) > 0 {
		return NormalizeMime(http.DetectContentType(data))
	}
	return "application/octet-stream"
}
