package resolver

import (
	"strings"

	"github.com/memohai/pixeltools/internal/config"
	"github.com/memohai/pixeltools/internal/media"
)

const (
	DefaultMaxWidth     = config.DefaultMaxWidth
	DefaultMaxHeight    = config.DefaultMaxHeight
	DefaultMaxSizeBytes = int64(config.DefaultMaxSizeBytes)
)

var (
	baseContentTypes = []string{"image/png", "image/jpeg", "image/jpg", "image/webp"}
	baseExtensions   = []string{".png", ".jpeg", ".jpg", ".webp"}
)

const (
	gifContentType = "image/gif"
	gifExtension   = ".gif"
)

// Config is the resolution policy for one call. It is a value type: the
// With* methods return a modified copy and never touch the receiver, so one
// Config can be shared by concurrent resolutions.
type Config struct {
	AllowAnimated          bool
	AllowAvatarFallback    bool
	FallbackToAvatarOnMiss bool
	RunQueryClassification bool
	MaxWidth               int
	MaxHeight              int
	MaxSizeBytes           int64
}

// DefaultConfig enables every source with a 2048x2048, 6 MiB ceiling.
func DefaultConfig() Config {
	return Config{
		AllowAnimated:          true,
		AllowAvatarFallback:    true,
		FallbackToAvatarOnMiss: true,
		RunQueryClassification: true,
		MaxWidth:               DefaultMaxWidth,
		MaxHeight:              DefaultMaxHeight,
		MaxSizeBytes:           DefaultMaxSizeBytes,
	}
}

// ConfigFromSettings builds a Config from the [resolver] TOML section.
// Non-positive ceilings fall back to the defaults.
func ConfigFromSettings(s config.ResolverConfig) Config {
	return Config{
		AllowAnimated:          s.AllowAnimated,
		AllowAvatarFallback:    s.AllowAvatarFallback,
		FallbackToAvatarOnMiss: s.FallbackToAvatarOnMiss,
		RunQueryClassification: s.RunQueryClassification,
		MaxWidth:               s.MaxWidth,
		MaxHeight:              s.MaxHeight,
		MaxSizeBytes:           s.MaxSizeBytes,
	}.normalized()
}

func (c Config) WithoutAnimated() Config {
	c.AllowAnimated = false
	return c
}

func (c Config) WithoutAvatarFallback() Config {
	c.AllowAvatarFallback = false
	return c
}

func (c Config) WithoutFallbackToAvatar() Config {
	c.FallbackToAvatarOnMiss = false
	return c
}

func (c Config) WithoutQueryClassification() Config {
	c.RunQueryClassification = false
	return c
}

func (c Config) WithMaxWidth(width int) Config {
	c.MaxWidth = width
	return c
}

func (c Config) WithMaxHeight(height int) Config {
	c.MaxHeight = height
	return c
}

func (c Config) WithMaxSize(size int64) Config {
	c.MaxSizeBytes = size
	return c
}

func (c Config) normalized() Config {
	if c.MaxWidth <= 0 {
		c.MaxWidth = DefaultMaxWidth
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = DefaultMaxHeight
	}
	if c.MaxSizeBytes <= 0 {
		c.MaxSizeBytes = DefaultMaxSizeBytes
	}
	if c.MaxSizeBytes > media.MaxAssetBytes {
		c.MaxSizeBytes = media.MaxAssetBytes
	}
	return c
}

// AvatarFallbackEnabled reports whether the chain may end on the sender's avatar.
func (c Config) AvatarFallbackEnabled() bool {
	return c.AllowAvatarFallback && c.FallbackToAvatarOnMiss
}

// AllowList returns the content types and extensions accepted under c.
// GIF is appended only when animated media is allowed.
func (c Config) AllowList() AllowList {
	types := append([]string(nil), baseContentTypes...)
	exts := append([]string(nil), baseExtensions...)
	if c.AllowAnimated {
		types = append(types, gifContentType)
		exts = append(exts, gifExtension)
	}
	return AllowList{ContentTypes: types, Extensions: exts}
}

// AllowList is the content-type and file-extension allow-list for one call.
type AllowList struct {
	ContentTypes []string
	Extensions   []string
}

// AllowsContentType matches the normalized content type exactly.
func (a AllowList) AllowsContentType(contentType string) bool {
	ct := media.NormalizeMime(contentType)
	if ct == "" {
		return false
	}
	for _, allowed := range a.ContentTypes {
		if ct == media.NormalizeMime(allowed) {
			return true
		}
	}
	return false
}

// AllowsExtension matches the file name's extension case-insensitively.
func (a AllowList) AllowsExtension(filename string) bool {
	ext := media.FileExtension(filename)
	if ext == "" {
		return false
	}
	for _, allowed := range a.Extensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
