package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memohai/pixeltools/internal/config"
	"github.com/memohai/pixeltools/internal/media"
)

func TestConfigBuildersReturnCopies(t *testing.T) {
	base := DefaultConfig()
	derived := base.WithoutAnimated().WithMaxSize(1024).WithMaxWidth(64).WithMaxHeight(32)

	assert.True(t, base.AllowAnimated)
	assert.Equal(t, DefaultMaxSizeBytes, base.MaxSizeBytes)
	assert.Equal(t, DefaultMaxWidth, base.MaxWidth)

	assert.False(t, derived.AllowAnimated)
	assert.Equal(t, int64(1024), derived.MaxSizeBytes)
	assert.Equal(t, 64, derived.MaxWidth)
	assert.Equal(t, 32, derived.MaxHeight)
}

func TestAvatarFallbackNeedsBothFlags(t *testing.T) {
	assert.True(t, DefaultConfig().AvatarFallbackEnabled())
	assert.False(t, DefaultConfig().WithoutAvatarFallback().AvatarFallbackEnabled())
	assert.False(t, DefaultConfig().WithoutFallbackToAvatar().AvatarFallbackEnabled())
	assert.False(t, DefaultConfig().WithoutQueryClassification().RunQueryClassification)
}

func TestAllowListAppendsGIFOnlyWhenAnimated(t *testing.T) {
	animated := DefaultConfig().AllowList()
	assert.Contains(t, animated.ContentTypes, "image/gif")
	assert.Contains(t, animated.Extensions, ".gif")
	assert.True(t, animated.AllowsExtension("dance.GIF"))

	static := DefaultConfig().WithoutAnimated().AllowList()
	assert.NotContains(t, static.ContentTypes, "image/gif")
	assert.False(t, static.AllowsExtension("dance.gif"))
	assert.False(t, static.AllowsContentType("image/gif"))

	// the copy must not leak into the package defaults
	assert.Len(t, baseContentTypes, 4)
	assert.Len(t, baseExtensions, 4)
}

func TestAllowListMatching(t *testing.T) {
	allow := DefaultConfig().AllowList()
	assert.True(t, allow.AllowsContentType("IMAGE/PNG; charset=binary"))
	assert.False(t, allow.AllowsContentType(""))
	assert.False(t, allow.AllowsContentType("text/html"))
	assert.True(t, allow.AllowsExtension("photo.jpeg"))
	assert.False(t, allow.AllowsExtension("pic.bmp"))
	assert.False(t, allow.AllowsExtension("png"))
}

func TestConfigFromSettingsNormalizes(t *testing.T) {
	cfg := ConfigFromSettings(config.ResolverConfig{
		AllowAnimated: true,
		MaxWidth:      0,
		MaxHeight:     -5,
		MaxSizeBytes:  media.MaxAssetBytes * 2,
	})
	assert.Equal(t, DefaultMaxWidth, cfg.MaxWidth)
	assert.Equal(t, DefaultMaxHeight, cfg.MaxHeight)
	assert.Equal(t, media.MaxAssetBytes, cfg.MaxSizeBytes)
	assert.True(t, cfg.AllowAnimated)
	assert.False(t, cfg.AllowAvatarFallback)
}
