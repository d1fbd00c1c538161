package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/pixeltools/internal/media"
)

func encodePNG(t *testing.T, c color.NRGBA, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInvertPNG(t *testing.T) {
	src := media.ResolvedImage{
		Data:        encodePNG(t, color.NRGBA{R: 10, G: 200, B: 0, A: 255}, 3, 2),
		ContentType: "image/png",
		Source:      "attachment",
	}
	out, err := Invert(src, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, "attachment", out.Source)

	decoded, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	got := color.NRGBAModel.Convert(decoded.At(1, 1)).(color.NRGBA)
	assert.Equal(t, uint8(245), got.R)
	assert.Equal(t, uint8(55), got.G)
	assert.Equal(t, uint8(255), got.B)
	assert.Equal(t, uint8(255), got.A)
}

func TestInvertJPEGBecomesPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := Invert(media.ResolvedImage{Data: buf.Bytes(), ContentType: "image/jpeg"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.ContentType)
	w, h, format, err := Dimensions(out.Data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
}

// withOrientation inserts an EXIF APP1 segment carrying the given
// orientation right after the JPEG SOI marker.
func withOrientation(jpg []byte, orientation byte) []byte {
	exif := []byte{
		0xff, 0xe1, 0x00, 0x22,
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	out := append([]byte{}, jpg[:2]...)
	out = append(out, exif...)
	return append(out, jpg[2:]...)
}

func TestInvertJPEGAppliesOrientation(t *testing.T) {
	// Stored landscape: left half black, right half white.
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 8; x < 16; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))

	out, err := Invert(media.ResolvedImage{Data: withOrientation(buf.Bytes(), 6), ContentType: "image/jpeg"}, 0, 0)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Bounds().Dx())
	assert.Equal(t, 16, decoded.Bounds().Dy())

	// Rotated 90 degrees clockwise the black half is on top, then inverted.
	top := color.GrayModel.Convert(decoded.At(4, 2)).(color.Gray)
	bottom := color.GrayModel.Convert(decoded.At(4, 13)).(color.Gray)
	assert.Greater(t, top.Y, uint8(200))
	assert.Less(t, bottom.Y, uint8(55))
}

func TestInvertGIFKeepsFrames(t *testing.T) {
	palette := color.Palette{color.RGBA{A: 255}, color.RGBA{R: 255, A: 255}}
	anim := &gif.GIF{}
	for i := 0; i < 3; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 2, 2), palette)
		frame.SetColorIndex(0, 0, uint8(i%2))
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, anim))

	out, err := Invert(media.ResolvedImage{Data: buf.Bytes(), ContentType: "image/gif"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", out.ContentType)
	assert.True(t, out.IsAnimated())

	decoded, err := gif.DecodeAll(bytes.NewReader(out.Data))
	require.NoError(t, err)
	require.Len(t, decoded.Image, 3)
	assert.Equal(t, []int{10, 10, 10}, decoded.Delay)
	r, g, b, _ := decoded.Image[0].At(1, 1).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}

func TestInvertRejectsOversizedImage(t *testing.T) {
	src := media.ResolvedImage{Data: encodePNG(t, color.NRGBA{A: 255}, 8, 2), ContentType: "image/png"}
	_, err := Invert(src, 4, 0)
	require.Error(t, err)
	assert.Equal(t, media.KindTooLarge, media.KindOf(err))
}

func TestInvertRejectsGarbage(t *testing.T) {
	_, err := Invert(media.ResolvedImage{Data: []byte("not an image")}, 0, 0)
	require.Error(t, err)
	assert.Equal(t, media.KindInvalidMedia, media.KindOf(err))
}
