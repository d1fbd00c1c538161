// Package imaging holds the pixel transformations applied to resolved images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/memohai/pixeltools/internal/media"
)

// Dimensions reads the width, height and format name from the image header
// without decoding pixel data.
func Dimensions(data []byte) (int, int, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", media.Wrap(media.KindInvalidMedia, err, "Could not read the image dimensions.")
	}
	return cfg.Width, cfg.Height, format, nil
}

// Invert returns img with every pixel's color inverted and alpha kept.
// GIFs stay animated GIFs; every other format is re-encoded as PNG.
// Images wider or taller than the given ceilings are rejected before
// decoding; a non-positive ceiling disables that check.
func Invert(img media.ResolvedImage, maxWidth, maxHeight int) (media.ResolvedImage, error) {
	width, height, format, err := Dimensions(img.Data)
	if err != nil {
		return media.ResolvedImage{}, err
	}
	if maxWidth > 0 && width > maxWidth {
		return media.ResolvedImage{}, media.Errorf(media.KindTooLarge, "Image width of %d surpasses the maximum of %d.", width, maxWidth)
	}
	if maxHeight > 0 && height > maxHeight {
		return media.ResolvedImage{}, media.Errorf(media.KindTooLarge, "Image height of %d surpasses the maximum of %d.", height, maxHeight)
	}

	var out []byte
	contentType := "image/png"
	switch format {
	case "gif":
		out, err = invertGIF(img.Data)
		contentType = "image/gif"
	case "png", "jpeg", "webp":
		out, err = invertStill(img.Data)
	default:
		return media.ResolvedImage{}, media.Errorf(media.KindUnsupportedFormat, "Cannot invert `%s` images.", format)
	}
	if err != nil {
		return media.ResolvedImage{}, err
	}
	return media.ResolvedImage{
		Data:        out,
		ContentType: contentType,
		Source:      img.Source,
		URL:         img.URL,
	}, nil
}

// invertStill applies the EXIF orientation before inverting, since the PNG
// output carries no metadata.
func invertStill(data []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, media.Wrap(media.KindInvalidMedia, err, "Could not decode the image.")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Invert(src), imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// invertGIF rewrites each frame's palette, which inverts every pixel
// without touching frame timing or disposal.
func invertGIF(data []byte) ([]byte, error) {
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, media.Wrap(media.KindInvalidMedia, err, "Could not decode the GIF.")
	}
	for _, frame := range anim.Image {
		frame.Palette = invertPalette(frame.Palette)
	}
	if p, ok := anim.Config.ColorModel.(color.Palette); ok {
		anim.Config.ColorModel = invertPalette(p)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	return buf.Bytes(), nil
}

func invertPalette(p color.Palette) color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		out[i] = color.NRGBA{R: 255 - n.R, G: 255 - n.G, B: 255 - n.B, A: n.A}
	}
	return out
}
