package postprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	xdraw "golang.org/x/image/draw"
)

const (
	// DefaultMaxDimension bounds the longest edge of delivered images.
	DefaultMaxDimension = 2048
	// ThumbnailDimension bounds the longest edge of preview thumbnails.
	ThumbnailDimension = 512
	// DefaultWebPQuality is the lossy quality for delivered assets.
	DefaultWebPQuality = 82
)

// TranscodeImage decodes data (PNG, JPEG or WebP), downscales it so the
// longest edge does not exceed maxDim, and re-encodes as lossy WebP.
func TranscodeImage(data []byte, maxDim int, quality float32) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("postprocess: decode image: %w", err)
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	img = downscale(img, maxDim)

	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("postprocess: webp encoder options: %w", err)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("postprocess: encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale fits img within maxDim on its longest edge using Catmull-Rom
// resampling. Images already within bounds pass through untouched.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	var newW, newH int
	if w >= h {
		newW = maxDim
		newH = h * maxDim / w
	} else {
		newH = maxDim
		newW = w * maxDim / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}
