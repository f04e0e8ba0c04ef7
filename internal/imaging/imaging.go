package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"

	// Registered decoders for client uploads and gallery assets.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrInvalidImage = errors.New("invalid image")

const DefaultJPEGQuality = 90

// Decode returns the image and its registered format name.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, format, nil
}

// Bounds reads only the header to find the image rectangle.
func Bounds(data []byte) (image.Rectangle, error) {
	if len(data) == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Rectangle{}, fmt.Errorf("%w: zero-sized image", ErrInvalidImage)
	}
	return image.Rect(0, 0, cfg.Width, cfg.Height), nil
}

// FitWithin scales (w, h) so the longer side equals maxSide, keeping the
// aspect ratio. Sizes already within the limit are returned unchanged.
func FitWithin(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	if w >= h {
		nh := int(float64(h) * float64(maxSide) / float64(w))
		return maxSide, max(nh, 1)
	}
	nw := int(float64(w) * float64(maxSide) / float64(h))
	return max(nw, 1), maxSide
}

// Downscale decodes data, shrinks it with Catmull-Rom resampling so neither
// side exceeds maxSide, and re-encodes it as JPEG.
func Downscale(data []byte, maxSide, quality int) ([]byte, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	bounds := img.Bounds()
	w, h := FitWithin(bounds.Dx(), bounds.Dy(), maxSide)

	out := img
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		out = dst
	}

	return EncodeJPEG(out, quality)
}

func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType sniffs the MIME type of an encoded image.
func ContentType(data []byte) string {
	return http.DetectContentType(data)
}
