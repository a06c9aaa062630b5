// Package imaging produces resized derivatives of raster images.
//
// Formats are detected from content, never from filenames, so mislabeled
// extensions cannot route bytes to the wrong decoder. The derivative is
// re-encoded in the source format: a PNG upload yields a PNG thumbnail.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"

	webpenc "github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder for image.Decode
)

// jpegQuality is the encoder setting for lossy JPEG output.
const jpegQuality = 85

// webpQuality is the encoder setting for lossy WebP output.
// 80 balances file size with display quality.
const webpQuality = 80

// Spec bounds the derivative dimensions. Immutable for the process lifetime.
type Spec struct {
	MaxWidth  int
	MaxHeight int
}

// Derivative is an encoded thumbnail ready to be stored.
type Derivative struct {
	Bytes       []byte
	ContentType string
	Format      string
	Width       int
	Height      int
}

// DecodeError reports input bytes that are not a supported raster image:
// corrupt, truncated, zero-length, or an unregistered format.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a failure re-encoding the resized raster.
type EncodeError struct {
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s image: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Transcode decodes raw image bytes, downscales them to fit spec while
// preserving aspect ratio, and re-encodes in the source format. The input
// slice is never mutated. Images already within the bounds keep their exact
// dimensions but are still re-encoded.
func Transcode(raw []byte, spec Spec) (*Derivative, error) {
	if len(raw) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	bounds := img.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()
	w, h := fitDimensions(origW, origH, spec)

	out := img
	switch {
	case w != origW || h != origH:
		out = resize(img, w, h, needsFlatten(format, img))
	case needsFlatten(format, img):
		out = flatten(img)
	}

	data, err := encode(out, format)
	if err != nil {
		return nil, &EncodeError{Format: format, Err: err}
	}

	log.Debug().
		Str("format", format).
		Int("origWidth", origW).
		Int("origHeight", origH).
		Int("width", w).
		Int("height", h).
		Int("outputSize", len(data)).
		Msg("Transcode complete")

	return &Derivative{
		Bytes:       data,
		ContentType: "image/" + format,
		Format:      format,
		Width:       w,
		Height:      h,
	}, nil
}

// fitDimensions scales (w, h) to fit within spec, preserving aspect ratio.
// The scale factor is capped at 1.0 so images are never upscaled, and each
// axis is floored at 1 pixel.
func fitDimensions(w, h int, spec Spec) (int, int) {
	scale := math.Min(
		float64(spec.MaxWidth)/float64(w),
		float64(spec.MaxHeight)/float64(h),
	)
	if scale >= 1 {
		return w, h
	}
	nw := int(math.Floor(float64(w) * scale))
	nh := int(math.Floor(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// needsFlatten reports whether the raster must be composed onto an opaque
// background before encoding. Only the JPEG family lacks alpha support.
func needsFlatten(format string, img image.Image) bool {
	if format != "jpeg" {
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

// resize scales img to w x h with CatmullRom interpolation. When flattenBG
// is set the destination is primed white and the source composed over it.
func resize(img image.Image, w, h int, flattenBG bool) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	op := draw.Src
	if flattenBG {
		draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
		op = draw.Over
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), op, nil)
	return dst
}

// flatten composes img over white at its original size.
func flatten(img image.Image) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}

// encode re-encodes img in the named format.
func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "webp":
		err = webpenc.Encode(&buf, img, &webpenc.Options{Quality: webpQuality})
	default:
		err = fmt.Errorf("no encoder registered for %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
