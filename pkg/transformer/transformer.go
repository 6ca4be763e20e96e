// Package transformer applies parsed option sets to an image stream.
package transformer

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/resizeto/resizeto/pkg/options"
)

// DefaultQuality is the JPEG quality used when no option set specifies one.
const DefaultQuality = 80

var encodings = map[options.Format]imaging.Format{
	options.JPEG: imaging.JPEG,
	options.PNG:  imaging.PNG,
	options.GIF:  imaging.GIF,
}

// Transformer applies a collection of option sets to a single image.
type Transformer struct {
	collection options.Collection
	path       string
	format     options.Format
	quality    int
}

// New returns a Transformer for collection. The output format is resolved
// up front, so a request that cannot be encoded fails before any data moves.
func New(collection options.Collection, path string) (*Transformer, error) {
	format, err := options.ResolveFormat(collection, path)
	if err != nil {
		return nil, err
	}
	if _, ok := encodings[format]; !ok {
		return nil, options.InvalidOutputFormatError{Format: string(format)}
	}

	quality := DefaultQuality
	for _, o := range collection {
		if o.Quality > 0 {
			quality = o.Quality
		}
	}

	return &Transformer{
		collection: collection,
		path:       path,
		format:     format,
		quality:    quality,
	}, nil
}

// Format returns the output format.
func (t *Transformer) Format() options.Format {
	return t.format
}

// ContentType returns the MIME type of the transformed output.
func (t *Transformer) ContentType() string {
	return t.format.ContentType()
}

// Transform reads an image from src, applies every option set in order and
// writes the encoded result to dst. It does not close either stream.
func (t *Transformer) Transform(ctx context.Context, src io.Reader, dst io.Writer) error {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", t.path, err)
	}

	for _, o := range t.collection {
		if err := ctx.Err(); err != nil {
			return err
		}
		img = apply(img, o)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	err = imaging.Encode(dst, img, encodings[t.format], imaging.JPEGQuality(t.quality))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", t.format, err)
	}
	return nil
}

func apply(img image.Image, o options.Options) image.Image {
	img = resize(img, o)

	// imaging rotates counter-clockwise, options are clockwise.
	switch o.Rotate {
	case 90:
		img = imaging.Rotate270(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate90(img)
	}

	if o.FlipHorizontal {
		img = imaging.FlipH(img)
	}
	if o.FlipVertical {
		img = imaging.FlipV(img)
	}
	if o.Blur > 0 {
		img = imaging.Blur(img, o.Blur)
	}
	if o.Sharpen > 0 {
		img = imaging.Sharpen(img, o.Sharpen)
	}
	if o.Grayscale {
		img = imaging.Grayscale(img)
	}
	return img
}

func resize(img image.Image, o options.Options) image.Image {
	w, h := o.Width, o.Height
	switch {
	case w == 0 && h == 0:
		return img
	case w == 0 || h == 0:
		// a zero dimension keeps the aspect ratio
		return imaging.Resize(img, w, h, imaging.Lanczos)
	}

	switch o.Fit {
	case options.FitFill:
		return imaging.Resize(img, w, h, imaging.Lanczos)
	case options.FitInside:
		return imaging.Fit(img, w, h, imaging.Lanczos)
	case options.FitContain:
		b := img.Bounds()
		cw, ch := containDimensions(b.Dx(), b.Dy(), w, h)
		return imaging.Resize(img, cw, ch, imaging.Lanczos)
	default:
		return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
	}
}

// containDimensions scales srcW x srcH to the largest size that fits inside
// boxW x boxH.
func containDimensions(srcW, srcH, boxW, boxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return boxW, boxH
	}
	if srcW*boxH > srcH*boxW {
		h := srcH * boxW / srcW
		return boxW, max(h, 1)
	}
	w := srcW * boxH / srcH
	return max(w, 1), boxH
}
