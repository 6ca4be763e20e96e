// Package options parses the transform options carried in a request
// fragment such as "width:100,output:png/path/to/image.jpg".
//
// The options substring precedes the first "/". It holds one or more option
// sets separated by "-", each a comma separated list of "key:value" pairs.
// Sets are applied in order. A signed fragment ends its options substring
// with a "signature:<hex>" set.
package options

import (
	"strconv"
	"strings"
)

// Format is an output image format.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
)

// ContentType returns the MIME type objects of this format are stored with.
func (f Format) ContentType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case PNG:
		return "image/png"
	case GIF:
		return "image/gif"
	}
	return "application/octet-stream"
}

// formatsByName maps option values and file extensions to formats.
var formatsByName = map[string]Format{
	"jpeg": JPEG,
	"jpg":  JPEG,
	"png":  PNG,
	"gif":  GIF,
}

// Fit controls how an image is resized when both width and height are set.
type Fit string

const (
	// FitCover scales and crops to fill the box exactly.
	FitCover Fit = "cover"
	// FitContain scales to fit inside the box, enlarging if needed.
	FitContain Fit = "contain"
	// FitFill stretches to the box, ignoring aspect ratio.
	FitFill Fit = "fill"
	// FitInside scales down to fit inside the box, never enlarging.
	FitInside Fit = "inside"
)

// Options is a single option set.
type Options struct {
	Width          int
	Height         int
	Fit            Fit
	Quality        int
	Output         Format
	Rotate         int
	FlipHorizontal bool
	FlipVertical   bool
	Blur           float64
	Sharpen        float64
	Grayscale      bool
}

// String returns the canonical option set encoding, keys in a fixed order.
func (o Options) String() string {
	var pairs []string
	add := func(k, v string) { pairs = append(pairs, k+kvSeparator+v) }
	if o.Width > 0 {
		add("width", strconv.Itoa(o.Width))
	}
	if o.Height > 0 {
		add("height", strconv.Itoa(o.Height))
	}
	if o.Fit != "" {
		add("fit", string(o.Fit))
	}
	if o.Quality > 0 {
		add("quality", strconv.Itoa(o.Quality))
	}
	if o.Output != "" {
		add("output", string(o.Output))
	}
	if o.Rotate > 0 {
		add("rotate", strconv.Itoa(o.Rotate))
	}
	switch {
	case o.FlipHorizontal && o.FlipVertical:
		add("flip", "hv")
	case o.FlipHorizontal:
		add("flip", "h")
	case o.FlipVertical:
		add("flip", "v")
	}
	if o.Blur > 0 {
		add("blur", strconv.FormatFloat(o.Blur, 'f', -1, 64))
	}
	if o.Sharpen > 0 {
		add("sharpen", strconv.FormatFloat(o.Sharpen, 'f', -1, 64))
	}
	if o.Grayscale {
		add("grayscale", "true")
	}
	return strings.Join(pairs, pairSeparator)
}

// Collection is the ordered sequence of option sets parsed from a fragment.
type Collection []Options

func (c Collection) String() string {
	sets := make([]string, 0, len(c))
	for _, o := range c {
		sets = append(sets, o.String())
	}
	return strings.Join(sets, setSeparator)
}

// Parsed is the result of parsing a fragment.
type Parsed struct {
	// Path is the object path following the options substring.
	Path string
	// OptionsString is the options substring as received, without the
	// signature set.
	OptionsString string
	// Signature is the hex signature carried by the fragment, if any.
	Signature  string
	Collection Collection
}
