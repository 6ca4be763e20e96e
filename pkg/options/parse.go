package options

import (
	"math"
	"strconv"
	"strings"
)

const (
	setSeparator  = "-"
	pairSeparator = ","
	kvSeparator   = ":"
	signatureKey  = "signature"

	maxDimension = 8192
	maxSigma     = 100
)

type setter func(o *Options, value string) bool

var setters = map[string]setter{
	"width": func(o *Options, v string) bool {
		n, ok := dimension(v)
		o.Width = n
		return ok
	},
	"height": func(o *Options, v string) bool {
		n, ok := dimension(v)
		o.Height = n
		return ok
	},
	"fit": func(o *Options, v string) bool {
		switch f := Fit(v); f {
		case FitCover, FitContain, FitFill, FitInside:
			o.Fit = f
			return true
		}
		return false
	},
	"quality": func(o *Options, v string) bool {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return false
		}
		o.Quality = n
		return true
	},
	"output": func(o *Options, v string) bool {
		f, ok := formatsByName[v]
		o.Output = f
		return ok
	},
	"rotate": func(o *Options, v string) bool {
		switch v {
		case "0", "90", "180", "270":
			o.Rotate, _ = strconv.Atoi(v)
			return true
		}
		return false
	},
	"flip": func(o *Options, v string) bool {
		switch v {
		case "h":
			o.FlipHorizontal = true
		case "v":
			o.FlipVertical = true
		case "hv", "vh":
			o.FlipHorizontal, o.FlipVertical = true, true
		default:
			return false
		}
		return true
	},
	"blur": func(o *Options, v string) bool {
		f, ok := sigma(v)
		o.Blur = f
		return ok
	},
	"sharpen": func(o *Options, v string) bool {
		f, ok := sigma(v)
		o.Sharpen = f
		return ok
	},
	"grayscale": func(o *Options, v string) bool {
		b, err := strconv.ParseBool(v)
		o.Grayscale = b
		return err == nil
	},
}

func dimension(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxDimension {
		return 0, false
	}
	return n, true
}

func sigma(v string) (float64, bool) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f <= 0 || f > maxSigma {
		return 0, false
	}
	return f, true
}

// Parse splits fragment into its options substring and object path and
// parses the option sets. When signed is true the fragment must carry a
// signature computed with token over "<options>/<path>".
//
// Options are validated before the signature so that a malformed request is
// reported as such regardless of signing.
func Parse(fragment string, token string, signed bool) (*Parsed, error) {
	optionsString, path, ok := strings.Cut(fragment, "/")
	if !ok || path == "" {
		return nil, MalformedFragmentError{Fragment: fragment, Reason: "missing object path"}
	}

	sets := strings.Split(optionsString, setSeparator)
	var signature string
	if last := sets[len(sets)-1]; strings.HasPrefix(last, signatureKey+kvSeparator) {
		signature = strings.TrimPrefix(last, signatureKey+kvSeparator)
		sets = sets[:len(sets)-1]
		optionsString = strings.Join(sets, setSeparator)
	}

	collection := make(Collection, 0, len(sets))
	for _, set := range sets {
		opts, err := parseSet(fragment, set)
		if err != nil {
			return nil, err
		}
		collection = append(collection, opts)
	}

	if signed {
		if err := verify(token, optionsString, path, signature); err != nil {
			return nil, err
		}
	}

	return &Parsed{
		Path:          path,
		OptionsString: optionsString,
		Signature:     signature,
		Collection:    collection,
	}, nil
}

func parseSet(fragment, set string) (Options, error) {
	var opts Options
	if set == "" {
		return opts, nil
	}
	for _, pair := range strings.Split(set, pairSeparator) {
		key, value, _ := strings.Cut(pair, kvSeparator)
		if key == signatureKey {
			return Options{}, MalformedFragmentError{Fragment: fragment, Reason: "signature must be the last option set"}
		}
		apply, known := setters[key]
		if !known {
			return Options{}, OptionKeyUnknownError{Key: key}
		}
		if !apply(&opts, value) {
			return Options{}, OptionValueInvalidError{Key: key, Value: value}
		}
	}
	return opts, nil
}
