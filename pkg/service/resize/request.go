package resize

import (
	"net/http"
	"net/url"
)

// KeyParam is the query parameter carrying the encoded fragment.
const KeyParam = "key"

// Request is a decoded invocation input.
type Request struct {
	// Raw is the parameter value as received.
	Raw string
	// Fragment is Raw with percent-encoding removed. It is both the parser
	// input and the destination object key.
	Fragment string
}

// DecodeRequest extracts the fragment from query parameters. Only decoding
// happens here, the fragment structure is checked by the parser.
func DecodeRequest(params map[string]string) (Request, error) {
	raw, ok := params[KeyParam]
	if !ok || raw == "" {
		return Request{}, MissingInputError{Param: KeyParam}
	}
	fragment, err := url.PathUnescape(raw)
	if err != nil {
		return Request{}, DecodeError{Raw: raw, Err: err}
	}
	return Request{Raw: raw, Fragment: fragment}, nil
}

// QueryParams flattens the query string of r, keeping the first value of
// each parameter, the way API Gateway presents queryStringParameters.
func QueryParams(r *http.Request) map[string]string {
	params := map[string]string{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}
