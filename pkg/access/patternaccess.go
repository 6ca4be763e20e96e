package access

import (
	"fmt"
	"net/url"
	"strings"
)

const pattern = "{key}"

type PatternAccess struct {
	urlPattern string
}

// Location implements Access.
func (p *PatternAccess) Location(key string) (url.URL, error) {
	if key == "" {
		return url.URL{}, fmt.Errorf("empty key")
	}
	escaped := (&url.URL{Path: key}).EscapedPath()
	u, err := url.ParseRequestURI(strings.ReplaceAll(p.urlPattern, pattern, escaped))
	if err != nil {
		return url.URL{}, err
	}
	return *u, nil
}

var _ Access = (*PatternAccess)(nil)

// NewPatternAccess creates a new [Access] instance for processed objects
// where the URL is created from a string that contains the placeholder
// pattern: "{key}".
//
// e.g. "https://cdn.example.com/images/{key}"
func NewPatternAccess(urlPattern string) (*PatternAccess, error) {
	if !strings.Contains(urlPattern, pattern) {
		return nil, fmt.Errorf(`URL string does not contain required pattern: "%s"`, pattern)
	}
	return &PatternAccess{urlPattern}, nil
}
