package access

import (
	"net/url"
	"strings"
)

type Access interface {
	// Location constructs the public URL of the processed object stored at
	// the given destination key.
	// Note: it does not verify the object exists.
	Location(key string) (url.URL, error)
}

// FromURI creates a [PatternAccess] when uri contains the "{key}" placeholder
// and a [BaseAccess] otherwise.
func FromURI(uri string) (Access, error) {
	if strings.Contains(uri, pattern) {
		return NewPatternAccess(uri)
	}
	return NewBaseAccess(uri)
}
