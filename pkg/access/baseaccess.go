package access

import (
	"fmt"
	"net/url"
	"strings"
)

// BaseAccess joins a base URL and the destination key with "/".
type BaseAccess struct {
	base *url.URL
}

// Location implements Access.
func (b *BaseAccess) Location(key string) (url.URL, error) {
	if key == "" {
		return url.URL{}, fmt.Errorf("empty key")
	}
	u := *b.base
	u.Path = b.base.Path + "/" + key
	u.RawPath = ""
	return u, nil
}

var _ Access = (*BaseAccess)(nil)

// NewBaseAccess creates a new [Access] for objects served below baseURL.
// A trailing slash on baseURL is ignored. The key is appended to the path, so
// a base URL with a query or fragment is rejected; use a "{key}" pattern
// for those.
//
// e.g. "http://my-bucket.s3-website.us-east-1.amazonaws.com"
func NewBaseAccess(baseURL string) (*BaseAccess, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", baseURL)
	}
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" {
		return nil, fmt.Errorf("base URL must not have a query or fragment: %q", baseURL)
	}
	return &BaseAccess{u}, nil
}
