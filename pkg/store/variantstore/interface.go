// Package variantstore keeps a record of every processed variant written to
// the destination bucket.
package variantstore

import (
	"context"
	"time"

	"github.com/multiformats/go-multihash"
)

// Variant describes one processed object in the destination bucket.
type Variant struct {
	// Key is the destination object key, the full request fragment.
	Key string
	// Source is the path of the original the variant was made from.
	Source      string
	Bucket      string
	ContentType string
	Size        int64
	// Digest is the sha2-256 multihash of the variant bytes.
	Digest    multihash.Multihash
	ETag      string
	CreatedAt time.Time
}

type VariantIndex interface {
	// Get retrieves the variant stored at key. Returns store.ErrNotFound if
	// no variant has been recorded.
	Get(ctx context.Context, key string) (Variant, error)
	// Put records a variant, replacing any previous record for the same key.
	Put(ctx context.Context, variant Variant) error
	// List returns every variant made from the source path.
	List(ctx context.Context, source string) ([]Variant, error)
}
