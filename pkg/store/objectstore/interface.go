// Package objectstore is the storage gateway: bucket/key addressed object
// reads as streams and stream-fed writes.
package objectstore

import (
	"context"
	"io"
)

type Object interface {
	// Body is the object content. The caller must close it.
	Body() io.ReadCloser
	// ContentType is the MIME type the object was stored with.
	ContentType() string
	// Size returns the total size of the object in bytes, or -1 if unknown.
	Size() int64
}

// PutResult is the provider metadata for a completed write.
type PutResult struct {
	ETag      string
	Location  string
	VersionID string
}

type ObjectStore interface {
	// Get opens the object at key in bucket for reading. Returns nil and
	// [store.ErrNotFound] if the object does not exist.
	Get(ctx context.Context, bucket, key string) (Object, error)
	// Put reads body until EOF and stores it at key in bucket, replacing any
	// existing object. If reading body fails nothing is stored.
	//
	// Note: a single attempt is made, failures are returned unchanged.
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) (PutResult, error)
}
