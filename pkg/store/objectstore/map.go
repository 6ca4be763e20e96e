package objectstore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/resizeto/resizeto/pkg/store"
)

type MapObject struct {
	body        io.ReadCloser
	contentType string
	size        int64
}

func (o MapObject) Body() io.ReadCloser { return o.body }
func (o MapObject) ContentType() string { return o.contentType }
func (o MapObject) Size() int64         { return o.size }

type mapEntry struct {
	data        []byte
	contentType string
}

// MapStore is an [ObjectStore] backed by in-memory maps, one per bucket.
type MapStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]mapEntry
}

var _ ObjectStore = (*MapStore)(nil)

// NewMapStore creates an empty [MapStore].
func NewMapStore() *MapStore {
	return &MapStore{buckets: map[string]map[string]mapEntry{}}
}

func (ms *MapStore) Get(ctx context.Context, bucket, key string) (Object, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	e, ok := ms.buckets[bucket][key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return MapObject{
		body:        io.NopCloser(bytes.NewReader(e.data)),
		contentType: e.contentType,
		size:        int64(len(e.data)),
	}, nil
}

func (ms *MapStore) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) (PutResult, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return PutResult{}, fmt.Errorf("reading body: %w", err)
	}
	sum := md5.Sum(b)

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.buckets[bucket] == nil {
		ms.buckets[bucket] = map[string]mapEntry{}
	}
	ms.buckets[bucket][key] = mapEntry{data: b, contentType: contentType}

	return PutResult{
		ETag:     fmt.Sprintf("%q", hex.EncodeToString(sum[:])),
		Location: fmt.Sprintf("mem://%s/%s", bucket, key),
	}, nil
}

// Keys returns the sorted keys stored in bucket.
func (ms *MapStore) Keys(bucket string) []string {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	keys := make([]string, 0, len(ms.buckets[bucket]))
	for k := range ms.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
