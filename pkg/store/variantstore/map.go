package variantstore

import (
	"context"
	"sort"
	"sync"

	"github.com/resizeto/resizeto/pkg/store"
)

// MapVariantIndex is an in-memory [VariantIndex].
type MapVariantIndex struct {
	mu       sync.RWMutex
	variants map[string]Variant
}

var _ VariantIndex = (*MapVariantIndex)(nil)

func NewMapVariantIndex() *MapVariantIndex {
	return &MapVariantIndex{variants: map[string]Variant{}}
}

func (m *MapVariantIndex) Get(ctx context.Context, key string) (Variant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.variants[key]
	if !ok {
		return Variant{}, store.ErrNotFound
	}
	return v, nil
}

func (m *MapVariantIndex) Put(ctx context.Context, variant Variant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.variants[variant.Key] = variant
	return nil
}

func (m *MapVariantIndex) List(ctx context.Context, source string) ([]Variant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var variants []Variant
	for _, v := range m.variants {
		if v.Source == source {
			variants = append(variants, v)
		}
	}
	sort.Slice(variants, func(i, j int) bool { return variants[i].Key < variants[j].Key })
	return variants, nil
}

// Len returns the number of recorded variants.
func (m *MapVariantIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.variants)
}
