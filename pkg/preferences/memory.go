package preferences

import (
	"time"

	goCache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = time.Hour

// MemoryStore keeps records in process memory and expires them after FreshnessWindow.
type MemoryStore struct {
	cache *goCache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: goCache.New(FreshnessWindow, memoryCleanupInterval),
	}
}

func (m *MemoryStore) Get(key string) ([]byte, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (m *MemoryStore) Set(key string, value []byte) {
	m.cache.Set(key, value, goCache.DefaultExpiration)
}

func (m *MemoryStore) Remove(key string) {
	m.cache.Delete(key)
}

func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
