package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 32

// KeyedMutex serializes work per key (one consent subject, one detection
// cache entry) without a single global lock. Keys hash onto a fixed set of
// shards, so unrelated keys may occasionally share a shard.
type KeyedMutex struct {
	shards [shardCount]sync.Mutex
}

// NewKeyedMutex returns a ready KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the shard owning key.
func (m *KeyedMutex) Lock(key string) {
	m.shards[shardFor(key)].Lock()
}

// Unlock releases the shard owning key.
func (m *KeyedMutex) Unlock(key string) {
	m.shards[shardFor(key)].Unlock()
}

// WithLock runs fn while holding the shard for key.
func (m *KeyedMutex) WithLock(key string, fn func()) {
	m.Lock(key)
	defer m.Unlock(key)
	fn()
}

func shardFor(key string) uint32 {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key)) //nolint:errcheck // hash.Hash never fails
	return h.Sum32() % shardCount
}
