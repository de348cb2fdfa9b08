package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory vector cache with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      []float32
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store whose entries live for ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// Set stores a vector under key
func (ms *MemoryStore) Set(ctx context.Context, key string, value []float32) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = &memoryItem{
		value:      append([]float32(nil), value...),
		expireTime: ms.now().Add(ms.ttl),
	}
	return nil
}

// Get retrieves a vector by key. Missing and expired keys report false.
func (ms *MemoryStore) Get(ctx context.Context, key string) ([]float32, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists {
		return nil, false, nil
	}

	// Check if expired
	if ms.now().After(item.expireTime) {
		return nil, false, nil
	}

	return append([]float32(nil), item.value...), true, nil
}

// Delete removes a key
func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() error {
	ms.once.Do(func() { close(ms.stop) })
	return nil
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.removeExpired()
		}
	}
}

func (ms *MemoryStore) removeExpired() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	for key, item := range ms.items {
		if now.After(item.expireTime) {
			delete(ms.items, key)
		}
	}
}
