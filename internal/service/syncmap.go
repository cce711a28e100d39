package service

import "sync"

// SyncMap is a type-safe concurrent map guarded by a RWMutex. Reads of
// existing sessions vastly outnumber inserts, which suits a RWMutex better
// than sync.Map.
type SyncMap[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// NewSyncMap creates an empty map.
func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{
		m: make(map[K]V),
	}
}

// Load returns the value stored for key. The ok result reports whether a value
// was found.
func (sm *SyncMap[K, V]) Load(key K) (value V, ok bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	value, ok = sm.m[key]
	return
}

// LoadOrCreate returns the value for key, creating it with create when absent.
// create runs at most once per stored value, under the write lock.
func (sm *SyncMap[K, V]) LoadOrCreate(key K, create func() V) (actual V, loaded bool) {
	sm.mu.RLock()
	actual, loaded = sm.m[key]
	sm.mu.RUnlock()
	if loaded {
		return actual, true
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	// Another goroutine may have stored it between the two locks.
	if actual, loaded = sm.m[key]; loaded {
		return actual, true
	}

	actual = create()
	sm.m[key] = actual
	return actual, false
}

// Delete removes key and reports whether it was present.
func (sm *SyncMap[K, V]) Delete(key K) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.m[key]
	delete(sm.m, key)
	return ok
}

// Len returns the number of entries.
func (sm *SyncMap[K, V]) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.m)
}

// Keys returns a snapshot of the keys in no particular order.
func (sm *SyncMap[K, V]) Keys() []K {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	keys := make([]K, 0, len(sm.m))
	for k := range sm.m {
		keys = append(keys, k)
	}
	return keys
}
