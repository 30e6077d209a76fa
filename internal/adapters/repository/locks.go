package repository

import "sync"

// keyedLocks hands out one mutex per owner so the dedup-check-then-append
// sequence runs as a single critical section per owner. Entries are never
// evicted; the population is bounded by the user count.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for key, creating it on first use.
func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	if m, ok := k.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[key] = m
	return m
}
