package refs

import "sync"

// keyedMutex serializes work per key and releases entries once no holder or waiter remains.
type keyedMutex struct {
	mutex   sync.Mutex
	entries map[string]*keyedMutexEntry
}

type keyedMutexEntry struct {
	mutex      sync.Mutex
	references int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*keyedMutexEntry)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (locks *keyedMutex) Lock(key string) func() {
	locks.mutex.Lock()
	entry, exists := locks.entries[key]
	if !exists {
		entry = &keyedMutexEntry{}
		locks.entries[key] = entry
	}
	entry.references++
	locks.mutex.Unlock()

	entry.mutex.Lock()

	return func() {
		entry.mutex.Unlock()

		locks.mutex.Lock()
		entry.references--
		if entry.references == 0 {
			delete(locks.entries, key)
		}
		locks.mutex.Unlock()
	}
}

func (locks *keyedMutex) size() int {
	locks.mutex.Lock()
	defer locks.mutex.Unlock()
	return len(locks.entries)
}
