package draft

import "sync"

// OwnerLocks serializes work per owner. Entries are dropped once no
// goroutine holds or waits on them.
type OwnerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

// NewOwnerLocks creates an empty OwnerLocks.
func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{locks: make(map[string]*ownerLock)}
}

// Lock blocks until ownerID's lock is held and returns the function that releases it.
func (l *OwnerLocks) Lock(ownerID string) (unlock func()) {
	l.mu.Lock()
	ol, ok := l.locks[ownerID]
	if !ok {
		ol = &ownerLock{}
		l.locks[ownerID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ol.mu.Unlock()

			l.mu.Lock()
			ol.refs--
			if ol.refs == 0 {
				delete(l.locks, ownerID)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of owners with a held or awaited lock.
func (l *OwnerLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
