package service

import "sync"

// eventLocks serializes mutations per event ID. Every transition is a
// read-modify-write of the whole session document, so two concurrent
// mutations of the same event must not interleave.
type eventLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEventLocks() *eventLocks {
	return &eventLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

// Acquire locks the given event and returns the matching unlock function.
func (l *eventLocks) Acquire(eventID string) func() {
	l.mu.Lock()
	lock, exists := l.locks[eventID]
	if !exists {
		lock = &sync.Mutex{}
		l.locks[eventID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
