package locker

import (
	"context"
	"sync"
	"time"
)

// KeyedLock serializes work per key. Entries are created lazily and never
// removed, so a key's lock identity is stable for the process lifetime.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[uint]chan struct{}
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{
		locks: make(map[uint]chan struct{}),
	}
}

func (l *KeyedLock) get(key uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	return ch
}

// Acquire blocks until the key's lock is held or ctx is done.
func (l *KeyedLock) Acquire(ctx context.Context, key uint) error {
	select {
	case l.get(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire waits at most d for the key's lock. It reports whether the
// lock was acquired.
func (l *KeyedLock) TryAcquire(key uint, d time.Duration) bool {
	ch := l.get(key)
	select {
	case ch <- struct{}{}:
		return true
	default:
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// Release must only be called by the holder.
func (l *KeyedLock) Release(key uint) {
	select {
	case <-l.get(key):
	default:
		panic("locker: release of unheld lock")
	}
}
