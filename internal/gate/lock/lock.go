// Package lock serialises work on shared identities (invite codes, emails,
// wallets) across goroutines and, with the redis backend, across instances.
package lock

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

// ErrLockTimeout is returned when keys could not be acquired before the
// context or the acquire timeout expired.
var ErrLockTimeout = errors.New("lock: timed out acquiring lock")

// Lease holds a set of keys until released.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker acquires every key or none. Keys are taken in sorted order so two
// callers locking overlapping sets cannot deadlock.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (Lease, error)
}

// normalize sorts and dedupes keys.
func normalize(keys []string) []string {
	out := lo.Uniq(keys)
	slices.Sort(out)
	return out
}

type entry struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker is an in-process keyed mutex.
type MemoryLocker struct {
	// Timeout bounds a single Acquire. Zero means wait for ctx only.
	Timeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryLocker(timeout time.Duration) *MemoryLocker {
	return &MemoryLocker{Timeout: timeout, entries: make(map[string]*entry)}
}

func (l *MemoryLocker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *MemoryLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, keys ...string) (Lease, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	keys = normalize(keys)
	held := make([]string, 0, len(keys))
	for _, k := range keys {
		e := l.ref(k)
		select {
		case e.ch <- struct{}{}:
			held = append(held, k)
		case <-ctx.Done():
			l.unref(k)
			l.release(held)
			return nil, ErrLockTimeout
		}
	}

	return &memoryLease{l: l, keys: held}, nil
}

func (l *MemoryLocker) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		e := l.entries[keys[i]]
		l.mu.Unlock()

		<-e.ch
		l.unref(keys[i])
	}
}

type memoryLease struct {
	l    *MemoryLocker
	keys []string
	once sync.Once
}

func (le *memoryLease) Release(context.Context) error {
	le.once.Do(func() { le.l.release(le.keys) })
	return nil
}
