package admin

import (
	"sort"
	"sync"
	"time"
)

// listing is an in-memory, newest-first copy of a collection. It is only
// changed after the backing store confirmed the matching write.
type listing[T any] struct {
	mu        sync.RWMutex
	items     []T
	id        func(T) string
	createdAt func(T) time.Time
}

func newListing[T any](id func(T) string, createdAt func(T) time.Time) *listing[T] {
	return &listing[T]{id: id, createdAt: createdAt}
}

func (l *listing[T]) all() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *listing[T]) get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, it := range l.items {
		if l.id(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// prepend adds a newly created item at the head.
func (l *listing[T]) prepend(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]T{v}, l.items...)
}

// put replaces the item with the same id in place, or inserts it at its
// newest-first position.
func (l *listing[T]) put(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.id(l.items[i]) == l.id(v) {
			l.items[i] = v
			return
		}
	}
	at := sort.Search(len(l.items), func(i int) bool {
		return !l.createdAt(l.items[i]).After(l.createdAt(v))
	})
	l.items = append(l.items, v)
	copy(l.items[at+1:], l.items[at:])
	l.items[at] = v
}

func (l *listing[T]) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.id(l.items[i]) == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

func (l *listing[T]) reset(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]T(nil), items...)
}
