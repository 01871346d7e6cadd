// Package observe provides the listener registry shared by the live views.
package observe

import (
	"sort"
	"sync"
)

// Listeners is a set of callbacks receiving state snapshots. The zero value is ready to use.
type Listeners[S any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(S)
}

// Add registers fn and returns a func that removes it.
func (l *Listeners[S]) Add(fn func(S)) func() {
	l.mu.Lock()
	if l.fns == nil {
		l.fns = make(map[int]func(S))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// Emit calls every listener with s, in registration order. Listeners run on
// the caller's goroutine and must not block.
func (l *Listeners[S]) Emit(s S) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(S), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Len returns the number of registered listeners.
func (l *Listeners[S]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
