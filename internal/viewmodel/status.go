package viewmodel

import (
	"context"
	"sync"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/observe"
)

// Status is the loading state of a page.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusLoaded        Status = "loaded"
	StatusError         Status = "error"
)

// Listener names passed to await.
const (
	sourceBudget      = string(apperrors.ResourceBudget)
	sourceIngredients = string(apperrors.ResourceIngredients)
	sourceMeals       = string(apperrors.ResourceMeals)
	sourceTemplates   = string(apperrors.ResourceTemplates)
)

// lifecycle owns a page's subscriptions and observers. Emission is
// serialized so observers see states in the order they were derived.
type lifecycle[S any] struct {
	subMu   sync.Mutex
	unsubs  []db.Unsubscribe
	closed  bool
	waiting map[string]bool

	emitMu    sync.Mutex
	listeners observe.Listeners[S]
}

// track keeps unsubs for Close. After Close they are released at once.
func (l *lifecycle[S]) track(unsubs ...db.Unsubscribe) {
	l.subMu.Lock()
	if !l.closed {
		l.unsubs = append(l.unsubs, unsubs...)
		l.subMu.Unlock()
		return
	}
	l.subMu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

func (l *lifecycle[S]) release() {
	l.subMu.Lock()
	unsubs := l.unsubs
	l.unsubs = nil
	l.closed = true
	l.subMu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// await names the listeners that must report before the page is settled.
func (l *lifecycle[S]) await(names ...string) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	l.waiting = make(map[string]bool, len(names))
	for _, n := range names {
		l.waiting[n] = true
	}
}

// heard marks a listener as reported. Call it before publishing the
// snapshot so settle observes both together.
func (l *lifecycle[S]) heard(name string) {
	l.subMu.Lock()
	delete(l.waiting, name)
	l.subMu.Unlock()
}

func (l *lifecycle[S]) allHeard() bool {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	return len(l.waiting) == 0
}

func (l *lifecycle[S]) isClosed() bool {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	return l.closed
}

// OnChange registers fn for every state change and returns a cancel func.
// fn runs on the goroutine that caused the change and must not call back
// into the page's mutating methods.
func (l *lifecycle[S]) OnChange(fn func(S)) func() {
	return l.listeners.Add(fn)
}

func (l *lifecycle[S]) publish(state func() S) {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	l.listeners.Emit(state())
}

// settle blocks until current reports a final status and every awaited
// listener has reported, or ctx ends. An error status settles at once.
func settle[S any](ctx context.Context, l *lifecycle[S], current func() Status) error {
	// One buffered slot is enough: a pending wake-up already forces a
	// re-read of current, so extra notifications can be dropped.
	changed := make(chan struct{}, 1)
	cancel := l.OnChange(func(S) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()
	// Check after subscribing so a change published between the first
	// read and OnChange is not missed.
	for {
		switch s := current(); {
		case s == StatusError:
			return nil
		case s == StatusLoaded && l.allHeard():
			// Loaded from one listener is not enough while another
			// (say templates) has yet to deliver its first snapshot.
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
