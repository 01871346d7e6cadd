package db

import (
	"context"
	"sync"
)

// hub fans write notifications out to live subscriptions of the local
// stores. A subscription only learns that its path changed; it re-reads the
// authoritative state itself, so bursts of writes coalesce into one snapshot.
type hub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

type subscription struct {
	path   string
	notify chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*subscription]struct{})}
}

// subscribe registers path (a collection or document path) and returns the
// subscription with an initial notification already queued.
func (h *hub) subscribe(path string) (*subscription, func()) {
	sub := &subscription{path: path, notify: make(chan struct{}, 1)}
	// Queue the first delivery so the subscriber gets the current state
	// without waiting for a write.
	sub.poke()

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub, func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
	}
}

// publish notifies subscribers of docPath and of its parent collection.
func (h *hub) publish(docPath string) {
	parent, _ := splitDocPath(docPath)
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.path == docPath || sub.path == parent {
			sub.poke()
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// poke never blocks. If a notification is already queued the reader has
// not re-read yet, and that re-read will see this write as well.
func (s *subscription) poke() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// run calls deliver once per coalesced notification until ctx ends or
// deliver fails. A failure is reported once and ends the subscription.
func (s *subscription) run(ctx context.Context, deliver func(context.Context) error, onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			// deliver reads the store at this moment, not at publish time.
			if err := deliver(ctx); err != nil {
				if ctx.Err() == nil {
					onError(err)
				}
				return
			}
		}
	}
}

// localSubscribe wires a hub subscription to a goroutine running deliver.
func localSubscribe(ctx context.Context, h *hub, path string, deliver func(context.Context) error, onError func(error)) (Unsubscribe, *subscription) {
	ctx, cancel := context.WithCancel(ctx)
	sub, remove := h.subscribe(path)
	go func() {
		defer remove()
		sub.run(ctx, deliver, onError)
	}()
	return onceCancel(cancel), sub
}
