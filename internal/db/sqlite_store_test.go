package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

type collectionRecorder struct {
	mu   sync.Mutex
	last []Document
	seen int
	err  error
}

func (r *collectionRecorder) next(docs []Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = docs
	r.seen++
}

func (r *collectionRecorder) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *collectionRecorder) snapshot() ([]Document, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.seen
}

func TestSQLiteStoreCollectionSubscription(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	path := UserPath("u1", IngredientsCollection)

	rec := &collectionRecorder{}
	unsub := store.SubscribeCollection(ctx, path, rec.next, rec.fail)
	defer unsub()

	eventually(t, func() bool { _, n := rec.snapshot(); return n >= 1 })
	if docs, _ := rec.snapshot(); len(docs) != 0 {
		t.Fatalf("initial snapshot = %d docs, want 0", len(docs))
	}

	id, err := store.Create(ctx, path, map[string]interface{}{"name": "Milk", "price": 1.2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	eventually(t, func() bool { docs, _ := rec.snapshot(); return len(docs) == 1 })

	docs, _ := rec.snapshot()
	if docs[0].ID != id || docs[0].Data["name"] != "Milk" {
		t.Fatalf("unexpected document %+v", docs[0])
	}
	if _, ok := docs[0].Data["createdAt"].(time.Time); !ok {
		t.Fatalf("createdAt should be a time.Time, got %T", docs[0].Data["createdAt"])
	}

	// Writes to another user's collection must not leak into this subscription.
	if _, err := store.Create(ctx, UserPath("u2", IngredientsCollection), map[string]interface{}{"name": "Eggs"}); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, path+"/"+id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	eventually(t, func() bool { docs, _ := rec.snapshot(); return len(docs) == 0 })
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.err != nil {
		t.Fatalf("unexpected listener error: %v", rec.err)
	}
}

func TestSQLiteStoreDocumentUpsertMerges(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	path := UserPath("u1", BudgetDocument)

	var mu sync.Mutex
	var last *Document
	deliveries := 0
	unsub := store.SubscribeDocument(ctx, path, func(d *Document) {
		mu.Lock()
		defer mu.Unlock()
		last = d
		deliveries++
	}, func(err error) { t.Errorf("listener error: %v", err) })
	defer unsub()

	eventually(t, func() bool { mu.Lock(); defer mu.Unlock(); return deliveries >= 1 })
	mu.Lock()
	if last != nil {
		t.Fatal("missing document should be delivered as nil")
	}
	mu.Unlock()

	if err := store.Upsert(ctx, path, map[string]interface{}{"monthlyLimit": 200.0, "note": "keep"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(ctx, path, map[string]interface{}{"monthlyLimit": 150.0}); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last != nil && last.Data["monthlyLimit"] == 150.0
	})
	mu.Lock()
	defer mu.Unlock()
	if last.Data["note"] != "keep" {
		t.Fatalf("merge dropped an existing field: %+v", last.Data)
	}
	if last.ID != "current" {
		t.Fatalf("document id = %q, want current", last.ID)
	}
}

func TestSQLiteStoreUnsubscribeStopsDelivery(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	path := UserPath("u1", MealsCollection)

	rec := &collectionRecorder{}
	unsub := store.SubscribeCollection(ctx, path, rec.next, rec.fail)
	eventually(t, func() bool { _, n := rec.snapshot(); return n >= 1 })

	unsub()
	unsub()
	eventually(t, func() bool { return store.hub.len() == 0 })

	_, before := rec.snapshot()
	if _, err := store.Create(ctx, path, map[string]interface{}{"name": "Soup"}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, after := rec.snapshot(); after != before {
		t.Fatalf("received %d snapshots after unsubscribe", after-before)
	}
}
