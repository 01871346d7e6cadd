package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/prefs"
	"unimeal-backend-go/internal/viewmodel"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, idle time.Duration) (*sessionService, *fakeClock) {
	t.Helper()
	store, err := db.OpenSQLite(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	clock := &fakeClock{now: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	deps := viewmodel.Deps{
		Repos:      db.NewRepositories(store, zap.NewNop()),
		Prefs:      prefs.NewMemoryStore(),
		Thresholds: calc.DefaultThresholds(),
		Now:        clock.Now,
		Logger:     zap.NewNop(),
	}
	svc := newSessionService(deps, idle, zap.NewNop(), clock.Now)
	t.Cleanup(func() {
		svc.Shutdown()
		_ = store.Close()
	})
	return svc, clock
}

func TestSessionRequiresIdentity(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	if _, err := svc.Session(""); !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("Session(\"\") error = %v", err)
	}
}

func TestSessionIsReusedPerUser(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	a, err := svc.Session("u1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	b, _ := svc.Session("u1")
	c, _ := svc.Session("u2")
	if a != b {
		t.Fatal("same uid should return the same session")
	}
	if a == c {
		t.Fatal("different uids must not share a session")
	}
	if a.Meals() != a.Meals() {
		t.Fatal("pages should be created once per session")
	}
	if svc.Len() != 2 {
		t.Fatalf("Len = %d, want 2", svc.Len())
	}
}

func TestSessionPagesSettle(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	sess, _ := svc.Session("u1")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sess.Ingredients().Settled(ctx); err != nil {
		t.Fatalf("Ingredients().Settled: %v", err)
	}
	if got := sess.Ingredients().State().Status; got != viewmodel.StatusLoaded {
		t.Fatalf("status = %s", got)
	}
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	svc, clock := newTestService(t, 10*time.Minute)
	idle, _ := svc.Session("idle")
	held, _ := svc.Session("held")
	release := held.Hold()
	_ = idle.Dashboard()

	clock.Advance(5 * time.Minute)
	if n := svc.evictIdle(clock.Now()); n != 0 {
		t.Fatalf("evicted %d sessions before the timeout", n)
	}

	clock.Advance(6 * time.Minute)
	if n := svc.evictIdle(clock.Now()); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}
	again, _ := svc.Session("idle")
	if again == idle {
		t.Fatal("an evicted session must not be reused")
	}

	release()
	clock.Advance(11 * time.Minute)
	if n := svc.evictIdle(clock.Now()); n != 2 {
		t.Fatalf("evicted %d sessions after release, want 2", n)
	}
}

func TestShutdownClosesRegistry(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	if _, err := svc.Session("u1"); err != nil {
		t.Fatalf("Session: %v", err)
	}
	svc.Shutdown()
	svc.Shutdown()
	if _, err := svc.Session("u1"); !errors.Is(err, ErrSessionsClosed) {
		t.Fatalf("Session after Shutdown error = %v", err)
	}
	if svc.Len() != 0 {
		t.Fatalf("Len = %d after Shutdown", svc.Len())
	}
}
