package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/prefs"
)

var refNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("store down")

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	store, err := db.OpenSQLite(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return Deps{
		Repos:      db.NewRepositories(store, zap.NewNop()),
		Prefs:      prefs.NewMemoryStore(),
		Thresholds: calc.DefaultThresholds(),
		Now:        func() time.Time { return refNow },
		Logger:     zap.NewNop(),
	}
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

// switchableBudget fails SetMonthlyLimit while fail is set.
type switchableBudget struct {
	db.BudgetRepository
	mu   sync.Mutex
	fail bool
}

func (s *switchableBudget) setFail(on bool) {
	s.mu.Lock()
	s.fail = on
	s.mu.Unlock()
}

func (s *switchableBudget) SetMonthlyLimit(ctx context.Context, uid string, limit float64, at time.Time) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.BudgetRepository.SetMonthlyLimit(ctx, uid, limit, at)
}

// gatedIngredients blocks Delete until release is closed, then returns err.
type gatedIngredients struct {
	db.IngredientRepository
	entered chan struct{}
	release chan struct{}
	err     error
}

func (g *gatedIngredients) Delete(ctx context.Context, uid, id string) error {
	close(g.entered)
	<-g.release
	if g.err != nil {
		return g.err
	}
	return g.IngredientRepository.Delete(ctx, uid, id)
}

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	err  error
}

func (c *fakeClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}
