package viewmodel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/models"
)

// errorHook remembers the onError callback of the last subscription so a
// test can fail the listener after data has arrived.
type errorHook struct {
	mu      sync.Mutex
	onError func(error)
}

func (h *errorHook) capture(onError func(error)) {
	h.mu.Lock()
	h.onError = onError
	h.mu.Unlock()
}

func (h *errorHook) fail(t *testing.T, err error) {
	t.Helper()
	h.mu.Lock()
	onError := h.onError
	h.mu.Unlock()
	if onError == nil {
		t.Fatal("listener was never subscribed")
	}
	onError(err)
}

type hookedIngredients struct {
	db.IngredientRepository
	errorHook
}

func (r *hookedIngredients) Subscribe(ctx context.Context, uid string, onNext func([]models.Ingredient), onError func(error)) db.Unsubscribe {
	r.capture(onError)
	return r.IngredientRepository.Subscribe(ctx, uid, onNext, onError)
}

type hookedMeals struct {
	db.MealRepository
	errorHook
}

func (r *hookedMeals) Subscribe(ctx context.Context, uid string, onNext func([]models.Meal), onError func(error)) db.Unsubscribe {
	r.capture(onError)
	return r.MealRepository.Subscribe(ctx, uid, onNext, onError)
}

func TestIngredientsPageListenerErrorKeepsData(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	hooked := &hookedIngredients{IngredientRepository: deps.Repos.Ingredients}
	deps.Repos.Ingredients = hooked

	if _, err := hooked.Add(ctx, "u1", models.Ingredient{
		Name: "Milk", Quantity: 1, Unit: models.UnitLitre, Price: 1.2, ExpiryDate: "2024-06-11",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	page := NewIngredientsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()
	eventually(t, func() bool { return len(page.State().Items) == 1 })

	hooked.fail(t, errors.New("stream reset"))

	s := page.State()
	if s.Status != StatusError {
		t.Errorf("Status = %q, want error", s.Status)
	}
	if s.Error != "Failed to load ingredients. Please try again." {
		t.Errorf("Error = %q", s.Error)
	}
	if len(s.Items) != 1 || s.Items[0].Name != "Milk" || s.Total != 1 {
		t.Errorf("last known items lost: %+v", s.Items)
	}
}

func TestMealsPageListenerErrorShowsPermissionHint(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	hooked := &hookedMeals{MealRepository: deps.Repos.Meals}
	deps.Repos.Meals = hooked

	if _, err := hooked.Add(ctx, "u1", models.Meal{Name: "Pasta", Weekday: models.Monday}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	page := NewMealsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()
	eventually(t, func() bool { return len(page.State().Meals) == 1 })

	denied := apperrors.New(apperrors.KindPermissionDenied, errors.New("rpc error: code = PermissionDenied"))
	hooked.fail(t, denied)

	s := page.State()
	want := apperrors.ListenMessage(denied, apperrors.ResourceMeals)
	if s.Error != want {
		t.Errorf("Error = %q, want %q", s.Error, want)
	}
	if want != "Permission denied. Make sure Firestore rules allow access to users/{uid}/meals and are published." {
		t.Errorf("unexpected remediation text %q", want)
	}
	if s.Status != StatusError || len(s.Meals) != 1 || s.Meals[0].Name != "Pasta" {
		t.Errorf("state after error = %+v", s)
	}
	if got := page.ExportText(); got != "Monday\n- Pasta\n" {
		t.Errorf("export after error = %q", got)
	}
}
