package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/models"
)

func TestRepositoriesRequireIdentity(t *testing.T) {
	repos := NewRepositories(openTestStore(t), zap.NewNop())
	ctx := context.Background()

	var got error
	unsub := repos.Ingredients.Subscribe(ctx, "", func([]models.Ingredient) {
		t.Error("onNext must not be called without identity")
	}, func(err error) { got = err })
	unsub()
	if !errors.Is(got, apperrors.ErrNotSignedIn) {
		t.Fatalf("Subscribe error = %v, want not signed in", got)
	}

	if _, err := repos.Meals.Add(ctx, "", models.Meal{Name: "Soup", Weekday: models.Monday}); !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("Add error = %v, want not signed in", err)
	}
	if err := repos.Budget.SetMonthlyLimit(ctx, "", 10, time.Now()); !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("SetMonthlyLimit error = %v, want not signed in", err)
	}
}

func TestIngredientRepositoryRoundTrip(t *testing.T) {
	repos := NewRepositories(openTestStore(t), zap.NewNop())
	ctx := context.Background()

	var mu sync.Mutex
	var list []models.Ingredient
	unsub := repos.Ingredients.Subscribe(ctx, "u1", func(items []models.Ingredient) {
		mu.Lock()
		defer mu.Unlock()
		list = items
	}, func(err error) { t.Errorf("listener error: %v", err) })
	defer unsub()

	id, err := repos.Ingredients.Add(ctx, "u1", models.Ingredient{
		Name: "Spinach", Quantity: 250, Unit: models.UnitGram, Price: 1.49, ExpiryDate: "2024-06-12",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	eventually(t, func() bool { mu.Lock(); defer mu.Unlock(); return len(list) == 1 })
	mu.Lock()
	got := list[0]
	mu.Unlock()
	if got.ID != id || got.Name != "Spinach" || got.Quantity != 250 || got.Unit != models.UnitGram || got.Price != 1.49 {
		t.Fatalf("unexpected ingredient %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be stamped by the store")
	}

	if err := repos.Ingredients.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	eventually(t, func() bool { mu.Lock(); defer mu.Unlock(); return len(list) == 0 })
}

func TestBudgetAndOnboardingDocuments(t *testing.T) {
	repos := NewRepositories(openTestStore(t), zap.NewNop())
	ctx := context.Background()

	var mu sync.Mutex
	var budget *models.Budget
	var onboarding *models.OnboardingState
	budgetSeen, onboardingSeen := false, false

	defer repos.Budget.Subscribe(ctx, "u1", func(b *models.Budget) {
		mu.Lock()
		defer mu.Unlock()
		budget, budgetSeen = b, true
	}, func(err error) { t.Errorf("budget listener: %v", err) })()
	defer repos.Onboarding.Subscribe(ctx, "u1", func(o *models.OnboardingState) {
		mu.Lock()
		defer mu.Unlock()
		onboarding, onboardingSeen = o, true
	}, func(err error) { t.Errorf("onboarding listener: %v", err) })()

	eventually(t, func() bool { mu.Lock(); defer mu.Unlock(); return budgetSeen && onboardingSeen })
	mu.Lock()
	if budget != nil || onboarding != nil {
		t.Fatalf("documents should start absent, got %+v %+v", budget, onboarding)
	}
	mu.Unlock()

	at := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	if err := repos.Budget.SetMonthlyLimit(ctx, "u1", 220, at); err != nil {
		t.Fatal(err)
	}
	if err := repos.Onboarding.MarkCompleted(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return budget != nil && onboarding != nil
	})
	mu.Lock()
	defer mu.Unlock()
	if budget.MonthlyLimit != 220 || !budget.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected budget %+v", budget)
	}
	if !onboarding.Completed {
		t.Fatal("onboarding should be completed")
	}
}
