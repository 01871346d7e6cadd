package viewmodel

import (
	"context"
	"errors"
	"testing"
	"time"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/models"
)

func TestBudgetPageSignedOut(t *testing.T) {
	page := NewBudgetPage(newTestDeps(t), "")
	page.Start(context.Background())
	defer page.Close()

	s := page.State()
	if s.Status != StatusError || s.Error != msgBudgetSignedOutView {
		t.Fatalf("state = %+v, want signed-out error", s)
	}
	err := page.SaveLimit(context.Background(), "100")
	if !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("SaveLimit error = %v, want not signed in", err)
	}
	if page.State().Error != msgBudgetSignedOutSave {
		t.Fatalf("Error = %q", page.State().Error)
	}
}

func TestBudgetPageDerivesRemaining(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := NewBudgetPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	eventually(t, func() bool { return page.State().Status == StatusLoaded })
	if s := page.State(); s.Limit != nil || s.Remaining != nil || s.LimitLabel != calc.Placeholder {
		t.Fatalf("expected no limit yet, got %+v", s)
	}

	for _, price := range []float64{30, 50} {
		if _, err := deps.Repos.Ingredients.Add(ctx, "u1", models.Ingredient{
			Name: "Item", Quantity: 1, Unit: models.UnitPieces, Price: price, ExpiryDate: "2024-07-01",
		}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if err := page.SaveLimit(ctx, " 100 "); err != nil {
		t.Fatalf("SaveLimit: %v", err)
	}

	eventually(t, func() bool { return page.State().Spent == 80 })
	s := page.State()
	if s.Limit == nil || *s.Limit != 100 {
		t.Fatalf("Limit = %v, want 100", s.Limit)
	}
	if s.Remaining == nil || *s.Remaining != 20 {
		t.Fatalf("Remaining = %v, want 20", s.Remaining)
	}
	if s.BudgetStatus == nil || s.BudgetStatus.Tone != calc.ToneWarning || s.BudgetStatus.Reason != calc.ReasonLow {
		t.Fatalf("BudgetStatus = %+v, want low warning", s.BudgetStatus)
	}
	if s.Saving {
		t.Fatal("Saving should be cleared after the write")
	}
}

func TestBudgetPageRejectsInvalidLimit(t *testing.T) {
	deps := newTestDeps(t)
	page := NewBudgetPage(deps, "u1")
	page.Start(context.Background())
	defer page.Close()

	for _, input := range []string{"", "0", "-5", "abc", "NaN", "Inf"} {
		t.Run(input, func(t *testing.T) {
			err := page.SaveLimit(context.Background(), input)
			if apperrors.KindOf(err) != apperrors.KindValidation {
				t.Fatalf("SaveLimit(%q) error = %v, want validation", input, err)
			}
			if page.State().Error != msgBudgetInvalidLimit {
				t.Fatalf("Error = %q", page.State().Error)
			}
		})
	}
	if page.State().Limit != nil {
		t.Fatal("no limit should have been written")
	}
}

func TestBudgetPageWriteFailureKeepsLimit(t *testing.T) {
	deps := newTestDeps(t)
	budget := &switchableBudget{BudgetRepository: deps.Repos.Budget}
	deps.Repos.Budget = budget
	ctx := context.Background()

	page := NewBudgetPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	if err := page.SaveLimit(ctx, "100"); err != nil {
		t.Fatalf("SaveLimit: %v", err)
	}
	budget.setFail(true)
	err := page.SaveLimit(ctx, "250")
	if apperrors.KindOf(err) != apperrors.KindWriteFailed {
		t.Fatalf("SaveLimit error = %v, want write failed", err)
	}
	s := page.State()
	if s.Error != msgBudgetSaveFailed {
		t.Fatalf("Error = %q", s.Error)
	}
	if s.Limit == nil || *s.Limit != 100 {
		t.Fatalf("Limit = %v, want prior 100", s.Limit)
	}
}

func TestBudgetPageEmitsOnChange(t *testing.T) {
	deps := newTestDeps(t)
	page := NewBudgetPage(deps, "u1")

	states := make(chan BudgetState, 64)
	cancel := page.OnChange(func(s BudgetState) {
		select {
		case states <- s:
		default:
		}
	})
	defer cancel()

	page.Start(context.Background())
	defer page.Close()

	first := <-states
	if first.Status != StatusLoading {
		t.Fatalf("first emitted status = %s, want loading", first.Status)
	}
	eventually(t, func() bool { return page.State().Status == StatusLoaded })
}

func TestBudgetPageSettledWaitsForEveryListener(t *testing.T) {
	deps := newTestDeps(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := deps.Repos.Budget.SetMonthlyLimit(ctx, "u1", 50, refNow); err != nil {
		t.Fatalf("SetMonthlyLimit: %v", err)
	}
	if _, err := deps.Repos.Ingredients.Add(ctx, "u1", models.Ingredient{
		Name: "Rice", Quantity: 1, Unit: models.UnitKilogram, Price: 4, ExpiryDate: "2024-07-01",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	page := NewBudgetPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()
	if err := page.Settled(ctx); err != nil {
		t.Fatalf("Settled: %v", err)
	}

	s := page.State()
	if s.Limit == nil || *s.Limit != 50 || s.Spent != 4 {
		t.Fatalf("state after Settled = %+v, want limit 50 and spent 4", s)
	}
}
