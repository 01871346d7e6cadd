package viewmodel

import (
	"context"
	"errors"
	"testing"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/models"
)

func TestValidateIngredient(t *testing.T) {
	valid := models.IngredientForm{Name: "Milk", Quantity: "1", Unit: "L", Price: "1.20", ExpiryDate: "2024-06-11"}

	tests := []struct {
		name  string
		edit  func(f *models.IngredientForm)
		field string
		msg   string
	}{
		{"blank name", func(f *models.IngredientForm) { f.Name = "   " }, "name", "Ingredient name is required."},
		{"zero quantity", func(f *models.IngredientForm) { f.Quantity = "0" }, "quantity", "Quantity must be greater than 0."},
		{"text quantity", func(f *models.IngredientForm) { f.Quantity = "lots" }, "quantity", "Quantity must be greater than 0."},
		{"infinite quantity", func(f *models.IngredientForm) { f.Quantity = "Inf" }, "quantity", "Quantity must be greater than 0."},
		{"infinity quantity", func(f *models.IngredientForm) { f.Quantity = "infinity" }, "quantity", "Quantity must be greater than 0."},
		{"unknown unit", func(f *models.IngredientForm) { f.Unit = "cups" }, "unit", "Please select a unit."},
		{"negative price", func(f *models.IngredientForm) { f.Price = "-1" }, "price", "Price must be 0 or greater."},
		{"text price", func(f *models.IngredientForm) { f.Price = "cheap" }, "price", "Price must be 0 or greater."},
		{"infinite price", func(f *models.IngredientForm) { f.Price = "+Inf" }, "price", "Price must be 0 or greater."},
		{"infinity price", func(f *models.IngredientForm) { f.Price = "Infinity" }, "price", "Price must be 0 or greater."},
		{"missing expiry", func(f *models.IngredientForm) { f.ExpiryDate = "" }, "expiryDate", "Expiry date is required."},
		{"bad expiry", func(f *models.IngredientForm) { f.ExpiryDate = "11/06/2024" }, "expiryDate", "Expiry date must be a valid date (YYYY-MM-DD)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.edit(&form)
			_, err := validateIngredient(form)
			if apperrors.KindOf(err) != apperrors.KindValidation {
				t.Fatalf("error = %v, want validation", err)
			}
			if apperrors.FieldOf(err) != tt.field || apperrors.MessageOf(err) != tt.msg {
				t.Fatalf("got %s %q, want %s %q", apperrors.FieldOf(err), apperrors.MessageOf(err), tt.field, tt.msg)
			}
		})
	}

	t.Run("empty price is zero", func(t *testing.T) {
		form := valid
		form.Price = ""
		ing, err := validateIngredient(form)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ing.Price != 0 || ing.Unit != models.UnitLitre || ing.Quantity != 1 {
			t.Fatalf("unexpected ingredient %+v", ing)
		}
	})
}

func TestIngredientsPageFilters(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := NewIngredientsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	forms := []models.IngredientForm{
		{Name: "Rice", Quantity: "1", Unit: "kg", Price: "2", ExpiryDate: "2024-07-30"},
		{Name: "Spinach", Quantity: "200", Unit: "g", Price: "1.5", ExpiryDate: "2024-06-12"},
		{Name: "Milk", Quantity: "1", Unit: "L", Price: "1", ExpiryDate: "2024-06-11"},
	}
	for _, f := range forms {
		if _, err := page.Add(ctx, f); err != nil {
			t.Fatalf("Add(%s): %v", f.Name, err)
		}
	}
	eventually(t, func() bool { return page.State().Total == 3 })

	s := page.State()
	if got := itemNames(s.Items); !equalStrings(got, []string{"Milk", "Spinach", "Rice"}) {
		t.Fatalf("order = %v", got)
	}
	if s.ExpiringSoonCount != 2 {
		t.Fatalf("ExpiringSoonCount = %d, want 2", s.ExpiringSoonCount)
	}

	tests := []struct {
		filter IngredientFilter
		want   []string
	}{
		{IngredientFilter{Query: "RI"}, []string{"Rice"}},
		{IngredientFilter{ExpiringOnly: true}, []string{"Milk", "Spinach"}},
		{IngredientFilter{Query: "milk", ExpiringOnly: true}, []string{"Milk"}},
		{IngredientFilter{Query: "rice", ExpiringOnly: true}, []string{}},
	}
	for _, tt := range tests {
		v := page.View(tt.filter)
		if got := itemNames(v.Items); !equalStrings(got, tt.want) {
			t.Errorf("View(%+v) = %v, want %v", tt.filter, got, tt.want)
		}
		if v.ExpiringSoonCount != 2 {
			t.Errorf("View(%+v) ExpiringSoonCount = %d, want 2 over the full list", tt.filter, v.ExpiringSoonCount)
		}
	}

	page.SetQuery("spin")
	page.SetExpiringOnly(true)
	if got := itemNames(page.State().Items); !equalStrings(got, []string{"Spinach"}) {
		t.Fatalf("State with page filter = %v", got)
	}
}

func TestIngredientsPageDeleteNeedsConfirmation(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := NewIngredientsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	id, err := page.Add(ctx, models.IngredientForm{Name: "Eggs", Quantity: "6", Unit: "pieces", ExpiryDate: "2024-06-20"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	eventually(t, func() bool { return page.State().Total == 1 })

	if err := page.Delete(ctx, id, NeverConfirm); !errors.Is(err, apperrors.ErrConfirmationRequired) {
		t.Fatalf("Delete declined error = %v", err)
	}
	if page.State().Total != 1 {
		t.Fatal("declined delete must not remove the ingredient")
	}

	var prompt string
	c := ConfirmFunc(func(_ context.Context, p string) (bool, error) { prompt = p; return true, nil })
	if err := page.Delete(ctx, id, c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if prompt != DeleteIngredientPrompt {
		t.Fatalf("prompt = %q", prompt)
	}
	eventually(t, func() bool { return page.State().Total == 0 })
}

func TestIngredientsPageRejectsConcurrentDelete(t *testing.T) {
	deps := newTestDeps(t)
	gate := &gatedIngredients{
		IngredientRepository: deps.Repos.Ingredients,
		entered:              make(chan struct{}),
		release:              make(chan struct{}),
		err:                  errStoreDown,
	}
	deps.Repos.Ingredients = gate
	ctx := context.Background()

	page := NewIngredientsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	id, err := page.Add(ctx, models.IngredientForm{Name: "Bread", Quantity: "1", Unit: "pack", ExpiryDate: "2024-06-13"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	eventually(t, func() bool { return page.State().Total == 1 })

	done := make(chan error, 1)
	go func() { done <- page.Delete(ctx, id, AlwaysConfirm) }()
	<-gate.entered

	if !page.State().Items[0].Deleting {
		t.Fatal("item should be marked as deleting")
	}
	if err := page.Delete(ctx, id, AlwaysConfirm); apperrors.KindOf(err) != apperrors.KindConflict {
		t.Fatalf("second Delete error = %v, want conflict", err)
	}

	close(gate.release)
	if err := <-done; apperrors.KindOf(err) != apperrors.KindWriteFailed {
		t.Fatalf("Delete error = %v, want write failed", err)
	}
	s := page.State()
	if s.Error != msgIngredientDeleteFailed || s.Items[0].Deleting {
		t.Fatalf("state after failed delete = %+v", s)
	}
}

func TestIngredientsPageSignedOut(t *testing.T) {
	page := NewIngredientsPage(newTestDeps(t), "")
	page.Start(context.Background())
	defer page.Close()

	if s := page.State(); s.Status != StatusError || s.Error != msgIngredientsSignedOutView {
		t.Fatalf("state = %+v", s)
	}
	_, err := page.Add(context.Background(), models.IngredientForm{Name: "Milk"})
	if !errors.Is(err, apperrors.ErrNotSignedIn) {
		t.Fatalf("Add error = %v", err)
	}
}

func TestIngredientsPageAddRejectsInfinitePrice(t *testing.T) {
	deps := newTestDeps(t)
	page := NewIngredientsPage(deps, "u1")
	page.Start(context.Background())
	defer page.Close()

	_, err := page.Add(context.Background(), models.IngredientForm{
		Name: "Milk", Quantity: "1", Unit: "L", Price: "Inf", ExpiryDate: "2024-06-11",
	})
	if apperrors.KindOf(err) != apperrors.KindValidation || apperrors.FieldOf(err) != "price" {
		t.Fatalf("Add error = %v, want price validation", err)
	}
	if s := page.State(); s.Error != "Price must be 0 or greater." || s.Adding {
		t.Fatalf("state = %+v", s)
	}
}

func itemNames(items []IngredientView) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
