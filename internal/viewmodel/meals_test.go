package viewmodel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/prefs"
)

func TestValidateMeal(t *testing.T) {
	tests := []struct {
		name string
		form models.MealForm
		msg  string
	}{
		{"blank name", models.MealForm{Name: "  ", Weekday: "monday"}, "Meal name is required."},
		{"long name", models.MealForm{Name: strings.Repeat("a", 101), Weekday: "monday"}, "Meal name must be 100 characters or fewer."},
		{"missing weekday", models.MealForm{Name: "Soup"}, "Please select a weekday."},
		{"unknown weekday", models.MealForm{Name: "Soup", Weekday: "funday"}, "Please select a weekday."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateMeal(tt.form)
			if apperrors.MessageOf(err) != tt.msg {
				t.Fatalf("message = %q, want %q", apperrors.MessageOf(err), tt.msg)
			}
		})
	}

	meal, err := validateMeal(models.MealForm{Name: strings.Repeat("é", 100), Weekday: "Friday"})
	if err != nil {
		t.Fatalf("100 characters should be accepted: %v", err)
	}
	if meal.Weekday != models.Friday {
		t.Fatalf("Weekday = %q", meal.Weekday)
	}
}

func TestExportText(t *testing.T) {
	meals := []models.Meal{
		{Name: "Curry", Weekday: models.Wednesday},
		{Name: "Pasta", Weekday: models.Monday},
		{Name: "Salad", Weekday: models.Monday},
		{Name: "Mystery", Weekday: "someday"},
	}
	want := "Monday\n- Pasta\n- Salad\n\nWednesday\n- Curry\n"
	if got := exportText(meals); got != want {
		t.Fatalf("exportText =\n%q\nwant\n%q", got, want)
	}
	if got := exportText(nil); got != "" {
		t.Fatalf("empty plan export = %q", got)
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename(refNow); got != "unimeal-meal-plan-2024-06-10.txt" {
		t.Fatalf("ExportFilename = %q", got)
	}
}

func TestNewestFirst(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	meals := []models.Meal{
		{Name: "old", CreatedAt: base},
		{Name: "new", CreatedAt: base.Add(2 * time.Hour)},
		{Name: "mid", CreatedAt: base.Add(time.Hour)},
	}
	got := newestFirst(meals, func(m models.Meal) time.Time { return m.CreatedAt })
	if got[0].Name != "new" || got[1].Name != "mid" || got[2].Name != "old" {
		t.Fatalf("order = %v", got)
	}
	if meals[0].Name != "old" {
		t.Fatal("input must not be reordered")
	}
}

func TestMealsPageAddFilterAndWeekGrid(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := NewMealsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	for _, f := range []models.MealForm{
		{Name: "Pasta", Weekday: "monday"},
		{Name: "Curry", Weekday: "wednesday"},
		{Name: "Soup", Weekday: "monday"},
	} {
		if _, err := page.Add(ctx, f); err != nil {
			t.Fatalf("Add(%s): %v", f.Name, err)
		}
	}
	eventually(t, func() bool { return page.State().Total == 3 })

	if err := page.SetWeekdayFilter("funday"); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("SetWeekdayFilter error = %v", err)
	}
	if err := page.SetWeekdayFilter(models.Monday); err != nil {
		t.Fatalf("SetWeekdayFilter: %v", err)
	}
	s := page.State()
	if len(s.Meals) != 2 || s.Total != 3 {
		t.Fatalf("filtered meals = %d of %d", len(s.Meals), s.Total)
	}
	for _, m := range s.Meals {
		if m.Weekday != models.Monday || m.WeekdayLabel != "Monday" {
			t.Fatalf("unexpected meal %+v", m)
		}
	}
	if text := page.ExportText(); strings.Contains(text, "Curry") || !strings.HasPrefix(text, "Monday\n") {
		t.Fatalf("export should follow the filter, got %q", text)
	}

	grid := page.WeekGrid()
	if len(grid) != 7 || len(grid[0].Meals) != 2 || len(grid[2].Meals) != 0 {
		t.Fatalf("unexpected grid %+v", grid)
	}

	if err := page.SetWeekdayFilter(""); err != nil {
		t.Fatalf("clear filter: %v", err)
	}
	if grid := page.WeekGrid(); len(grid[2].Meals) != 1 || grid[2].Label != "Wednesday" {
		t.Fatalf("unexpected grid %+v", grid)
	}
}

func TestMealsPageDelete(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := NewMealsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	id, err := page.Add(ctx, models.MealForm{Name: "Tacos", Weekday: "friday"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	eventually(t, func() bool { return page.State().Total == 1 })

	if err := page.Delete(ctx, id, nil); !errors.Is(err, apperrors.ErrConfirmationRequired) {
		t.Fatalf("Delete without confirmer = %v", err)
	}
	if err := page.Delete(ctx, id, AlwaysConfirm); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	eventually(t, func() bool { return page.State().Total == 0 })
}

func TestMealsPageTemplates(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := NewMealsPage(deps, "u1")
	page.Start(ctx)
	defer page.Close()

	withDay, err := page.SaveTemplate(ctx, models.MealForm{Name: "Chili", Weekday: "thursday"})
	if err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	noDay, err := page.SaveTemplate(ctx, models.MealForm{Name: "Omelette"})
	if err != nil {
		t.Fatalf("SaveTemplate without weekday: %v", err)
	}
	if _, err := page.SaveTemplate(ctx, models.MealForm{Name: ""}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("SaveTemplate blank error = %v", err)
	}
	eventually(t, func() bool { return len(page.State().Templates) == 2 })

	if _, err := page.AddFromTemplate(ctx, withDay); err != nil {
		t.Fatalf("AddFromTemplate: %v", err)
	}
	if _, err := page.AddFromTemplate(ctx, noDay); err != nil {
		t.Fatalf("AddFromTemplate fallback: %v", err)
	}
	if _, err := page.AddFromTemplate(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("AddFromTemplate missing error = %v", err)
	}
	eventually(t, func() bool { return page.State().Total == 2 })

	days := map[string]models.Weekday{}
	for _, m := range page.State().Meals {
		days[m.Name] = m.Weekday
	}
	if days["Chili"] != models.Thursday || days["Omelette"] != FallbackWeekday {
		t.Fatalf("weekdays = %v", days)
	}

	if err := page.DeleteTemplate(ctx, noDay, AlwaysConfirm); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	eventually(t, func() bool { return len(page.State().Templates) == 1 })
}

func TestMealsPageViewModePersists(t *testing.T) {
	deps := newTestDeps(t)
	page := NewMealsPage(deps, "u1")
	page.Start(context.Background())

	if page.State().ViewMode != prefs.ViewList {
		t.Fatalf("default view mode = %q", page.State().ViewMode)
	}
	if err := page.SetViewMode("grid"); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("SetViewMode invalid error = %v", err)
	}
	if err := page.SetViewMode(prefs.ViewWeek); err != nil {
		t.Fatalf("SetViewMode: %v", err)
	}
	page.Close()

	again := NewMealsPage(deps, "u1")
	again.Start(context.Background())
	defer again.Close()
	if again.State().ViewMode != prefs.ViewWeek {
		t.Fatalf("view mode after reopen = %q", again.State().ViewMode)
	}
}

func TestMealsPageViewModeSurvivesStartWithDefaultPrefs(t *testing.T) {
	deps := newTestDeps(t)
	deps.Prefs = nil
	page := NewMealsPage(deps, "u1")

	if err := page.SetViewMode(prefs.ViewWeek); err != nil {
		t.Fatalf("SetViewMode: %v", err)
	}
	page.Start(context.Background())
	defer page.Close()

	if got := page.State().ViewMode; got != prefs.ViewWeek {
		t.Fatalf("view mode after Start = %q, want %q", got, prefs.ViewWeek)
	}
}

func TestMealsPageCopyExport(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	page := NewMealsPage(deps, "u1")
	page.copiedFor = 30 * time.Millisecond
	page.Start(ctx)
	defer page.Close()

	if _, err := page.Add(ctx, models.MealForm{Name: "Stew", Weekday: "sunday"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	eventually(t, func() bool { return page.State().Total == 1 })

	clip := &fakeClipboard{}
	if err := page.CopyExport(ctx, clip); err != nil {
		t.Fatalf("CopyExport: %v", err)
	}
	if clip.text != "Sunday\n- Stew\n" {
		t.Fatalf("clipboard = %q", clip.text)
	}
	if !page.State().Copied {
		t.Fatal("Copied should be set right after copying")
	}
	eventually(t, func() bool { return !page.State().Copied })

	failing := &fakeClipboard{err: errors.New("no display")}
	if err := page.CopyExport(ctx, failing); apperrors.KindOf(err) != apperrors.KindWriteFailed {
		t.Fatalf("CopyExport error = %v", err)
	}

	name, content := page.DownloadExport(refNow)
	if name != "unimeal-meal-plan-2024-06-10.txt" || content != "Sunday\n- Stew\n" {
		t.Fatalf("DownloadExport = %q, %q", name, content)
	}
}
