package db

import (
	"context"
	"time"

	"unimeal-backend-go/internal/models"
)

// IngredientRepository defines the storage operations for a user's ingredients.
type IngredientRepository interface {
	Subscribe(ctx context.Context, uid string, onNext func([]models.Ingredient), onError func(error)) Unsubscribe
	Add(ctx context.Context, uid string, ingredient models.Ingredient) (string, error) // Returns new ingredient ID
	Delete(ctx context.Context, uid, ingredientID string) error
}

// MealRepository defines the storage operations for planned meals.
type MealRepository interface {
	Subscribe(ctx context.Context, uid string, onNext func([]models.Meal), onError func(error)) Unsubscribe
	Add(ctx context.Context, uid string, meal models.Meal) (string, error)
	Delete(ctx context.Context, uid, mealID string) error
}

// TemplateRepository defines the storage operations for meal templates.
type TemplateRepository interface {
	Subscribe(ctx context.Context, uid string, onNext func([]models.MealTemplate), onError func(error)) Unsubscribe
	Add(ctx context.Context, uid string, template models.MealTemplate) (string, error)
	Delete(ctx context.Context, uid, templateID string) error
}

// BudgetRepository reads and writes the single budget document.
// Subscribe delivers nil while no budget has been saved.
type BudgetRepository interface {
	Subscribe(ctx context.Context, uid string, onNext func(*models.Budget), onError func(error)) Unsubscribe
	SetMonthlyLimit(ctx context.Context, uid string, limit float64, at time.Time) error
}

// OnboardingRepository reads and writes the onboarding preference document.
type OnboardingRepository interface {
	Subscribe(ctx context.Context, uid string, onNext func(*models.OnboardingState), onError func(error)) Unsubscribe
	MarkCompleted(ctx context.Context, uid string) error
}

// Repositories bundles every repository built over one DocumentStore.
type Repositories struct {
	Ingredients IngredientRepository
	Meals       MealRepository
	Templates   TemplateRepository
	Budget      BudgetRepository
	Onboarding  OnboardingRepository
}
