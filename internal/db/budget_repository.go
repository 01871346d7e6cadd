package db

import (
	"context"
	"time"

	"unimeal-backend-go/internal/models"
)

type budgetRepository struct {
	store DocumentStore
}

func (r *budgetRepository) Subscribe(ctx context.Context, uid string, onNext func(*models.Budget), onError func(error)) Unsubscribe {
	return subscribeSingle(ctx, r.store, uid, BudgetDocument, onNext, onError)
}

// SetMonthlyLimit merges the limit into the budget document, creating it on first save.
func (r *budgetRepository) SetMonthlyLimit(ctx context.Context, uid string, limit float64, at time.Time) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	return r.store.Upsert(ctx, UserPath(uid, BudgetDocument), map[string]interface{}{
		"monthlyLimit": limit,
		"updatedAt":    at.UTC(),
	})
}
