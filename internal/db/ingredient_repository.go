package db

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/models"
)

type ingredientRepository struct {
	store  DocumentStore
	logger *zap.Logger
}

func (r *ingredientRepository) Subscribe(ctx context.Context, uid string, onNext func([]models.Ingredient), onError func(error)) Unsubscribe {
	return subscribeList(ctx, r.store, r.logger, uid, IngredientsCollection,
		func(ing *models.Ingredient, id string) { ing.ID = id }, onNext, onError)
}

// Add stores a new ingredient; ID and CreatedAt are assigned by the store.
func (r *ingredientRepository) Add(ctx context.Context, uid string, ing models.Ingredient) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	return r.store.Create(ctx, UserPath(uid, IngredientsCollection), map[string]interface{}{
		"name":       ing.Name,
		"qty":        ing.Quantity,
		"unit":       string(ing.Unit),
		"price":      ing.Price,
		"expiryDate": ing.ExpiryDate,
	})
}

func (r *ingredientRepository) Delete(ctx context.Context, uid, ingredientID string) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if ingredientID == "" {
		return errors.New("ingredientID cannot be empty for Delete operation")
	}
	return r.store.Delete(ctx, UserPath(uid, IngredientsCollection, ingredientID))
}
