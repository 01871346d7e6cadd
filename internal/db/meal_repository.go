package db

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/models"
)

type mealRepository struct {
	store  DocumentStore
	logger *zap.Logger
}

func (r *mealRepository) Subscribe(ctx context.Context, uid string, onNext func([]models.Meal), onError func(error)) Unsubscribe {
	return subscribeList(ctx, r.store, r.logger, uid, MealsCollection,
		func(m *models.Meal, id string) { m.ID = id }, onNext, onError)
}

func (r *mealRepository) Add(ctx context.Context, uid string, meal models.Meal) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	return r.store.Create(ctx, UserPath(uid, MealsCollection), map[string]interface{}{
		"name":    meal.Name,
		"weekday": string(meal.Weekday),
	})
}

func (r *mealRepository) Delete(ctx context.Context, uid, mealID string) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if mealID == "" {
		return errors.New("mealID cannot be empty for Delete operation")
	}
	return r.store.Delete(ctx, UserPath(uid, MealsCollection, mealID))
}

type templateRepository struct {
	store  DocumentStore
	logger *zap.Logger
}

func (r *templateRepository) Subscribe(ctx context.Context, uid string, onNext func([]models.MealTemplate), onError func(error)) Unsubscribe {
	return subscribeList(ctx, r.store, r.logger, uid, MealTemplatesCollection,
		func(t *models.MealTemplate, id string) { t.ID = id }, onNext, onError)
}

func (r *templateRepository) Add(ctx context.Context, uid string, tmpl models.MealTemplate) (string, error) {
	if err := requireUID(uid); err != nil {
		return "", err
	}
	return r.store.Create(ctx, UserPath(uid, MealTemplatesCollection), map[string]interface{}{
		"name":           tmpl.Name,
		"defaultWeekday": string(tmpl.DefaultWeekday),
	})
}

func (r *templateRepository) Delete(ctx context.Context, uid, templateID string) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	if templateID == "" {
		return errors.New("templateID cannot be empty for Delete operation")
	}
	return r.store.Delete(ctx, UserPath(uid, MealTemplatesCollection, templateID))
}
