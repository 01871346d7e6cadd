package db

import (
	"context"

	"unimeal-backend-go/internal/models"
)

type onboardingRepository struct {
	store DocumentStore
}

func (r *onboardingRepository) Subscribe(ctx context.Context, uid string, onNext func(*models.OnboardingState), onError func(error)) Unsubscribe {
	return subscribeSingle(ctx, r.store, uid, OnboardingDocument, onNext, onError)
}

func (r *onboardingRepository) MarkCompleted(ctx context.Context, uid string) error {
	if err := requireUID(uid); err != nil {
		return err
	}
	return r.store.Upsert(ctx, UserPath(uid, OnboardingDocument), map[string]interface{}{
		"completed": true,
	})
}
