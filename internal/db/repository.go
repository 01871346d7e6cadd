package db

import (
	"context"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
)

// NewRepositories builds every repository over store.
func NewRepositories(store DocumentStore, logger *zap.Logger) *Repositories {
	if store == nil {
		panic("NewRepositories requires a non-nil DocumentStore")
	}
	logger = logger.Named("repository")
	return &Repositories{
		Ingredients: &ingredientRepository{store: store, logger: logger},
		Meals:       &mealRepository{store: store, logger: logger},
		Templates:   &templateRepository{store: store, logger: logger},
		Budget:      &budgetRepository{store: store},
		Onboarding:  &onboardingRepository{store: store},
	}
}

// subscribeList decodes every document of collection into T, skipping
// documents that fail to decode.
func subscribeList[T any](ctx context.Context, store DocumentStore, logger *zap.Logger, uid, collection string,
	setID func(*T, string), onNext func([]T), onError func(error)) Unsubscribe {
	if uid == "" {
		onError(apperrors.ErrNotSignedIn)
		return func() {}
	}
	return store.SubscribeCollection(ctx, UserPath(uid, collection), func(docs []Document) {
		out := make([]T, 0, len(docs))
		for _, doc := range docs {
			var item T
			if err := decodeDocument(doc, &item); err != nil {
				logger.Warn("Skipping undecodable document", zap.String("path", doc.Path), zap.Error(err))
				continue
			}
			setID(&item, doc.ID)
			out = append(out, item)
		}
		onNext(out)
	}, onError)
}

// subscribeSingle decodes the document at docPath into T, or nil when absent.
func subscribeSingle[T any](ctx context.Context, store DocumentStore, uid, doc string,
	onNext func(*T), onError func(error)) Unsubscribe {
	if uid == "" {
		onError(apperrors.ErrNotSignedIn)
		return func() {}
	}
	return store.SubscribeDocument(ctx, UserPath(uid, doc), func(d *Document) {
		if d == nil {
			onNext(nil)
			return
		}
		var item T
		if err := decodeDocument(*d, &item); err != nil {
			onError(err)
			return
		}
		onNext(&item)
	}, onError)
}

func requireUID(uid string) error {
	if uid == "" {
		return apperrors.ErrNotSignedIn
	}
	return nil
}
