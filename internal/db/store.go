package db

import (
	"context"
	"strings"
)

// Document is one stored record as delivered in a snapshot.
type Document struct {
	ID   string
	Path string
	Data map[string]interface{}
}

// Unsubscribe stops a live subscription. It is safe to call more than once.
type Unsubscribe func()

// DocumentStore is the document database the pages observe and write to.
// Snapshot callbacks run on store-owned goroutines and always carry the full
// current state of the collection or document.
type DocumentStore interface {
	// SubscribeCollection delivers every document of collectionPath on each change.
	SubscribeCollection(ctx context.Context, collectionPath string, onNext func([]Document), onError func(error)) Unsubscribe
	// SubscribeDocument delivers the document at docPath, or nil when it does not exist.
	SubscribeDocument(ctx context.Context, docPath string, onNext func(*Document), onError func(error)) Unsubscribe
	// Create adds a document with a store-assigned id and a server createdAt timestamp.
	Create(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error)
	// Delete removes the document at docPath. Deleting a missing document is not an error.
	Delete(ctx context.Context, docPath string) error
	// Upsert merges fields into the document at docPath, creating it if needed.
	Upsert(ctx context.Context, docPath string, fields map[string]interface{}) error
	Close() error
}

// Collection and document names under users/{uid}.
const (
	IngredientsCollection   = "ingredients"
	MealsCollection         = "meals"
	MealTemplatesCollection = "mealTemplates"
	BudgetDocument          = "budget/current"
	OnboardingDocument      = "preferences/onboarding"
)

// UserPath joins segments below users/{uid}.
func UserPath(uid string, segments ...string) string {
	return "users/" + uid + "/" + strings.Join(segments, "/")
}

// splitDocPath returns the parent collection path and the id of a document path.
func splitDocPath(docPath string) (parent, id string) {
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return "", docPath
	}
	return docPath[:i], docPath[i+1:]
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	return out
}
