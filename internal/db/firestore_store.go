package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"unimeal-backend-go/internal/apperrors"
)

// FirestoreStore implements DocumentStore on Cloud Firestore realtime listeners.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) *FirestoreStore {
	if client == nil {
		panic("NewFirestoreStore requires a non-nil Firestore client")
	}
	return &FirestoreStore{client: client, logger: logger.Named("firestore")}
}

// SubscribeCollection listens to every document of collectionPath.
func (s *FirestoreStore) SubscribeCollection(ctx context.Context, collectionPath string, onNext func([]Document), onError func(error)) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	it := s.client.Collection(collectionPath).Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				s.finish(ctx, collectionPath, err, onError)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				s.finish(ctx, collectionPath, err, onError)
				return
			}
			out := make([]Document, 0, len(docs))
			for _, d := range docs {
				out = append(out, Document{ID: d.Ref.ID, Path: collectionPath + "/" + d.Ref.ID, Data: d.Data()})
			}
			if ctx.Err() != nil {
				return
			}
			onNext(out)
		}
	}()

	return onceCancel(cancel)
}

// SubscribeDocument listens to the document at docPath.
func (s *FirestoreStore) SubscribeDocument(ctx context.Context, docPath string, onNext func(*Document), onError func(error)) Unsubscribe {
	ref := s.client.Doc(docPath)
	if ref == nil {
		onError(fmt.Errorf("invalid document path %q", docPath))
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	it := ref.Snapshots(ctx)

	go func() {
		defer it.Stop()
		s.pumpDocument(ctx, docPath, it.Next, onNext, onError)
	}()

	return onceCancel(cancel)
}

// pumpDocument forwards document snapshots until next fails. A missing
// document arrives as a snapshot that does not exist, not as an error, and
// keeps the listener open so a later create is still seen.
func (s *FirestoreStore) pumpDocument(ctx context.Context, docPath string, next func() (*firestore.DocumentSnapshot, error), onNext func(*Document), onError func(error)) {
	for {
		snap, err := next()
		if err != nil {
			// Watch errors are sticky; the iterator would return the same
			// error again, so every error ends the loop.
			s.finish(ctx, docPath, err, onError)
			return
		}
		if ctx.Err() != nil {
			return
		}
		if !snap.Exists() {
			onNext(nil)
			continue
		}
		onNext(&Document{ID: snap.Ref.ID, Path: docPath, Data: snap.Data()})
	}
}

// finish reports a terminal listener error unless the listener was stopped on purpose.
func (s *FirestoreStore) finish(ctx context.Context, path string, err error, onError func(error)) {
	if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
		return
	}
	translated := translateFirestoreError(err)
	s.logger.Error("Firestore listener failed", zap.String("path", path), zap.Error(err))
	onError(translated)
}

// Create adds a document with an auto-generated id and a server timestamp.
func (s *FirestoreStore) Create(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error) {
	data := copyFields(fields)
	data["createdAt"] = firestore.ServerTimestamp
	ref, _, err := s.client.Collection(collectionPath).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collectionPath, translateFirestoreError(err))
	}
	return ref.ID, nil
}

// Delete removes the document at docPath.
func (s *FirestoreStore) Delete(ctx context.Context, docPath string) error {
	ref := s.client.Doc(docPath)
	if ref == nil {
		return fmt.Errorf("invalid document path %q", docPath)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", docPath, translateFirestoreError(err))
	}
	return nil
}

// Upsert merges fields into the document at docPath.
func (s *FirestoreStore) Upsert(ctx context.Context, docPath string, fields map[string]interface{}) error {
	ref := s.client.Doc(docPath)
	if ref == nil {
		return fmt.Errorf("invalid document path %q", docPath)
	}
	if _, err := ref.Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("upsert %s: %w", docPath, translateFirestoreError(err))
	}
	return nil
}

// Close closes the underlying client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// translateFirestoreError classifies gRPC status codes returned by Firestore.
func translateFirestoreError(err error) error {
	switch status.Code(err) {
	case codes.PermissionDenied:
		return apperrors.New(apperrors.KindPermissionDenied, err)
	case codes.Unauthenticated:
		return apperrors.New(apperrors.KindNotSignedIn, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return apperrors.New(apperrors.KindUnavailable, err)
	case codes.NotFound:
		return apperrors.New(apperrors.KindNotFound, err)
	default:
		return err
	}
}

func onceCancel(cancel context.CancelFunc) Unsubscribe {
	var once sync.Once
	return func() { once.Do(cancel) }
}
