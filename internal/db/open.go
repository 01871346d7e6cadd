package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"unimeal-backend-go/internal/config"
)

// OpenStore opens the DocumentStore selected by cfg.StoreDriver. For the
// firestore driver fb must hold initialized Firebase clients.
func OpenStore(ctx context.Context, cfg *config.Config, fb *FirebaseClients, logger *zap.Logger) (DocumentStore, error) {
	switch cfg.StoreDriver {
	case config.DriverFirestore:
		if fb == nil || fb.Firestore == nil {
			return nil, fmt.Errorf("firestore driver selected but Firebase is not initialized")
		}
		return NewFirestoreStore(fb.Firestore, logger), nil
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, logger)
	case config.DriverMongoDB:
		return OpenMongo(ctx, cfg.MongoDBURI, cfg.MongoDBDatabase, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
