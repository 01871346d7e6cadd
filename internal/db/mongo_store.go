package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
)

const mongoDocumentsCollection = "documents"

// MongoDB command error codes.
const (
	mongoCodeUnauthorized         = 13
	mongoCodeAuthenticationFailed = 18
	mongoCodeNoChangeStreams      = 40573
)

// mongoDocument is the stored shape of one document. Paths are kept whole
// in _id so that collection scans and change stream filters use one field.
type mongoDocument struct {
	Path      string    `bson:"_id"`
	Parent    string    `bson:"parent"`
	DocID     string    `bson:"docId"`
	Data      bson.M    `bson:"data"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore implements DocumentStore on MongoDB. Writes made through this
// process are observed immediately; writes from other processes arrive
// through change streams when the deployment supports them.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	hub    *hub
	logger *zap.Logger

	warnOnce sync.Once
}

// OpenMongo connects to uri, pings the primary and prepares the documents collection.
func OpenMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*MongoStore, error) {
	logger = logger.Named("mongodb")

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(mongoDocumentsCollection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "parent", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create parent index: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", database))
	return &MongoStore{client: client, coll: coll, hub: newHub(), logger: logger}, nil
}

// SubscribeCollection delivers the documents of collectionPath on every change.
func (s *MongoStore) SubscribeCollection(ctx context.Context, collectionPath string, onNext func([]Document), onError func(error)) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	unsub, sub := localSubscribe(ctx, s.hub, collectionPath, func(ctx context.Context) error {
		docs, err := s.queryCollection(ctx, collectionPath)
		if err != nil {
			return translateMongoError(err)
		}
		if ctx.Err() == nil {
			onNext(docs)
		}
		return nil
	}, onError)

	pattern := "^" + regexp.QuoteMeta(collectionPath+"/") + "[^/]+$"
	go s.watch(ctx, bson.D{{Key: "documentKey._id", Value: bson.D{{Key: "$regex", Value: pattern}}}}, sub)

	return func() { cancel(); unsub() }
}

// SubscribeDocument delivers the document at docPath on every change.
func (s *MongoStore) SubscribeDocument(ctx context.Context, docPath string, onNext func(*Document), onError func(error)) Unsubscribe {
	ctx, cancel := context.WithCancel(ctx)
	unsub, sub := localSubscribe(ctx, s.hub, docPath, func(ctx context.Context) error {
		doc, err := s.queryDocument(ctx, docPath)
		if err != nil {
			return translateMongoError(err)
		}
		if ctx.Err() == nil {
			onNext(doc)
		}
		return nil
	}, onError)

	go s.watch(ctx, bson.D{{Key: "documentKey._id", Value: docPath}}, sub)

	return func() { cancel(); unsub() }
}

// watch pokes sub for every change stream event matching filter. Without
// replica set support it logs once and leaves the subscription local only.
func (s *MongoStore) watch(ctx context.Context, filter bson.D, sub *subscription) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: filter}}}
	cs, err := s.coll.Watch(ctx, pipeline)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		var ce mongo.CommandError
		if errors.As(err, &ce) && ce.Code == mongoCodeNoChangeStreams {
			s.warnOnce.Do(func() {
				s.logger.Warn("Change streams unavailable; only local writes will be observed", zap.Error(err))
			})
			return
		}
		s.logger.Error("Failed to open change stream", zap.Error(err))
		return
	}
	defer func() { _ = cs.Close(context.Background()) }()

	for cs.Next(ctx) {
		sub.poke()
	}
	if err := cs.Err(); err != nil && ctx.Err() == nil {
		s.logger.Error("Change stream ended", zap.Error(err))
	}
}

// Create inserts a document with a random id.
func (s *MongoStore) Create(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	doc := mongoDocument{
		Path:      collectionPath + "/" + id,
		Parent:    collectionPath,
		DocID:     id,
		Data:      bson.M(copyFields(fields)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create in %s: %w", collectionPath, translateMongoError(err))
	}
	s.hub.publish(doc.Path)
	return id, nil
}

// Delete removes the document at docPath.
func (s *MongoStore) Delete(ctx context.Context, docPath string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": docPath}); err != nil {
		return fmt.Errorf("delete %s: %w", docPath, translateMongoError(err))
	}
	s.hub.publish(docPath)
	return nil
}

// Upsert merges fields into the document at docPath.
func (s *MongoStore) Upsert(ctx context.Context, docPath string, fields map[string]interface{}) error {
	parent, id := splitDocPath(docPath)
	now := time.Now().UTC()

	set := bson.M{"updatedAt": now}
	for k, v := range fields {
		set["data."+k] = v
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"parent": parent, "docId": id, "createdAt": now},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": docPath}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", docPath, translateMongoError(err))
	}
	s.hub.publish(docPath)
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Closing MongoDB connection")
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) queryCollection(ctx context.Context, collectionPath string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"parent": collectionPath}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(context.Background()) }()

	docs := make([]Document, 0)
	for cur.Next(ctx) {
		var raw mongoDocument
		if err := cur.Decode(&raw); err != nil {
			s.logger.Warn("Skipping undecodable document", zap.String("collection", collectionPath), zap.Error(err))
			continue
		}
		docs = append(docs, raw.toDocument())
	}
	return docs, cur.Err()
}

func (s *MongoStore) queryDocument(ctx context.Context, docPath string) (*Document, error) {
	var raw mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": docPath}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	doc := raw.toDocument()
	return &doc, nil
}

func (d mongoDocument) toDocument() Document {
	data := normalizeBSON(d.Data).(map[string]interface{})
	data["createdAt"] = d.CreatedAt
	return Document{ID: d.DocID, Path: d.Path, Data: data}
}

// normalizeBSON converts driver types into the plain Go values the decoder expects.
func normalizeBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return map[string]interface{}{}
	case bson.M:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	default:
		return map[string]interface{}{}
	}
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case bson.M:
		return normalizeBSON(t)
	case bson.D:
		return normalizeBSON(t.Map())
	case bson.A:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case int32:
		return int64(t)
	default:
		return v
	}
}

func translateMongoError(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return apperrors.New(apperrors.KindUnavailable, err)
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case mongoCodeUnauthorized:
			return apperrors.New(apperrors.KindPermissionDenied, err)
		case mongoCodeAuthenticationFailed:
			return apperrors.New(apperrors.KindNotSignedIn, err)
		}
	}
	return err
}
