package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"modernc.org/sqlite"

	"unimeal-backend-go/internal/apperrors"
)

// sqliteTimeLayout has a fixed width so stored timestamps sort as text.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite result codes treated as transient.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// SQLiteStore implements DocumentStore on a local SQLite database. Live
// subscriptions are served from an in-process hub, so only writes made
// through the same store are observed.
type SQLiteStore struct {
	db     *sql.DB
	hub    *hub
	logger *zap.Logger
	now    func() time.Time
}

// OpenSQLite opens or creates the database at dbPath. ":memory:" gives a
// private in-memory database.
func OpenSQLite(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps :memory: databases alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(sqliteSchemaSQL); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{
		db:     sqlDB,
		hub:    newHub(),
		logger: logger.Named("sqlite"),
		now:    time.Now,
	}, nil
}

// SubscribeCollection delivers the documents of collectionPath after every local write.
func (s *SQLiteStore) SubscribeCollection(ctx context.Context, collectionPath string, onNext func([]Document), onError func(error)) Unsubscribe {
	unsub, _ := localSubscribe(ctx, s.hub, collectionPath, func(ctx context.Context) error {
		docs, err := s.queryCollection(ctx, collectionPath)
		if err != nil {
			s.logger.Error("SQLite collection query failed", zap.String("path", collectionPath), zap.Error(err))
			return translateSQLiteError(err)
		}
		if ctx.Err() == nil {
			onNext(docs)
		}
		return nil
	}, onError)
	return unsub
}

// SubscribeDocument delivers the document at docPath after every local write to it.
func (s *SQLiteStore) SubscribeDocument(ctx context.Context, docPath string, onNext func(*Document), onError func(error)) Unsubscribe {
	unsub, _ := localSubscribe(ctx, s.hub, docPath, func(ctx context.Context) error {
		doc, err := s.queryDocument(ctx, docPath)
		if err != nil {
			s.logger.Error("SQLite document query failed", zap.String("path", docPath), zap.Error(err))
			return translateSQLiteError(err)
		}
		if ctx.Err() == nil {
			onNext(doc)
		}
		return nil
	}, onError)
	return unsub
}

// Create inserts a document with a random id.
func (s *SQLiteStore) Create(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	id := uuid.NewString()
	docPath := collectionPath + "/" + id
	now := s.now().UTC().Format(sqliteTimeLayout)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (path, parent, doc_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		docPath, collectionPath, id, string(data), now, now)
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collectionPath, translateSQLiteError(err))
	}
	s.hub.publish(docPath)
	return id, nil
}

// Delete removes the document at docPath.
func (s *SQLiteStore) Delete(ctx context.Context, docPath string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, docPath); err != nil {
		return fmt.Errorf("delete %s: %w", docPath, translateSQLiteError(err))
	}
	s.hub.publish(docPath)
	return nil
}

// Upsert merges fields into the stored JSON of docPath.
func (s *SQLiteStore) Upsert(ctx context.Context, docPath string, fields map[string]interface{}) error {
	if err := s.upsert(ctx, docPath, fields); err != nil {
		return fmt.Errorf("upsert %s: %w", docPath, translateSQLiteError(err))
	}
	s.hub.publish(docPath)
	return nil
}

func (s *SQLiteStore) upsert(ctx context.Context, docPath string, fields map[string]interface{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	merged := make(map[string]interface{})
	var existing string
	err = tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, docPath).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	default:
		if err := json.Unmarshal([]byte(existing), &merged); err != nil {
			return fmt.Errorf("decode stored %s: %w", docPath, err)
		}
	}
	for k, v := range fields {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	parent, id := splitDocPath(docPath)
	now := s.now().UTC().Format(sqliteTimeLayout)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (path, parent, doc_id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		docPath, parent, id, string(data), now, now)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryCollection(ctx context.Context, collectionPath string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, doc_id, data, created_at FROM documents WHERE parent = ? ORDER BY created_at, doc_id`,
		collectionPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) queryDocument(ctx context.Context, docPath string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT path, doc_id, data, created_at FROM documents WHERE path = ?`, docPath)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(r rowScanner) (Document, error) {
	var doc Document
	var data, createdAt string
	if err := r.Scan(&doc.Path, &doc.ID, &data, &createdAt); err != nil {
		return Document{}, err
	}
	doc.Data = make(map[string]interface{})
	if err := json.Unmarshal([]byte(data), &doc.Data); err != nil {
		return Document{}, fmt.Errorf("decode stored %s: %w", doc.Path, err)
	}
	if t, err := time.Parse(sqliteTimeLayout, createdAt); err == nil {
		doc.Data["createdAt"] = t
	}
	return doc, nil
}

func translateSQLiteError(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return apperrors.New(apperrors.KindUnavailable, err)
		}
	}
	return err
}
