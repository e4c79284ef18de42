// ABOUTME: SQLite document store using modernc.org/sqlite (pure Go, no CGO).
// ABOUTME: One documents table keyed by collection path and document id.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every collection in a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
	hub    *hub
}

// OpenSQLite opens or creates a database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath, now: time.Now}
	if err := s.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	s.hub = newHub(s.Query)
	return s, nil
}

func (s *SQLiteStore) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (collection, doc_id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Get returns a single document.
func (s *SQLiteStore) Get(ctx context.Context, ref DocRef) (Document, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND doc_id = ?`,
		ref.Collection.Path(), ref.ID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("get %s: %w", ref.Path(), err)
	}
	doc, err := decodeRaw([]byte(data))
	if err != nil {
		return Document{}, false, err
	}
	return jsonDocument(ref.ID, doc), true, nil
}

// UpsertMerge reads, merges and writes the document inside one transaction.
func (s *SQLiteStore) UpsertMerge(ctx context.Context, ref DocRef, fields Fields) error {
	now := s.now()
	patch, err := encodeFields(fields, now)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing := rawDoc{}
	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND doc_id = ?`,
		ref.Collection.Path(), ref.ID,
	).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read %s: %w", ref.Path(), err)
	default:
		if existing, err = decodeRaw([]byte(data)); err != nil {
			return err
		}
	}

	merged, err := marshalRaw(merge(existing, patch))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (collection, doc_id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, doc_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, ref.Collection.Path(), ref.ID, merged, now.UTC())
	if err != nil {
		return fmt.Errorf("write %s: %w", ref.Path(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.hub.publish(ref.Collection.Path())
	return nil
}

// Append inserts a document with a generated, time-ordered id.
func (s *SQLiteStore) Append(ctx context.Context, coll CollectionRef, fields Fields) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	now := s.now()
	doc, err := encodeFields(fields, now)
	if err != nil {
		return "", err
	}
	data, err := marshalRaw(doc)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_id, data, updated_at) VALUES (?, ?, ?, ?)`,
		coll.Path(), id.String(), data, now.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", coll.Path(), err)
	}

	s.hub.publish(coll.Path())
	return id.String(), nil
}

// Query returns matching documents in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Document, error) {
	query := `SELECT doc_id, data FROM documents WHERE collection = ?`
	args := []any{q.Collection.Path()}
	if q.DocID != "" {
		query += ` AND doc_id = ?`
		args = append(args, q.DocID)
	}
	if q.Date != "" {
		query += ` AND json_extract(data, '$.date') = ?`
		args = append(args, q.Date)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection.Path(), err)
	}
	defer func() { _ = rows.Close() }()

	docs := []Document{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc, err := decodeRaw([]byte(data))
		if err != nil {
			return nil, err
		}
		docs = append(docs, jsonDocument(id, doc))
	}
	return docs, rows.Err()
}

// Subscribe starts a live query fed by writes made through this handle.
func (s *SQLiteStore) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	return s.hub.subscribe(ctx, q)
}

// Close ends subscriptions and closes the database.
func (s *SQLiteStore) Close() error {
	s.hub.closeAll()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
