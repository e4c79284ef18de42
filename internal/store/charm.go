// ABOUTME: Charm KV document store with automatic cloud sync.
// ABOUTME: Documents are JSON values under "{collectionPath}/{docID}" keys.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

// ErrReadOnly is returned for writes while another process holds the KV lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

// CharmStore keeps documents in an encrypted Charm KV database.
type CharmStore struct {
	kv       *kv.KV
	autoSync bool
	now      func() time.Time
	mu       sync.RWMutex
	hub      *hub
}

// OpenCharm opens the named KV database. A non-empty host overrides CHARM_HOST.
func OpenCharm(dbName, host string) (*CharmStore, error) {
	if host != "" {
		if err := os.Setenv("CHARM_HOST", host); err != nil {
			return nil, err
		}
	}

	db, err := kv.OpenWithDefaultsFallback(dbName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	s := &CharmStore{kv: db, autoSync: true, now: time.Now}
	s.hub = newHub(s.Query)

	// Pull remote data on startup (skip in read-only mode)
	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return s, nil
}

// IsReadOnly reports whether another process holds the database lock.
func (s *CharmStore) IsReadOnly() bool {
	return s.kv.IsReadOnly()
}

// SetAutoSync enables or disables sync after each write.
func (s *CharmStore) SetAutoSync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSync = enabled
}

// Sync synchronizes local state with Charm Cloud.
func (s *CharmStore) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kv.IsReadOnly() {
		return nil
	}
	return s.kv.Sync()
}

func (s *CharmStore) syncIfEnabled() {
	if s.autoSync && !s.kv.IsReadOnly() {
		_ = s.kv.Sync()
	}
}

func docKey(collectionPath, id string) []byte {
	return []byte(collectionPath + "/" + id)
}

func (s *CharmStore) read(key []byte) (rawDoc, bool, error) {
	val, err := s.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	doc, err := decodeRaw(val)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *CharmStore) write(key []byte, doc rawDoc) error {
	if s.kv.IsReadOnly() {
		return ErrReadOnly
	}
	data, err := marshalRaw(doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(key, []byte(data)); err != nil {
		return err
	}
	s.syncIfEnabled()
	return nil
}

// Get returns a single document.
func (s *CharmStore) Get(ctx context.Context, ref DocRef) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok, err := s.read(docKey(ref.Collection.Path(), ref.ID))
	if err != nil || !ok {
		return Document{}, false, err
	}
	return jsonDocument(ref.ID, doc), true, nil
}

// UpsertMerge creates or shallow-merges a document.
func (s *CharmStore) UpsertMerge(ctx context.Context, ref DocRef, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := encodeFields(fields, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	key := docKey(ref.Collection.Path(), ref.ID)
	existing, _, err := s.read(key)
	if err == nil {
		err = s.write(key, merge(existing, patch))
	}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("upsert %s: %w", ref.Path(), err)
	}

	s.hub.publish(ref.Collection.Path())
	return nil
}

// Append adds a document under a time-ordered id so key order is arrival order.
func (s *CharmStore) Append(ctx context.Context, coll CollectionRef, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	doc, err := encodeFields(fields, s.now())
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	err = s.write(docKey(coll.Path(), id.String()), doc)
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", coll.Path(), err)
	}

	s.hub.publish(coll.Path())
	return id.String(), nil
}

// Query scans the collection's key prefix.
func (s *CharmStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.DocID != "" {
		doc, ok, err := s.read(docKey(q.Collection.Path(), q.DocID))
		if err != nil {
			return nil, err
		}
		if !ok || (q.Date != "" && !doc.matchesDate(q.Date)) {
			return []Document{}, nil
		}
		return []Document{jsonDocument(q.DocID, doc)}, nil
	}

	keys, err := s.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	prefix := []byte(q.Collection.Path() + "/")
	docs := []Document{}
	for _, key := range keys {
		if !bytes.HasPrefix(key, prefix) {
			continue
		}
		id := strings.TrimPrefix(string(key), string(prefix))
		if strings.Contains(id, "/") {
			continue
		}
		doc, ok, err := s.read(key)
		if err != nil {
			return nil, err
		}
		if !ok || (q.Date != "" && !doc.matchesDate(q.Date)) {
			continue
		}
		docs = append(docs, jsonDocument(id, doc))
	}
	return docs, nil
}

// Subscribe starts a live query fed by writes made through this handle.
func (s *CharmStore) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	return s.hub.subscribe(ctx, q)
}

// Close ends subscriptions and closes the KV database.
func (s *CharmStore) Close() error {
	s.hub.closeAll()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv != nil {
		return s.kv.Close()
	}
	return nil
}
