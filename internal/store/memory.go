// ABOUTME: In-process document store used by tests and the memory backend.
// ABOUTME: Keeps documents in arrival order per collection path.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memCollection struct {
	order []string
	docs  map[string]rawDoc
}

// MemoryStore is a Store held entirely in memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	now         func() time.Time
	writes      int
	hub         *hub
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		collections: make(map[string]*memCollection),
		now:         time.Now,
	}
	m.hub = newHub(m.Query)
	return m
}

// SetClock overrides the clock used for ServerTimestamp fields.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Writes returns how many writes have been committed.
func (m *MemoryStore) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *MemoryStore) collection(path string) *memCollection {
	c, ok := m.collections[path]
	if !ok {
		c = &memCollection{docs: make(map[string]rawDoc)}
		m.collections[path] = c
	}
	return c
}

// Get returns a single document.
func (m *MemoryStore) Get(ctx context.Context, ref DocRef) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[ref.Collection.Path()]
	if !ok {
		return Document{}, false, nil
	}
	doc, ok := c.docs[ref.ID]
	if !ok {
		return Document{}, false, nil
	}
	return jsonDocument(ref.ID, doc), true, nil
}

// UpsertMerge creates or shallow-merges a document.
func (m *MemoryStore) UpsertMerge(ctx context.Context, ref DocRef, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	patch, err := encodeFields(fields, m.now())
	if err != nil {
		m.mu.Unlock()
		return err
	}
	c := m.collection(ref.Collection.Path())
	existing, ok := c.docs[ref.ID]
	if !ok {
		c.order = append(c.order, ref.ID)
	}
	c.docs[ref.ID] = merge(existing, patch)
	m.writes++
	m.mu.Unlock()

	m.hub.publish(ref.Collection.Path())
	return nil
}

// Append adds a document with a generated, time-ordered id.
func (m *MemoryStore) Append(ctx context.Context, coll CollectionRef, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}

	m.mu.Lock()
	doc, err := encodeFields(fields, m.now())
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	c := m.collection(coll.Path())
	c.order = append(c.order, id.String())
	c.docs[id.String()] = doc
	m.writes++
	m.mu.Unlock()

	m.hub.publish(coll.Path())
	return id.String(), nil
}

// Query returns matching documents in arrival order.
func (m *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[q.Collection.Path()]
	if !ok {
		return []Document{}, nil
	}
	docs := []Document{}
	for _, id := range c.order {
		if q.DocID != "" && id != q.DocID {
			continue
		}
		doc := c.docs[id]
		if q.Date != "" && !doc.matchesDate(q.Date) {
			continue
		}
		docs = append(docs, jsonDocument(id, doc))
	}
	return docs, nil
}

// Subscribe starts a live query.
func (m *MemoryStore) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	return m.hub.subscribe(ctx, q)
}

// Close ends all live subscriptions.
func (m *MemoryStore) Close() error {
	m.hub.closeAll()
	return nil
}
