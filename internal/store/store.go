// ABOUTME: Document store contract shared by every storage backend.
// ABOUTME: Defines paths, queries, documents, upsert-merge fields and subscriptions.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Collection names used by the application.
const (
	DietLogs     = "dietLogs"
	WorkoutLogs  = "workoutLogs"
	WorkoutPlans = "workoutPlans"
	Progress     = "progress"
)

// Store is a per-user document database.
//
// UpsertMerge creates the document if absent, otherwise replaces only the
// given top-level fields. Subscribe delivers the current state first, then
// the latest state after each committed change; intermediate states may be
// skipped but never reordered.
type Store interface {
	Get(ctx context.Context, ref DocRef) (Document, bool, error)
	UpsertMerge(ctx context.Context, ref DocRef, fields Fields) error
	Append(ctx context.Context, coll CollectionRef, fields Fields) (string, error)
	Query(ctx context.Context, q Query) ([]Document, error)
	Subscribe(ctx context.Context, q Query) (*Subscription, error)
	Close() error
}

// Fields are the top-level fields of a write.
type Fields map[string]any

type serverTimestamp struct{}

// ServerTimestamp asks the backend to fill the field with its own clock.
var ServerTimestamp any = serverTimestamp{}

// TimestampOr returns t, or ServerTimestamp when t is zero.
func TimestampOr(t time.Time) any {
	if t.IsZero() {
		return ServerTimestamp
	}
	return t
}

// CollectionRef addresses one user's collection.
type CollectionRef struct {
	AppID  string
	UserID string
	Name   string
}

// Path returns artifacts/{appId}/users/{userId}/{collection}.
func (c CollectionRef) Path() string {
	return fmt.Sprintf("artifacts/%s/users/%s/%s", c.AppID, c.UserID, c.Name)
}

// Doc returns a reference to a document in the collection.
func (c CollectionRef) Doc(id string) DocRef {
	return DocRef{Collection: c, ID: id}
}

// DocRef addresses a single document.
type DocRef struct {
	Collection CollectionRef
	ID         string
}

// Path returns the full document path.
func (d DocRef) Path() string {
	return d.Collection.Path() + "/" + d.ID
}

// Paths builds references scoped to an application id.
type Paths struct {
	AppID string
}

// Collection returns the named collection of a user.
func (p Paths) Collection(userID, name string) CollectionRef {
	return CollectionRef{AppID: p.AppID, UserID: userID, Name: name}
}

// DayDoc returns the per-day document {userId}_{date} in the named collection.
func (p Paths) DayDoc(userID, name, date string) DocRef {
	return p.Collection(userID, name).Doc(userID + "_" + date)
}

// Query selects documents from one collection.
type Query struct {
	Collection CollectionRef
	// DocID restricts the query to a single document.
	DocID string
	// Date restricts the query to documents whose date field equals it.
	Date string
}

// DocQuery selects a single document.
func DocQuery(ref DocRef) Query {
	return Query{Collection: ref.Collection, DocID: ref.ID}
}

// CollectionQuery selects every document of a collection in arrival order.
func CollectionQuery(coll CollectionRef) Query {
	return Query{Collection: coll}
}

// WhereDate narrows the query to one date.
func (q Query) WhereDate(date string) Query {
	q.Date = date
	return q
}

// Document is a stored document as returned by a read.
type Document struct {
	ID     string
	decode func(dst any) error
}

// DataTo decodes the document fields into dst.
func (d Document) DataTo(dst any) error {
	if d.decode == nil {
		return fmt.Errorf("document %s has no data", d.ID)
	}
	return d.decode(dst)
}

// Subscription is a live query. Updates is closed once the subscription
// has been released, by Stop, by context cancellation or by a backend error.
type Subscription struct {
	updates chan []Document
	done    chan struct{}
	once    sync.Once
	release func()

	mu  sync.Mutex
	err error
}

func newSubscription() *Subscription {
	return &Subscription{
		updates: make(chan []Document, 1),
		done:    make(chan struct{}),
	}
}

// Updates delivers snapshots, coalesced to the most recent.
func (s *Subscription) Updates() <-chan []Document {
	return s.updates
}

// Stop releases the subscription. Safe to call more than once.
func (s *Subscription) Stop() {
	s.once.Do(func() {
		close(s.done)
		if s.release != nil {
			s.release()
		}
	})
}

// Err returns the error that ended the subscription, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// push replaces any undelivered snapshot with docs. Callers serialize pushes.
func (s *Subscription) push(docs []Document) {
	select {
	case <-s.updates:
	default:
	}
	s.updates <- docs
}

// stopOnDone releases the subscription when ctx ends.
func (s *Subscription) stopOnDone(ctx context.Context) {
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()
}
