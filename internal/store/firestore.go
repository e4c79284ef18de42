// ABOUTME: Cloud Firestore document store.
// ABOUTME: Uses merge writes, server timestamps and native snapshot listeners.
package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore stores documents in Cloud Firestore under the same paths
// as the local backends.
type FirestoreStore struct {
	client *firestore.Client
}

// OpenFirestore connects to the project. Set FIRESTORE_EMULATOR_HOST to use the emulator.
func OpenFirestore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func firestoreFields(fields Fields) map[string]any {
	data := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			v = firestore.ServerTimestamp
		}
		data[k] = v
	}
	return data
}

func snapshotDocument(snap *firestore.DocumentSnapshot) Document {
	return Document{ID: snap.Ref.ID, decode: snap.DataTo}
}

func (s *FirestoreStore) doc(ref DocRef) *firestore.DocumentRef {
	return s.client.Collection(ref.Collection.Path()).Doc(ref.ID)
}

func (s *FirestoreStore) query(q Query) firestore.Query {
	query := s.client.Collection(q.Collection.Path()).Query
	if q.Date != "" {
		query = query.Where("date", "==", q.Date)
	}
	return query.OrderBy(firestore.DocumentID, firestore.Asc)
}

// Get returns a single document.
func (s *FirestoreStore) Get(ctx context.Context, ref DocRef) (Document, bool, error) {
	snap, err := s.doc(ref).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("get %s: %w", ref.Path(), err)
	}
	return snapshotDocument(snap), true, nil
}

// UpsertMerge writes the given top-level fields, leaving others untouched.
func (s *FirestoreStore) UpsertMerge(ctx context.Context, ref DocRef, fields Fields) error {
	paths := make([]firestore.FieldPath, 0, len(fields))
	for k := range fields {
		paths = append(paths, firestore.FieldPath{k})
	}
	if _, err := s.doc(ref).Set(ctx, firestoreFields(fields), firestore.Merge(paths...)); err != nil {
		return fmt.Errorf("upsert %s: %w", ref.Path(), err)
	}
	return nil
}

// Append creates a document under a time-ordered id so id order is arrival order.
func (s *FirestoreStore) Append(ctx context.Context, coll CollectionRef, fields Fields) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	ref := s.client.Collection(coll.Path()).Doc(id.String())
	if _, err := ref.Create(ctx, firestoreFields(fields)); err != nil {
		return "", fmt.Errorf("append to %s: %w", coll.Path(), err)
	}
	return id.String(), nil
}

// Query returns matching documents ordered by id.
func (s *FirestoreStore) Query(ctx context.Context, q Query) ([]Document, error) {
	if q.DocID != "" {
		doc, ok, err := s.Get(ctx, q.Collection.Doc(q.DocID))
		if err != nil || !ok {
			return []Document{}, err
		}
		return filterDate(q, doc)
	}

	snaps, err := s.query(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection.Path(), err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, snapshotDocument(snap))
	}
	return docs, nil
}

func filterDate(q Query, doc Document) ([]Document, error) {
	if q.Date == "" {
		return []Document{doc}, nil
	}
	var probe struct {
		Date string `firestore:"date"`
	}
	if err := doc.DataTo(&probe); err != nil {
		return nil, err
	}
	if probe.Date != q.Date {
		return []Document{}, nil
	}
	return []Document{doc}, nil
}

// Subscribe attaches a Firestore snapshot listener.
func (s *FirestoreStore) Subscribe(ctx context.Context, q Query) (*Subscription, error) {
	listenCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription()
	exited := make(chan struct{})
	sub.release = func() {
		cancel()
		<-exited
	}

	var next func() ([]Document, error)
	var stop func()
	if q.DocID != "" {
		it := s.doc(q.Collection.Doc(q.DocID)).Snapshots(listenCtx)
		stop = it.Stop
		next = func() ([]Document, error) {
			snap, err := it.Next()
			if err != nil {
				return nil, err
			}
			if !snap.Exists() {
				return []Document{}, nil
			}
			return filterDate(q, snapshotDocument(snap))
		}
	} else {
		it := s.query(q).Snapshots(listenCtx)
		stop = it.Stop
		next = func() ([]Document, error) {
			qs, err := it.Next()
			if err != nil {
				return nil, err
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				return nil, err
			}
			docs := make([]Document, 0, len(snaps))
			for _, snap := range snaps {
				docs = append(docs, snapshotDocument(snap))
			}
			return docs, nil
		}
	}

	// The first snapshot is read synchronously so callers see either the
	// current state or an error.
	first, err := next()
	if err != nil {
		stop()
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", q.Collection.Path(), err)
	}
	sub.push(first)

	go func() {
		defer close(exited)
		defer close(sub.updates)
		defer stop()
		for {
			docs, err := next()
			if err != nil {
				if !errors.Is(err, iterator.Done) && listenCtx.Err() == nil && status.Code(err) != codes.Canceled {
					sub.fail(err)
				}
				return
			}
			sub.push(docs)
		}
	}()
	sub.stopOnDone(ctx)
	return sub, nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
