// ABOUTME: Subscription fan-out for the local backends.
// ABOUTME: Re-runs each live query after a committed write and pushes the result.
package store

import (
	"context"
	"sync"
)

type queryFunc func(ctx context.Context, q Query) ([]Document, error)

type watcher struct {
	q   Query
	sub *Subscription
}

// hub serializes pushes: both the initial snapshot and every later one are
// produced under mu, so a subscriber never sees an older state after a newer one.
type hub struct {
	mu       sync.Mutex
	query    queryFunc
	watchers map[*Subscription]watcher
}

func newHub(query queryFunc) *hub {
	return &hub{query: query, watchers: make(map[*Subscription]watcher)}
}

func (h *hub) subscribe(ctx context.Context, q Query) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	docs, err := h.query(ctx, q)
	if err != nil {
		return nil, err
	}

	sub := newSubscription()
	sub.release = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.watchers, sub)
		close(sub.updates)
	}
	h.watchers[sub] = watcher{q: q, sub: sub}
	sub.push(docs)
	sub.stopOnDone(ctx)
	return sub, nil
}

// publish refreshes every watcher of the given collection path.
func (h *hub) publish(collectionPath string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, w := range h.watchers {
		if w.q.Collection.Path() != collectionPath {
			continue
		}
		docs, err := h.query(context.Background(), w.q)
		if err != nil {
			w.sub.fail(err)
			continue
		}
		w.sub.push(docs)
	}
}

// closeAll ends every live subscription.
func (h *hub) closeAll() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.watchers))
	for s := range h.watchers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.Stop()
	}
}
