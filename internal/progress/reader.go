// ABOUTME: Store-backed progress service: append weigh-ins and read the ordered series.
// ABOUTME: Watch streams a freshly ordered series after every change.
package progress

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/store"
	"github.com/harperreed/fitlog/internal/telemetry"
)

// Reader appends ProgressEntry documents and reads them back in date order.
type Reader struct {
	store   store.Store
	paths   store.Paths
	logger  *log.Logger
	metrics *telemetry.Manager
}

// NewReader creates a Reader. A nil logger or metrics manager is replaced by a no-op one.
func NewReader(s store.Store, paths store.Paths, logger *log.Logger, metrics *telemetry.Manager) *Reader {
	if logger == nil {
		logger = logging.Discard()
	}
	if metrics == nil {
		metrics = telemetry.NewTestManager()
	}
	return &Reader{store: s, paths: paths, logger: logger, metrics: metrics}
}

func (r *Reader) storeErr(op string, err error) error {
	r.metrics.CounterStoreErrors.WithLabelValues(op).Inc()
	r.logger.Error("store operation failed", "op", op, "err", err)
	return &models.StoreError{Op: op, Err: err}
}

// LogWeight validates raw and appends a new entry for date.
func (r *Reader) LogWeight(ctx context.Context, userID, date, raw string) (models.ProgressEntry, error) {
	if userID == "" {
		return models.ProgressEntry{}, &models.ValidationError{Field: "userId", Reason: "not signed in"}
	}
	if _, err := models.ParseDateKey(date); err != nil {
		return models.ProgressEntry{}, err
	}
	weight, err := models.ParseWeight(raw)
	if err != nil {
		return models.ProgressEntry{}, err
	}

	id, err := r.store.Append(ctx, r.paths.Collection(userID, store.Progress), store.Fields{
		"userId":    userID,
		"date":      date,
		"weight":    weight,
		"createdAt": store.ServerTimestamp,
	})
	if err != nil {
		return models.ProgressEntry{}, r.storeErr("append progress", err)
	}

	r.metrics.CounterWeightsLogged.Inc()
	r.logger.Debug("weight logged", "user", userID, "date", date, "weight", weight)
	return models.ProgressEntry{ID: id, UserID: userID, Date: date, Weight: weight}, nil
}

// Entries returns every stored entry in arrival order.
func (r *Reader) Entries(ctx context.Context, userID string) ([]models.ProgressEntry, error) {
	docs, err := r.store.Query(ctx, store.CollectionQuery(r.paths.Collection(userID, store.Progress)))
	if err != nil {
		return nil, r.storeErr("query progress", err)
	}
	return decodeEntries(docs)
}

// Series returns the user's weigh-ins ordered by date.
func (r *Reader) Series(ctx context.Context, userID string) ([]Point, error) {
	entries, err := r.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return OrderedSeries(entries), nil
}

// Watch streams the ordered series whenever the progress collection changes.
// The channel closes when ctx ends or the underlying subscription ends.
func (r *Reader) Watch(ctx context.Context, userID string) (<-chan []Point, error) {
	sub, err := r.store.Subscribe(ctx, store.CollectionQuery(r.paths.Collection(userID, store.Progress)))
	if err != nil {
		return nil, r.storeErr("subscribe progress", err)
	}

	out := make(chan []Point, 1)
	r.metrics.GaugeSubscriptions.Inc()

	go func() {
		defer r.metrics.GaugeSubscriptions.Dec()
		defer close(out)
		defer sub.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case docs, ok := <-sub.Updates():
				if !ok {
					if err := sub.Err(); err != nil {
						r.logger.Warn("progress subscription ended", "err", err)
					}
					return
				}
				entries, err := decodeEntries(docs)
				if err != nil {
					r.logger.Warn("skipping undecodable progress snapshot", "err", err)
					continue
				}
				series := OrderedSeries(entries)
				select {
				case <-out:
				default:
				}
				out <- series
			}
		}
	}()

	return out, nil
}

func decodeEntries(docs []store.Document) ([]models.ProgressEntry, error) {
	entries := make([]models.ProgressEntry, 0, len(docs))
	for _, doc := range docs {
		var e models.ProgressEntry
		if err := doc.DataTo(&e); err != nil {
			return nil, &models.StoreError{Op: "decode progress entry", Err: err}
		}
		e.ID = doc.ID
		entries = append(entries, e)
	}
	return entries, nil
}

// RestoreEntry appends a previously exported entry for userID, keeping its
// original date, weight and creation time.
func (r *Reader) RestoreEntry(ctx context.Context, userID string, e models.ProgressEntry) (string, error) {
	if userID == "" {
		return "", &models.ValidationError{Field: "userId", Reason: "not signed in"}
	}
	if _, err := models.ParseDateKey(e.Date); err != nil {
		return "", err
	}
	if e.Weight <= 0 {
		return "", &models.ValidationError{Field: "weight", Reason: "must be greater than zero"}
	}
	id, err := r.store.Append(ctx, r.paths.Collection(userID, store.Progress), store.Fields{
		"userId":    userID,
		"date":      e.Date,
		"weight":    e.Weight,
		"createdAt": store.TimestampOr(e.CreatedAt),
	})
	if err != nil {
		return "", r.storeErr("restore progress", err)
	}
	return id, nil
}
