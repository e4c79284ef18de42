// ABOUTME: Tests for the store-backed progress Reader.
// ABOUTME: Checks append-only logging, validation and the live series stream.
package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/store"
	"go.uber.org/goleak"
)

var testPaths = store.Paths{AppID: "test-app"}

func setupReader(t *testing.T) (*Reader, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	return NewReader(s, testPaths, nil, nil), s
}

func TestLogWeightAppendsDuplicates(t *testing.T) {
	r, _ := setupReader(t)
	ctx := context.Background()

	for _, w := range []string{"55.5", "55.7"} {
		if _, err := r.LogWeight(ctx, "u1", "2024-01-15", w); err != nil {
			t.Fatalf("LogWeight(%s) failed: %v", w, err)
		}
	}
	if _, err := r.LogWeight(ctx, "u1", "2024-01-01", "56"); err != nil {
		t.Fatalf("LogWeight failed: %v", err)
	}

	entries, err := r.Entries(ctx, "u1")
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for _, e := range entries {
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Errorf("entry missing id or createdAt: %+v", e)
		}
	}

	series, err := r.Series(ctx, "u1")
	if err != nil {
		t.Fatalf("Series failed: %v", err)
	}
	want := []Point{{"2024-01-01", 56}, {"2024-01-15", 55.5}, {"2024-01-15", 55.7}}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("series[%d] = %+v, want %+v", i, series[i], want[i])
		}
	}
}

func TestLogWeightValidation(t *testing.T) {
	r, s := setupReader(t)

	tests := []struct{ date, weight string }{
		{"2024-01-01", "0"},
		{"2024-01-01", "-2"},
		{"2024-01-01", "abc"},
		{"01/01/2024", "55"},
	}
	for _, tt := range tests {
		_, err := r.LogWeight(context.Background(), "u1", tt.date, tt.weight)
		var ve *models.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("LogWeight(%q, %q) expected ValidationError, got %v", tt.date, tt.weight, err)
		}
	}
	if s.Writes() != 0 {
		t.Errorf("Writes() = %d, want 0", s.Writes())
	}
}

func TestWatchStreamsOrderedSeries(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := store.NewMemoryStore()
	defer func() { _ = s.Close() }()
	r := NewReader(s, testPaths, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := r.Watch(ctx, "u1")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	next := func() []Point {
		t.Helper()
		select {
		case pts, ok := <-updates:
			if !ok {
				t.Fatal("updates closed early")
			}
			return pts
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for series")
		}
		return nil
	}

	if first := next(); len(first) != 0 {
		t.Errorf("initial series = %+v, want empty", first)
	}

	_, _ = r.LogWeight(context.Background(), "u1", "2024-02-01", "56")
	_, _ = r.LogWeight(context.Background(), "u1", "2024-01-15", "55")

	var pts []Point
	for len(pts) != 2 {
		pts = next()
	}
	if pts[0].Date != "2024-01-15" || pts[1].Date != "2024-02-01" {
		t.Errorf("series not ordered: %+v", pts)
	}

	cancel()
	for range updates {
	}
}
