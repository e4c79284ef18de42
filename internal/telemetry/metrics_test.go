// ABOUTME: Tests for the metrics manager.
// ABOUTME: Ensures managers on separate registries do not collide.
package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManagerRegistersOnOwnRegistry(t *testing.T) {
	m1, reg := NewTestManagerAndRegistry()
	m2 := NewTestManager()

	m1.CounterMealsAdded.Inc()
	m1.CounterMealsAdded.Inc()
	m2.CounterMealsAdded.Inc()

	if got := testutil.ToFloat64(m1.CounterMealsAdded); got != 2 {
		t.Errorf("m1 meals_added = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m2.CounterMealsAdded); got != 1 {
		t.Errorf("m2 meals_added = %v, want 1", got)
	}

	m1.CounterGenerations.WithLabelValues("workout", "ok").Inc()
	count, err := testutil.GatherAndCount(reg, "fitlog_test_generations")
	if err != nil {
		t.Fatalf("GatherAndCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("generations series = %d, want 1", count)
	}
}
