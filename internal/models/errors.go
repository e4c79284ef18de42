// ABOUTME: Error taxonomy shared by the aggregator, reader and coach.
// ABOUTME: Callers match these with errors.As to decide how to report failures.
package models

import "fmt"

// ValidationError reports a malformed or missing user-entered field.
// The write it guards must not be attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PlanMismatchError reports a workout session entry for an exercise that
// is not part of the day's plan.
type PlanMismatchError struct {
	Exercise string
}

func (e *PlanMismatchError) Error() string {
	return fmt.Sprintf("exercise %q is not in the workout plan", e.Exercise)
}

// GenerationError reports a failed completion call or generated content
// that did not pass validation. Nothing generated is adopted when it occurs.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StoreError reports a failed read or write against the document store.
// A failed write must not be assumed to have landed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
