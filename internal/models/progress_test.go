// ABOUTME: Tests for weight parsing, date keys and daily targets.
// ABOUTME: Checks the zero-padded date rule and capped progress percentages.
package models

import (
	"testing"
	"time"
)

func TestParseWeight(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"55.5", 55.5, false},
		{" 56 ", 56, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"heavy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeight(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWeight(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWeight(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateKey(t *testing.T) {
	d := time.Date(2024, time.February, 1, 23, 59, 0, 0, time.Local)
	if got := DateKey(d); got != "2024-02-01" {
		t.Errorf("DateKey() = %q, want 2024-02-01", got)
	}
}

func TestParseDateKey(t *testing.T) {
	valid := []string{"2024-01-15", "2023-12-31"}
	for _, s := range valid {
		if _, err := ParseDateKey(s); err != nil {
			t.Errorf("ParseDateKey(%q) unexpected error: %v", s, err)
		}
	}

	invalid := []string{"2024-1-15", "15-01-2024", "today", "", "2024-02-30"}
	for _, s := range invalid {
		if _, err := ParseDateKey(s); err == nil {
			t.Errorf("ParseDateKey(%q) expected error", s)
		}
	}
}

func TestTargetsProgress(t *testing.T) {
	targets := DefaultTargets

	if got := targets.CalorieProgress(1150); got != 50 {
		t.Errorf("CalorieProgress(1150) = %v, want 50", got)
	}
	if got := targets.ProteinProgress(250); got != 100 {
		t.Errorf("ProteinProgress(250) = %v, want 100 (capped)", got)
	}
	if got := (Targets{}).CalorieProgress(100); got != 0 {
		t.Errorf("zero target progress = %v, want 0", got)
	}
}
