package main

import "testing"

// TestEpleyE1RM verifies the estimated one-rep max formula.
//
// 100kg x 10 reps: 100 * (1 + 10/30) = 133.33 -> 133.3
func TestEpleyE1RM(t *testing.T) {
	cases := []struct {
		name     string
		weightKG float64
		reps     int
		want     float64
	}{
		{"100x10", 100, 10, 133.3},
		{"single is its own max", 140, 1, 144.7}, // 140 * 31/30 = 144.67
		{"zero reps", 100, 0, 100},
		{"60x15", 60, 15, 90},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := epleyE1RM(tc.weightKG, tc.reps); got != tc.want {
				t.Errorf("epleyE1RM(%v, %d) = %v, want %v", tc.weightKG, tc.reps, got, tc.want)
			}
		})
	}
}

// TestSessionDurationMinutes verifies timestamp parsing and truncation.
func TestSessionDurationMinutes(t *testing.T) {
	cases := []struct {
		name      string
		started   string
		completed string
		want      int
	}{
		{"45 minutes", "2026-03-01 10:00:00", "2026-03-01 10:45:30", 45},
		{"under a minute", "2026-03-01 10:00:00", "2026-03-01 10:00:59", 0},
		{"unparsable start", "not a time", "2026-03-01 10:45:00", 0},
		{"unparsable end", "2026-03-01 10:00:00", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sessionDurationMinutes(tc.started, tc.completed); got != tc.want {
				t.Errorf("sessionDurationMinutes(%q, %q) = %d, want %d",
					tc.started, tc.completed, got, tc.want)
			}
		})
	}
}

// TestWeightTrendLabel verifies the deadband classification of week-over-week
// average weight change.
func TestWeightTrendLabel(t *testing.T) {
	cases := []struct {
		name string
		diff float64
		want string
	}{
		{"clearly up", 0.5, "up"},
		{"clearly down", -0.5, "down"},
		{"small gain is noise", 0.1, "stable"},
		{"small loss is noise", -0.15, "stable"},
		{"deadband edge up", 0.2, "stable"},
		{"deadband edge down", -0.2, "stable"},
		{"just past deadband", 0.21, "up"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := weightTrendLabel(tc.diff); got != tc.want {
				t.Errorf("weightTrendLabel(%v) = %q, want %q", tc.diff, got, tc.want)
			}
		})
	}
}
