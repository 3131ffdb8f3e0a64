package main

import (
	"testing"
	"time"
)

// mkPhase builds a phase from date strings, panicking on a malformed literal
// so test tables stay compact.
func mkPhase(id int64, phaseType, startDate, endDate string) phase {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		panic(err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		panic(err)
	}
	return phase{
		ID:        id,
		PhaseType: phaseType,
		StartDate: DateOnly{start},
		EndDate:   DateOnly{end},
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		t.Fatalf("bad date literal %q: %v", s, err)
	}
	return d
}

/* ─── Active phase resolution ────────────────────────────────────────── */

// TestActivePhaseOn verifies half-open window semantics: the start date is
// covered, the end date is not, and uncovered dates default to maintain.
func TestActivePhaseOn(t *testing.T) {
	phases := []phase{
		mkPhase(1, "cut", "2026-03-01", "2026-04-01"),
		mkPhase(2, "bulk", "2026-05-01", "2026-06-01"),
	}

	cases := []struct {
		day  string
		want string
	}{
		{"2026-03-01", "cut"},      // start date inclusive
		{"2026-03-31", "cut"},      // last covered day
		{"2026-04-01", "maintain"}, // end date exclusive
		{"2026-04-15", "maintain"}, // gap between phases
		{"2026-05-01", "bulk"},
		{"2026-02-28", "maintain"}, // before any phase
	}
	for _, tc := range cases {
		t.Run(tc.day, func(t *testing.T) {
			if got := activePhaseOn(phases, mustDate(t, tc.day)); got != tc.want {
				t.Errorf("activePhaseOn(%s) = %q, want %q", tc.day, got, tc.want)
			}
		})
	}
}

// TestActivePhaseOn_Deterministic verifies repeated resolution of the same
// date yields the same phase.
func TestActivePhaseOn_Deterministic(t *testing.T) {
	phases := []phase{
		mkPhase(1, "cut", "2026-03-01", "2026-04-01"),
		mkPhase(2, "maintain", "2026-04-01", "2026-05-01"),
	}
	day := mustDate(t, "2026-03-15")
	first := activePhaseOn(phases, day)
	for i := 0; i < 10; i++ {
		if got := activePhaseOn(phases, day); got != first {
			t.Fatalf("resolution diverged on run %d: %q != %q", i, got, first)
		}
	}
}

// TestCoveringPhase_LatestStartWins verifies the tie-break should the stored
// set ever contain an overlap: the phase with the latest start date covers.
func TestCoveringPhase_LatestStartWins(t *testing.T) {
	phases := []phase{
		mkPhase(1, "maintain", "2026-03-01", "2026-05-01"),
		mkPhase(2, "cut", "2026-04-01", "2026-04-20"),
	}
	p := coveringPhase(phases, mustDate(t, "2026-04-10"))
	if p == nil || p.ID != 2 {
		t.Fatalf("coveringPhase = %+v, want phase 2", p)
	}
}

/* ─── Overlap detection ──────────────────────────────────────────────── */

// TestFindOverlap exercises the half-open range intersection used to enforce
// phase non-overlap on create and update.
func TestFindOverlap(t *testing.T) {
	phases := []phase{
		mkPhase(1, "cut", "2026-03-01", "2026-04-01"),
	}

	cases := []struct {
		name      string
		start     string
		end       string
		excludeID int64
		wantHit   bool
	}{
		{"adjacent after", "2026-04-01", "2026-05-01", 0, false}, // end == start is no overlap
		{"adjacent before", "2026-02-01", "2026-03-01", 0, false},
		{"contained", "2026-03-10", "2026-03-20", 0, true},
		{"containing", "2026-02-01", "2026-05-01", 0, true},
		{"straddles start", "2026-02-20", "2026-03-05", 0, true},
		{"straddles end", "2026-03-25", "2026-04-10", 0, true},
		{"identical range", "2026-03-01", "2026-04-01", 0, true},
		{"self excluded", "2026-03-01", "2026-04-01", 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := findOverlap(phases, mustDate(t, tc.start), mustDate(t, tc.end), tc.excludeID)
			if (got != nil) != tc.wantHit {
				t.Errorf("findOverlap(%s, %s, exclude=%d) hit=%v, want %v",
					tc.start, tc.end, tc.excludeID, got != nil, tc.wantHit)
			}
		})
	}
}

/* ─── Stabilization window ───────────────────────────────────────────── */

// TestStabilizationOn_Transition walks day by day across a maintain->cut
// boundary at 2026-03-01: days 0-9 after the transition are stabilizing, with
// the remaining count falling from 10 to 1, and day 10 is clear.
func TestStabilizationOn_Transition(t *testing.T) {
	phases := []phase{
		mkPhase(1, "maintain", "2026-02-01", "2026-03-01"),
		mkPhase(2, "cut", "2026-03-01", "2026-04-01"),
	}

	cases := []struct {
		day           string
		wantIn        bool
		wantRemaining int
	}{
		{"2026-03-01", true, 10},
		{"2026-03-05", true, 6},
		{"2026-03-10", true, 1},
		{"2026-03-11", false, 0},
		{"2026-03-20", false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.day, func(t *testing.T) {
			got := stabilizationOn(phases, mustDate(t, tc.day))
			if got.InStabilization != tc.wantIn {
				t.Errorf("InStabilization = %v, want %v", got.InStabilization, tc.wantIn)
			}
			if got.DaysRemaining != tc.wantRemaining {
				t.Errorf("DaysRemaining = %d, want %d", got.DaysRemaining, tc.wantRemaining)
			}
		})
	}
}

// TestStabilizationOn_NoTransition verifies the cases that never open a
// stabilization window.
func TestStabilizationOn_NoTransition(t *testing.T) {
	t.Run("first phase ever", func(t *testing.T) {
		phases := []phase{mkPhase(1, "cut", "2026-03-01", "2026-04-01")}
		if got := stabilizationOn(phases, mustDate(t, "2026-03-02")); got.InStabilization {
			t.Errorf("got %+v, want no stabilization without a predecessor", got)
		}
	})

	t.Run("same type transition", func(t *testing.T) {
		phases := []phase{
			mkPhase(1, "cut", "2026-02-01", "2026-03-01"),
			mkPhase(2, "cut", "2026-03-01", "2026-04-01"),
		}
		if got := stabilizationOn(phases, mustDate(t, "2026-03-02")); got.InStabilization {
			t.Errorf("got %+v, want no stabilization for same-type transition", got)
		}
	})

	t.Run("uncovered date", func(t *testing.T) {
		phases := []phase{
			mkPhase(1, "maintain", "2026-02-01", "2026-03-01"),
			mkPhase(2, "cut", "2026-03-01", "2026-04-01"),
		}
		if got := stabilizationOn(phases, mustDate(t, "2026-04-02")); got.InStabilization {
			t.Errorf("got %+v, want no stabilization outside any phase", got)
		}
	})

	t.Run("gap before current phase", func(t *testing.T) {
		// A predecessor separated by a gap still counts — the intake step
		// change happens when the new phase starts.
		phases := []phase{
			mkPhase(1, "maintain", "2026-01-01", "2026-02-01"),
			mkPhase(2, "cut", "2026-03-01", "2026-04-01"),
		}
		got := stabilizationOn(phases, mustDate(t, "2026-03-03"))
		if !got.InStabilization || got.DaysRemaining != 8 {
			t.Errorf("got %+v, want stabilization with 8 days remaining", got)
		}
	})
}

/* ─── Request validation ─────────────────────────────────────────────── */

// TestValidatePhaseRequest covers the pre-write validation table.
func TestValidatePhaseRequest(t *testing.T) {
	cases := []struct {
		name    string
		body    phaseRequest
		wantErr bool
	}{
		{"valid", phaseRequest{"cut", "2026-03-01", "2026-04-01"}, false},
		{"missing type", phaseRequest{"", "2026-03-01", "2026-04-01"}, true},
		{"unknown type", phaseRequest{"recomp", "2026-03-01", "2026-04-01"}, true},
		{"bad start date", phaseRequest{"cut", "03/01/2026", "2026-04-01"}, true},
		{"bad end date", phaseRequest{"cut", "2026-03-01", "April 1"}, true},
		{"start equals end", phaseRequest{"cut", "2026-03-01", "2026-03-01"}, true},
		{"start after end", phaseRequest{"cut", "2026-04-01", "2026-03-01"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, msg := validatePhaseRequest(tc.body)
			if (msg != "") != tc.wantErr {
				t.Errorf("validatePhaseRequest(%+v) msg=%q, wantErr=%v", tc.body, msg, tc.wantErr)
			}
		})
	}
}
