package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// stabilizationDays is the post-transition window during which adaptive
// inference is suppressed: body weight and water retention swing sharply for
// about 10 days after a caloric-intake step change.
const stabilizationDays = 10

// stabilizationStatus reports whether a date falls inside a post-transition
// window, and how many days of it remain.
type stabilizationStatus struct {
	InStabilization bool `json:"in_stabilization"`
	DaysRemaining   int  `json:"days_remaining,omitempty"`
}

/* ─── Scheduler (pure functions of the phase set and a date) ─────────── */

// coveringPhase returns the phase with start_date <= day < end_date. If the
// non-overlap invariant were ever violated, the latest start wins.
func coveringPhase(phases []phase, day time.Time) *phase {
	var match *phase
	for i := range phases {
		p := &phases[i]
		if !day.Before(p.StartDate.Time) && day.Before(p.EndDate.Time) {
			if match == nil || p.StartDate.Time.After(match.StartDate.Time) {
				match = p
			}
		}
	}
	return match
}

// activePhaseOn resolves the dietary phase for a date. Uncovered dates
// default to maintain.
func activePhaseOn(phases []phase, day time.Time) string {
	if p := coveringPhase(phases, day); p != nil {
		return p.PhaseType
	}
	return "maintain"
}

// stabilizationOn reports whether day is within stabilizationDays of a
// diet-type transition: a covering phase whose nearest predecessor (the most
// recent phase ending at or before its start) has a different phase_type.
func stabilizationOn(phases []phase, day time.Time) stabilizationStatus {
	current := coveringPhase(phases, day)
	if current == nil {
		return stabilizationStatus{}
	}

	var prev *phase
	for i := range phases {
		p := &phases[i]
		if p.EndDate.Time.After(current.StartDate.Time) {
			continue
		}
		if prev == nil || p.EndDate.Time.After(prev.EndDate.Time) {
			prev = p
		}
	}
	if prev == nil || prev.PhaseType == current.PhaseType {
		return stabilizationStatus{}
	}

	daysSinceBoundary := int(day.Sub(current.StartDate.Time).Hours() / 24)
	if daysSinceBoundary < stabilizationDays {
		return stabilizationStatus{
			InStabilization: true,
			DaysRemaining:   stabilizationDays - daysSinceBoundary,
		}
	}
	return stabilizationStatus{}
}

// findOverlap returns the first phase whose [start, end) range intersects the
// given range, skipping excludeID (0 to check against all phases).
func findOverlap(phases []phase, start, end time.Time, excludeID int64) *phase {
	for i := range phases {
		p := &phases[i]
		if p.ID == excludeID {
			continue
		}
		if p.StartDate.Time.Before(end) && start.Before(p.EndDate.Time) {
			return p
		}
	}
	return nil
}

/* ─── Persistence helpers ────────────────────────────────────────────── */

// fetchPhases loads all phases ordered by start_date.
func fetchPhases(h *Handler) ([]phase, error) {
	rows, err := h.db.Query(
		`SELECT id, phase_type, start_date, end_date, created_at
		 FROM phases ORDER BY start_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	phases := []phase{}
	for rows.Next() {
		var p phase
		if err := rows.Scan(&p.ID, &p.PhaseType, &p.StartDate, &p.EndDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// phaseRequest is the request body for POST /phases and PUT /phases/:id.
type phaseRequest struct {
	PhaseType string `json:"phase_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// validatePhaseRequest checks type, date format, and range ordering.
// Overlap is checked separately since it needs the stored phase set.
func validatePhaseRequest(body phaseRequest) (start, end time.Time, errMsg string) {
	if body.PhaseType == "" || body.StartDate == "" || body.EndDate == "" {
		return start, end, "phase_type, start_date, and end_date are required"
	}
	if _, ok := phaseMultipliers[body.PhaseType]; !ok {
		return start, end, "phase_type must be cut, maintain, or bulk"
	}
	start, err := time.Parse(dateLayout, body.StartDate)
	if err != nil {
		return start, end, "invalid start_date, expected YYYY-MM-DD"
	}
	end, err = time.Parse(dateLayout, body.EndDate)
	if err != nil {
		return start, end, "invalid end_date, expected YYYY-MM-DD"
	}
	if !start.Before(end) {
		return start, end, "start_date must be before end_date"
	}
	return start, end, ""
}

// listPhases returns all phases plus the active phase and stabilization
// status for today.
// GET /api/nutrition/phases.
func (h *Handler) listPhases(c *gin.Context) {
	phases, err := fetchPhases(h)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch phases")
		return
	}
	day := today()
	c.JSON(http.StatusOK, gin.H{
		"phases":        phases,
		"active_phase":  activePhaseOn(phases, day),
		"stabilization": stabilizationOn(phases, day),
	})
}

// createPhase validates and inserts a new phase, then recalculates targets.
// POST /api/nutrition/phases. Rejected entirely on any validation failure —
// no partial writes.
func (h *Handler) createPhase(c *gin.Context) {
	var body phaseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start, end, msg := validatePhaseRequest(body)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	phases, err := fetchPhases(h)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch phases")
		return
	}
	if findOverlap(phases, start, end, 0) != nil {
		apiError(c, http.StatusBadRequest, "phase overlaps with an existing phase")
		return
	}

	res, err := h.db.Exec(
		`INSERT INTO phases (phase_type, start_date, end_date) VALUES (?, ?, ?)`,
		body.PhaseType, body.StartDate, body.EndDate)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create phase")
		return
	}
	id, _ := res.LastInsertId()

	// A calculation failure must not fail the accepted write.
	if err := h.recalculateTargets(today()); err != nil {
		log.Printf("[createPhase] target recalculation failed: %v", err)
	}

	p, err := h.fetchPhase(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch created phase")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// updatePhase validates and rewrites an existing phase, excluding itself from
// the overlap check, then recalculates targets.
// PUT /api/nutrition/phases/:id.
func (h *Handler) updatePhase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var body phaseRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	start, end, msg := validatePhaseRequest(body)
	if msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	phases, err := fetchPhases(h)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch phases")
		return
	}
	if findOverlap(phases, start, end, id) != nil {
		apiError(c, http.StatusBadRequest, "phase overlaps with an existing phase")
		return
	}

	res, err := h.db.Exec(
		`UPDATE phases SET phase_type = ?, start_date = ?, end_date = ? WHERE id = ?`,
		body.PhaseType, body.StartDate, body.EndDate, id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update phase")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		apiError(c, http.StatusNotFound, "phase not found")
		return
	}

	if err := h.recalculateTargets(today()); err != nil {
		log.Printf("[updatePhase] target recalculation failed: %v", err)
	}

	p, err := h.fetchPhase(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch updated phase")
		return
	}
	c.JSON(http.StatusOK, p)
}

// deletePhase removes a phase and recalculates targets. Idempotent — deleting
// a missing id still succeeds.
// DELETE /api/nutrition/phases/:id.
func (h *Handler) deletePhase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.db.Exec(`DELETE FROM phases WHERE id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete phase")
		return
	}
	if err := h.recalculateTargets(today()); err != nil {
		log.Printf("[deletePhase] target recalculation failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// fetchPhase loads one phase by id.
func (h *Handler) fetchPhase(id int64) (phase, error) {
	var p phase
	err := h.db.QueryRow(
		`SELECT id, phase_type, start_date, end_date, created_at FROM phases WHERE id = ?`, id).
		Scan(&p.ID, &p.PhaseType, &p.StartDate, &p.EndDate, &p.CreatedAt)
	return p, err
}
