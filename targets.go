package main

import (
	"database/sql"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// refreshThresholdKcal is the default divergence between freshly computed and
// cached calories above which a refresh actually writes.
const refreshThresholdKcal = 50.0

/* ─── Input gathering ────────────────────────────────────────────────── */

// fetchTargets loads the cached nutrition_targets singleton.
func (h *Handler) fetchTargets() (nutritionTargets, error) {
	var t nutritionTargets
	err := h.db.QueryRow(
		`SELECT id, calories, protein, carbs, fat FROM nutrition_targets WHERE id = 1`).
		Scan(&t.ID, &t.Calories, &t.Protein, &t.Carbs, &t.Fat)
	return t, err
}

// latestWeight returns the most recent body-weight entry, or nil if none has
// ever been logged.
func (h *Handler) latestWeight() (*bodyWeightEntry, error) {
	var e bodyWeightEntry
	err := h.db.QueryRow(
		`SELECT id, weight_kg, logged_at FROM body_weight
		 ORDER BY logged_at DESC, id DESC LIMIT 1`).
		Scan(&e.ID, &e.WeightKG, &e.LoggedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// weightWindow returns weights logged in [from, to), oldest first.
func (h *Handler) weightWindow(from, to time.Time) ([]float64, error) {
	rows, err := h.db.Query(
		`SELECT weight_kg FROM body_weight
		 WHERE logged_at >= ? AND logged_at < ? ORDER BY logged_at ASC`,
		from.Format(sqliteTimeLayout), to.Format(sqliteTimeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	weights := []float64{}
	for rows.Next() {
		var w float64
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

// intakeByDay returns per-day calorie sums for days with log entries in
// [from, to). Days with nothing logged produce no element.
func (h *Handler) intakeByDay(from, to time.Time) ([]float64, error) {
	rows, err := h.db.Query(
		`SELECT SUM(calories) FROM daily_log
		 WHERE date >= ? AND date < ? GROUP BY date`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := []float64{}
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// gatherTDEEInputs materializes everything computeBreakdown needs for the
// given day: profile, latest weight, phase state, and the trailing weight and
// intake windows. Returns nil inputs when no weight entry exists at all.
func (h *Handler) gatherTDEEInputs(day time.Time) (*tdeeInputs, error) {
	latest, err := h.latestWeight()
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}

	profile, err := h.fetchProfile()
	if err != nil {
		return nil, err
	}
	phases, err := fetchPhases(h)
	if err != nil {
		return nil, err
	}

	recent, err := h.weightWindow(day.AddDate(0, 0, -7), day)
	if err != nil {
		return nil, err
	}
	previous, err := h.weightWindow(day.AddDate(0, 0, -14), day.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	intake, err := h.intakeByDay(day.AddDate(0, 0, -7), day)
	if err != nil {
		return nil, err
	}

	return &tdeeInputs{
		Profile:         profile,
		WeightKG:        latest.WeightKG,
		Phase:           activePhaseOn(phases, day),
		Stabilization:   stabilizationOn(phases, day),
		RecentWeights:   recent,
		PreviousWeights: previous,
		IntakeByDay:     intake,
	}, nil
}

/* ─── Recalculation ──────────────────────────────────────────────────── */

// recalculateTargets re-runs the full calculation for day and writes the
// result into the nutrition_targets cache. No-op when no weight entry exists
// (the cache keeps its previous values). Safe to call redundantly.
func (h *Handler) recalculateTargets(day time.Time) error {
	in, err := h.gatherTDEEInputs(day)
	if err != nil {
		return err
	}
	if in == nil {
		return nil
	}
	b := computeBreakdown(*in)
	_, err = h.db.Exec(
		`UPDATE nutrition_targets SET calories = ?, protein = ?, carbs = ?, fat = ? WHERE id = 1`,
		b.FinalCalories, b.ProteinG, b.CarbsG, b.FatG)
	return err
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getAdaptiveTDEE returns the full calculation breakdown for today.
// GET /api/nutrition/adaptive-tdee. Data insufficiency is reported through
// data_status, never as an error.
func (h *Handler) getAdaptiveTDEE(c *gin.Context) {
	in, err := h.gatherTDEEInputs(today())
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to gather calculation inputs")
		return
	}
	if in == nil {
		c.JSON(http.StatusOK, gin.H{"data_status": statusNoWeight, "weight_trend": nil})
		return
	}
	c.JSON(http.StatusOK, computeBreakdown(*in))
}

// getTargets returns the cached nutrition targets.
// GET /api/nutrition/targets.
func (h *Handler) getTargets(c *gin.Context) {
	t, err := h.fetchTargets()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch targets")
		return
	}
	c.JSON(http.StatusOK, t)
}

// updateTargets overwrites the cached targets with user-supplied values.
// PUT /api/nutrition/targets. Omitted fields fall back to defaults.
func (h *Handler) updateTargets(c *gin.Context) {
	var body struct {
		Calories *int `json:"calories"`
		Protein  *int `json:"protein"`
		Carbs    *int `json:"carbs"`
		Fat      *int `json:"fat"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	calories, protein, carbs, fat := 2500, 180, 250, 80
	if body.Calories != nil {
		calories = *body.Calories
	}
	if body.Protein != nil {
		protein = *body.Protein
	}
	if body.Carbs != nil {
		carbs = *body.Carbs
	}
	if body.Fat != nil {
		fat = *body.Fat
	}

	if _, err := h.db.Exec(
		`UPDATE nutrition_targets SET calories = ?, protein = ?, carbs = ?, fat = ? WHERE id = 1`,
		calories, protein, carbs, fat); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update targets")
		return
	}

	t, err := h.fetchTargets()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch targets")
		return
	}
	c.JSON(http.StatusOK, t)
}

// refreshTargets recomputes today's targets and persists them only when the
// fresh calories diverge from the cache by more than the threshold. This is
// the explicit form of the client's opportunistic cache correction — cheap to
// call on every view without forcing a write.
// POST /api/nutrition/targets/refresh.
func (h *Handler) refreshTargets(c *gin.Context) {
	var body struct {
		ThresholdKcal *float64 `json:"threshold_kcal"`
	}
	// An empty body is fine — the threshold is optional.
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	threshold := refreshThresholdKcal
	if body.ThresholdKcal != nil {
		threshold = *body.ThresholdKcal
	}

	cached, err := h.fetchTargets()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch targets")
		return
	}

	in, err := h.gatherTDEEInputs(today())
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to gather calculation inputs")
		return
	}
	if in == nil {
		c.JSON(http.StatusOK, gin.H{"updated": false, "targets": cached})
		return
	}

	b := computeBreakdown(*in)
	if math.Abs(float64(b.FinalCalories-cached.Calories)) <= threshold {
		c.JSON(http.StatusOK, gin.H{"updated": false, "targets": cached})
		return
	}

	if _, err := h.db.Exec(
		`UPDATE nutrition_targets SET calories = ?, protein = ?, carbs = ?, fat = ? WHERE id = 1`,
		b.FinalCalories, b.ProteinG, b.CarbsG, b.FatG); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update targets")
		return
	}
	fresh, err := h.fetchTargets()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch targets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "targets": fresh})
}
