package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// trendDeadbandKG is the 7-day average delta below which the weight trend is
// reported as stable rather than up/down — daily water-weight noise easily
// exceeds a couple hundred grams.
const trendDeadbandKG = 0.2

// weightTrendLabel classifies a week-over-week average delta.
func weightTrendLabel(diffKG float64) string {
	switch {
	case diffKG > trendDeadbandKG:
		return "up"
	case diffKG < -trendDeadbandKG:
		return "down"
	default:
		return "stable"
	}
}

// createWeightEntry appends a body-weight entry. Entries are immutable facts —
// corrections happen by delete and re-log, never by edit.
// POST /api/weight. Body: { "weight_kg": 85.4 }.
func (h *Handler) createWeightEntry(c *gin.Context) {
	var body struct {
		WeightKG float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.WeightKG <= 0 || body.WeightKG > 999 {
		apiError(c, http.StatusBadRequest, "weight_kg must be between 0 and 999")
		return
	}

	res, err := h.db.Exec(`INSERT INTO body_weight (weight_kg) VALUES (?)`, body.WeightKG)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create weight entry")
		return
	}
	id, _ := res.LastInsertId()

	var e bodyWeightEntry
	if err := h.db.QueryRow(
		`SELECT id, weight_kg, logged_at FROM body_weight WHERE id = ?`, id).
		Scan(&e.ID, &e.WeightKG, &e.LoggedAt); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight entry")
		return
	}
	c.JSON(http.StatusCreated, e)
}

// getLatestWeight returns the most recent entry, or null if none exists.
// GET /api/weight/latest.
func (h *Handler) getLatestWeight(c *gin.Context) {
	latest, err := h.latestWeight()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight entry")
		return
	}
	if latest == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, latest)
}

// getWeightSummary returns the current weight, the 7-day average, and a
// coarse trend label against the previous 7-day window.
// GET /api/weight/summary.
func (h *Handler) getWeightSummary(c *gin.Context) {
	latest, err := h.latestWeight()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight summary")
		return
	}

	day := today()
	recent, err := h.weightWindow(day.AddDate(0, 0, -7), day.AddDate(0, 0, 1))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight summary")
		return
	}
	previous, err := h.weightWindow(day.AddDate(0, 0, -14), day.AddDate(0, 0, -7))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight summary")
		return
	}

	resp := gin.H{
		"current":     nil,
		"currentDate": nil,
		"avg7day":     nil,
		"entries7day": len(recent),
		"trend":       nil,
	}
	if latest != nil {
		resp["current"] = latest.WeightKG
		resp["currentDate"] = latest.LoggedAt
	}
	if len(recent) > 0 {
		resp["avg7day"] = round1(mean(recent))
	}
	if len(recent) > 0 && len(previous) > 0 {
		resp["trend"] = weightTrendLabel(mean(recent) - mean(previous))
	}
	c.JSON(http.StatusOK, resp)
}

// getWeightHistory returns the last N entries in chronological order.
// GET /api/weight/history?limit=N (default 30).
func (h *Handler) getWeightHistory(c *gin.Context) {
	limit := 30
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := h.db.Query(
		`SELECT id, weight_kg, logged_at FROM body_weight
		 ORDER BY logged_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight history")
		return
	}
	defer rows.Close()

	entries := []bodyWeightEntry{}
	for rows.Next() {
		var e bodyWeightEntry
		if err := rows.Scan(&e.ID, &e.WeightKG, &e.LoggedAt); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan weight entry")
			return
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read weight history")
		return
	}

	// Fetched newest-first for the LIMIT; the chart wants oldest-first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	c.JSON(http.StatusOK, entries)
}

// deleteWeightEntry removes an entry (mis-entry correction). Idempotent.
// DELETE /api/weight/:id.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.db.Exec(`DELETE FROM body_weight WHERE id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
