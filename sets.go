package main

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const setColumns = `id, workout_session_id, exercise_id, exercise_name, set_number,
	weight_kg, reps, is_last_set, target_rpe, substitution_used, logged_at`

func scanSetLog(row interface{ Scan(...any) error }) (setLog, error) {
	var s setLog
	err := row.Scan(&s.ID, &s.WorkoutSessionID, &s.ExerciseID, &s.ExerciseName, &s.SetNumber,
		&s.WeightKG, &s.Reps, &s.IsLastSet, &s.TargetRPE, &s.SubstitutionUsed, &s.LoggedAt)
	return s, err
}

// createSetLog records one performed set.
// POST /api/sets.
func (h *Handler) createSetLog(c *gin.Context) {
	var body struct {
		WorkoutSessionID int64   `json:"workout_session_id"`
		ExerciseID       string  `json:"exercise_id"`
		ExerciseName     string  `json:"exercise_name"`
		SetNumber        int     `json:"set_number"`
		WeightKG         float64 `json:"weight_kg"`
		Reps             int     `json:"reps"`
		IsLastSet        bool    `json:"is_last_set"`
		TargetRPE        *string `json:"target_rpe"`
		SubstitutionUsed *string `json:"substitution_used"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.ExerciseName == "" {
		apiError(c, http.StatusBadRequest, "exercise_name is required")
		return
	}
	if body.WeightKG < 0 || body.Reps < 0 {
		apiError(c, http.StatusBadRequest, "weight_kg and reps must be non-negative")
		return
	}

	var exists int
	if err := h.db.QueryRow(
		`SELECT COUNT(*) FROM workout_sessions WHERE id = ?`, body.WorkoutSessionID).
		Scan(&exists); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to verify session")
		return
	}
	if exists == 0 {
		apiError(c, http.StatusNotFound, "session not found")
		return
	}

	res, err := h.db.Exec(
		`INSERT INTO set_logs (workout_session_id, exercise_id, exercise_name, set_number,
		        weight_kg, reps, is_last_set, target_rpe, substitution_used)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		body.WorkoutSessionID, body.ExerciseID, body.ExerciseName, body.SetNumber,
		body.WeightKG, body.Reps, body.IsLastSet, body.TargetRPE, body.SubstitutionUsed)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log set")
		return
	}
	id, _ := res.LastInsertId()
	s, err := scanSetLog(h.db.QueryRow(`SELECT `+setColumns+` FROM set_logs WHERE id = ?`, id))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch logged set")
		return
	}
	c.JSON(http.StatusCreated, s)
}

// getLastPerformance returns all sets of an exercise from the most recent
// session that included it, so the client can prefill weights.
// GET /api/sets/last-performance/:exerciseName.
func (h *Handler) getLastPerformance(c *gin.Context) {
	name := c.Param("exerciseName")

	var sessionID int64
	err := h.db.QueryRow(
		`SELECT workout_session_id FROM set_logs
		 WHERE exercise_name = ? ORDER BY logged_at DESC, id DESC LIMIT 1`, name).
		Scan(&sessionID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusOK, []setLog{})
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch last performance")
		return
	}

	rows, err := h.db.Query(
		`SELECT `+setColumns+` FROM set_logs
		 WHERE workout_session_id = ? AND exercise_name = ?
		 ORDER BY set_number ASC`, sessionID, name)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch last performance")
		return
	}
	defer rows.Close()

	sets := []setLog{}
	for rows.Next() {
		s, err := scanSetLog(rows)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan set")
			return
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read sets")
		return
	}
	c.JSON(http.StatusOK, sets)
}

// getSessionSets returns all sets logged in a session, grouped by exercise.
// GET /api/sets/session/:sessionId.
func (h *Handler) getSessionSets(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("sessionId"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid session id")
		return
	}

	rows, err := h.db.Query(
		`SELECT `+setColumns+` FROM set_logs
		 WHERE workout_session_id = ?
		 ORDER BY exercise_id ASC, set_number ASC`, sessionID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch session sets")
		return
	}
	defer rows.Close()

	sets := []setLog{}
	for rows.Next() {
		s, err := scanSetLog(rows)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan set")
			return
		}
		sets = append(sets, s)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read sets")
		return
	}
	c.JSON(http.StatusOK, sets)
}

// getExercisePR returns the heaviest logged set for an exercise, ties broken
// by reps, or null if the exercise has never been logged.
// GET /api/sets/pr/:exerciseName.
func (h *Handler) getExercisePR(c *gin.Context) {
	s, err := scanSetLog(h.db.QueryRow(
		`SELECT `+setColumns+` FROM set_logs
		 WHERE exercise_name = ?
		 ORDER BY weight_kg DESC, reps DESC LIMIT 1`, c.Param("exerciseName")))
	if err == sql.ErrNoRows {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch PR")
		return
	}
	c.JSON(http.StatusOK, s)
}

// deleteSetLog removes a logged set (mis-entry correction). Idempotent.
// DELETE /api/sets/:id.
func (h *Handler) deleteSetLog(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.db.Exec(`DELETE FROM set_logs WHERE id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete set")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
