package main

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const sessionColumns = `id, cycle, week_number, workout_template_id, workout_name,
	started_at, completed_at, skipped_at, notes`

func scanSession(row interface{ Scan(...any) error }) (workoutSession, error) {
	var s workoutSession
	err := row.Scan(&s.ID, &s.Cycle, &s.WeekNumber, &s.WorkoutTemplateID, &s.WorkoutName,
		&s.StartedAt, &s.CompletedAt, &s.SkippedAt, &s.Notes)
	return s, err
}

// fetchSession loads one workout session by id.
func (h *Handler) fetchSession(id int64) (workoutSession, error) {
	return scanSession(h.db.QueryRow(
		`SELECT `+sessionColumns+` FROM workout_sessions WHERE id = ?`, id))
}

// createWorkoutSession starts a session for a program workout.
// POST /api/workouts. Body: { "cycle", "weekNumber", "templateId" }.
func (h *Handler) createWorkoutSession(c *gin.Context) {
	var body struct {
		Cycle      int    `json:"cycle"`
		WeekNumber int    `json:"weekNumber"`
		TemplateID string `json:"templateId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	week := h.program.week(body.WeekNumber)
	if week == nil {
		apiError(c, http.StatusBadRequest, "unknown week number")
		return
	}
	workout := week.workout(body.TemplateID)
	if workout == nil {
		apiError(c, http.StatusBadRequest, "unknown workout template")
		return
	}
	if body.Cycle < 1 {
		body.Cycle = 1
	}

	res, err := h.db.Exec(
		`INSERT INTO workout_sessions (cycle, week_number, workout_template_id, workout_name)
		 VALUES (?, ?, ?, ?)`,
		body.Cycle, body.WeekNumber, workout.TemplateID, workout.Name)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create session")
		return
	}
	id, _ := res.LastInsertId()
	s, err := h.fetchSession(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch created session")
		return
	}
	c.JSON(http.StatusCreated, s)
}

// completeWorkoutSession marks a session finished, with optional notes.
// PUT /api/workouts/:id/complete. Body: { "notes"? }.
func (h *Handler) completeWorkoutSession(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var body struct {
		Notes *string `json:"notes"`
	}
	// Body is optional.
	c.ShouldBindJSON(&body)

	res, err := h.db.Exec(
		`UPDATE workout_sessions SET completed_at = datetime('now'), notes = ? WHERE id = ?`,
		body.Notes, id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to complete session")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		apiError(c, http.StatusNotFound, "session not found")
		return
	}
	s, err := h.fetchSession(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch session")
		return
	}
	c.JSON(http.StatusOK, s)
}

// skipWorkout records a workout as deliberately skipped for the week, so week
// status and streaks can tell "skipped" from "not done yet".
// PUT /api/workouts/skip. Body: { "cycle", "weekNumber", "templateId" }.
func (h *Handler) skipWorkout(c *gin.Context) {
	var body struct {
		Cycle      int    `json:"cycle"`
		WeekNumber int    `json:"weekNumber"`
		TemplateID string `json:"templateId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	week := h.program.week(body.WeekNumber)
	if week == nil {
		apiError(c, http.StatusBadRequest, "unknown week number")
		return
	}
	workout := week.workout(body.TemplateID)
	if workout == nil {
		apiError(c, http.StatusBadRequest, "unknown workout template")
		return
	}
	if body.Cycle < 1 {
		body.Cycle = 1
	}

	res, err := h.db.Exec(
		`INSERT INTO workout_sessions (cycle, week_number, workout_template_id, workout_name, skipped_at)
		 VALUES (?, ?, ?, ?, datetime('now'))`,
		body.Cycle, body.WeekNumber, workout.TemplateID, workout.Name)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to skip workout")
		return
	}
	id, _ := res.LastInsertId()
	s, err := h.fetchSession(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch session")
		return
	}
	c.JSON(http.StatusCreated, s)
}

// unskipWorkout removes a skip marker so the workout can be done after all.
// Only skip records are deletable this way.
// PUT /api/workouts/:id/unskip.
func (h *Handler) unskipWorkout(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.db.Exec(
		`DELETE FROM workout_sessions WHERE id = ? AND skipped_at IS NOT NULL`, id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to unskip workout")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		apiError(c, http.StatusNotFound, "skipped session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unskipped": true})
}

// getRecentWorkouts returns the most recent completed sessions.
// GET /api/workouts/recent?limit=N (default 10).
func (h *Handler) getRecentWorkouts(c *gin.Context) {
	limit := 10
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := h.db.Query(
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE completed_at IS NOT NULL
		 ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch recent workouts")
		return
	}
	defer rows.Close()

	sessions := []workoutSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan session")
			return
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// getWeekStatus reports which of a week's workouts are completed or skipped.
// GET /api/workouts/status?cycle=N&week=N.
func (h *Handler) getWeekStatus(c *gin.Context) {
	cycle, err := strconv.Atoi(c.DefaultQuery("cycle", "1"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid cycle")
		return
	}
	week, err := strconv.Atoi(c.DefaultQuery("week", "1"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid week")
		return
	}

	rows, err := h.db.Query(
		`SELECT workout_template_id, completed_at, skipped_at, started_at
		 FROM workout_sessions WHERE cycle = ? AND week_number = ?
		 ORDER BY started_at ASC`, cycle, week)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week status")
		return
	}
	defer rows.Close()

	completed := []string{}
	skipped := []string{}
	type completedDetail struct {
		TemplateID      string `json:"templateId"`
		CompletedAt     string `json:"completedAt"`
		DurationMinutes int    `json:"durationMinutes"`
	}
	details := []completedDetail{}

	for rows.Next() {
		var templateID, startedAt string
		var completedAt, skippedAt *string
		if err := rows.Scan(&templateID, &completedAt, &skippedAt, &startedAt); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan session")
			return
		}
		switch {
		case completedAt != nil:
			completed = append(completed, templateID)
			details = append(details, completedDetail{
				TemplateID:      templateID,
				CompletedAt:     *completedAt,
				DurationMinutes: sessionDurationMinutes(startedAt, *completedAt),
			})
		case skippedAt != nil:
			skipped = append(skipped, templateID)
		}
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read sessions")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"completed":        completed,
		"completedDetails": details,
		"skipped":          skipped,
	})
}

// getActiveWorkout returns the most recent session that is neither completed
// nor skipped, or null when nothing is in flight.
// GET /api/workouts/active.
func (h *Handler) getActiveWorkout(c *gin.Context) {
	s, err := scanSession(h.db.QueryRow(
		`SELECT ` + sessionColumns + ` FROM workout_sessions
		 WHERE completed_at IS NULL AND skipped_at IS NULL
		 ORDER BY started_at DESC, id DESC LIMIT 1`))
	if err == sql.ErrNoRows {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch active workout")
		return
	}
	c.JSON(http.StatusOK, s)
}

// getFirstIncompleteWeek scans the current cycle for the first week where not
// every program workout is completed or skipped, so the client can land on it.
// GET /api/workouts/first-incomplete-week?cycle=N.
func (h *Handler) getFirstIncompleteWeek(c *gin.Context) {
	cycle, err := strconv.Atoi(c.DefaultQuery("cycle", "1"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid cycle")
		return
	}

	lastWeek := 1
	for _, week := range h.program.Weeks {
		lastWeek = week.WeekNumber
		var done int
		if err := h.db.QueryRow(
			`SELECT COUNT(DISTINCT workout_template_id) FROM workout_sessions
			 WHERE cycle = ? AND week_number = ?
			   AND (completed_at IS NOT NULL OR skipped_at IS NOT NULL)`,
			cycle, week.WeekNumber).Scan(&done); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan week")
			return
		}
		if done < len(week.Workouts) {
			c.JSON(http.StatusOK, gin.H{"week": week.WeekNumber})
			return
		}
	}
	// Whole cycle done; stay on the final week.
	c.JSON(http.StatusOK, gin.H{"week": lastWeek})
}

// deleteWorkoutSession removes a session and its logged sets. Idempotent.
// DELETE /api/workouts/:id.
func (h *Handler) deleteWorkoutSession(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.db.Exec(`DELETE FROM set_logs WHERE workout_session_id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete session")
		return
	}
	if _, err := h.db.Exec(`DELETE FROM workout_sessions WHERE id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
