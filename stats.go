package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// fallbackSecondsPerSet is used for exercises with no usable rest-interval
	// history when estimating workout duration.
	fallbackSecondsPerSet = 180

	// transitionSeconds is the setup overhead charged per exercise.
	transitionSeconds = 90

	// maxSetIntervalSeconds caps which gaps between consecutive sets count as
	// rest. Longer gaps mean the phone was put down, not a rest timer.
	maxSetIntervalSeconds = 600
)

// epleyE1RM estimates a one-rep max from a submaximal set (Epley formula).
func epleyE1RM(weightKG float64, reps int) float64 {
	return round1(weightKG * (1 + float64(reps)/30))
}

// sessionDurationMinutes computes a session's length from its timestamps,
// zero when either fails to parse.
func sessionDurationMinutes(startedAt, completedAt string) int {
	start, err := time.Parse(sqliteTimeLayout, startedAt)
	if err != nil {
		return 0
	}
	end, err := time.Parse(sqliteTimeLayout, completedAt)
	if err != nil {
		return 0
	}
	return int(end.Sub(start).Minutes())
}

// prSetsCondition matches sets whose weight beats every earlier set of the
// same exercise. Shared between recent-prs and the week summary.
const prSetsCondition = `s.weight_kg > IFNULL(
	(SELECT MAX(p.weight_kg) FROM set_logs p
	 WHERE p.exercise_name = s.exercise_name AND p.logged_at < s.logged_at), 0)`

// getStatsSummary returns all-time training totals and per-exercise bests.
// GET /api/stats/summary.
func (h *Handler) getStatsSummary(c *gin.Context) {
	var totalWorkouts int
	if err := h.db.QueryRow(
		`SELECT COUNT(*) FROM workout_sessions WHERE completed_at IS NOT NULL`).
		Scan(&totalWorkouts); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	var totalSets int
	var totalVolume float64
	if err := h.db.QueryRow(
		`SELECT COUNT(*), IFNULL(SUM(s.weight_kg * s.reps), 0) FROM set_logs s
		 JOIN workout_sessions w ON w.id = s.workout_session_id
		 WHERE w.completed_at IS NOT NULL`).
		Scan(&totalSets, &totalVolume); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	var avgDuration *float64
	if err := h.db.QueryRow(
		`SELECT AVG((julianday(completed_at) - julianday(started_at)) * 24 * 60)
		 FROM workout_sessions WHERE completed_at IS NOT NULL`).
		Scan(&avgDuration); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	avgMinutes := 0
	if avgDuration != nil {
		avgMinutes = roundToInt(*avgDuration)
	}

	type exerciseBest struct {
		ExerciseName string  `json:"exercise_name"`
		BestWeightKG float64 `json:"best_weight_kg"`
		Reps         int     `json:"reps"`
		E1RM         float64 `json:"e1rm"`
	}
	rows, err := h.db.Query(
		`SELECT exercise_name, weight_kg, reps FROM set_logs s
		 WHERE NOT EXISTS (
		   SELECT 1 FROM set_logs b
		   WHERE b.exercise_name = s.exercise_name
		     AND (b.weight_kg > s.weight_kg
		          OR (b.weight_kg = s.weight_kg AND b.reps > s.reps)
		          OR (b.weight_kg = s.weight_kg AND b.reps = s.reps AND b.id < s.id)))
		 ORDER BY exercise_name ASC`)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch stats")
		return
	}
	defer rows.Close()

	bests := []exerciseBest{}
	for rows.Next() {
		var b exerciseBest
		if err := rows.Scan(&b.ExerciseName, &b.BestWeightKG, &b.Reps); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan stats")
			return
		}
		b.E1RM = epleyE1RM(b.BestWeightKG, b.Reps)
		bests = append(bests, b)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalWorkouts":      totalWorkouts,
		"totalSets":          totalSets,
		"totalVolumeKG":      round1(totalVolume),
		"avgDurationMinutes": avgMinutes,
		"exerciseBests":      bests,
	})
}

// weekVolume sums logged set volume for one program week of one cycle.
func (h *Handler) weekVolume(cycle, week int) (float64, error) {
	var volume float64
	err := h.db.QueryRow(
		`SELECT IFNULL(SUM(s.weight_kg * s.reps), 0) FROM set_logs s
		 JOIN workout_sessions w ON w.id = s.workout_session_id
		 WHERE w.cycle = ? AND w.week_number = ?`, cycle, week).
		Scan(&volume)
	return volume, err
}

// getWeekStatsSummary compares a week's training against the previous one.
// GET /api/stats/week-summary?cycle=N&week=N.
func (h *Handler) getWeekStatsSummary(c *gin.Context) {
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

	var completed, skipped int
	if err := h.db.QueryRow(
		`SELECT
		   COUNT(DISTINCT CASE WHEN completed_at IS NOT NULL THEN workout_template_id END),
		   COUNT(DISTINCT CASE WHEN skipped_at IS NOT NULL THEN workout_template_id END)
		 FROM workout_sessions WHERE cycle = ? AND week_number = ?`, cycle, week).
		Scan(&completed, &skipped); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week summary")
		return
	}

	volume, err := h.weekVolume(cycle, week)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week summary")
		return
	}

	// The week before week 1 is the final week of the previous cycle.
	prevCycle, prevWeek := cycle, week-1
	if prevWeek < 1 {
		prevCycle, prevWeek = cycle-1, len(h.program.Weeks)
	}
	var prevVolume float64
	if prevCycle >= 1 {
		prevVolume, err = h.weekVolume(prevCycle, prevWeek)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to fetch week summary")
			return
		}
	}

	var prCount int
	if err := h.db.QueryRow(
		`SELECT COUNT(*) FROM set_logs s
		 JOIN workout_sessions w ON w.id = s.workout_session_id
		 WHERE w.cycle = ? AND w.week_number = ? AND `+prSetsCondition,
		cycle, week).Scan(&prCount); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week summary")
		return
	}

	totalWorkouts := 0
	if pw := h.program.week(week); pw != nil {
		totalWorkouts = len(pw.Workouts)
	}

	c.JSON(http.StatusOK, gin.H{
		"cycle":            cycle,
		"week":             week,
		"completed":        completed,
		"skipped":          skipped,
		"totalWorkouts":    totalWorkouts,
		"volumeKG":         round1(volume),
		"previousVolumeKG": round1(prevVolume),
		"prCount":          prCount,
	})
}

// getStreak counts consecutive fully trained weeks, newest first. A week
// counts only when every one of its program workouts was completed —
// skipping breaks the streak.
// GET /api/stats/streak.
func (h *Handler) getStreak(c *gin.Context) {
	rows, err := h.db.Query(
		`SELECT cycle, week_number, COUNT(DISTINCT workout_template_id)
		 FROM workout_sessions
		 WHERE completed_at IS NOT NULL
		 GROUP BY cycle, week_number
		 ORDER BY cycle DESC, week_number DESC`)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch streak")
		return
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var cycle, week, done int
		if err := rows.Scan(&cycle, &week, &done); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan streak")
			return
		}
		required := 0
		if pw := h.program.week(week); pw != nil {
			required = len(pw.Workouts)
		}
		if required == 0 || done < required {
			break
		}
		streak++
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read streak")
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// getExerciseStats returns per-exercise lifetime aggregates.
// GET /api/stats/exercises.
func (h *Handler) getExerciseStats(c *gin.Context) {
	type exerciseStat struct {
		ExerciseName string  `json:"exercise_name"`
		TotalSets    int     `json:"total_sets"`
		BestWeightKG float64 `json:"best_weight_kg"`
		BestE1RM     float64 `json:"best_e1rm"`
		LastLogged   string  `json:"last_logged"`
	}

	rows, err := h.db.Query(
		`SELECT exercise_name, COUNT(*), MAX(weight_kg),
		        MAX(weight_kg * (1 + reps / 30.0)), MAX(logged_at)
		 FROM set_logs GROUP BY exercise_name ORDER BY MAX(logged_at) DESC`)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch exercise stats")
		return
	}
	defer rows.Close()

	stats := []exerciseStat{}
	for rows.Next() {
		var s exerciseStat
		var bestE1RM float64
		if err := rows.Scan(&s.ExerciseName, &s.TotalSets, &s.BestWeightKG,
			&bestE1RM, &s.LastLogged); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan exercise stats")
			return
		}
		s.BestE1RM = round1(bestE1RM)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read exercise stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// getRecentPRs returns the latest personal records across all exercises.
// GET /api/stats/recent-prs.
func (h *Handler) getRecentPRs(c *gin.Context) {
	rows, err := h.db.Query(
		`SELECT s.exercise_name, s.weight_kg, s.reps, s.logged_at FROM set_logs s
		 WHERE ` + prSetsCondition + `
		 ORDER BY s.logged_at DESC LIMIT 3`)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch recent PRs")
		return
	}
	defer rows.Close()

	type recentPR struct {
		ExerciseName string  `json:"exercise_name"`
		WeightKG     float64 `json:"weight_kg"`
		Reps         int     `json:"reps"`
		E1RM         float64 `json:"e1rm"`
		LoggedAt     string  `json:"logged_at"`
	}
	prs := []recentPR{}
	for rows.Next() {
		var p recentPR
		if err := rows.Scan(&p.ExerciseName, &p.WeightKG, &p.Reps, &p.LoggedAt); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan PR")
			return
		}
		p.E1RM = epleyE1RM(p.WeightKG, p.Reps)
		prs = append(prs, p)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read PRs")
		return
	}
	c.JSON(http.StatusOK, prs)
}

// avgSecondsPerSet estimates an exercise's pace from the gaps between its
// consecutive logged sets within a session, over recent completed sessions.
func (h *Handler) avgSecondsPerSet(exerciseName string) (float64, error) {
	rows, err := h.db.Query(
		`SELECT s.workout_session_id, s.logged_at FROM set_logs s
		 JOIN workout_sessions w ON w.id = s.workout_session_id
		 WHERE s.exercise_name = ? AND w.completed_at IS NOT NULL
		 ORDER BY s.logged_at DESC LIMIT 50`, exerciseName)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	type stamp struct {
		session int64
		at      time.Time
	}
	stamps := []stamp{}
	for rows.Next() {
		var sessionID int64
		var loggedAt string
		if err := rows.Scan(&sessionID, &loggedAt); err != nil {
			return 0, err
		}
		at, err := time.Parse(sqliteTimeLayout, loggedAt)
		if err != nil {
			continue
		}
		stamps = append(stamps, stamp{session: sessionID, at: at})
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	// Fetched newest-first; walk oldest-first so gaps are positive.
	var totalSeconds float64
	var intervals int
	for i := len(stamps) - 2; i >= 0; i-- {
		prev, cur := stamps[i+1], stamps[i]
		if prev.session != cur.session {
			continue
		}
		diff := cur.at.Sub(prev.at).Seconds()
		if diff > 0 && diff < maxSetIntervalSeconds {
			totalSeconds += diff
			intervals++
		}
	}
	if intervals == 0 {
		return fallbackSecondsPerSet, nil
	}
	return totalSeconds / float64(intervals), nil
}

// estimateWorkoutDuration predicts how long a program workout will take from
// the user's own set-to-set pacing history.
// GET /api/stats/estimate-duration/:templateId?week=N.
func (h *Handler) estimateWorkoutDuration(c *gin.Context) {
	templateID := c.Param("templateId")

	var workout *workoutTemplate
	if s := c.Query("week"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week")
			return
		}
		if pw := h.program.week(n); pw != nil {
			workout = pw.workout(templateID)
		}
	} else {
		for i := range h.program.Weeks {
			if w := h.program.Weeks[i].workout(templateID); w != nil {
				workout = w
				break
			}
		}
	}
	if workout == nil {
		apiError(c, http.StatusNotFound, "workout not found")
		return
	}

	type exerciseEstimate struct {
		ExerciseName  string `json:"exercise_name"`
		Sets          int    `json:"sets"`
		SecondsPerSet int    `json:"seconds_per_set"`
		FromHistory   bool   `json:"from_history"`
	}

	totalSeconds := 0.0
	estimates := []exerciseEstimate{}
	for _, ex := range workout.Exercises {
		perSet, err := h.avgSecondsPerSet(ex.Name)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to estimate duration")
			return
		}
		totalSeconds += perSet*float64(ex.Sets) + transitionSeconds
		estimates = append(estimates, exerciseEstimate{
			ExerciseName:  ex.Name,
			Sets:          ex.Sets,
			SecondsPerSet: roundToInt(perSet),
			FromHistory:   perSet != fallbackSecondsPerSet,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"templateId":       workout.TemplateID,
		"estimatedMinutes": roundToInt(totalSeconds / 60),
		"exercises":        estimates,
	})
}
