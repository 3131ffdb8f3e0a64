package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
)

/* ─── Training program ───────────────────────────────────────────────── */

// The training program is static data loaded from JSON at startup: a cycle of
// weeks, each with workout templates. Sessions and sets reference templates by
// id; the program file itself is never written by the API.

type programExercise struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Sets          int      `json:"sets"`
	Reps          string   `json:"reps"`
	TargetRPE     string   `json:"targetRpe,omitempty"`
	RestSeconds   int      `json:"restSeconds,omitempty"`
	Substitutions []string `json:"substitutions,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

type workoutTemplate struct {
	TemplateID string            `json:"templateId"`
	Name       string            `json:"name"`
	Exercises  []programExercise `json:"exercises"`
}

type programWeek struct {
	WeekNumber int               `json:"weekNumber"`
	Label      string            `json:"label,omitempty"`
	Workouts   []workoutTemplate `json:"workouts"`
}

type trainingProgram struct {
	Name  string        `json:"name"`
	Weeks []programWeek `json:"weeks"`
}

// loadProgram reads and parses the training program JSON file.
func loadProgram(path string) (*trainingProgram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program file: %w", err)
	}
	var p trainingProgram
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse program file: %w", err)
	}
	if len(p.Weeks) == 0 {
		return nil, fmt.Errorf("program file %s has no weeks", path)
	}
	return &p, nil
}

// week returns the program week by number, or nil.
func (p *trainingProgram) week(n int) *programWeek {
	for i := range p.Weeks {
		if p.Weeks[i].WeekNumber == n {
			return &p.Weeks[i]
		}
	}
	return nil
}

// workout returns a template by id within a week, or nil.
func (w *programWeek) workout(templateID string) *workoutTemplate {
	for i := range w.Workouts {
		if w.Workouts[i].TemplateID == templateID {
			return &w.Workouts[i]
		}
	}
	return nil
}

// getProgram returns the entire training program.
// GET /api/program.
func (h *Handler) getProgram(c *gin.Context) {
	c.JSON(http.StatusOK, h.program)
}

// getProgramWeek returns one week of the program.
// GET /api/program/week/:weekNumber.
func (h *Handler) getProgramWeek(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid week number")
		return
	}
	week := h.program.week(n)
	if week == nil {
		apiError(c, http.StatusNotFound, "week not found")
		return
	}
	c.JSON(http.StatusOK, week)
}

// getProgramWorkout returns one workout template from a week.
// GET /api/program/week/:weekNumber/workout/:templateId.
func (h *Handler) getProgramWorkout(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("weekNumber"))
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid week number")
		return
	}
	week := h.program.week(n)
	if week == nil {
		apiError(c, http.StatusNotFound, "week not found")
		return
	}
	workout := week.workout(c.Param("templateId"))
	if workout == nil {
		apiError(c, http.StatusNotFound, "workout not found")
		return
	}
	c.JSON(http.StatusOK, workout)
}

/* ─── Progress ───────────────────────────────────────────────────────── */

// getProgress returns the user's position in the program.
// GET /api/progress.
func (h *Handler) getProgress(c *gin.Context) {
	var cycle, week int
	var updatedAt string
	if err := h.db.QueryRow(
		`SELECT current_cycle, current_week, updated_at FROM user_progress WHERE id = 1`).
		Scan(&cycle, &week, &updatedAt); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycle": cycle, "week": week, "updatedAt": updatedAt})
}

// updateProgress moves the user's position in the program.
// PUT /api/progress. Body: { "cycle": 1, "week": 3 }.
func (h *Handler) updateProgress(c *gin.Context) {
	var body struct {
		Cycle *int `json:"cycle"`
		Week  *int `json:"week"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Cycle == nil || body.Week == nil {
		apiError(c, http.StatusBadRequest, "cycle and week are required")
		return
	}
	if *body.Cycle < 1 || *body.Week < 1 || *body.Week > len(h.program.Weeks) {
		apiError(c, http.StatusBadRequest, "cycle or week out of range")
		return
	}

	if _, err := h.db.Exec(
		`UPDATE user_progress SET current_cycle = ?, current_week = ?, updated_at = datetime('now') WHERE id = 1`,
		*body.Cycle, *body.Week); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update progress")
		return
	}

	var cycle, week int
	var updatedAt string
	if err := h.db.QueryRow(
		`SELECT current_cycle, current_week, updated_at FROM user_progress WHERE id = 1`).
		Scan(&cycle, &week, &updatedAt); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progress")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycle": cycle, "week": week, "updatedAt": updatedAt})
}
