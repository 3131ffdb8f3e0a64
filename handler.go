package main

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler holds shared dependencies (sqlite handle, loaded training program)
// for all route handlers.
type Handler struct {
	db      *sql.DB
	program *trainingProgram
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// paramID parses the :id route param as an integer, responding 400 itself on
// failure so handlers can just bail.
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// today returns the current calendar day at midnight UTC. The scheduler and
// calculator take a date parameter; this is the only place "now" enters.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	nutrition := api.Group("/nutrition")
	nutrition.GET("/foods", h.listFoods)
	nutrition.GET("/foods/barcode/:barcode", h.getFoodByBarcode)
	nutrition.POST("/foods", h.createFood)
	nutrition.PUT("/foods/:id", h.updateFood)
	nutrition.DELETE("/foods/:id", h.deleteFood)
	nutrition.GET("/meals", h.listMeals)
	nutrition.POST("/meals", h.createMeal)
	nutrition.PUT("/meals/:id", h.updateMeal)
	nutrition.DELETE("/meals/:id", h.deleteMeal)
	nutrition.GET("/log", h.getDailyLog)
	nutrition.GET("/log/history", h.getLogHistory)
	nutrition.POST("/log/food", h.logFood)
	nutrition.POST("/log/meal", h.logMeal)
	nutrition.POST("/log/copy-day", h.copyLogDay)
	nutrition.PUT("/log/:id", h.updateLogEntry)
	nutrition.DELETE("/log/:id", h.deleteLogEntry)
	nutrition.GET("/targets", h.getTargets)
	nutrition.PUT("/targets", h.updateTargets)
	nutrition.POST("/targets/refresh", h.refreshTargets)
	nutrition.GET("/profile", h.getProfile)
	nutrition.PUT("/profile", h.updateProfile)
	nutrition.GET("/phases", h.listPhases)
	nutrition.POST("/phases", h.createPhase)
	nutrition.PUT("/phases/:id", h.updatePhase)
	nutrition.DELETE("/phases/:id", h.deletePhase)
	nutrition.GET("/adaptive-tdee", h.getAdaptiveTDEE)

	weight := api.Group("/weight")
	weight.POST("", h.createWeightEntry)
	weight.GET("/latest", h.getLatestWeight)
	weight.GET("/summary", h.getWeightSummary)
	weight.GET("/history", h.getWeightHistory)
	weight.DELETE("/:id", h.deleteWeightEntry)

	api.GET("/program", h.getProgram)
	api.GET("/program/week/:weekNumber", h.getProgramWeek)
	api.GET("/program/week/:weekNumber/workout/:templateId", h.getProgramWorkout)
	api.GET("/progress", h.getProgress)
	api.PUT("/progress", h.updateProgress)

	workouts := api.Group("/workouts")
	workouts.POST("", h.createWorkoutSession)
	workouts.PUT("/:id/complete", h.completeWorkoutSession)
	workouts.PUT("/skip", h.skipWorkout)
	workouts.PUT("/:id/unskip", h.unskipWorkout)
	workouts.GET("/recent", h.getRecentWorkouts)
	workouts.GET("/status", h.getWeekStatus)
	workouts.GET("/active", h.getActiveWorkout)
	workouts.GET("/first-incomplete-week", h.getFirstIncompleteWeek)
	workouts.DELETE("/:id", h.deleteWorkoutSession)

	sets := api.Group("/sets")
	sets.POST("", h.createSetLog)
	sets.GET("/last-performance/:exerciseName", h.getLastPerformance)
	sets.GET("/session/:sessionId", h.getSessionSets)
	sets.GET("/pr/:exerciseName", h.getExercisePR)
	sets.DELETE("/:id", h.deleteSetLog)

	stats := api.Group("/stats")
	stats.GET("/summary", h.getStatsSummary)
	stats.GET("/week-summary", h.getWeekStatsSummary)
	stats.GET("/streak", h.getStreak)
	stats.GET("/exercises", h.getExerciseStats)
	stats.GET("/recent-prs", h.getRecentPRs)
	stats.GET("/estimate-duration/:templateId", h.estimateWorkoutDuration)
}
