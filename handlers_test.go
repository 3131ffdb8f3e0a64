package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"adaptus/go-api/internal/db"
)

// testProgram is a small two-week program used by handler tests instead of the
// full JSON file.
func testProgram() *trainingProgram {
	week := func(n int) programWeek {
		return programWeek{
			WeekNumber: n,
			Workouts: []workoutTemplate{
				{
					TemplateID: "push",
					Name:       "Push",
					Exercises: []programExercise{
						{ID: "bench", Name: "Barbell Bench Press", Sets: 3, Reps: "6-8"},
						{ID: "ohp", Name: "Overhead Press", Sets: 3, Reps: "8-10"},
					},
				},
				{
					TemplateID: "pull",
					Name:       "Pull",
					Exercises: []programExercise{
						{ID: "row", Name: "Barbell Row", Sets: 3, Reps: "8-10"},
					},
				},
			},
		}
	}
	return &trainingProgram{Name: "Test Block", Weeks: []programWeek{week(1), week(2)}}
}

// setupTestAPI creates a handler over a fresh temp-file sqlite database with
// migrations applied, and a router with all routes registered.
func setupTestAPI(t *testing.T) (*Handler, *gin.Engine) {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "adaptus.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	gin.SetMode(gin.TestMode)
	h := &Handler{db: conn, program: testProgram()}
	router := gin.New()
	h.registerRoutes(router)
	return h, router
}

// doJSON sends a request with a JSON body and returns the recorder.
func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorder body into a map, failing the test on error.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
	return m
}

/* ─── Weight endpoints ───────────────────────────────────────────────── */

func TestWeightEndpoints(t *testing.T) {
	_, router := setupTestAPI(t)

	// Latest is null before anything is logged.
	w := doJSON(router, "GET", "/api/weight/latest", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "null" {
		t.Fatalf("expected null latest, got %d: %s", w.Code, w.Body.String())
	}

	// Rejected weights never reach the table.
	for _, body := range []string{`{"weight_kg": 0}`, `{"weight_kg": -5}`, `{"weight_kg": 1200}`} {
		if w := doJSON(router, "POST", "/api/weight", body); w.Code != http.StatusBadRequest {
			t.Errorf("POST %s: expected 400, got %d", body, w.Code)
		}
	}

	w = doJSON(router, "POST", "/api/weight", `{"weight_kg": 85.4}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	if created["weight_kg"].(float64) != 85.4 {
		t.Errorf("weight_kg = %v, want 85.4", created["weight_kg"])
	}

	w = doJSON(router, "GET", "/api/weight/latest", "")
	latest := decodeBody(t, w)
	if latest["weight_kg"].(float64) != 85.4 {
		t.Errorf("latest weight_kg = %v, want 85.4", latest["weight_kg"])
	}

	w = doJSON(router, "GET", "/api/weight/summary", "")
	summary := decodeBody(t, w)
	if summary["current"].(float64) != 85.4 {
		t.Errorf("summary current = %v, want 85.4", summary["current"])
	}
	if summary["entries7day"].(float64) != 1 {
		t.Errorf("entries7day = %v, want 1", summary["entries7day"])
	}
	// One week of data only — no trend yet.
	if summary["trend"] != nil {
		t.Errorf("trend = %v, want null", summary["trend"])
	}

	// Delete is idempotent: a second delete of the same id still succeeds.
	id := int64(created["id"].(float64))
	for i := 0; i < 2; i++ {
		w = doJSON(router, "DELETE", fmt.Sprintf("/api/weight/%d", id), "")
		if w.Code != http.StatusOK {
			t.Fatalf("delete %d (attempt %d): expected 200, got %d", id, i+1, w.Code)
		}
		if resp := decodeBody(t, w); resp["deleted"] != true {
			t.Errorf("delete response = %v, want deleted=true", resp)
		}
	}
}

/* ─── Phase endpoints ────────────────────────────────────────────────── */

func TestPhaseEndpoints(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "POST", "/api/nutrition/phases",
		`{"phase_type": "cut", "start_date": "2026-03-01", "end_date": "2026-04-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create phase: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	phaseID := int64(created["id"].(float64))

	// Overlapping phase is rejected with no partial write.
	w = doJSON(router, "POST", "/api/nutrition/phases",
		`{"phase_type": "bulk", "start_date": "2026-03-15", "end_date": "2026-05-01"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overlap: expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// Adjacent phase (start == previous end) is fine.
	w = doJSON(router, "POST", "/api/nutrition/phases",
		`{"phase_type": "maintain", "start_date": "2026-04-01", "end_date": "2026-05-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("adjacent: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Updating a phase may stay in its own slot without tripping the overlap
	// check against itself.
	w = doJSON(router, "PUT", fmt.Sprintf("/api/nutrition/phases/%d", phaseID),
		`{"phase_type": "cut", "start_date": "2026-03-01", "end_date": "2026-03-20"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, "PUT", "/api/nutrition/phases/999999",
		`{"phase_type": "cut", "start_date": "2027-01-01", "end_date": "2027-02-01"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("update missing: expected 404, got %d", w.Code)
	}

	w = doJSON(router, "GET", "/api/nutrition/phases", "")
	list := decodeBody(t, w)
	if phases := list["phases"].([]any); len(phases) != 2 {
		t.Errorf("expected 2 phases, got %d", len(phases))
	}
	if list["active_phase"] == "" {
		t.Error("expected active_phase in list response")
	}

	w = doJSON(router, "DELETE", "/api/nutrition/phases/999999", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete missing: expected 200 (idempotent), got %d", w.Code)
	}
}

/* ─── Targets and recalculation ──────────────────────────────────────── */

// TestRecalculateTargetsIdempotent verifies that recalculating twice for the
// same day writes the same targets, and that the values follow the formula
// path for the default profile.
//
// default profile male/25/175cm/moderate at 85kg, maintain:
//
//	BMR  = 10*85 + 6.25*175 - 5*25 + 5 = 1823.75
//	TDEE = 1823.75 * 1.55 = 2826.81 -> 2827, maintain -> 2827
//	protein = 85*2.2 = 187g
func TestRecalculateTargetsIdempotent(t *testing.T) {
	h, router := setupTestAPI(t)

	w := doJSON(router, "POST", "/api/weight", `{"weight_kg": 85}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("log weight: expected 201, got %d", w.Code)
	}

	if err := h.recalculateTargets(today()); err != nil {
		t.Fatalf("first recalculation: %v", err)
	}
	first, err := h.fetchTargets()
	if err != nil {
		t.Fatalf("fetch targets: %v", err)
	}

	if err := h.recalculateTargets(today()); err != nil {
		t.Fatalf("second recalculation: %v", err)
	}
	second, err := h.fetchTargets()
	if err != nil {
		t.Fatalf("fetch targets: %v", err)
	}

	if first != second {
		t.Errorf("recalculation not idempotent: %+v != %+v", first, second)
	}
	if first.Calories != 2827 {
		t.Errorf("calories = %d, want 2827", first.Calories)
	}
	if first.Protein != 187 {
		t.Errorf("protein = %d, want 187", first.Protein)
	}
}

func TestAdaptiveTDEENoWeight(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "GET", "/api/nutrition/adaptive-tdee", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["data_status"] != "no_weight" {
		t.Errorf("data_status = %v, want no_weight", resp["data_status"])
	}
	if resp["weight_trend"] != nil {
		t.Errorf("weight_trend = %v, want null", resp["weight_trend"])
	}
}

func TestRefreshTargets(t *testing.T) {
	_, router := setupTestAPI(t)

	// No weight logged: refresh is a no-op.
	w := doJSON(router, "POST", "/api/nutrition/targets/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeBody(t, w); resp["updated"] != false {
		t.Errorf("updated = %v, want false with no weight", resp["updated"])
	}

	// Seeded cache is 2500; the fresh formula value for 85kg diverges by more
	// than the 50 kcal threshold, so the first refresh writes.
	doJSON(router, "POST", "/api/weight", `{"weight_kg": 85}`)
	w = doJSON(router, "POST", "/api/nutrition/targets/refresh", "")
	resp := decodeBody(t, w)
	if resp["updated"] != true {
		t.Fatalf("updated = %v, want true after weight logged", resp["updated"])
	}
	targets := resp["targets"].(map[string]any)
	if targets["calories"].(float64) != 2827 {
		t.Errorf("calories = %v, want 2827", targets["calories"])
	}

	// Nothing changed since: the second refresh leaves the cache alone.
	w = doJSON(router, "POST", "/api/nutrition/targets/refresh", "")
	if resp := decodeBody(t, w); resp["updated"] != false {
		t.Errorf("updated = %v, want false on unchanged data", resp["updated"])
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "PUT", "/api/nutrition/profile", `{"gender": "other"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad gender: expected 400, got %d", w.Code)
	}
	w = doJSON(router, "PUT", "/api/nutrition/profile", `{"activity_level": "heroic"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad activity: expected 400, got %d", w.Code)
	}

	w = doJSON(router, "PUT", "/api/nutrition/profile",
		`{"gender": "female", "age": 31, "height_cm": 168, "activity_level": "light"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("valid update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["gender"] != "female" || resp["activity_level"] != "light" {
		t.Errorf("profile = %v, want female/light", resp)
	}
	if resp["phase"] != "maintain" {
		t.Errorf("phase = %v, want maintain with no phases defined", resp["phase"])
	}
}

/* ─── Food and daily log endpoints ───────────────────────────────────── */

func TestFoodAndDailyLogFlow(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "POST", "/api/nutrition/foods",
		`{"name": "Chicken Breast", "calories": 165, "protein": 31, "carbs": 0, "fat": 3.6, "barcode": "40123456"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create food: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	chicken := decodeBody(t, w)
	foodID := int64(chicken["id"].(float64))
	if chicken["serving_size"].(float64) != 100 || chicken["serving_unit"] != "g" {
		t.Errorf("serving defaults = %v/%v, want 100/g", chicken["serving_size"], chicken["serving_unit"])
	}

	w = doJSON(router, "GET", "/api/nutrition/foods/barcode/40123456", "")
	if w.Code != http.StatusOK {
		t.Fatalf("barcode lookup: expected 200, got %d", w.Code)
	}
	if found := decodeBody(t, w); found["name"] != "Chicken Breast" {
		t.Errorf("barcode lookup name = %v, want Chicken Breast", found["name"])
	}

	w = doJSON(router, "GET", "/api/nutrition/foods/barcode/00000000", "")
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("unknown barcode: expected null, got %s", w.Body.String())
	}

	// Log 200g: macros scale by 2x and are snapshotted on the entry.
	w = doJSON(router, "POST", "/api/nutrition/log/food",
		fmt.Sprintf(`{"foodId": %d, "grams": 200}`, foodID))
	if w.Code != http.StatusCreated {
		t.Fatalf("log food: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	entry := decodeBody(t, w)
	if entry["calories"].(float64) != 330 {
		t.Errorf("entry calories = %v, want 330", entry["calories"])
	}
	entryID := int64(entry["id"].(float64))

	w = doJSON(router, "GET", "/api/nutrition/log", "")
	day := decodeBody(t, w)
	totals := day["totals"].(map[string]any)
	if totals["calories"].(float64) != 330 || totals["protein"].(float64) != 62 {
		t.Errorf("totals = %v, want calories 330 / protein 62", totals)
	}

	// Editing an entry re-derives macros from the food at the new weight.
	w = doJSON(router, "PUT", fmt.Sprintf("/api/nutrition/log/%d", entryID), `{"servings": 100}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update entry: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if updated := decodeBody(t, w); updated["calories"].(float64) != 165 {
		t.Errorf("updated calories = %v, want 165", updated["calories"])
	}

	// History zero-fills days without entries and carries the targets along.
	w = doJSON(router, "GET", "/api/nutrition/log/history?days=7", "")
	history := decodeBody(t, w)
	days := history["days"].([]any)
	if len(days) != 7 {
		t.Fatalf("history days = %d, want 7", len(days))
	}
	todayEntry := days[6].(map[string]any)
	if todayEntry["calories"].(float64) != 165 {
		t.Errorf("today's history calories = %v, want 165", todayEntry["calories"])
	}
	if history["targets"] == nil {
		t.Error("expected targets in history response")
	}

	w = doJSON(router, "DELETE", fmt.Sprintf("/api/nutrition/log/%d", entryID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete entry: expected 200, got %d", w.Code)
	}
}

func TestMealFlow(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "POST", "/api/nutrition/foods",
		`{"name": "Oats", "calories": 100, "protein": 3, "carbs": 17, "fat": 2}`)
	oatsID := int64(decodeBody(t, w)["id"].(float64))

	w = doJSON(router, "POST", "/api/nutrition/foods",
		`{"name": "Bread", "calories": 50, "protein": 2, "carbs": 9, "fat": 1, "servingName": "slice", "servingGrams": 50}`)
	breadID := int64(decodeBody(t, w)["id"].(float64))

	// Oats: factor 100/100 * 2 = 2 -> 200 kcal.
	// Bread: factor 50/100 * 1 = 0.5 -> 25 kcal. Total 225.
	w = doJSON(router, "POST", "/api/nutrition/meals",
		fmt.Sprintf(`{"name": "Breakfast", "foods": [{"foodId": %d, "servings": 2}, {"foodId": %d, "servings": 1}]}`,
			oatsID, breadID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create meal: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	if created["totalCalories"].(float64) != 225 {
		t.Errorf("totalCalories = %v, want 225", created["totalCalories"])
	}
	mealID := int64(created["id"].(float64))

	// Two servings of the meal doubles the snapshot.
	w = doJSON(router, "POST", "/api/nutrition/log/meal",
		fmt.Sprintf(`{"mealId": %d, "servings": 2}`, mealID))
	if w.Code != http.StatusCreated {
		t.Fatalf("log meal: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if entry := decodeBody(t, w); entry["calories"].(float64) != 450 {
		t.Errorf("logged meal calories = %v, want 450", entry["calories"])
	}

	// Copy-day duplicates the snapshot onto another date.
	w = doJSON(router, "POST", "/api/nutrition/log/copy-day",
		fmt.Sprintf(`{"sourceDate": "%s", "targetDate": "2026-09-01"}`, today().Format(dateLayout)))
	if w.Code != http.StatusOK {
		t.Fatalf("copy day: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeBody(t, w); resp["copied"].(float64) != 1 {
		t.Errorf("copied = %v, want 1", resp["copied"])
	}
}

/* ─── Program and progress endpoints ─────────────────────────────────── */

func TestProgramEndpoints(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "GET", "/api/program", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get program: expected 200, got %d", w.Code)
	}

	w = doJSON(router, "GET", "/api/program/week/1", "")
	week := decodeBody(t, w)
	if week["weekNumber"].(float64) != 1 {
		t.Errorf("weekNumber = %v, want 1", week["weekNumber"])
	}

	if w = doJSON(router, "GET", "/api/program/week/99", ""); w.Code != http.StatusNotFound {
		t.Errorf("week 99: expected 404, got %d", w.Code)
	}

	w = doJSON(router, "GET", "/api/program/week/1/workout/push", "")
	workout := decodeBody(t, w)
	if workout["name"] != "Push" {
		t.Errorf("workout name = %v, want Push", workout["name"])
	}

	if w = doJSON(router, "GET", "/api/program/week/1/workout/yoga", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown workout: expected 404, got %d", w.Code)
	}

	w = doJSON(router, "GET", "/api/progress", "")
	progress := decodeBody(t, w)
	if progress["cycle"].(float64) != 1 || progress["week"].(float64) != 1 {
		t.Errorf("progress = %v, want cycle 1 / week 1", progress)
	}

	w = doJSON(router, "PUT", "/api/progress", `{"cycle": 1, "week": 2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update progress: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if updated := decodeBody(t, w); updated["week"].(float64) != 2 {
		t.Errorf("week = %v, want 2", updated["week"])
	}

	if w = doJSON(router, "PUT", "/api/progress", `{"cycle": 1, "week": 99}`); w.Code != http.StatusBadRequest {
		t.Errorf("out of range week: expected 400, got %d", w.Code)
	}
}

/* ─── Workout and set endpoints ──────────────────────────────────────── */

func TestWorkoutSessionLifecycle(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "POST", "/api/workouts",
		`{"cycle": 1, "weekNumber": 1, "templateId": "push"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	session := decodeBody(t, w)
	sessionID := int64(session["id"].(float64))
	if session["workout_name"] != "Push" {
		t.Errorf("workout_name = %v, want Push", session["workout_name"])
	}

	// The in-flight session is the active one.
	w = doJSON(router, "GET", "/api/workouts/active", "")
	if active := decodeBody(t, w); int64(active["id"].(float64)) != sessionID {
		t.Errorf("active id = %v, want %d", active["id"], sessionID)
	}

	// Log two sets against it.
	for i, body := range []string{
		fmt.Sprintf(`{"workout_session_id": %d, "exercise_id": "bench", "exercise_name": "Barbell Bench Press", "set_number": 1, "weight_kg": 80, "reps": 8}`, sessionID),
		fmt.Sprintf(`{"workout_session_id": %d, "exercise_id": "bench", "exercise_name": "Barbell Bench Press", "set_number": 2, "weight_kg": 82.5, "reps": 6, "is_last_set": true}`, sessionID),
	} {
		if w := doJSON(router, "POST", "/api/sets", body); w.Code != http.StatusCreated {
			t.Fatalf("log set %d: expected 201, got %d: %s", i+1, w.Code, w.Body.String())
		}
	}

	// Orphan sets are rejected before insert.
	w = doJSON(router, "POST", "/api/sets",
		`{"workout_session_id": 999999, "exercise_id": "bench", "exercise_name": "Barbell Bench Press", "set_number": 1, "weight_kg": 80, "reps": 8}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("orphan set: expected 404, got %d", w.Code)
	}

	w = doJSON(router, "PUT", fmt.Sprintf("/api/workouts/%d/complete", sessionID),
		`{"notes": "felt strong"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	completed := decodeBody(t, w)
	if completed["completed_at"] == nil || completed["notes"] != "felt strong" {
		t.Errorf("completed session = %v, want completed_at and notes set", completed)
	}

	// Skip the other workout of the week.
	w = doJSON(router, "PUT", "/api/workouts/skip",
		`{"cycle": 1, "weekNumber": 1, "templateId": "pull"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("skip: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	skipped := decodeBody(t, w)
	skippedID := int64(skipped["id"].(float64))

	w = doJSON(router, "GET", "/api/workouts/status?cycle=1&week=1", "")
	status := decodeBody(t, w)
	if completedIDs := status["completed"].([]any); len(completedIDs) != 1 || completedIDs[0] != "push" {
		t.Errorf("completed = %v, want [push]", status["completed"])
	}
	if skippedIDs := status["skipped"].([]any); len(skippedIDs) != 1 || skippedIDs[0] != "pull" {
		t.Errorf("skipped = %v, want [pull]", status["skipped"])
	}

	// Week 1 fully accounted for: the first incomplete week is 2.
	w = doJSON(router, "GET", "/api/workouts/first-incomplete-week?cycle=1", "")
	if resp := decodeBody(t, w); resp["week"].(float64) != 2 {
		t.Errorf("first incomplete week = %v, want 2", resp["week"])
	}

	// Unskip reopens the week.
	w = doJSON(router, "PUT", fmt.Sprintf("/api/workouts/%d/unskip", skippedID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("unskip: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(router, "GET", "/api/workouts/first-incomplete-week?cycle=1", "")
	if resp := decodeBody(t, w); resp["week"].(float64) != 1 {
		t.Errorf("first incomplete week after unskip = %v, want 1", resp["week"])
	}

	// A completed session cannot be unskipped.
	w = doJSON(router, "PUT", fmt.Sprintf("/api/workouts/%d/unskip", sessionID), "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unskip completed: expected 404, got %d", w.Code)
	}
}

func TestSetQueriesAndStats(t *testing.T) {
	_, router := setupTestAPI(t)

	w := doJSON(router, "POST", "/api/workouts",
		`{"cycle": 1, "weekNumber": 1, "templateId": "push"}`)
	sessionID := int64(decodeBody(t, w)["id"].(float64))

	for _, body := range []string{
		fmt.Sprintf(`{"workout_session_id": %d, "exercise_id": "bench", "exercise_name": "Barbell Bench Press", "set_number": 1, "weight_kg": 80, "reps": 8}`, sessionID),
		fmt.Sprintf(`{"workout_session_id": %d, "exercise_id": "bench", "exercise_name": "Barbell Bench Press", "set_number": 2, "weight_kg": 85, "reps": 5}`, sessionID),
		fmt.Sprintf(`{"workout_session_id": %d, "exercise_id": "ohp", "exercise_name": "Overhead Press", "set_number": 1, "weight_kg": 50, "reps": 10}`, sessionID),
	} {
		if w := doJSON(router, "POST", "/api/sets", body); w.Code != http.StatusCreated {
			t.Fatalf("log set: expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}
	doJSON(router, "PUT", fmt.Sprintf("/api/workouts/%d/complete", sessionID), "")

	// PR picks the heaviest set.
	w = doJSON(router, "GET", "/api/sets/pr/Barbell%20Bench%20Press", "")
	pr := decodeBody(t, w)
	if pr["weight_kg"].(float64) != 85 {
		t.Errorf("PR weight = %v, want 85", pr["weight_kg"])
	}

	// Unknown exercise has no PR.
	w = doJSON(router, "GET", "/api/sets/pr/Leg%20Press", "")
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("unknown PR: expected null, got %s", w.Body.String())
	}

	// Last performance returns that session's sets in set order.
	w = doJSON(router, "GET", "/api/sets/last-performance/Barbell%20Bench%20Press", "")
	var sets []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &sets); err != nil {
		t.Fatalf("unmarshal sets: %v", err)
	}
	if len(sets) != 2 || sets[0]["set_number"].(float64) != 1 {
		t.Errorf("last performance = %v, want 2 sets starting at set 1", sets)
	}

	// Session view groups all exercises.
	w = doJSON(router, "GET", fmt.Sprintf("/api/sets/session/%d", sessionID), "")
	if err := json.Unmarshal(w.Body.Bytes(), &sets); err != nil {
		t.Fatalf("unmarshal session sets: %v", err)
	}
	if len(sets) != 3 {
		t.Errorf("session sets = %d, want 3", len(sets))
	}

	// All-time summary sees the completed session's volume:
	// 80*8 + 85*5 + 50*10 = 640 + 425 + 500 = 1565.
	w = doJSON(router, "GET", "/api/stats/summary", "")
	summary := decodeBody(t, w)
	if summary["totalWorkouts"].(float64) != 1 {
		t.Errorf("totalWorkouts = %v, want 1", summary["totalWorkouts"])
	}
	if summary["totalSets"].(float64) != 3 {
		t.Errorf("totalSets = %v, want 3", summary["totalSets"])
	}
	if summary["totalVolumeKG"].(float64) != 1565 {
		t.Errorf("totalVolumeKG = %v, want 1565", summary["totalVolumeKG"])
	}

	w = doJSON(router, "GET", "/api/stats/week-summary?cycle=1&week=1", "")
	weekSummary := decodeBody(t, w)
	if weekSummary["completed"].(float64) != 1 {
		t.Errorf("week completed = %v, want 1", weekSummary["completed"])
	}
	if weekSummary["totalWorkouts"].(float64) != 2 {
		t.Errorf("week totalWorkouts = %v, want 2", weekSummary["totalWorkouts"])
	}
	if weekSummary["volumeKG"].(float64) != 1565 {
		t.Errorf("week volumeKG = %v, want 1565", weekSummary["volumeKG"])
	}

	// Only one of the week's two workouts is done: no streak yet.
	w = doJSON(router, "GET", "/api/stats/streak", "")
	if resp := decodeBody(t, w); resp["streak"].(float64) != 0 {
		t.Errorf("streak = %v, want 0", resp["streak"])
	}

	w = doJSON(router, "GET", "/api/stats/exercises", "")
	var exercises []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &exercises); err != nil {
		t.Fatalf("unmarshal exercise stats: %v", err)
	}
	if len(exercises) != 2 {
		t.Errorf("exercise stats = %d entries, want 2", len(exercises))
	}
}

func TestEstimateWorkoutDuration(t *testing.T) {
	_, router := setupTestAPI(t)

	// No history at all: every exercise uses the fallback pace.
	// push = bench (3 sets) + ohp (3 sets): 2 * (3*180 + 90) = 1260s -> 21 min.
	w := doJSON(router, "GET", "/api/stats/estimate-duration/push", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["estimatedMinutes"].(float64) != 21 {
		t.Errorf("estimatedMinutes = %v, want 21", resp["estimatedMinutes"])
	}
	exercises := resp["exercises"].([]any)
	if len(exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(exercises))
	}
	if first := exercises[0].(map[string]any); first["from_history"] != false {
		t.Errorf("from_history = %v, want false with no logged sets", first["from_history"])
	}

	if w = doJSON(router, "GET", "/api/stats/estimate-duration/yoga", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown template: expected 404, got %d", w.Code)
	}
}
