package main

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// sqliteTimeLayout is the format sqlite's datetime('now') produces.
const sqliteTimeLayout = "2006-01-02 15:04:05"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Scan implements sql.Scanner so sqlite TEXT date columns can be read into
// DateOnly. NULL zeroes the time so *DateOnly pointer fields stay usable.
func (d *DateOnly) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", v, err)
		}
		d.Time = t
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DateOnly", src)
	}
}

// Value implements driver.Valuer; dates are stored as "YYYY-MM-DD" TEXT so
// that sqlite's lexicographic comparison matches chronological order.
func (d DateOnly) Value() (driver.Value, error) {
	return d.Time.Format(dateLayout), nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// userProfile maps to the single-row user_profile table (id = 1).
type userProfile struct {
	ID            int64   `json:"id"`
	Gender        string  `json:"gender"`
	Age           int     `json:"age"`
	HeightCM      float64 `json:"height_cm"`
	ActivityLevel string  `json:"activity_level"`
}

// nutritionTargets maps to the single-row nutrition_targets table (id = 1).
// It caches the calculator's last output for daily-log comparison.
type nutritionTargets struct {
	ID       int64 `json:"id"`
	Calories int   `json:"calories"`
	Protein  int   `json:"protein"`
	Carbs    int   `json:"carbs"`
	Fat      int   `json:"fat"`
}

// bodyWeightEntry maps to body_weight. Append-only; "current weight" is the
// most recent entry by logged_at.
type bodyWeightEntry struct {
	ID       int64   `json:"id"`
	WeightKG float64 `json:"weight_kg"`
	LoggedAt string  `json:"logged_at"`
}

// phase maps to phases. end_date is exclusive; phases never overlap.
type phase struct {
	ID        int64    `json:"id"`
	PhaseType string   `json:"phase_type"`
	StartDate DateOnly `json:"start_date"`
	EndDate   DateOnly `json:"end_date"`
	CreatedAt string   `json:"created_at"`
}

// food maps to foods. Macro fields are per 100g; serving_size/serving_unit
// describe the food's natural serving for display.
type food struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	ServingSize float64 `json:"serving_size"`
	ServingUnit string  `json:"serving_unit"`
	Barcode     *string `json:"barcode"`
	CreatedAt   string  `json:"created_at"`
	LastUsed    *string `json:"last_used,omitempty"`
}

// mealFood is one food line inside a meal, joined with the food's macros.
type mealFood struct {
	FoodID      int64   `json:"food_id"`
	Name        string  `json:"name"`
	Servings    float64 `json:"servings"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	ServingSize float64 `json:"serving_size"`
	ServingUnit string  `json:"serving_unit"`
}

// meal maps to meals; Foods and the Total* fields are computed on read.
type meal struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CreatedAt     string     `json:"created_at"`
	Foods         []mealFood `json:"foods"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalCarbs    float64    `json:"totalCarbs"`
	TotalFat      float64    `json:"totalFat"`
}

// dailyLogEntry maps to daily_log. Macros are snapshotted at log time, so
// later edits to the food/meal don't rewrite history.
type dailyLogEntry struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	FoodID   *int64  `json:"food_id"`
	MealID   *int64  `json:"meal_id"`
	Name     string  `json:"name"`
	Servings float64 `json:"servings"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	LoggedAt string  `json:"logged_at"`
}

// workoutSession maps to workout_sessions.
type workoutSession struct {
	ID                int64   `json:"id"`
	Cycle             int     `json:"cycle"`
	WeekNumber        int     `json:"week_number"`
	WorkoutTemplateID string  `json:"workout_template_id"`
	WorkoutName       string  `json:"workout_name"`
	StartedAt         string  `json:"started_at"`
	CompletedAt       *string `json:"completed_at"`
	SkippedAt         *string `json:"skipped_at"`
	Notes             *string `json:"notes"`
}

// setLog maps to set_logs.
type setLog struct {
	ID               int64   `json:"id"`
	WorkoutSessionID int64   `json:"workout_session_id"`
	ExerciseID       string  `json:"exercise_id"`
	ExerciseName     string  `json:"exercise_name"`
	SetNumber        int     `json:"set_number"`
	WeightKG         float64 `json:"weight_kg"`
	Reps             int     `json:"reps"`
	IsLastSet        bool    `json:"is_last_set"`
	TargetRPE        *string `json:"target_rpe"`
	SubstitutionUsed *string `json:"substitution_used"`
	LoggedAt         string  `json:"logged_at"`
}
