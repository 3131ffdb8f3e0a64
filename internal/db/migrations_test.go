package db_test

import (
	"path/filepath"
	"testing"

	"adaptus/go-api/internal/db"
)

func TestApplyMigrationsIdempotentAndSeedsDefaults(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "adaptus.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("first apply migrations: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("second apply migrations: %v", err)
	}

	var migrationCount int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&migrationCount); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if migrationCount != 1 {
		t.Fatalf("expected 1 migration version, got %d", migrationCount)
	}

	for _, table := range []string{
		"user_profile", "nutrition_targets", "body_weight", "phases",
		"foods", "meals", "meal_foods", "daily_log",
		"user_progress", "workout_sessions", "set_logs",
	} {
		var count int
		if err := sqldb.QueryRow(
			`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).
			Scan(&count); err != nil {
			t.Fatalf("check %s table: %v", table, err)
		}
		if count != 1 {
			t.Fatalf("expected %s table to exist", table)
		}
	}

	// Singleton rows are seeded with defaults on first migration.
	var gender string
	var age int
	if err := sqldb.QueryRow(`SELECT gender, age FROM user_profile WHERE id = 1`).Scan(&gender, &age); err != nil {
		t.Fatalf("read seeded profile: %v", err)
	}
	if gender != "male" || age != 25 {
		t.Fatalf("expected seeded profile male/25, got %s/%d", gender, age)
	}

	var calories int
	if err := sqldb.QueryRow(`SELECT calories FROM nutrition_targets WHERE id = 1`).Scan(&calories); err != nil {
		t.Fatalf("read seeded targets: %v", err)
	}
	if calories != 2500 {
		t.Fatalf("expected seeded target calories 2500, got %d", calories)
	}

	var cycle, week int
	if err := sqldb.QueryRow(`SELECT current_cycle, current_week FROM user_progress WHERE id = 1`).Scan(&cycle, &week); err != nil {
		t.Fatalf("read seeded progress: %v", err)
	}
	if cycle != 1 || week != 1 {
		t.Fatalf("expected seeded progress 1/1, got %d/%d", cycle, week)
	}
}

func TestOpenEnforcesForeignKeys(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "adaptus.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()

	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	// set_logs references workout_sessions; an orphan insert must fail.
	_, err = sqldb.Exec(
		`INSERT INTO set_logs (workout_session_id, exercise_id, exercise_name, set_number, weight_kg, reps)
		 VALUES (999999, 'squat', 'Barbell Back Squat', 1, 100, 5)`)
	if err == nil {
		t.Fatal("expected foreign key violation for orphan set_log, got nil error")
	}
}
