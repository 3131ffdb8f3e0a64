package main

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Foods ──────────────────────────────────────────────────────────── */

// foodRequest is the request body for POST /foods and PUT /foods/:id.
// Macros are per 100g; servingName/servingGrams describe an optional natural
// serving for display (defaults to 100g).
type foodRequest struct {
	Name         string  `json:"name"`
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	ServingName  string  `json:"servingName"`
	ServingGrams float64 `json:"servingGrams"`
	Barcode      *string `json:"barcode"`
}

// servingFields normalizes the optional serving override: a named serving
// defaults to 100g when no gram weight is given; no name means plain grams.
func (r foodRequest) servingFields() (size float64, unit string) {
	if r.ServingName == "" {
		return 100, "g"
	}
	if r.ServingGrams > 0 {
		return r.ServingGrams, r.ServingName
	}
	return 100, r.ServingName
}

// fetchFood loads one food by id.
func (h *Handler) fetchFood(id int64) (food, error) {
	var f food
	err := h.db.QueryRow(
		`SELECT id, name, calories, protein, carbs, fat, serving_size, serving_unit, barcode, created_at
		 FROM foods WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Calories, &f.Protein, &f.Carbs, &f.Fat,
			&f.ServingSize, &f.ServingUnit, &f.Barcode, &f.CreatedAt)
	return f, err
}

// listFoods returns all foods, most recently logged first so the quick-add
// list surfaces what the user actually eats.
// GET /api/nutrition/foods.
func (h *Handler) listFoods(c *gin.Context) {
	rows, err := h.db.Query(
		`SELECT f.id, f.name, f.calories, f.protein, f.carbs, f.fat,
		        f.serving_size, f.serving_unit, f.barcode, f.created_at,
		        MAX(dl.logged_at) AS last_used
		 FROM foods f
		 LEFT JOIN daily_log dl ON dl.food_id = f.id
		 GROUP BY f.id
		 ORDER BY last_used DESC NULLS LAST, f.created_at DESC`)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch foods")
		return
	}
	defer rows.Close()

	foods := []food{}
	for rows.Next() {
		var f food
		if err := rows.Scan(&f.ID, &f.Name, &f.Calories, &f.Protein, &f.Carbs, &f.Fat,
			&f.ServingSize, &f.ServingUnit, &f.Barcode, &f.CreatedAt, &f.LastUsed); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan food")
			return
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read foods")
		return
	}
	c.JSON(http.StatusOK, foods)
}

// getFoodByBarcode looks a food up by scanned barcode, returning null when
// unknown so the client can fall through to manual entry.
// GET /api/nutrition/foods/barcode/:barcode.
func (h *Handler) getFoodByBarcode(c *gin.Context) {
	var f food
	err := h.db.QueryRow(
		`SELECT id, name, calories, protein, carbs, fat, serving_size, serving_unit, barcode, created_at
		 FROM foods WHERE barcode = ?`, c.Param("barcode")).
		Scan(&f.ID, &f.Name, &f.Calories, &f.Protein, &f.Carbs, &f.Fat,
			&f.ServingSize, &f.ServingUnit, &f.Barcode, &f.CreatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food")
		return
	}
	c.JSON(http.StatusOK, f)
}

// createFood inserts a new food.
// POST /api/nutrition/foods.
func (h *Handler) createFood(c *gin.Context) {
	var body foodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	size, unit := body.servingFields()

	res, err := h.db.Exec(
		`INSERT INTO foods (name, calories, protein, carbs, fat, serving_size, serving_unit, barcode)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		body.Name, body.Calories, body.Protein, body.Carbs, body.Fat, size, unit, body.Barcode)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create food")
		return
	}
	id, _ := res.LastInsertId()
	f, err := h.fetchFood(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch created food")
		return
	}
	c.JSON(http.StatusCreated, f)
}

// updateFood rewrites a food. Logged entries keep their snapshotted macros.
// PUT /api/nutrition/foods/:id.
func (h *Handler) updateFood(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var body foodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	size, unit := body.servingFields()

	res, err := h.db.Exec(
		`UPDATE foods SET name = ?, calories = ?, protein = ?, carbs = ?, fat = ?,
		        serving_size = ?, serving_unit = ?, barcode = ?
		 WHERE id = ?`,
		body.Name, body.Calories, body.Protein, body.Carbs, body.Fat, size, unit, body.Barcode, id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update food")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		apiError(c, http.StatusNotFound, "food not found")
		return
	}
	f, err := h.fetchFood(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch updated food")
		return
	}
	c.JSON(http.StatusOK, f)
}

// deleteFood removes a food and its meal references. Idempotent.
// DELETE /api/nutrition/foods/:id.
func (h *Handler) deleteFood(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.db.Exec(`DELETE FROM meal_foods WHERE food_id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete food")
		return
	}
	if _, err := h.db.Exec(`DELETE FROM foods WHERE id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete food")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

/* ─── Meals ──────────────────────────────────────────────────────────── */

// mealFoodRef is one food line in a create/update meal request.
type mealFoodRef struct {
	FoodID   int64    `json:"foodId"`
	Servings *float64 `json:"servings"`
}

// mealRequest is the request body for POST /meals and PUT /meals/:id.
type mealRequest struct {
	Name  string        `json:"name"`
	Foods []mealFoodRef `json:"foods"`
}

// servingFactor scales per-100g macros to a food's serving size times the
// number of servings.
func servingFactor(servingSize, servings float64) float64 {
	if servingSize <= 0 {
		servingSize = 100
	}
	return servingSize / 100 * servings
}

// fetchMealFoods loads a meal's food lines joined with current food macros.
func (h *Handler) fetchMealFoods(mealID int64) ([]mealFood, error) {
	rows, err := h.db.Query(
		`SELECT mf.food_id, f.name, mf.servings, f.calories, f.protein, f.carbs, f.fat,
		        f.serving_size, f.serving_unit
		 FROM meal_foods mf
		 JOIN foods f ON f.id = mf.food_id
		 WHERE mf.meal_id = ?`, mealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	foods := []mealFood{}
	for rows.Next() {
		var mf mealFood
		if err := rows.Scan(&mf.FoodID, &mf.Name, &mf.Servings, &mf.Calories, &mf.Protein,
			&mf.Carbs, &mf.Fat, &mf.ServingSize, &mf.ServingUnit); err != nil {
			return nil, err
		}
		foods = append(foods, mf)
	}
	return foods, rows.Err()
}

// mealTotals sums a meal's macros across its food lines.
func mealTotals(foods []mealFood) (cal, protein, carbs, fat float64) {
	for _, f := range foods {
		factor := servingFactor(f.ServingSize, f.Servings)
		cal += f.Calories * factor
		protein += f.Protein * factor
		carbs += f.Carbs * factor
		fat += f.Fat * factor
	}
	return cal, protein, carbs, fat
}

// fetchMeal loads one meal with foods and computed totals.
func (h *Handler) fetchMeal(id int64) (meal, error) {
	var m meal
	err := h.db.QueryRow(`SELECT id, name, created_at FROM meals WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.CreatedAt)
	if err != nil {
		return m, err
	}
	m.Foods, err = h.fetchMealFoods(m.ID)
	if err != nil {
		return m, err
	}
	m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFat = mealTotals(m.Foods)
	return m, nil
}

// listMeals returns all meals with foods and computed totals.
// GET /api/nutrition/meals.
func (h *Handler) listMeals(c *gin.Context) {
	rows, err := h.db.Query(`SELECT id, name, created_at FROM meals ORDER BY created_at DESC`)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meals")
		return
	}
	defer rows.Close()

	meals := []meal{}
	for rows.Next() {
		var m meal
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan meal")
			return
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read meals")
		return
	}

	for i := range meals {
		meals[i].Foods, err = h.fetchMealFoods(meals[i].ID)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to fetch meal foods")
			return
		}
		meals[i].TotalCalories, meals[i].TotalProtein, meals[i].TotalCarbs, meals[i].TotalFat =
			mealTotals(meals[i].Foods)
	}
	c.JSON(http.StatusOK, meals)
}

// createMeal inserts a meal and its food lines.
// POST /api/nutrition/meals.
func (h *Handler) createMeal(c *gin.Context) {
	var body mealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}

	res, err := h.db.Exec(`INSERT INTO meals (name) VALUES (?)`, body.Name)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create meal")
		return
	}
	mealID, _ := res.LastInsertId()
	for _, f := range body.Foods {
		servings := 1.0
		if f.Servings != nil {
			servings = *f.Servings
		}
		if _, err := h.db.Exec(
			`INSERT INTO meal_foods (meal_id, food_id, servings) VALUES (?, ?, ?)`,
			mealID, f.FoodID, servings); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to add meal food")
			return
		}
	}

	m, err := h.fetchMeal(mealID)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch created meal")
		return
	}
	c.JSON(http.StatusCreated, m)
}

// updateMeal renames a meal and/or replaces its food list.
// PUT /api/nutrition/meals/:id.
func (h *Handler) updateMeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var body mealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if body.Name != "" {
		if _, err := h.db.Exec(`UPDATE meals SET name = ? WHERE id = ?`, body.Name, id); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to update meal")
			return
		}
	}
	if body.Foods != nil {
		if _, err := h.db.Exec(`DELETE FROM meal_foods WHERE meal_id = ?`, id); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to update meal foods")
			return
		}
		for _, f := range body.Foods {
			servings := 1.0
			if f.Servings != nil {
				servings = *f.Servings
			}
			if _, err := h.db.Exec(
				`INSERT INTO meal_foods (meal_id, food_id, servings) VALUES (?, ?, ?)`,
				id, f.FoodID, servings); err != nil {
				apiError(c, http.StatusInternalServerError, "failed to update meal foods")
				return
			}
		}
	}

	m, err := h.fetchMeal(id)
	if err == sql.ErrNoRows {
		apiError(c, http.StatusNotFound, "meal not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch updated meal")
		return
	}
	c.JSON(http.StatusOK, m)
}

// deleteMeal removes a meal and its food lines. Idempotent.
// DELETE /api/nutrition/meals/:id.
func (h *Handler) deleteMeal(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.db.Exec(`DELETE FROM meal_foods WHERE meal_id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete meal")
		return
	}
	if _, err := h.db.Exec(`DELETE FROM meals WHERE id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete meal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

/* ─── Daily log ──────────────────────────────────────────────────────── */

// fetchLogEntry loads one daily-log entry by id.
func (h *Handler) fetchLogEntry(id int64) (dailyLogEntry, error) {
	var e dailyLogEntry
	err := h.db.QueryRow(
		`SELECT id, date, food_id, meal_id, name, servings, calories, protein, carbs, fat, logged_at
		 FROM daily_log WHERE id = ?`, id).
		Scan(&e.ID, &e.Date, &e.FoodID, &e.MealID, &e.Name, &e.Servings,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.LoggedAt)
	return e, err
}

// queryLogEntries loads all entries for a date in logged order.
func (h *Handler) queryLogEntries(date string) ([]dailyLogEntry, error) {
	rows, err := h.db.Query(
		`SELECT id, date, food_id, meal_id, name, servings, calories, protein, carbs, fat, logged_at
		 FROM daily_log WHERE date = ? ORDER BY logged_at ASC, id ASC`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []dailyLogEntry{}
	for rows.Next() {
		var e dailyLogEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.FoodID, &e.MealID, &e.Name, &e.Servings,
			&e.Calories, &e.Protein, &e.Carbs, &e.Fat, &e.LoggedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// getDailyLog returns a day's entries plus summed totals.
// GET /api/nutrition/log?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailyLog(c *gin.Context) {
	date := c.DefaultQuery("date", today().Format(dateLayout))
	if _, err := time.Parse(dateLayout, date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := h.queryLogEntries(date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch log entries")
		return
	}

	var cal, protein, carbs, fat float64
	for _, e := range entries {
		cal += e.Calories
		protein += e.Protein
		carbs += e.Carbs
		fat += e.Fat
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    date,
		"entries": entries,
		"totals": gin.H{
			"calories": cal,
			"protein":  protein,
			"carbs":    carbs,
			"fat":      fat,
		},
	})
}

// logHistoryDay is one day in the GET /log/history response. Days with no
// entries are zero-filled so trend charts get a contiguous range.
type logHistoryDay struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Carbs    int    `json:"carbs"`
	Fat      int    `json:"fat"`
}

// getLogHistory returns per-day macro totals for the last N days plus the
// current targets, for the intake trend chart.
// GET /api/nutrition/log/history?days=N (default 7).
func (h *Handler) getLogHistory(c *gin.Context) {
	days := 7
	if s := c.Query("days"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			days = n
		}
	}

	day := today()
	from := day.AddDate(0, 0, -(days - 1))
	rows, err := h.db.Query(
		`SELECT date, SUM(calories), SUM(protein), SUM(carbs), SUM(fat)
		 FROM daily_log WHERE date >= ? GROUP BY date`, from.Format(dateLayout))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch log history")
		return
	}
	defer rows.Close()

	type dayTotals struct{ cal, protein, carbs, fat float64 }
	byDate := map[string]dayTotals{}
	for rows.Next() {
		var date string
		var t dayTotals
		if err := rows.Scan(&date, &t.cal, &t.protein, &t.carbs, &t.fat); err != nil {
			apiError(c, http.StatusInternalServerError, "failed to scan log history")
			return
		}
		byDate[date] = t
	}
	if err := rows.Err(); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to read log history")
		return
	}

	result := make([]logHistoryDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := day.AddDate(0, 0, -i).Format(dateLayout)
		entry := logHistoryDay{Date: d}
		if t, ok := byDate[d]; ok {
			entry.Calories = roundToInt(t.cal)
			entry.Protein = roundToInt(t.protein)
			entry.Carbs = roundToInt(t.carbs)
			entry.Fat = roundToInt(t.fat)
		}
		result = append(result, entry)
	}

	targets, err := h.fetchTargets()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch targets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": result, "targets": targets})
}

// logFood snapshots a grams-based food entry into the daily log.
// POST /api/nutrition/log/food. Body: { "foodId", "grams"?, "date"? }.
func (h *Handler) logFood(c *gin.Context) {
	var body struct {
		FoodID int64    `json:"foodId"`
		Grams  *float64 `json:"grams"`
		Date   string   `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	date := body.Date
	if date == "" {
		date = today().Format(dateLayout)
	}
	grams := 100.0
	if body.Grams != nil && *body.Grams > 0 {
		grams = *body.Grams
	}

	f, err := h.fetchFood(body.FoodID)
	if err == sql.ErrNoRows {
		apiError(c, http.StatusNotFound, "food not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch food")
		return
	}

	ratio := grams / 100
	res, err := h.db.Exec(
		`INSERT INTO daily_log (date, food_id, name, servings, calories, protein, carbs, fat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		date, f.ID, f.Name, grams, f.Calories*ratio, f.Protein*ratio, f.Carbs*ratio, f.Fat*ratio)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log food")
		return
	}
	id, _ := res.LastInsertId()
	entry, err := h.fetchLogEntry(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch log entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// logMeal expands a meal's food lines and snapshots the summed macros.
// POST /api/nutrition/log/meal. Body: { "mealId", "servings"?, "date"? }.
func (h *Handler) logMeal(c *gin.Context) {
	var body struct {
		MealID   int64    `json:"mealId"`
		Servings *float64 `json:"servings"`
		Date     string   `json:"date"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	date := body.Date
	if date == "" {
		date = today().Format(dateLayout)
	}
	servings := 1.0
	if body.Servings != nil && *body.Servings > 0 {
		servings = *body.Servings
	}

	m, err := h.fetchMeal(body.MealID)
	if err == sql.ErrNoRows {
		apiError(c, http.StatusNotFound, "meal not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meal")
		return
	}

	res, err := h.db.Exec(
		`INSERT INTO daily_log (date, meal_id, name, servings, calories, protein, carbs, fat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		date, m.ID, m.Name, servings,
		m.TotalCalories*servings, m.TotalProtein*servings, m.TotalCarbs*servings, m.TotalFat*servings)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to log meal")
		return
	}
	id, _ := res.LastInsertId()
	entry, err := h.fetchLogEntry(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch log entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// copyLogDay duplicates all entries from one date onto another — for
// repeat-eaters logging the same meals day after day.
// POST /api/nutrition/log/copy-day. Body: { "sourceDate", "targetDate" }.
func (h *Handler) copyLogDay(c *gin.Context) {
	var body struct {
		SourceDate string `json:"sourceDate"`
		TargetDate string `json:"targetDate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SourceDate == "" || body.TargetDate == "" {
		apiError(c, http.StatusBadRequest, "sourceDate and targetDate are required")
		return
	}

	entries, err := h.queryLogEntries(body.SourceDate)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch source entries")
		return
	}
	copied := []dailyLogEntry{}
	for _, e := range entries {
		res, err := h.db.Exec(
			`INSERT INTO daily_log (date, food_id, meal_id, name, servings, calories, protein, carbs, fat)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			body.TargetDate, e.FoodID, e.MealID, e.Name, e.Servings, e.Calories, e.Protein, e.Carbs, e.Fat)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to copy entry")
			return
		}
		id, _ := res.LastInsertId()
		entry, err := h.fetchLogEntry(id)
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to fetch copied entry")
			return
		}
		copied = append(copied, entry)
	}
	c.JSON(http.StatusOK, gin.H{"copied": len(copied), "entries": copied})
}

// updateLogEntry changes an entry's servings and re-derives its macros from
// the referenced food or meal. Free-form entries can't be edited.
// PUT /api/nutrition/log/:id.
func (h *Handler) updateLogEntry(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var body struct {
		Servings *float64 `json:"servings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Servings == nil || *body.Servings <= 0 {
		apiError(c, http.StatusBadRequest, "valid servings required")
		return
	}
	servings := *body.Servings

	entry, err := h.fetchLogEntry(id)
	if err == sql.ErrNoRows {
		apiError(c, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch entry")
		return
	}

	var cal, protein, carbs, fat float64
	switch {
	case entry.FoodID != nil:
		f, err := h.fetchFood(*entry.FoodID)
		if err == sql.ErrNoRows {
			apiError(c, http.StatusNotFound, "food not found")
			return
		}
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to fetch food")
			return
		}
		// Grams-based: servings is the gram weight.
		ratio := servings / 100
		cal, protein, carbs, fat = f.Calories*ratio, f.Protein*ratio, f.Carbs*ratio, f.Fat*ratio
	case entry.MealID != nil:
		m, err := h.fetchMeal(*entry.MealID)
		if err == sql.ErrNoRows {
			apiError(c, http.StatusNotFound, "meal not found")
			return
		}
		if err != nil {
			apiError(c, http.StatusInternalServerError, "failed to fetch meal")
			return
		}
		cal = m.TotalCalories * servings
		protein = m.TotalProtein * servings
		carbs = m.TotalCarbs * servings
		fat = m.TotalFat * servings
	default:
		apiError(c, http.StatusBadRequest, "cannot edit this entry")
		return
	}

	if _, err := h.db.Exec(
		`UPDATE daily_log SET servings = ?, calories = ?, protein = ?, carbs = ?, fat = ? WHERE id = ?`,
		servings, cal, protein, carbs, fat, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update entry")
		return
	}
	updated, err := h.fetchLogEntry(id)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch updated entry")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// deleteLogEntry removes a daily-log entry. Idempotent.
// DELETE /api/nutrition/log/:id.
func (h *Handler) deleteLogEntry(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.db.Exec(`DELETE FROM daily_log WHERE id = ?`, id); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
