package main

import "math"

// activityMultipliers maps activity level strings to their TDEE multiplier.
// This is the single source of truth for valid activity levels — also used for
// input validation in updateProfile.
var activityMultipliers = map[string]float64{
	"sedentary":    1.2,
	"light":        1.375,
	"moderate":     1.55,
	"very_active":  1.725,
	"extra_active": 1.9,
}

// phaseMultipliers maps dietary phase types to their calorie multiplier.
// Also the source of truth for valid phase types in createPhase/updatePhase.
var phaseMultipliers = map[string]float64{
	"cut":      0.80,
	"maintain": 1.0,
	"bulk":     1.15,
}

const (
	// kcalPerKG is the energy equivalent of 1 kg of body-mass change, used to
	// back-solve maintenance calories from an observed weight trend.
	kcalPerKG = 7700.0

	// proteinPerKG is the protein target in g per kg body weight.
	proteinPerKG = 2.2

	// fatCalorieShare is the fraction of calories allocated to fat.
	fatCalorieShare = 0.25

	// Adaptive inference preconditions: distinct logged calorie days in the
	// trailing week, and weight entries per 7-day averaging window.
	minAdaptiveIntakeDays  = 7
	minWeightEntriesWindow = 2
)

// data_status values for the adaptive-TDEE breakdown. Insufficient data is a
// status, never an error — the formula estimate is always returned.
const (
	statusNoWeight      = "no_weight"
	statusStabilization = "stabilization"
	statusFormulaOnly   = "formula_only"
	statusAdaptive      = "adaptive"
)

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
func roundToInt(x float64) int { return int(math.Round(x)) }

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// calculateBMR computes basal metabolic rate via Mifflin-St Jeor.
func calculateBMR(gender string, weightKG, heightCM float64, age int) float64 {
	base := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if gender == "female" {
		return base - 161
	}
	return base + 5
}

// macroSplit derives gram targets from a calorie total and current weight:
// fixed protein per kg, 25% of calories as fat (9 kcal/g), remainder as
// carbs (4 kcal/g) floored at zero.
func macroSplit(calories int, weightKG float64) (proteinG, fatG, carbsG int) {
	proteinG = int(math.Round(weightKG * proteinPerKG))
	fatG = int(math.Round(float64(calories) * fatCalorieShare / 9))
	carbCals := float64(calories - proteinG*4 - fatG*9)
	carbsG = int(math.Round(carbCals / 4))
	if carbsG < 0 {
		carbsG = 0
	}
	return proteinG, fatG, carbsG
}

/* ─── Adaptive TDEE breakdown ────────────────────────────────────────── */

// weightTrend compares the trailing 7-day average weight against the 7 days
// before that. Averages are shown to 1 decimal, deltas to 2.
type weightTrend struct {
	Current         float64  `json:"current"`
	Avg7d           *float64 `json:"avg_7d"`
	AvgPrev7d       *float64 `json:"avg_prev_7d"`
	WeeklyChangeKG  *float64 `json:"weekly_change_kg"`
	WeeklyChangePct *float64 `json:"weekly_change_pct"`
}

// tdeeInputs carries everything the calculator needs, already materialized.
// "Today" never comes from a wall clock in here — callers resolve the phase
// and stabilization window for their date, keeping the math a pure function.
type tdeeInputs struct {
	Profile         userProfile
	WeightKG        float64
	Phase           string
	Stabilization   stabilizationStatus
	RecentWeights   []float64 // weight entries logged in the last 7 days
	PreviousWeights []float64 // weight entries logged 8-14 days back
	IntakeByDay     []float64 // per-day calorie sums over the last 7 days
}

// tdeeBreakdown is the full calculation output returned by GET /adaptive-tdee.
type tdeeBreakdown struct {
	BMR                int                 `json:"bmr"`
	BaseTDEE           int                 `json:"base_tdee"`
	ActivityMultiplier float64             `json:"activity_multiplier"`
	Phase              string              `json:"phase"`
	PhaseMultiplier    float64             `json:"phase_multiplier"`
	FormulaCalories    int                 `json:"formula_calories"`
	InferredTDEE       *int                `json:"inferred_tdee"`
	AdaptiveCalories   *int                `json:"adaptive_calories"`
	FinalCalories      int                 `json:"final_calories"`
	ProteinG           int                 `json:"protein_g"`
	FatG               int                 `json:"fat_g"`
	CarbsG             int                 `json:"carbs_g"`
	WeightTrend        weightTrend         `json:"weight_trend"`
	DataStatus         string              `json:"data_status"`
	Stabilization      stabilizationStatus `json:"stabilization"`
}

// computeWeightTrend builds the trend block. Each average needs at least one
// entry in its window to be defined; both are needed for the weekly delta.
func computeWeightTrend(current float64, recent, previous []float64) weightTrend {
	trend := weightTrend{Current: current}
	if len(recent) == 0 {
		return trend
	}
	avg7 := round1(mean(recent))
	trend.Avg7d = &avg7
	if len(previous) == 0 {
		return trend
	}
	avgPrev := round1(mean(previous))
	trend.AvgPrev7d = &avgPrev

	changeKG := round2(mean(recent) - mean(previous))
	changePct := round2((mean(recent) - mean(previous)) / mean(previous) * 100)
	trend.WeeklyChangeKG = &changeKG
	trend.WeeklyChangePct = &changePct
	return trend
}

// computeBreakdown runs the full TDEE calculation. The formula path always
// produces a result; the adaptive path replaces it only when not stabilizing
// and enough history exists. Pure — identical inputs yield identical output.
func computeBreakdown(in tdeeInputs) tdeeBreakdown {
	bmr := calculateBMR(in.Profile.Gender, in.WeightKG, in.Profile.HeightCM, in.Profile.Age)
	actMult, ok := activityMultipliers[in.Profile.ActivityLevel]
	if !ok {
		actMult = activityMultipliers["moderate"]
	}
	phaseMult, ok := phaseMultipliers[in.Phase]
	if !ok {
		phaseMult = phaseMultipliers["maintain"]
	}

	baseTDEE := int(math.Round(bmr * actMult))
	formulaCalories := int(math.Round(float64(baseTDEE) * phaseMult))

	b := tdeeBreakdown{
		BMR:                int(math.Round(bmr)),
		BaseTDEE:           baseTDEE,
		ActivityMultiplier: actMult,
		Phase:              in.Phase,
		PhaseMultiplier:    phaseMult,
		FormulaCalories:    formulaCalories,
		FinalCalories:      formulaCalories,
		WeightTrend:        computeWeightTrend(in.WeightKG, in.RecentWeights, in.PreviousWeights),
		DataStatus:         statusFormulaOnly,
		Stabilization:      in.Stabilization,
	}

	if in.Stabilization.InStabilization {
		// Weight swings for ~10 days after a calorie step change; inferring
		// TDEE from that noise would corrupt the estimate.
		b.DataStatus = statusStabilization
	} else if len(in.IntakeByDay) >= minAdaptiveIntakeDays &&
		len(in.RecentWeights) >= minWeightEntriesWindow &&
		len(in.PreviousWeights) >= minWeightEntriesWindow {
		avgIntake := mean(in.IntakeByDay)
		// If weight went up while eating X, true maintenance is below X by the
		// daily surplus that produced the gain (and symmetrically for loss).
		dailySurplus := *b.WeightTrend.WeeklyChangeKG * kcalPerKG / 7
		inferred := int(math.Round(avgIntake - dailySurplus))
		adaptive := int(math.Round(float64(inferred) * phaseMult))
		b.InferredTDEE = &inferred
		b.AdaptiveCalories = &adaptive
		b.FinalCalories = adaptive
		b.DataStatus = statusAdaptive
	}

	b.ProteinG, b.FatG, b.CarbsG = macroSplit(b.FinalCalories, in.WeightKG)
	return b
}
