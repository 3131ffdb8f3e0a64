package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// profileResponse merges the profile row with derived state the client always
// wants alongside it: today's active phase and the latest logged weight.
type profileResponse struct {
	userProfile
	Phase           string   `json:"phase"`
	CurrentWeightKG *float64 `json:"current_weight_kg"`
}

// fetchProfile loads the single-row user profile (id = 1, seeded at migration).
func (h *Handler) fetchProfile() (userProfile, error) {
	var p userProfile
	err := h.db.QueryRow(
		`SELECT id, gender, age, height_cm, activity_level FROM user_profile WHERE id = 1`).
		Scan(&p.ID, &p.Gender, &p.Age, &p.HeightCM, &p.ActivityLevel)
	return p, err
}

// buildProfileResponse assembles the merged profile view for today.
func (h *Handler) buildProfileResponse() (profileResponse, error) {
	profile, err := h.fetchProfile()
	if err != nil {
		return profileResponse{}, err
	}
	phases, err := fetchPhases(h)
	if err != nil {
		return profileResponse{}, err
	}
	resp := profileResponse{
		userProfile: profile,
		Phase:       activePhaseOn(phases, today()),
	}
	latest, err := h.latestWeight()
	if err != nil {
		return profileResponse{}, err
	}
	if latest != nil {
		resp.CurrentWeightKG = &latest.WeightKG
	}
	return resp, nil
}

// getProfile returns the profile plus active phase and current weight.
// GET /api/nutrition/profile.
func (h *Handler) getProfile(c *gin.Context) {
	resp, err := h.buildProfileResponse()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateProfile rewrites the profile and recalculates the cached targets.
// PUT /api/nutrition/profile. Omitted fields fall back to defaults; provided
// but invalid enum values are rejected before anything is written.
func (h *Handler) updateProfile(c *gin.Context) {
	var body struct {
		Gender        *string  `json:"gender"`
		Age           *int     `json:"age"`
		HeightCM      *float64 `json:"height_cm"`
		ActivityLevel *string  `json:"activity_level"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Validate enums up front — an unknown activity level would silently skew
	// every future TDEE calculation via the fallback multiplier.
	if body.Gender != nil && *body.Gender != "male" && *body.Gender != "female" {
		apiError(c, http.StatusBadRequest, "gender must be male or female")
		return
	}
	if body.ActivityLevel != nil {
		if _, ok := activityMultipliers[*body.ActivityLevel]; !ok {
			apiError(c, http.StatusBadRequest,
				"activity_level must be one of: sedentary, light, moderate, very_active, extra_active")
			return
		}
	}

	gender, age, heightCM, activityLevel := "male", 25, 175.0, "moderate"
	if body.Gender != nil {
		gender = *body.Gender
	}
	if body.Age != nil {
		age = *body.Age
	}
	if body.HeightCM != nil {
		heightCM = *body.HeightCM
	}
	if body.ActivityLevel != nil {
		activityLevel = *body.ActivityLevel
	}

	if _, err := h.db.Exec(
		`UPDATE user_profile SET gender = ?, age = ?, height_cm = ?, activity_level = ? WHERE id = 1`,
		gender, age, heightCM, activityLevel); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	if err := h.recalculateTargets(today()); err != nil {
		log.Printf("[updateProfile] target recalculation failed: %v", err)
	}

	resp, err := h.buildProfileResponse()
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, resp)
}
