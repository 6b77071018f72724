package types

import (
	"time"

	"github.com/nutritheous/backend/internal/models"
)

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest is the payload for an existing account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest carries optional profile attributes. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	FirstName     *string               `json:"first_name"`
	LastName      *string               `json:"last_name"`
	Age           *int                  `json:"age" binding:"omitempty,gt=0"`
	HeightCm      *float64              `json:"height_cm" binding:"omitempty,gt=0"`
	WeightKg      *float64              `json:"weight_kg" binding:"omitempty,gt=0"`
	Sex           *models.Sex           `json:"sex"`
	ActivityLevel *models.ActivityLevel `json:"activity_level"`
}

// UpdateMealRequest is a partial meal edit: only non-nil fields overwrite
// the stored record.
type UpdateMealRequest struct {
	MealType       *models.MealType `json:"meal_type"`
	MealTime       *time.Time       `json:"meal_time"`
	Description    *string          `json:"description"`
	ServingSize    *string          `json:"serving_size"`
	Calories       *int             `json:"calories"`
	ProteinG       *float64         `json:"protein_g"`
	FatG           *float64         `json:"fat_g"`
	SaturatedFatG  *float64         `json:"saturated_fat_g"`
	CarbohydratesG *float64         `json:"carbohydrates_g"`
	FiberG         *float64         `json:"fiber_g"`
	SugarG         *float64         `json:"sugar_g"`
	SodiumMg       *float64         `json:"sodium_mg"`
	CholesterolMg  *float64         `json:"cholesterol_mg"`
	Ingredients    []string         `json:"ingredients"`
	Allergens      []string         `json:"allergens"`
	HealthNotes    *string          `json:"health_notes"`
}

// MealResponse is a Meal plus a time-limited display URL for its image.
type MealResponse struct {
	models.Meal
	ImageURL string `json:"image_url,omitempty"`
}

// AnalyzeRequest is the debug analyzer payload: an image URL and/or text.
type AnalyzeRequest struct {
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}
