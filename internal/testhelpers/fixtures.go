package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutritheous/backend/internal/models"
)

// CreateTestUser inserts a user with a complete body profile.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	age := 30
	height := 180.0
	weight := 75.0
	sex := models.SexMale
	activity := models.ActivityModerate

	user := &models.User{
		Email:         email,
		PasswordHash:  "x",
		FirstName:     "Test",
		LastName:      "User",
		Age:           &age,
		HeightCm:      &height,
		WeightKg:      &weight,
		Sex:           &sex,
		ActivityLevel: &activity,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestMeal inserts a completed meal with the given calories at mealTime.
func CreateTestMeal(t *testing.T, db *gorm.DB, userID uuid.UUID, mealType models.MealType, mealTime time.Time, calories int) *models.Meal {
	t.Helper()

	protein := 20.0
	carbs := 50.0
	fat := 15.0

	meal := &models.Meal{
		UserID:         userID,
		MealType:       &mealType,
		MealTime:       mealTime,
		AnalysisStatus: models.AnalysisCompleted,
		Calories:       &calories,
		ProteinG:       &protein,
		CarbohydratesG: &carbs,
		FatG:           &fat,
	}
	if err := db.Create(meal).Error; err != nil {
		t.Fatalf("failed to create test meal: %v", err)
	}
	return meal
}
