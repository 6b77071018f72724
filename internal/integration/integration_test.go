package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nutritheous/backend/internal/mocks"
	"github.com/nutritheous/backend/internal/models"
	"github.com/nutritheous/backend/internal/service"
	"github.com/nutritheous/backend/internal/testhelpers"
	"github.com/nutritheous/backend/internal/types"
)

// TestMealLifecyclePostgres runs the full upload/query/update/delete cycle
// against a containerized Postgres, including the jsonb array columns that
// the sqlite-backed unit tests cannot exercise faithfully.
func TestMealLifecyclePostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	storage := new(mocks.MockStorageService)
	analyzer := new(mocks.MockAnalyzerService)
	calories := service.NewCalorieService()
	auth := service.NewAuthService(db, "integration-secret", calories)
	stats := service.NewStatisticsService(db, nil)
	meals := service.NewMealService(db, storage, analyzer, stats)

	token, err := auth.Register(ctx, &types.RegisterRequest{
		Email:     "it@example.com",
		Password:  "password123",
		FirstName: "Iris",
	})
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	userID := claims.UserID

	imageData := []byte{0xFF, 0xD8, 0xFF, 0xAA, 0xBB}
	storage.On("Upload", mock.Anything, imageData, "image/jpeg", userID).Return("it/obj.jpg", nil)
	storage.On("AnalyzerURL", mock.Anything, "it/obj.jpg").Return("https://s3/a", nil)
	storage.On("ImageURL", mock.Anything, "it/obj.jpg").Return("https://s3/i", nil)

	serving := "1 bowl"
	cal := 620
	confidence := 0.9
	analyzer.On("AnalyzeImage", mock.Anything, "https://s3/a", "ramen").Return(&service.AnalysisResult{
		ServingSize: &serving,
		Calories:    &cal,
		Ingredients: []string{"noodles", "pork", "egg"},
		Allergens:   []string{"gluten", "egg"},
		Confidence:  &confidence,
	}, nil)

	mealType := models.MealTypeDinner
	created, err := meals.UploadMeal(ctx, userID, imageData, "image/jpeg", &mealType, nil, "ramen")
	require.NoError(t, err)
	assert.Equal(t, models.AnalysisCompleted, created.AnalysisStatus)

	// The jsonb arrays round-trip through Postgres.
	fetched, err := meals.GetMeal(ctx, created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"noodles", "pork", "egg"}, []string(fetched.Ingredients))
	assert.Equal(t, []string{"gluten", "egg"}, []string(fetched.Allergens))
	assert.Equal(t, "https://s3/i", fetched.ImageURL)

	// Statistics see the meal.
	now := time.Now()
	daily, err := stats.GetDailyNutritionStats(ctx, userID, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 620, daily[0].TotalCalories)

	// Update then delete.
	newCal := 500
	updated, err := meals.UpdateMeal(ctx, created.ID, userID, &types.UpdateMealRequest{Calories: &newCal})
	require.NoError(t, err)
	assert.Equal(t, 500, *updated.Calories)

	storage.On("Delete", mock.Anything, "it/obj.jpg").Return(true, nil)
	require.NoError(t, meals.DeleteMeal(ctx, created.ID, userID))

	_, err = meals.GetMeal(ctx, created.ID, userID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
