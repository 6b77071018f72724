package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutritheous/backend/internal/mocks"
	"github.com/nutritheous/backend/internal/models"
	"github.com/nutritheous/backend/internal/service"
	"github.com/nutritheous/backend/internal/testhelpers"
	"github.com/nutritheous/backend/internal/types"
)

func newMealFixture(t *testing.T) (*service.MealService, *mocks.MockStorageService, *mocks.MockAnalyzerService, *models.User, *gorm.DB) {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	storage := new(mocks.MockStorageService)
	analyzer := new(mocks.MockAnalyzerService)
	svc := service.NewMealService(db, storage, analyzer, nil)
	user := testhelpers.CreateTestUser(t, db, "meals@example.com")
	return svc, storage, analyzer, user, db
}

func sampleResult() *service.AnalysisResult {
	serving := "1 plate"
	calories := 540
	protein := 32.5
	confidence := 0.85
	return &service.AnalysisResult{
		ServingSize: &serving,
		Calories:    &calories,
		ProteinG:    &protein,
		Ingredients: []string{"chicken", "rice"},
		Allergens:   []string{},
		Confidence:  &confidence,
	}
}

func TestUploadMealWithImage(t *testing.T) {
	svc, storage, analyzer, user, db := newMealFixture(t)
	ctx := context.Background()

	imageData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	storage.On("Upload", ctx, imageData, "image/jpeg", user.ID).Return("obj-key.jpg", nil)
	storage.On("AnalyzerURL", ctx, "obj-key.jpg").Return("https://s3/signed-analyzer", nil)
	storage.On("ImageURL", ctx, "obj-key.jpg").Return("https://s3/signed-display", nil)
	analyzer.On("AnalyzeImage", ctx, "https://s3/signed-analyzer", "grilled chicken").Return(sampleResult(), nil)

	mealType := models.MealTypeLunch
	resp, err := svc.UploadMeal(ctx, user.ID, imageData, "image/jpeg", &mealType, nil, "grilled chicken")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisCompleted, resp.AnalysisStatus)
	require.NotNil(t, resp.Calories)
	assert.Equal(t, 540, *resp.Calories)
	assert.Equal(t, "grilled chicken", resp.Description)
	assert.Equal(t, "https://s3/signed-display", resp.ImageURL)
	assert.False(t, resp.MealTime.IsZero())

	// Record persisted with the storage key.
	var stored models.Meal
	require.NoError(t, db.First(&stored, "id = ?", resp.ID).Error)
	require.NotNil(t, stored.ObjectName)
	assert.Equal(t, "obj-key.jpg", *stored.ObjectName)

	storage.AssertExpectations(t)
	analyzer.AssertExpectations(t)
}

func TestUploadMealTextOnly(t *testing.T) {
	svc, storage, analyzer, user, _ := newMealFixture(t)
	ctx := context.Background()

	analyzer.On("AnalyzeTextOnly", ctx, "two eggs on toast").Return(sampleResult(), nil)

	resp, err := svc.UploadMeal(ctx, user.ID, nil, "", nil, nil, "two eggs on toast")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisCompleted, resp.AnalysisStatus)
	assert.Nil(t, resp.ObjectName)
	assert.Empty(t, resp.ImageURL)

	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	analyzer.AssertExpectations(t)
}

func TestUploadMealEmpty(t *testing.T) {
	svc, _, _, user, _ := newMealFixture(t)

	_, err := svc.UploadMeal(context.Background(), user.ID, nil, "", nil, nil, "   ")
	assert.ErrorIs(t, err, service.ErrEmptyMeal)
}

func TestUploadMealUnknownUser(t *testing.T) {
	svc, _, _, _, _ := newMealFixture(t)

	_, err := svc.UploadMeal(context.Background(), uuid.New(), nil, "", nil, nil, "toast")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUploadMealAnalysisFailureKeepsMeal(t *testing.T) {
	svc, storage, analyzer, user, db := newMealFixture(t)
	ctx := context.Background()

	imageData := []byte{0xFF, 0xD8, 0xFF}
	storage.On("Upload", ctx, imageData, "image/jpeg", user.ID).Return("obj.jpg", nil)
	storage.On("AnalyzerURL", ctx, "obj.jpg").Return("https://s3/url", nil)
	storage.On("ImageURL", ctx, "obj.jpg").Return("https://s3/display", nil)
	analyzer.On("AnalyzeImage", ctx, "https://s3/url", "").
		Return(nil, &service.AnalysisError{Err: errors.New("model unavailable")})

	resp, err := svc.UploadMeal(ctx, user.ID, imageData, "image/jpeg", nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisFailed, resp.AnalysisStatus)
	assert.Nil(t, resp.Calories)
	assert.Equal(t, "https://s3/display", resp.ImageURL)

	var stored models.Meal
	require.NoError(t, db.First(&stored, "id = ?", resp.ID).Error)
	assert.Equal(t, models.AnalysisFailed, stored.AnalysisStatus)
	require.NotNil(t, stored.ObjectName)
}

func TestUploadMealStorageFailureAborts(t *testing.T) {
	svc, storage, _, user, db := newMealFixture(t)
	ctx := context.Background()

	imageData := []byte{0xFF, 0xD8, 0xFF}
	storage.On("Upload", ctx, imageData, "image/jpeg", user.ID).
		Return("", &service.StorageError{Op: "upload", Err: errors.New("s3 down")})

	_, err := svc.UploadMeal(ctx, user.ID, imageData, "image/jpeg", nil, nil, "lunch")
	var storageErr *service.StorageError
	require.ErrorAs(t, err, &storageErr)

	// No orphan record.
	var count int64
	require.NoError(t, db.Model(&models.Meal{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploadMealExplicitTime(t *testing.T) {
	svc, _, analyzer, user, _ := newMealFixture(t)
	ctx := context.Background()

	analyzer.On("AnalyzeTextOnly", ctx, "oatmeal").Return(sampleResult(), nil)

	when := time.Date(2026, 3, 14, 8, 30, 0, 0, time.UTC)
	resp, err := svc.UploadMeal(ctx, user.ID, nil, "", nil, &when, "oatmeal")
	require.NoError(t, err)
	assert.True(t, resp.MealTime.Equal(when))
}

func TestGetMealOwnership(t *testing.T) {
	svc, _, _, user, db := newMealFixture(t)
	ctx := context.Background()

	other := testhelpers.CreateTestUser(t, db, "other@example.com")
	meal := testhelpers.CreateTestMeal(t, db, other.ID, models.MealTypeDinner, time.Now(), 700)

	// Someone else's meal is reported as missing.
	_, err := svc.GetMeal(ctx, meal.ID, user.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	got, err := svc.GetMeal(ctx, meal.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, meal.ID, got.ID)
}

func TestListMealsOrdering(t *testing.T) {
	svc, _, _, user, db := newMealFixture(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeBreakfast, now.Add(-48*time.Hour), 300)
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeDinner, now, 800)
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeLunch, now.Add(-24*time.Hour), 600)

	meals, err := svc.ListMeals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, models.MealTypeDinner, *meals[0].MealType)
	assert.Equal(t, models.MealTypeLunch, *meals[1].MealType)
	assert.Equal(t, models.MealTypeBreakfast, *meals[2].MealType)
}

func TestListMealsByDateRange(t *testing.T) {
	svc, _, _, user, db := newMealFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeLunch, base, 600)
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeLunch, base.AddDate(0, 0, -10), 500)

	meals, err := svc.ListMealsByDateRange(ctx, user.ID, base.AddDate(0, 0, -1), base.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, 600, *meals[0].Calories)
}

func TestListMealsByType(t *testing.T) {
	svc, _, _, user, db := newMealFixture(t)
	ctx := context.Background()

	now := time.Now()
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeBreakfast, now, 300)
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeSnack, now, 150)
	testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeSnack, now, 200)

	meals, err := svc.ListMealsByType(ctx, user.ID, models.MealTypeSnack)
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestUpdateMealPartial(t *testing.T) {
	svc, _, _, user, db := newMealFixture(t)
	ctx := context.Background()

	meal := testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeLunch, time.Now(), 600)

	newCalories := 450
	newType := models.MealTypeDinner
	resp, err := svc.UpdateMeal(ctx, meal.ID, user.ID, &types.UpdateMealRequest{
		Calories: &newCalories,
		MealType: &newType,
	})
	require.NoError(t, err)

	assert.Equal(t, 450, *resp.Calories)
	assert.Equal(t, models.MealTypeDinner, *resp.MealType)
	// Untouched fields survive.
	require.NotNil(t, resp.ProteinG)
	assert.InDelta(t, 20.0, *resp.ProteinG, 0.001)
}

func TestUpdateMealForeign(t *testing.T) {
	svc, _, _, user, db := newMealFixture(t)
	ctx := context.Background()

	other := testhelpers.CreateTestUser(t, db, "other2@example.com")
	meal := testhelpers.CreateTestMeal(t, db, other.ID, models.MealTypeLunch, time.Now(), 600)

	calories := 1
	_, err := svc.UpdateMeal(ctx, meal.ID, user.ID, &types.UpdateMealRequest{Calories: &calories})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteMeal(t *testing.T) {
	svc, storage, _, user, db := newMealFixture(t)
	ctx := context.Background()

	meal := testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeLunch, time.Now(), 600)
	objectName := "img.jpg"
	meal.ObjectName = &objectName
	require.NoError(t, db.Save(meal).Error)

	storage.On("Delete", ctx, "img.jpg").Return(true, nil)

	require.NoError(t, svc.DeleteMeal(ctx, meal.ID, user.ID))

	var count int64
	require.NoError(t, db.Model(&models.Meal{}).Where("id = ?", meal.ID).Count(&count).Error)
	assert.Zero(t, count)
	storage.AssertExpectations(t)
}

func TestDeleteMealStorageFailureStillDeletes(t *testing.T) {
	svc, storage, _, user, db := newMealFixture(t)
	ctx := context.Background()

	meal := testhelpers.CreateTestMeal(t, db, user.ID, models.MealTypeLunch, time.Now(), 600)
	objectName := "img.jpg"
	meal.ObjectName = &objectName
	require.NoError(t, db.Save(meal).Error)

	storage.On("Delete", ctx, "img.jpg").
		Return(false, &service.StorageError{Op: "delete", Err: errors.New("s3 down")})

	require.NoError(t, svc.DeleteMeal(ctx, meal.ID, user.ID))

	var count int64
	require.NoError(t, db.Model(&models.Meal{}).Where("id = ?", meal.ID).Count(&count).Error)
	assert.Zero(t, count)
}
