package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nutritheous/backend/internal/models"
	"github.com/nutritheous/backend/internal/types"
)

// StatsInvalidator drops cached statistics after a meal write. May be nil.
type StatsInvalidator interface {
	InvalidateCache(ctx context.Context, userID uuid.UUID)
}

// MealService coordinates storage, analysis and persistence for meal uploads,
// and provides owner-scoped CRUD over meals.
type MealService struct {
	db       *gorm.DB
	storage  IStorageService
	analyzer IAnalyzerService
	stats    StatsInvalidator
}

// NewMealService creates a new MealService instance
func NewMealService(db *gorm.DB, storage IStorageService, analyzer IAnalyzerService, stats StatsInvalidator) *MealService {
	return &MealService{
		db:       db,
		storage:  storage,
		analyzer: analyzer,
		stats:    stats,
	}
}

// UploadMeal turns an upload request into a persisted, analyzed meal record.
//
// Failures before the record is created (validation, unknown user, storage
// upload) abort the whole operation. Once the pending record exists, analysis
// failure is captured as a FAILED status and the meal and its image are
// retained; the call itself still succeeds.
func (s *MealService) UploadMeal(
	ctx context.Context,
	userID uuid.UUID,
	imageData []byte,
	contentType string,
	mealType *models.MealType,
	mealTime *time.Time,
	description string,
) (*types.MealResponse, error) {
	hasImage := len(imageData) > 0

	if !hasImage && strings.TrimSpace(description) == "" {
		return nil, ErrEmptyMeal
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var objectName *string
	var analyzerURL string
	if hasImage {
		name, err := s.storage.Upload(ctx, imageData, contentType, userID)
		if err != nil {
			return nil, err
		}
		objectName = &name

		analyzerURL, err = s.storage.AnalyzerURL(ctx, name)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("[MealService] no image provided, creating text-only meal entry for user %s", userID)
	}

	meal := models.Meal{
		UserID:         userID,
		MealType:       mealType,
		ObjectName:     objectName,
		Description:    description,
		AnalysisStatus: models.AnalysisPending,
	}
	if mealTime != nil {
		meal.MealTime = *mealTime
	}

	if err := s.db.Create(&meal).Error; err != nil {
		return nil, err
	}
	log.Printf("[MealService] created meal %s with status PENDING", meal.ID)

	var result *AnalysisResult
	var analyzeErr error
	if hasImage {
		result, analyzeErr = s.analyzer.AnalyzeImage(ctx, analyzerURL, description)
	} else {
		result, analyzeErr = s.analyzer.AnalyzeTextOnly(ctx, description)
	}

	if analyzeErr != nil {
		log.Printf("[MealService] analysis failed for meal %s: %v", meal.ID, analyzeErr)
		meal.AnalysisStatus = models.AnalysisFailed
	} else {
		applyAnalysis(&meal, result)
	}

	if err := s.db.Save(&meal).Error; err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, userID)

	return s.toResponse(ctx, &meal), nil
}

// applyAnalysis copies every nutrition field from the result onto the meal.
// The user's own description is kept, never overwritten.
func applyAnalysis(meal *models.Meal, result *AnalysisResult) {
	meal.ServingSize = result.ServingSize
	meal.Calories = result.Calories
	meal.ProteinG = result.ProteinG
	meal.FatG = result.FatG
	meal.SaturatedFatG = result.SaturatedFatG
	meal.CarbohydratesG = result.CarbohydratesG
	meal.FiberG = result.FiberG
	meal.SugarG = result.SugarG
	meal.SodiumMg = result.SodiumMg
	meal.CholesterolMg = result.CholesterolMg
	meal.Ingredients = result.Ingredients
	meal.Allergens = result.Allergens
	meal.HealthNotes = result.HealthNotes
	meal.Confidence = result.Confidence
	meal.AnalysisStatus = models.AnalysisCompleted
}

// GetMeal returns a meal by id, scoped to its owner. A meal owned by someone
// else is indistinguishable from a missing one.
func (s *MealService) GetMeal(ctx context.Context, mealID, userID uuid.UUID) (*types.MealResponse, error) {
	meal, err := s.findOwned(mealID, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, meal), nil
}

// ListMeals returns the user's meals ordered by meal time descending.
func (s *MealService) ListMeals(ctx context.Context, userID uuid.UUID) ([]*types.MealResponse, error) {
	var meals []models.Meal
	if err := s.db.Where("user_id = ?", userID).Order("meal_time DESC").Find(&meals).Error; err != nil {
		return nil, err
	}
	return s.toResponses(ctx, meals), nil
}

// ListMealsByDateRange returns the user's meals within [start, end].
func (s *MealService) ListMealsByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*types.MealResponse, error) {
	var meals []models.Meal
	if err := s.db.Where("user_id = ? AND meal_time BETWEEN ? AND ?", userID, start, end).
		Order("meal_time DESC").Find(&meals).Error; err != nil {
		return nil, err
	}
	return s.toResponses(ctx, meals), nil
}

// ListMealsByType returns the user's meals of one type.
func (s *MealService) ListMealsByType(ctx context.Context, userID uuid.UUID, mealType models.MealType) ([]*types.MealResponse, error) {
	var meals []models.Meal
	if err := s.db.Where("user_id = ? AND meal_type = ?", userID, mealType).
		Order("meal_time DESC").Find(&meals).Error; err != nil {
		return nil, err
	}
	return s.toResponses(ctx, meals), nil
}

// UpdateMeal overwrites only the non-nil fields of the request.
func (s *MealService) UpdateMeal(ctx context.Context, mealID, userID uuid.UUID, req *types.UpdateMealRequest) (*types.MealResponse, error) {
	meal, err := s.findOwned(mealID, userID)
	if err != nil {
		return nil, err
	}

	if req.MealType != nil {
		meal.MealType = req.MealType
	}
	if req.MealTime != nil {
		meal.MealTime = *req.MealTime
	}
	if req.Description != nil {
		meal.Description = *req.Description
	}
	if req.ServingSize != nil {
		meal.ServingSize = req.ServingSize
	}
	if req.Calories != nil {
		meal.Calories = req.Calories
	}
	if req.ProteinG != nil {
		meal.ProteinG = req.ProteinG
	}
	if req.FatG != nil {
		meal.FatG = req.FatG
	}
	if req.SaturatedFatG != nil {
		meal.SaturatedFatG = req.SaturatedFatG
	}
	if req.CarbohydratesG != nil {
		meal.CarbohydratesG = req.CarbohydratesG
	}
	if req.FiberG != nil {
		meal.FiberG = req.FiberG
	}
	if req.SugarG != nil {
		meal.SugarG = req.SugarG
	}
	if req.SodiumMg != nil {
		meal.SodiumMg = req.SodiumMg
	}
	if req.CholesterolMg != nil {
		meal.CholesterolMg = req.CholesterolMg
	}
	if req.Ingredients != nil {
		meal.Ingredients = req.Ingredients
	}
	if req.Allergens != nil {
		meal.Allergens = req.Allergens
	}
	if req.HealthNotes != nil {
		meal.HealthNotes = req.HealthNotes
	}

	if err := s.db.Save(meal).Error; err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, userID)

	return s.toResponse(ctx, meal), nil
}

// DeleteMeal removes the meal and best-effort deletes its stored image.
// A meal must be deletable even when storage is unreachable, so image
// deletion failure is logged and swallowed.
func (s *MealService) DeleteMeal(ctx context.Context, mealID, userID uuid.UUID) error {
	meal, err := s.findOwned(mealID, userID)
	if err != nil {
		return err
	}

	if meal.HasImage() {
		if _, err := s.storage.Delete(ctx, *meal.ObjectName); err != nil {
			log.Printf("[MealService] failed to delete image for meal %s: %v", mealID, err)
		}
	}

	if err := s.db.Delete(meal).Error; err != nil {
		return err
	}
	log.Printf("[MealService] deleted meal %s", mealID)

	s.invalidateStats(ctx, userID)

	return nil
}

func (s *MealService) findOwned(mealID, userID uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	if err := s.db.First(&meal, "id = ? AND user_id = ?", mealID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &meal, nil
}

func (s *MealService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.stats != nil {
		s.stats.InvalidateCache(ctx, userID)
	}
}

// toResponse attaches a freshly minted display URL when the meal has an
// image. URL signing failure only costs the link, never the meal.
func (s *MealService) toResponse(ctx context.Context, meal *models.Meal) *types.MealResponse {
	resp := &types.MealResponse{Meal: *meal}
	if meal.HasImage() {
		url, err := s.storage.ImageURL(ctx, *meal.ObjectName)
		if err != nil {
			log.Printf("[MealService] failed to sign image URL for meal %s: %v", meal.ID, err)
		} else {
			resp.ImageURL = url
		}
	}
	return resp
}

func (s *MealService) toResponses(ctx context.Context, meals []models.Meal) []*types.MealResponse {
	result := make([]*types.MealResponse, len(meals))
	for i := range meals {
		result[i] = s.toResponse(ctx, &meals[i])
	}
	return result
}
