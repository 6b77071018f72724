package api

import (
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nutritheous/backend/internal/models"
	"github.com/nutritheous/backend/internal/service"
	"github.com/nutritheous/backend/internal/types"
)

// maxUploadBytes bounds the multipart image payload read into memory.
const maxUploadBytes = 20 << 20

type MealHandler struct {
	meals *service.MealService
}

func NewMealHandler(meals *service.MealService) *MealHandler {
	return &MealHandler{meals: meals}
}

// Upload accepts a multipart form with an optional image file plus optional
// meal_type, meal_time (RFC 3339) and description fields. At least one of
// image or description must be present.
func (h *MealHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var imageData []byte
	contentType := ""
	fileHeader, err := c.FormFile("image")
	if err == nil {
		if fileHeader.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return
		}
		defer f.Close()
		imageData, err = io.ReadAll(io.LimitReader(f, maxUploadBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return
		}
		contentType = fileHeader.Header.Get("Content-Type")
	}

	var mealType *models.MealType
	if raw := c.PostForm("meal_type"); raw != "" {
		mt := models.MealType(raw)
		if !mt.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal_type"})
			return
		}
		mealType = &mt
	}

	var mealTime *time.Time
	if raw := c.PostForm("meal_time"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "meal_time must be RFC 3339"})
			return
		}
		mealTime = &t
	}

	description := c.PostForm("description")

	meal, err := h.meals.UploadMeal(c.Request.Context(), userID, imageData, contentType, mealType, mealTime, description)
	if err != nil {
		log.Printf("[MealHandler] Upload failed for user %s: %v", userID, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, meal)
}

func (h *MealHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	meal, err := h.meals.GetMeal(c.Request.Context(), mealID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, meal)
}

// List returns the user's meals, optionally filtered by a date range or type.
func (h *MealHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if mealType := c.Query("type"); mealType != "" {
		mt := models.MealType(mealType)
		if !mt.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal type"})
			return
		}
		meals, err := h.meals.ListMealsByType(c.Request.Context(), userID, mt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, meals)
		return
	}

	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw != "" || endRaw != "" {
		start, end, err := parseRange(startRaw, endRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		meals, err := h.meals.ListMealsByDateRange(c.Request.Context(), userID, start, end)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, meals)
		return
	}

	meals, err := h.meals.ListMeals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (h *MealHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	var req types.UpdateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MealType != nil && !req.MealType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal_type"})
		return
	}

	meal, err := h.meals.UpdateMeal(c.Request.Context(), mealID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, meal)
}

func (h *MealHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	mealID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meal id"})
		return
	}

	if err := h.meals.DeleteMeal(c.Request.Context(), mealID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
