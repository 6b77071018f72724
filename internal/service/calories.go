package service

import (
	"math"

	"github.com/nutritheous/backend/internal/models"
)

// CalorieService estimates daily calorie needs from profile attributes using
// the Mifflin-St Jeor equation and activity multipliers.
type CalorieService struct{}

// NewCalorieService creates a new CalorieService instance
func NewCalorieService() *CalorieService {
	return &CalorieService{}
}

// CalculateBMR computes the basal metabolic rate in calories per day.
// For OTHER, the male and female results are averaged.
func (s *CalorieService) CalculateBMR(weightKg, heightCm float64, age int, sex models.Sex) int {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)

	var bmr float64
	switch sex {
	case models.SexMale:
		bmr = base + 5
	case models.SexFemale:
		bmr = base - 161
	default:
		bmr = ((base + 5) + (base - 161)) / 2
	}

	return int(math.Round(bmr))
}

// CalculateTDEE applies the activity multiplier to the BMR.
func (s *CalorieService) CalculateTDEE(bmr int, level models.ActivityLevel) int {
	return int(math.Round(float64(bmr) * level.Multiplier()))
}

// EstimateDailyCalories derives TDEE from a user's profile. Every field must
// be present; otherwise ErrIncompleteProfile is returned.
func (s *CalorieService) EstimateDailyCalories(user *models.User) (int, error) {
	if user.WeightKg == nil || user.HeightCm == nil || user.Age == nil ||
		user.Sex == nil || user.ActivityLevel == nil {
		return 0, ErrIncompleteProfile
	}

	bmr := s.CalculateBMR(*user.WeightKg, *user.HeightCm, *user.Age, *user.Sex)
	return s.CalculateTDEE(bmr, *user.ActivityLevel), nil
}
