package types

import "time"

// DailyNutritionStats is the per-calendar-date fold of a user's meals.
// Absent nutrition fields count as zero in the totals.
type DailyNutritionStats struct {
	Date                time.Time `json:"date"`
	TotalCalories       int       `json:"total_calories"`
	TotalProteinG       float64   `json:"total_protein_g"`
	TotalFatG           float64   `json:"total_fat_g"`
	TotalSaturatedFatG  float64   `json:"total_saturated_fat_g"`
	TotalCarbohydratesG float64   `json:"total_carbohydrates_g"`
	TotalFiberG         float64   `json:"total_fiber_g"`
	TotalSugarG         float64   `json:"total_sugar_g"`
	TotalSodiumMg       float64   `json:"total_sodium_mg"`
	TotalCholesterolMg  float64   `json:"total_cholesterol_mg"`
	MealCount           int       `json:"meal_count"`
}

// MealTypeDistribution is the share of one meal type among matched meals.
type MealTypeDistribution struct {
	MealType   string  `json:"meal_type"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// NutritionSummary averages daily totals over the days that have data.
type NutritionSummary struct {
	TotalMeals           int64                  `json:"total_meals"`
	AvgCaloriesPerDay    float64                `json:"avg_calories_per_day"`
	AvgProteinPerDay     float64                `json:"avg_protein_per_day"`
	AvgCarbsPerDay       float64                `json:"avg_carbs_per_day"`
	AvgFatPerDay         float64                `json:"avg_fat_per_day"`
	DailyStats           []DailyNutritionStats  `json:"daily_stats"`
	MealTypeDistribution []MealTypeDistribution `json:"meal_type_distribution"`
}

// PeriodStats summarizes one rolling window (7, 30 or 180 days).
type PeriodStats struct {
	TotalMeals    int     `json:"total_meals"`
	TotalDays     int     `json:"total_days"`
	ActiveDays    int     `json:"active_days"`
	TotalCalories float64 `json:"total_calories"`
	AvgCalories   float64 `json:"avg_calories"`
	AvgProtein    float64 `json:"avg_protein"`
	AvgCarbs      float64 `json:"avg_carbs"`
	AvgFat        float64 `json:"avg_fat"`
}

// PeriodicSummaryStats bundles the week/month/six-month windows.
type PeriodicSummaryStats struct {
	Week      PeriodStats `json:"week"`
	Month     PeriodStats `json:"month"`
	SixMonths PeriodStats `json:"six_months"`
}
