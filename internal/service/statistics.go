package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nutritheous/backend/internal/models"
	"github.com/nutritheous/backend/internal/types"
)

const statsCacheTTL = 10 * time.Minute

// StatisticsService folds a user's meals into daily and period summaries.
// Absent nutrition fields count as zero; days without meals are absent from
// the grouping, so averages run over days with data only. The periodic
// summary is cached in Redis and invalidated on meal writes.
type StatisticsService struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewStatisticsService creates a new StatisticsService instance. The Redis
// client is optional; without it every call recomputes.
func NewStatisticsService(db *gorm.DB, redisClient *redis.Client) *StatisticsService {
	return &StatisticsService{db: db, redis: redisClient}
}

// GetDailyNutritionStats groups the user's meals in [start, end] by calendar
// date and sums every nutrition field, sorted by date ascending.
func (s *StatisticsService) GetDailyNutritionStats(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]types.DailyNutritionStats, error) {
	meals, err := s.mealsInRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	return dailyStats(meals), nil
}

// GetNutritionSummary averages daily totals across the days that have at
// least one meal, plus the meal-type distribution over the matched meals.
func (s *StatisticsService) GetNutritionSummary(ctx context.Context, userID uuid.UUID, start, end time.Time) (*types.NutritionSummary, error) {
	meals, err := s.mealsInRange(userID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &types.NutritionSummary{
		DailyStats:           []types.DailyNutritionStats{},
		MealTypeDistribution: []types.MealTypeDistribution{},
	}
	if len(meals) == 0 {
		return summary, nil
	}

	daily := dailyStats(meals)
	days := float64(len(daily))

	var sumCalories, sumProtein, sumCarbs, sumFat float64
	for _, d := range daily {
		sumCalories += float64(d.TotalCalories)
		sumProtein += d.TotalProteinG
		sumCarbs += d.TotalCarbohydratesG
		sumFat += d.TotalFatG
	}

	summary.TotalMeals = int64(len(meals))
	summary.AvgCaloriesPerDay = sumCalories / days
	summary.AvgProteinPerDay = sumProtein / days
	summary.AvgCarbsPerDay = sumCarbs / days
	summary.AvgFatPerDay = sumFat / days
	summary.DailyStats = daily
	summary.MealTypeDistribution = mealTypeDistribution(meals)

	return summary, nil
}

// GetMealTypeDistribution counts meal types among the user's meals in range.
func (s *StatisticsService) GetMealTypeDistribution(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]types.MealTypeDistribution, error) {
	meals, err := s.mealsInRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	return mealTypeDistribution(meals), nil
}

// GetPeriodicSummaryStats reports the 7, 30 and 180 day windows ending today,
// each with active days out of total days. Served from cache when fresh.
func (s *StatisticsService) GetPeriodicSummaryStats(ctx context.Context, userID uuid.UUID) (*types.PeriodicSummaryStats, error) {
	if cached := s.cachedPeriodic(ctx, userID); cached != nil {
		return cached, nil
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := today.Add(24*time.Hour - time.Nanosecond)

	week, err := s.periodStats(ctx, userID, today.AddDate(0, 0, -6), endOfDay, 7)
	if err != nil {
		return nil, err
	}
	month, err := s.periodStats(ctx, userID, today.AddDate(0, 0, -29), endOfDay, 30)
	if err != nil {
		return nil, err
	}
	sixMonths, err := s.periodStats(ctx, userID, today.AddDate(0, -6, 0), endOfDay, 180)
	if err != nil {
		return nil, err
	}

	stats := &types.PeriodicSummaryStats{
		Week:      *week,
		Month:     *month,
		SixMonths: *sixMonths,
	}

	s.cachePeriodic(ctx, userID, stats)

	return stats, nil
}

// InvalidateCache drops cached statistics for the user after a meal write.
func (s *StatisticsService) InvalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey(userID)).Err(); err != nil {
		log.Printf("[Statistics] failed to invalidate cache for user %s: %v", userID, err)
	}
}

func (s *StatisticsService) periodStats(ctx context.Context, userID uuid.UUID, start, end time.Time, totalDays int) (*types.PeriodStats, error) {
	daily, err := s.GetDailyNutritionStats(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	stats := &types.PeriodStats{TotalDays: totalDays}
	if len(daily) == 0 {
		return stats, nil
	}

	days := float64(len(daily))
	var sumProtein, sumCarbs, sumFat float64
	for _, d := range daily {
		stats.TotalMeals += d.MealCount
		if d.MealCount > 0 {
			stats.ActiveDays++
		}
		stats.TotalCalories += float64(d.TotalCalories)
		sumProtein += d.TotalProteinG
		sumCarbs += d.TotalCarbohydratesG
		sumFat += d.TotalFatG
	}
	stats.AvgCalories = stats.TotalCalories / days
	stats.AvgProtein = sumProtein / days
	stats.AvgCarbs = sumCarbs / days
	stats.AvgFat = sumFat / days

	return stats, nil
}

func (s *StatisticsService) mealsInRange(userID uuid.UUID, start, end time.Time) ([]models.Meal, error) {
	var meals []models.Meal
	if err := s.db.Where("user_id = ? AND meal_time BETWEEN ? AND ?", userID, start, end).
		Order("meal_time DESC").Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

func (s *StatisticsService) cachedPeriodic(ctx context.Context, userID uuid.UUID) *types.PeriodicSummaryStats {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, statsCacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var stats types.PeriodicSummaryStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatisticsService) cachePeriodic(ctx context.Context, userID uuid.UUID, stats *types.PeriodicSummaryStats) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, statsCacheKey(userID), data, statsCacheTTL).Err(); err != nil {
		log.Printf("[Statistics] failed to cache stats for user %s: %v", userID, err)
	}
}

func statsCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("stats:periodic:%s", userID)
}

func dailyStats(meals []models.Meal) []types.DailyNutritionStats {
	byDate := make(map[time.Time][]models.Meal)
	for _, m := range meals {
		y, mo, d := m.MealTime.Date()
		date := time.Date(y, mo, d, 0, 0, 0, 0, m.MealTime.Location())
		byDate[date] = append(byDate[date], m)
	}

	stats := make([]types.DailyNutritionStats, 0, len(byDate))
	for date, dayMeals := range byDate {
		day := types.DailyNutritionStats{Date: date, MealCount: len(dayMeals)}
		for _, m := range dayMeals {
			day.TotalCalories += intOrZero(m.Calories)
			day.TotalProteinG += floatOrZero(m.ProteinG)
			day.TotalFatG += floatOrZero(m.FatG)
			day.TotalSaturatedFatG += floatOrZero(m.SaturatedFatG)
			day.TotalCarbohydratesG += floatOrZero(m.CarbohydratesG)
			day.TotalFiberG += floatOrZero(m.FiberG)
			day.TotalSugarG += floatOrZero(m.SugarG)
			day.TotalSodiumMg += floatOrZero(m.SodiumMg)
			day.TotalCholesterolMg += floatOrZero(m.CholesterolMg)
		}
		stats = append(stats, day)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Date.Before(stats[j].Date) })
	return stats
}

func mealTypeDistribution(meals []models.Meal) []types.MealTypeDistribution {
	if len(meals) == 0 {
		return []types.MealTypeDistribution{}
	}

	total := float64(len(meals))
	counts := make(map[models.MealType]int64)
	for _, m := range meals {
		if m.MealType != nil {
			counts[*m.MealType]++
		}
	}

	dist := make([]types.MealTypeDistribution, 0, len(counts))
	for mealType, count := range counts {
		dist = append(dist, types.MealTypeDistribution{
			MealType:   string(mealType),
			Count:      count,
			Percentage: float64(count) * 100.0 / total,
		})
	}

	sort.Slice(dist, func(i, j int) bool { return dist[i].MealType < dist[j].MealType })
	return dist
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
