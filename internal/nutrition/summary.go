package nutrition

import (
	"math"

	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/domain"

	"cloud.google.com/go/civil"
)

// calorie tolerance around the daily target
const targetTolerance = 0.1

// DailySummary totals the meals eaten on date, as seen in the calendar's location.
func DailySummary(meals []domain.Meal, target domain.NutritionTarget, date civil.Date, cal calendar.Calendar) domain.DailyNutritionSummary {
	summary := domain.DailyNutritionSummary{
		Date:   date,
		Meals:  mealsOn(meals, date, cal),
		Target: target,
	}
	for _, meal := range summary.Meals {
		summary.TotalCalories += meal.Calories
		summary.TotalProtein += meal.Protein
		summary.TotalCarbs += meal.Carbs
		summary.TotalFat += meal.Fat
		if meal.Fiber != nil {
			summary.TotalFiber += *meal.Fiber
		}
	}
	summary.IsWithinTarget = summary.TotalCalories >= target.DailyCalories*(1-targetTolerance) &&
		summary.TotalCalories <= target.DailyCalories*(1+targetTolerance)
	return summary
}

func mealsOn(meals []domain.Meal, date civil.Date, cal calendar.Calendar) []domain.Meal {
	res := make([]domain.Meal, 0)
	for _, meal := range meals {
		if cal.Date(meal.Date) == date {
			res = append(res, meal)
		}
	}
	return res
}

// WeeklySummary returns the summaries of the seven days ending on end, oldest first.
func WeeklySummary(meals []domain.Meal, target domain.NutritionTarget, end civil.Date, cal calendar.Calendar) []domain.DailyNutritionSummary {
	week := make([]domain.DailyNutritionSummary, 0, 7)
	for i := 6; i >= 0; i-- {
		week = append(week, DailySummary(meals, target, end.AddDays(-i), cal))
	}
	return week
}

type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// WeeklyAverages averages the days that have at least one meal. Values are
// rounded to whole numbers.
func WeeklyAverages(week []domain.DailyNutritionSummary) Macros {
	var avg Macros
	days := 0
	for _, day := range week {
		if len(day.Meals) == 0 {
			continue
		}
		days++
		avg.Calories += day.TotalCalories
		avg.Protein += day.TotalProtein
		avg.Carbs += day.TotalCarbs
		avg.Fat += day.TotalFat
	}
	if days == 0 {
		return Macros{}
	}

	n := float64(days)
	return Macros{
		Calories: math.Round(avg.Calories / n),
		Protein:  math.Round(avg.Protein / n),
		Carbs:    math.Round(avg.Carbs / n),
		Fat:      math.Round(avg.Fat / n),
	}
}

// Progress is the share of each target reached, in percent capped at 100.
func Progress(summary domain.DailyNutritionSummary) Macros {
	return Macros{
		Calories: cappedPercent(summary.TotalCalories, summary.Target.DailyCalories),
		Protein:  cappedPercent(summary.TotalProtein, summary.Target.Protein),
		Carbs:    cappedPercent(summary.TotalCarbs, summary.Target.Carbs),
		Fat:      cappedPercent(summary.TotalFat, summary.Target.Fat),
	}
}

func cappedPercent(value, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(100, math.Round(value/target*100))
}

// Remaining is what is left of each target, never below zero.
func Remaining(summary domain.DailyNutritionSummary) Macros {
	return Macros{
		Calories: math.Max(0, summary.Target.DailyCalories-summary.TotalCalories),
		Protein:  math.Max(0, summary.Target.Protein-summary.TotalProtein),
		Carbs:    math.Max(0, summary.Target.Carbs-summary.TotalCarbs),
		Fat:      math.Max(0, summary.Target.Fat-summary.TotalFat),
	}
}
