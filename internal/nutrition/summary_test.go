package nutrition_test

import (
	"testing"
	"time"

	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/nutrition"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

func day(d int) civil.Date {
	return civil.Date{Year: 2024, Month: time.January, Day: d}
}

func floatPtr(v float64) *float64 {
	return &v
}

func meal(id string, at time.Time, calories, protein, carbs, fat float64) domain.Meal {
	return domain.Meal{
		ID:       id,
		Date:     at,
		Name:     id,
		MealType: domain.MealOther,
		Calories: calories,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
	}
}

func testMeals() []domain.Meal {
	lunch := meal("lunch", time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC), 600, 40, 50, 20)
	lunch.Fiber = floatPtr(5)
	return []domain.Meal{
		lunch,
		meal("dinner", time.Date(2024, time.January, 10, 19, 0, 0, 0, time.UTC), 1300, 60, 100, 40),
		meal("yesterday", time.Date(2024, time.January, 9, 19, 0, 0, 0, time.UTC), 800, 30, 90, 25),
		meal("monday", time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC), 2100, 120, 250, 70),
	}
}

func TestDailySummary(t *testing.T) {
	cal := calendar.New(time.UTC, time.Sunday)
	summary := nutrition.DailySummary(testMeals(), domain.DefaultNutritionTarget(), day(10), cal)

	assert.Equal(t, day(10), summary.Date)
	require.Len(t, summary.Meals, 2)
	assert.Equal(t, 1900.0, summary.TotalCalories)
	assert.Equal(t, 100.0, summary.TotalProtein)
	assert.Equal(t, 150.0, summary.TotalCarbs)
	assert.Equal(t, 60.0, summary.TotalFat)
	// missing fiber counts as zero
	assert.Equal(t, 5.0, summary.TotalFiber)
	assert.True(t, summary.IsWithinTarget)
	assert.Equal(t, domain.DefaultNutritionTarget(), summary.Target)

	empty := nutrition.DailySummary(testMeals(), domain.DefaultNutritionTarget(), day(1), cal)
	assert.Empty(t, empty.Meals)
	assert.NotNil(t, empty.Meals)
	assert.Zero(t, empty.TotalCalories)
	assert.False(t, empty.IsWithinTarget)
}

func TestDailySummary_Tolerance(t *testing.T) {
	cal := calendar.New(time.UTC, time.Sunday)
	at := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	testCases := []struct {
		calories float64
		within   bool
	}{
		{calories: 1799, within: false},
		{calories: 1800, within: true},
		{calories: 2000, within: true},
		{calories: 2200, within: true},
		{calories: 2201, within: false},
	}
	for _, tc := range testCases {
		summary := nutrition.DailySummary(
			[]domain.Meal{meal("m", at, tc.calories, 0, 0, 0)},
			domain.DefaultNutritionTarget(),
			day(10),
			cal,
		)
		assert.Equal(t, tc.within, summary.IsWithinTarget, "calories %v", tc.calories)
	}
}

func TestDailySummary_UsesCalendarLocation(t *testing.T) {
	cal := calendar.New(time.FixedZone("UTC-5", -5*3600), time.Sunday)
	meals := []domain.Meal{
		// Jan 10 21:00 local
		meal("late", time.Date(2024, time.January, 11, 2, 0, 0, 0, time.UTC), 500, 0, 0, 0),
		// Jan 9 22:00 local
		meal("early", time.Date(2024, time.January, 10, 3, 0, 0, 0, time.UTC), 300, 0, 0, 0),
	}

	summary := nutrition.DailySummary(meals, domain.DefaultNutritionTarget(), day(10), cal)
	require.Len(t, summary.Meals, 1)
	assert.Equal(t, "late", summary.Meals[0].ID)
}

func TestWeeklySummaryAndAverages(t *testing.T) {
	cal := calendar.New(time.UTC, time.Sunday)
	week := nutrition.WeeklySummary(testMeals(), domain.DefaultNutritionTarget(), day(10), cal)

	require.Len(t, week, 7)
	assert.Equal(t, day(4), week[0].Date)
	assert.Equal(t, day(10), week[6].Date)
	assert.Equal(t, 2100.0, week[4].TotalCalories)
	assert.Equal(t, 800.0, week[5].TotalCalories)

	// three days with meals
	averages := nutrition.WeeklyAverages(week)
	assert.Equal(t, nutrition.Macros{Calories: 1600, Protein: 83, Carbs: 163, Fat: 52}, averages)

	assert.Equal(t, nutrition.Macros{}, nutrition.WeeklyAverages(nil))
}

func TestProgressAndRemaining(t *testing.T) {
	cal := calendar.New(time.UTC, time.Sunday)
	summary := nutrition.DailySummary(testMeals(), domain.DefaultNutritionTarget(), day(10), cal)

	assert.Equal(t, nutrition.Macros{Calories: 95, Protein: 67, Carbs: 75, Fat: 92}, nutrition.Progress(summary))
	assert.Equal(t, nutrition.Macros{Calories: 100, Protein: 50, Carbs: 50, Fat: 5}, nutrition.Remaining(summary))

	over := nutrition.DailySummary(testMeals(), domain.DefaultNutritionTarget(), day(8), cal)
	progress := nutrition.Progress(over)
	assert.Equal(t, 100.0, progress.Calories)
	assert.Equal(t, 100.0, progress.Carbs)
	assert.Equal(t, 0.0, nutrition.Remaining(over).Calories)

	zeroTarget := summary
	zeroTarget.Target = domain.NutritionTarget{}
	assert.Equal(t, nutrition.Macros{}, nutrition.Progress(zeroTarget))
}

func TestMealTypeAt(t *testing.T) {
	testCases := []struct {
		hour     int
		expected domain.MealType
	}{
		{hour: 3, expected: domain.MealSnack},
		{hour: 5, expected: domain.MealBreakfast},
		{hour: 9, expected: domain.MealBreakfast},
		{hour: 10, expected: domain.MealLunch},
		{hour: 13, expected: domain.MealLunch},
		{hour: 14, expected: domain.MealSnack},
		{hour: 18, expected: domain.MealDinner},
		{hour: 21, expected: domain.MealDinner},
		{hour: 22, expected: domain.MealSnack},
	}
	for _, tc := range testCases {
		at := time.Date(2024, time.January, 10, tc.hour, 0, 0, 0, time.UTC)
		assert.Equal(t, tc.expected, nutrition.MealTypeAt(at), "hour %d", tc.hour)
	}
}
