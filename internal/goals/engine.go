package goals

import (
	"math"
	"time"

	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/domain"

	"cloud.google.com/go/civil"
)

// onTrackTolerance is the share of the expected progress a goal has to
// reach to still count as on track.
const onTrackTolerance = 0.8

// Sources is a point-in-time snapshot of everything a goal value can be
// derived from.
type Sources struct {
	Workouts []domain.Workout
	// Nutrition is the summary for the day the goals are evaluated on.
	Nutrition    domain.DailyNutritionSummary
	LatestWeight float64
	HasWeight    bool
}

type Engine struct {
	cal calendar.Calendar
	now func() time.Time
}

func NewEngine(cal calendar.Calendar, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cal: cal,
		now: now,
	}
}

func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) Today() civil.Date {
	return e.cal.Date(e.now())
}

// ResolveCurrentValue derives the goal's current value from src. Categories
// without a derived source keep their stored value.
func (e *Engine) ResolveCurrentValue(goal domain.Goal, src Sources, now time.Time) float64 {
	today := e.cal.Date(now)

	switch goal.Category {
	case domain.GoalWorkoutsPerWeek:
		from, to := e.clip(goal, e.cal.StartOfWeek(today), e.cal.EndOfWeek(today))
		return float64(countCompleted(src.Workouts, from, to))
	case domain.GoalWorkoutsPerMonth:
		from, to := e.clip(goal, calendar.StartOfMonth(today), calendar.EndOfMonth(today))
		return float64(countCompleted(src.Workouts, from, to))
	case domain.GoalCaloriesPerDay:
		return ratioPercent(src.Nutrition.TotalCalories, src.Nutrition.Target.DailyCalories)
	case domain.GoalProteinPerDay:
		return ratioPercent(src.Nutrition.TotalProtein, src.Nutrition.Target.Protein)
	case domain.GoalBodyweight:
		if !src.HasWeight {
			return 0
		}
		return src.LatestWeight
	default:
		return goal.CurrentValue
	}
}

// clip intersects the period [from, to] with the goal window.
func (e *Engine) clip(goal domain.Goal, from, to civil.Date) (civil.Date, civil.Date) {
	goalStart := e.cal.Date(goal.StartDate)
	goalEnd := e.cal.Date(goal.EndDate)
	if goalStart.After(from) {
		from = goalStart
	}
	if goalEnd.Before(to) {
		to = goalEnd
	}
	return from, to
}

func countCompleted(workouts []domain.Workout, from, to civil.Date) int {
	count := 0
	for _, w := range workouts {
		if w.IsCompleted() && calendar.Within(w.Date, from, to) {
			count++
		}
	}
	return count
}

func ratioPercent(value, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(value / target * 100)
}

// Reconcile returns the goal carrying value and whether it differs from
// the stored one.
func Reconcile(goal domain.Goal, value float64) (domain.Goal, bool) {
	if goal.CurrentValue == value {
		return goal, false
	}
	goal.CurrentValue = value
	return goal, true
}

// Progress evaluates the goal's stored current value at now.
func Progress(goal domain.Goal, now time.Time) domain.GoalProgress {
	current, target := goal.CurrentValue, goal.TargetValue

	percentage := percentOf(current, target)
	elapsed := calendar.DaysBetween(goal.StartDate, now)
	total := calendar.DaysBetween(goal.StartDate, goal.EndDate)
	expected := 0.0
	if total > 0 {
		expected = float64(elapsed) / float64(total) * 100
	}

	return domain.GoalProgress{
		Percentage:    percentage,
		Remaining:     math.Max(0, target-current),
		IsComplete:    current >= target,
		IsOnTrack:     float64(percentage) >= expected*onTrackTolerance,
		DaysRemaining: max(0, calendar.DaysBetween(now, goal.EndDate)),
	}
}

func percentOf(current, target float64) int {
	if target <= 0 {
		if current >= target {
			return 100
		}
		return 0
	}
	pct := math.Round(current / target * 100)
	if math.IsNaN(pct) || pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// Snapshot records the current value for today, unless today already has
// an entry. Only the newest domain.MaxGoalSnapshots entries are kept.
func Snapshot(goal domain.Goal, today civil.Date) domain.Goal {
	if hasSnapshot(goal, today) {
		return goal
	}

	history := make([]domain.GoalSnapshot, 0, len(goal.ProgressHistory)+1)
	history = append(history, goal.ProgressHistory...)
	history = append(history, domain.GoalSnapshot{Date: today, Value: goal.CurrentValue})
	if len(history) > domain.MaxGoalSnapshots {
		history = history[len(history)-domain.MaxGoalSnapshots:]
	}
	goal.ProgressHistory = history
	return goal
}
